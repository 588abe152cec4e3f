package common

import (
	"context"
	"testing"

	"github.com/questx-lab/noloss/config"
	"github.com/questx-lab/noloss/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func TestPrincipalVerifier(t *testing.T) {
	verifier := NewPrincipalVerifier()
	ctx := context.Background()

	require.ErrorIs(t, verifier.Verify(ctx, "alice"), ErrNoPrincipal)

	ctx = xcontext.WithRequestUserID(ctx, "0xAbC")
	require.NoError(t, verifier.Verify(ctx, "0xabc"))
	require.NoError(t, verifier.Verify(ctx, "bob", "0xABC"))
	require.ErrorIs(t, verifier.Verify(ctx, "bob"), ErrWrongPrincipal)
	require.ErrorIs(t, verifier.Verify(ctx), ErrWrongPrincipal)
}

func TestAdminVerifier(t *testing.T) {
	verifier := NewAdminVerifier(NewPrincipalVerifier())
	ctx := xcontext.WithRequestUserID(context.Background(), "admin")

	require.ErrorIs(t, verifier.Verify(ctx), ErrNoAdministrator)

	cfg := config.Default()
	cfg.Lottery.Admin = "admin"
	ctx = xcontext.WithConfigs(ctx, cfg)
	require.NoError(t, verifier.Verify(ctx))

	ctx = xcontext.WithRequestUserID(ctx, "mallory")
	require.ErrorIs(t, verifier.Verify(ctx), ErrWrongPrincipal)
}
