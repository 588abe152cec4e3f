package authenticator_test

import (
	"testing"
	"time"

	"github.com/questx-lab/noloss/config"
	"github.com/questx-lab/noloss/pkg/authenticator"
	"github.com/stretchr/testify/require"
)

type principal struct {
	ID string `json:"id"`
}

func TestJWT(t *testing.T) {
	engine := authenticator.NewTokenEngine[principal](config.AuthConfigs{
		TokenSecret: "secret",
		Expiration:  time.Minute,
	})

	token, err := engine.Generate("alice", principal{ID: "alice"})
	require.NoError(t, err)

	obj, err := engine.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "alice", obj.ID)

	other := authenticator.NewTokenEngine[principal](config.AuthConfigs{
		TokenSecret: "other",
		Expiration:  time.Minute,
	})
	_, err = other.Verify(token)
	require.Error(t, err)
}

func TestJWTExpiration(t *testing.T) {
	engine := authenticator.NewTokenEngine[principal](config.AuthConfigs{
		TokenSecret: "secret",
		Expiration:  -time.Minute,
	})

	token, err := engine.Generate("alice", principal{ID: "alice"})
	require.NoError(t, err)

	obj, err := engine.Verify(token)
	require.Error(t, err)
	require.Empty(t, obj.ID)
}
