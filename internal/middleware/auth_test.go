package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/questx-lab/noloss/config"
	"github.com/questx-lab/noloss/internal/model"
	"github.com/questx-lab/noloss/pkg/authenticator"
	"github.com/questx-lab/noloss/pkg/errorx"
	"github.com/questx-lab/noloss/pkg/testutil"
	"github.com/questx-lab/noloss/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func TestAuthenticate(t *testing.T) {
	ctx := testutil.NewMockContext()
	engine := authenticator.NewTokenEngine[model.AccessToken](config.AuthConfigs{
		TokenSecret: "secret",
		Expiration:  time.Minute,
	})
	authenticate := Authenticate(engine)

	token, err := engine.Generate("alice", model.AccessToken{ID: "alice"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	got, err := authenticate(ctx, req)
	require.NoError(t, err)
	require.Equal(t, "alice", xcontext.RequestUserID(got))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	got, err = authenticate(ctx, req)
	require.NoError(t, err)
	require.Empty(t, xcontext.RequestUserID(got))

	_, err = RequirePrincipal()(got, req)
	require.True(t, errorx.Is(err, errorx.Unauthenticated))

	req.Header.Set("Authorization", "Bearer garbage")
	_, err = authenticate(ctx, req)
	require.True(t, errorx.Is(err, errorx.Unauthenticated))
}

func TestAllowCors(t *testing.T) {
	handler := AllowCors([]string{"https://app.example"}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://app.example")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
