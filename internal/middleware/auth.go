package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/questx-lab/noloss/internal/model"
	"github.com/questx-lab/noloss/pkg/authenticator"
	"github.com/questx-lab/noloss/pkg/errorx"
	"github.com/questx-lab/noloss/pkg/router"
	"github.com/questx-lab/noloss/pkg/xcontext"
)

// Authenticate binds the principal of a bearer token to the request. A
// request without a token stays anonymous.
func Authenticate(engine authenticator.TokenEngine[model.AccessToken]) router.MiddlewareFunc {
	return func(ctx context.Context, r *http.Request) (context.Context, error) {
		auth, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
		if !found || auth != "Bearer" || token == "" {
			return ctx, nil
		}

		info, err := engine.Verify(token)
		if err != nil {
			xcontext.Logger(ctx).Debugf("Invalid access token: %v", err)
			return nil, errorx.New(errorx.Unauthenticated, "Invalid access token")
		}

		return xcontext.WithRequestUserID(ctx, info.ID), nil
	}
}

func RequirePrincipal() router.MiddlewareFunc {
	return func(ctx context.Context, r *http.Request) (context.Context, error) {
		if xcontext.RequestUserID(ctx) == "" {
			return nil, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
		}

		return ctx, nil
	}
}
