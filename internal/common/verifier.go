package common

import (
	"context"
	"errors"
	"strings"

	"github.com/questx-lab/noloss/pkg/xcontext"
	"golang.org/x/exp/slices"
)

var (
	ErrNoPrincipal     = errors.New("request has no principal")
	ErrWrongPrincipal  = errors.New("principal does not match")
	ErrNoAdministrator = errors.New("administrator is not configured")
)

// PrincipalVerifier checks that the request principal is the account an
// operation acts for.
type PrincipalVerifier struct{}

func NewPrincipalVerifier() *PrincipalVerifier {
	return &PrincipalVerifier{}
}

func (verifier *PrincipalVerifier) Verify(ctx context.Context, principals ...string) error {
	userID := xcontext.RequestUserID(ctx)
	if userID == "" {
		return ErrNoPrincipal
	}

	if slices.IndexFunc(principals, func(p string) bool { return strings.EqualFold(p, userID) }) < 0 {
		return ErrWrongPrincipal
	}

	return nil
}

// AdminVerifier checks that the request principal is the configured lottery
// administrator.
type AdminVerifier struct {
	principalVerifier *PrincipalVerifier
}

func NewAdminVerifier(principalVerifier *PrincipalVerifier) *AdminVerifier {
	return &AdminVerifier{principalVerifier: principalVerifier}
}

func (verifier *AdminVerifier) Verify(ctx context.Context) error {
	admin := xcontext.Configs(ctx).Lottery.Admin
	if admin == "" {
		return ErrNoAdministrator
	}

	return verifier.principalVerifier.Verify(ctx, admin)
}
