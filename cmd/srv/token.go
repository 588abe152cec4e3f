package main

import (
	"fmt"

	"github.com/questx-lab/noloss/internal/model"
	"github.com/questx-lab/noloss/pkg/authenticator"
	"github.com/questx-lab/noloss/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) issueToken(cctx *cli.Context) error {
	cfg := xcontext.Configs(s.ctx)
	if cfg.Auth.TokenSecret == "" {
		return fmt.Errorf("token secret is not configured")
	}

	principal := cctx.String("principal")
	engine := authenticator.NewTokenEngine[model.AccessToken](cfg.Auth)
	token, err := engine.Generate(principal, model.AccessToken{ID: principal})
	if err != nil {
		return err
	}

	fmt.Println(token)
	return nil
}
