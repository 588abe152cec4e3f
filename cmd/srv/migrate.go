package main

import (
	"github.com/questx-lab/noloss/internal/entity"
	"github.com/questx-lab/noloss/internal/model"
	"github.com/questx-lab/noloss/internal/repository"
	"github.com/questx-lab/noloss/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startMigrate(*cli.Context) error {
	if err := s.loadAll(); err != nil {
		return err
	}
	defer s.close()

	if err := s.migrateDB(); err != nil {
		return err
	}

	resp, err := s.lotteryDomain.Initialize(s.ctx, &model.InitializeRequest{})
	if err != nil {
		return err
	}

	xcontext.Logger(s.ctx).Infof("Lottery of %s is in phase %s",
		resp.State.Currency, resp.State.Phase)
	return nil
}

// migrateDB runs the versioned SQL migrations on MySQL. Other drivers get
// their schema from the entities.
func (s *srv) migrateDB() error {
	if xcontext.Configs(s.ctx).Database.Driver != "mysql" {
		return entity.MigrateTable(s.ctx)
	}

	db, err := xcontext.DB(s.ctx).DB()
	if err != nil {
		return err
	}

	return repository.DoSqlMigration(s.ctx, db)
}
