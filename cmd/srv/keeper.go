package main

import (
	"os/signal"
	"syscall"

	"github.com/questx-lab/noloss/internal/domain/cron"
	"github.com/questx-lab/noloss/pkg/xcontext"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func (s *srv) startKeeper(*cli.Context) error {
	if err := s.loadAll(); err != nil {
		return err
	}
	defer s.close()

	cfg := xcontext.Configs(s.ctx)
	cronJobManager := cron.NewCronJobManager()
	cronJobManager.Register(cron.NewPhaseKeeperCronJob(s.lotteryDomain, s.redisClient, cfg.Keeper.Interval))

	ctx, stop := signal.NotifyContext(s.ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var g errgroup.Group
	g.Go(func() error {
		cronJobManager.Start(s.ctx)
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		cronJobManager.Cancel(s.ctx)
		return nil
	})

	return g.Wait()
}
