package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/questx-lab/noloss/internal/middleware"
	"github.com/questx-lab/noloss/internal/model"
	"github.com/questx-lab/noloss/pkg/authenticator"
	"github.com/questx-lab/noloss/pkg/router"
	"github.com/questx-lab/noloss/pkg/xcontext"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func (s *srv) startApi(*cli.Context) error {
	if err := s.loadAll(); err != nil {
		return err
	}
	defer s.close()

	s.loadRouter()

	cfg := xcontext.Configs(s.ctx)
	httpSrv := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.ApiServer.Host, cfg.ApiServer.Port),
		Handler:           middleware.AllowCors(cfg.ApiServer.AllowedOrigins, s.router.Handler()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(s.ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		xcontext.Logger(s.ctx).Infof("Starting server on %s", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (s *srv) loadRouter() {
	cfg := xcontext.Configs(s.ctx)
	tokenEngine := authenticator.NewTokenEngine[model.AccessToken](cfg.Auth)

	s.router = router.New(s.ctx)
	s.router.After(middleware.Logger())
	s.router.Use(middleware.Authenticate(tokenEngine))

	// Read API, the principal is optional.
	{
		router.GET(s.router, "/getState", s.lotteryDomain.GetState)
		router.GET(s.router, "/getTicketPrice", s.lotteryDomain.GetTicketPrice)
		router.GET(s.router, "/getUserTickets", s.lotteryDomain.GetUserTickets)
		router.GET(s.router, "/getPhaseStartHeight", s.lotteryDomain.GetPhaseStartHeight)
		router.GET(s.router, "/getAdmin", s.lotteryDomain.GetAdmin)
		router.GET(s.router, "/getPoolBalance", s.lotteryDomain.GetPoolBalance)
		router.GET(s.router, "/getCurrentLedger", s.lotteryDomain.GetCurrentLedger)
	}

	// Anyone may drive the phases and the draw once they are due.
	{
		router.POST(s.router, "/setPhase", s.lotteryDomain.SetPhase)
		router.POST(s.router, "/drawWinner", s.lotteryDomain.DrawWinner)
	}

	authRouter := s.router.Group("")
	authRouter.Use(middleware.RequirePrincipal())
	{
		router.POST(authRouter, "/buyTicket", s.lotteryDomain.BuyTicket)
		router.POST(authRouter, "/redeemTicket", s.lotteryDomain.RedeemTicket)

		// Administrator API
		router.POST(authRouter, "/depositToReserve", s.lotteryDomain.DepositToReserve)
		router.POST(authRouter, "/withdrawFromReserve", s.lotteryDomain.WithdrawFromReserve)
		router.POST(authRouter, "/claimEmissions", s.lotteryDomain.ClaimEmissions)
	}
}
