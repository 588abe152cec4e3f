package main

import (
	"context"
	"fmt"
	"log"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/questx-lab/noloss/config"
	"github.com/questx-lab/noloss/internal/client"
	"github.com/questx-lab/noloss/internal/domain"
	"github.com/questx-lab/noloss/internal/repository"
	"github.com/questx-lab/noloss/pkg/blockchain/eth"
	"github.com/questx-lab/noloss/pkg/crypto"
	"github.com/questx-lab/noloss/pkg/kafka"
	"github.com/questx-lab/noloss/pkg/logger"
	"github.com/questx-lab/noloss/pkg/pubsub"
	"github.com/questx-lab/noloss/pkg/router"
	"github.com/questx-lab/noloss/pkg/xcontext"
	"github.com/questx-lab/noloss/pkg/xredis"
	"github.com/urfave/cli/v2"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type srv struct {
	app *cli.App
	ctx context.Context

	lotteryRepo repository.LotteryRepository
	ticketRepo  repository.TicketRepository

	token   client.Token
	clock   client.Clock
	reserve client.Reserve
	hasher  crypto.SeedHasher

	lotteryDomain domain.LotteryDomain

	redisClient xredis.Client
	publisher   pubsub.Publisher

	router *router.Router

	closers []func()
}

func (s *srv) loadConfig(cctx *cli.Context) error {
	cfg, err := config.Load(cctx.String("config"))
	if err != nil {
		return err
	}

	s.ctx = xcontext.WithConfigs(context.Background(), cfg)
	return nil
}

func (s *srv) loadLogger() error {
	cfg := xcontext.Configs(s.ctx)
	l, err := logger.NewZapLogger(cfg.LogLevel, cfg.LogJSON)
	if err != nil {
		return err
	}

	s.ctx = xcontext.WithLogger(s.ctx, l)
	s.closers = append(s.closers, func() { _ = l.Sync() })
	return nil
}

func (s *srv) loadDatabase() error {
	cfg := xcontext.Configs(s.ctx).Database

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "mysql":
		dialector = mysql.New(mysql.Config{
			DSN:                       cfg.ConnectionString(),
			DefaultStringSize:         256,
			DisableDatetimePrecision:  true,
			DontSupportRenameIndex:    true,
			DontSupportRenameColumn:   true,
			SkipInitializeWithVersion: false,
		})
	case "sqlite":
		dialector = sqlite.Open(cfg.ConnectionString())
	default:
		return fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return err
	}

	s.ctx = xcontext.WithDB(s.ctx, db)
	return nil
}

func (s *srv) loadRedisClient() error {
	cfg := xcontext.Configs(s.ctx)
	if cfg.Redis.Addr == "" {
		xcontext.Logger(s.ctx).Warnf("Redis is not configured, the state is not cached")
		return nil
	}

	redisClient, err := xredis.NewClient(s.ctx, cfg.Redis.Addr)
	if err != nil {
		return err
	}

	s.redisClient = redisClient
	return nil
}

func (s *srv) loadPublisher() error {
	cfg := xcontext.Configs(s.ctx)
	if cfg.Kafka.Addr == "" {
		xcontext.Logger(s.ctx).Warnf("Kafka is not configured, events are not published")
		return nil
	}

	publisher, err := kafka.NewPublisher(cfg.Env, []string{cfg.Kafka.Addr})
	if err != nil {
		return err
	}

	s.publisher = publisher
	s.closers = append(s.closers, func() {
		if err := publisher.Stop(s.ctx); err != nil {
			xcontext.Logger(s.ctx).Warnf("Cannot stop publisher: %v", err)
		}
	})
	return nil
}

func (s *srv) loadChain() error {
	cfg := xcontext.Configs(s.ctx)

	ethClient, err := ethclient.DialContext(s.ctx, cfg.Eth.Rpc)
	if err != nil {
		return fmt.Errorf("cannot dial chain rpc: %w", err)
	}
	s.closers = append(s.closers, ethClient.Close)

	opts, err := eth.NewTransactor(s.ctx, ethClient, cfg.Eth.PrivateKey)
	if err != nil {
		return err
	}

	token, err := eth.NewERC20Token(ethClient, cfg.Lottery.Currency, opts)
	if err != nil {
		return err
	}

	rpcClient, err := rpc.DialContext(s.ctx, cfg.Eth.ReserveRpc)
	if err != nil {
		return fmt.Errorf("cannot dial reserve rpc: %w", err)
	}

	reserve := client.NewReserveCaller(rpcClient, cfg.Eth.ReserveNamespace)
	s.closers = append(s.closers, reserve.Close)

	hasher, err := crypto.NewSeedHasher(cfg.Lottery.SeedHash)
	if err != nil {
		return err
	}

	s.token = token
	s.clock = eth.NewHeaderClock(ethClient)
	s.reserve = reserve
	s.hasher = hasher
	return nil
}

func (s *srv) loadRepos() {
	s.lotteryRepo = repository.NewLotteryRepository()
	s.ticketRepo = repository.NewTicketRepository()
}

func (s *srv) loadDomains() {
	s.lotteryDomain = domain.NewLotteryDomain(
		s.lotteryRepo, s.ticketRepo, s.token, s.reserve, s.clock, s.hasher, s.publisher, s.redisClient)
}

// loadAll prepares everything the lottery operations need.
func (s *srv) loadAll() error {
	loaders := []func() error{
		s.loadLogger,
		s.loadDatabase,
		s.loadRedisClient,
		s.loadPublisher,
		s.loadChain,
	}

	for _, load := range loaders {
		if err := load(); err != nil {
			return err
		}
	}

	s.loadRepos()
	s.loadDomains()
	return nil
}

func (s *srv) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	log.Println("Server stopped")
}
