package testutil

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/questx-lab/noloss/config"
	"github.com/questx-lab/noloss/internal/entity"
	"github.com/questx-lab/noloss/pkg/logger"
	"github.com/questx-lab/noloss/pkg/xcontext"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	Admin       = "admin"
	Pool        = "pool"
	Reserve     = "reserve"
	Currency    = "usdc"
	TicketPrice = 10_000_000
)

func MockConfigs() config.Configs {
	cfg := config.Default()
	cfg.Auth.TokenSecret = "secret"
	cfg.Lottery = config.LotteryConfigs{
		Admin:          Admin,
		PoolAddress:    Pool,
		Currency:       Currency,
		TicketPrice:    fmt.Sprint(TicketPrice),
		ReserveAddress: Reserve,
		SeedHash:       "sha256",
		Timelocks: config.TimelockConfigs{
			BuyIn:        config.DayInLedgers,
			YieldFarming: 6 * config.DayInLedgers,
			Ended:        config.DayInLedgers,
		},
	}

	return cfg
}

// NewMockContext returns a context carrying test configs, a silent logger
// and a fresh migrated in-memory database.
func NewMockContext() context.Context {
	// Every connection of the pool must see the same in-memory database.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, MockConfigs())
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.SILENCE))
	ctx = xcontext.WithDB(ctx, db)

	if err := entity.MigrateTable(ctx); err != nil {
		panic(err)
	}

	return ctx
}

func NewMockContextWithUserID(ctx context.Context, userID string) context.Context {
	return xcontext.WithRequestUserID(ctx, userID)
}
