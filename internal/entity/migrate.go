package entity

import (
	"context"

	"github.com/questx-lab/noloss/pkg/xcontext"
)

func MigrateTable(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&LotteryState{},
		&PhaseTimelock{},
		&Raffle{},
		&ReservePosition{},
		&Sequence{},
		&Ticket{},
		&UserTicket{},
		&ActiveTicket{},
	)
}
