package testutil

import (
	"context"

	"github.com/questx-lab/noloss/internal/entity"
	"github.com/questx-lab/noloss/internal/repository"
)

// CreateFixture writes the initial lottery rows and one ticket for each
// owner, in order.
func CreateFixture(ctx context.Context, startedLedger uint32, owners ...string) []entity.Ticket {
	lotteryRepo := repository.NewLotteryRepository()
	ticketRepo := repository.NewTicketRepository()

	must(lotteryRepo.CreateState(ctx, entity.NewLotteryState(Currency)))
	must(lotteryRepo.CreateRaffle(ctx, entity.NewRaffle()))
	must(lotteryRepo.CreateReservePosition(ctx, entity.NewReservePosition(Currency)))
	must(lotteryRepo.UpsertTimelock(ctx, entity.BuyIn, startedLedger))

	tickets := []entity.Ticket{}
	for _, owner := range owners {
		id, err := lotteryRepo.NextSequence(ctx, entity.TicketSequence)
		must(err)

		ticket := entity.Ticket{
			ID:       id,
			Owner:    owner,
			Currency: Currency,
			Amount:   entity.AmountFromInt64(TicketPrice),
		}

		n, err := ticketRepo.CountUserTickets(ctx, owner)
		must(err)

		must(ticketRepo.Create(ctx, &ticket))
		must(ticketRepo.AddActive(ctx, id))
		must(ticketRepo.AddUserTicket(ctx, owner, id))
		if n == 0 {
			must(lotteryRepo.IncreaseParticipantCount(ctx))
		}

		tickets = append(tickets, ticket)
	}

	return tickets
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
