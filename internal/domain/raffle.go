package domain

import (
	"context"

	"github.com/questx-lab/noloss/internal/entity"
	"github.com/questx-lab/noloss/internal/repository"
	"github.com/questx-lab/noloss/pkg/crypto"
	"github.com/questx-lab/noloss/pkg/errorx"
	"github.com/questx-lab/noloss/pkg/xcontext"
)

// RaffleEngine selects the winning ticket of an Ended period.
type RaffleEngine interface {
	Draw(ctx context.Context) (*entity.Ticket, error)
}

type raffleEngine struct {
	lotteryRepo      repository.LotteryRepository
	ticketRepo       repository.TicketRepository
	statusController StatusController
}

func NewRaffleEngine(
	lotteryRepo repository.LotteryRepository,
	ticketRepo repository.TicketRepository,
	statusController StatusController,
) *raffleEngine {
	return &raffleEngine{
		lotteryRepo:      lotteryRepo,
		ticketRepo:       ticketRepo,
		statusController: statusController,
	}
}

func (e *raffleEngine) Draw(ctx context.Context) (*entity.Ticket, error) {
	state, err := e.statusController.RequirePhase(ctx, entity.Ended)
	if err != nil {
		return nil, err
	}

	raffle, err := getRaffle(ctx, e.lotteryRepo)
	if err != nil {
		return nil, err
	}

	if raffle.WinnerSelected {
		return nil, errorx.New(errorx.AlreadyDrawn, "Winner was already selected")
	}

	if state.InReserve {
		return nil, errorx.New(errorx.FundsInReserve, "Funds are still in the reserve")
	}

	activeIDs, err := e.ticketRepo.GetActiveIDs(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get active tickets: %v", err)
		return nil, errorx.Unknown
	}

	if len(activeIDs) == 0 {
		return nil, errorx.New(errorx.NoParticipants, "No ticket takes part in the raffle")
	}

	winnerID := activeIDs[crypto.SeededIntn(raffle.Seed, len(activeIDs))]
	ticket, err := e.ticketRepo.GetByID(ctx, winnerID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get winning ticket %d: %v", winnerID, err)
		return nil, errorx.Unknown
	}

	ticket.Won = true
	ticket.Amount = ticket.Amount.Add(state.YieldAmount)
	if err := e.ticketRepo.MarkWon(ctx, ticket.ID, ticket.Amount); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot mark ticket %d as won: %v", ticket.ID, err)
		return nil, errorx.Unknown
	}

	if err := e.lotteryRepo.SelectWinner(ctx, ticket.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot select winner: %v", err)
		return nil, errorx.Unknown
	}

	if err := e.lotteryRepo.UpdateYield(ctx, entity.AmountFromInt64(0), state.InReserve); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot reset yield amount: %v", err)
		return nil, errorx.Unknown
	}

	return ticket, nil
}
