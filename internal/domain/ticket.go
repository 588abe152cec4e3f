package domain

import (
	"context"
	"errors"
	"iter"

	"github.com/questx-lab/noloss/internal/client"
	"github.com/questx-lab/noloss/internal/common"
	"github.com/questx-lab/noloss/internal/entity"
	"github.com/questx-lab/noloss/internal/repository"
	"github.com/questx-lab/noloss/pkg/errorx"
	"github.com/questx-lab/noloss/pkg/xcontext"
	"gorm.io/gorm"
)

// TicketLedger owns tickets, the per-owner ticket index, the set of active
// tickets and the participant count.
type TicketLedger interface {
	Buy(ctx context.Context, owner string) (*entity.Ticket, error)

	// Redeem pays the ticket back to its owner, who must be the request
	// principal.
	Redeem(ctx context.Context, ticketID uint64) (*entity.Ticket, error)

	// ListFor returns the current tickets of owner. Every iteration reads
	// the tickets again; ids which cannot be resolved are skipped.
	ListFor(ctx context.Context, owner string) (iter.Seq[entity.Ticket], error)
}

type ticketLedger struct {
	lotteryRepo       repository.LotteryRepository
	ticketRepo        repository.TicketRepository
	statusController  StatusController
	token             client.Token
	principalVerifier *common.PrincipalVerifier
}

func NewTicketLedger(
	lotteryRepo repository.LotteryRepository,
	ticketRepo repository.TicketRepository,
	statusController StatusController,
	token client.Token,
	principalVerifier *common.PrincipalVerifier,
) *ticketLedger {
	return &ticketLedger{
		lotteryRepo:       lotteryRepo,
		ticketRepo:        ticketRepo,
		statusController:  statusController,
		token:             token,
		principalVerifier: principalVerifier,
	}
}

func (l *ticketLedger) Buy(ctx context.Context, owner string) (*entity.Ticket, error) {
	state, err := l.statusController.RequirePhase(ctx, entity.BuyIn)
	if err != nil {
		return nil, err
	}

	price, err := getTicketPrice(ctx)
	if err != nil {
		return nil, err
	}

	pool, err := getPoolAddress(ctx)
	if err != nil {
		return nil, err
	}

	id, err := l.lotteryRepo.NextSequence(ctx, entity.TicketSequence)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot allocate ticket id: %v", err)
		return nil, errorx.Unknown
	}

	ticket := &entity.Ticket{
		ID:       id,
		Owner:    owner,
		Currency: state.Currency,
		Amount:   price,
		Won:      false,
	}

	if err := l.ticketRepo.Create(ctx, ticket); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create ticket: %v", err)
		return nil, errorx.Unknown
	}

	if err := l.ticketRepo.AddActive(ctx, id); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot activate ticket: %v", err)
		return nil, errorx.Unknown
	}

	owned, err := l.ticketRepo.CountUserTickets(ctx, owner)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count tickets of owner: %v", err)
		return nil, errorx.Unknown
	}

	if err := l.ticketRepo.AddUserTicket(ctx, owner, id); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot index ticket: %v", err)
		return nil, errorx.Unknown
	}

	if owned == 0 {
		if err := l.lotteryRepo.IncreaseParticipantCount(ctx); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot increase participant count: %v", err)
			return nil, errorx.Unknown
		}
	}

	if err := l.token.Transfer(ctx, owner, pool, price.Big()); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot transfer ticket price from %s: %v", owner, err)
		return nil, errorx.New(errorx.Unavailable, "Cannot transfer the ticket price")
	}

	return ticket, nil
}

func (l *ticketLedger) Redeem(ctx context.Context, ticketID uint64) (*entity.Ticket, error) {
	ticket, err := l.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.TicketNotFound, "Not found ticket %d", ticketID)
		}

		xcontext.Logger(ctx).Errorf("Cannot get ticket: %v", err)
		return nil, errorx.Unknown
	}

	if err := l.principalVerifier.Verify(ctx, ticket.Owner); err != nil {
		xcontext.Logger(ctx).Debugf("Cannot redeem ticket %d: %v", ticket.ID, err)
		return nil, errorx.New(errorx.NotAuthorized, "Only the owner can redeem the ticket")
	}

	owner := ticket.Owner

	state, err := l.statusController.RequirePhase(ctx, entity.BuyIn, entity.Ended)
	if err != nil {
		return nil, err
	}

	if state.InReserve {
		return nil, errorx.New(errorx.WrongPhase, "Funds are still in the reserve")
	}

	pool, err := getPoolAddress(ctx)
	if err != nil {
		return nil, err
	}

	if err := l.ticketRepo.RemoveActive(ctx, ticket.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot deactivate ticket: %v", err)
		return nil, errorx.Unknown
	}

	if err := l.ticketRepo.Delete(ctx, ticket.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete ticket: %v", err)
		return nil, errorx.Unknown
	}

	if err := l.ticketRepo.RemoveUserTicket(ctx, owner, ticket.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot remove ticket from index: %v", err)
		return nil, errorx.Unknown
	}

	remaining, err := l.ticketRepo.CountUserTickets(ctx, owner)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count tickets of owner: %v", err)
		return nil, errorx.Unknown
	}

	if remaining == 0 {
		if err := l.lotteryRepo.DecreaseParticipantCount(ctx); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot decrease participant count: %v", err)
			return nil, errorx.Unknown
		}
	}

	if err := l.token.Transfer(ctx, pool, owner, ticket.Amount.Big()); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot pay ticket %d back: %v", ticket.ID, err)
		return nil, errorx.New(errorx.Unavailable, "Cannot transfer the ticket amount")
	}

	return ticket, nil
}

func (l *ticketLedger) ListFor(ctx context.Context, owner string) (iter.Seq[entity.Ticket], error) {
	ids, err := l.ticketRepo.GetUserTicketIDs(ctx, owner)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get ticket index of owner: %v", err)
		return nil, errorx.Unknown
	}

	return func(yield func(entity.Ticket) bool) {
		for _, id := range ids {
			ticket, err := l.ticketRepo.GetByID(ctx, id)
			if err != nil {
				xcontext.Logger(ctx).Debugf("Skip unresolvable ticket %d: %v", id, err)
				continue
			}

			if !yield(*ticket) {
				return
			}
		}
	}, nil
}
