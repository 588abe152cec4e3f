package domain

import (
	"github.com/questx-lab/noloss/internal/entity"
	"github.com/questx-lab/noloss/internal/model"
)

func convertTicket(ticket *entity.Ticket) model.Ticket {
	if ticket == nil {
		return model.Ticket{}
	}

	return model.Ticket{
		ID:       ticket.ID,
		Owner:    ticket.Owner,
		Currency: ticket.Currency,
		Amount:   ticket.Amount.String(),
		Won:      ticket.Won,
	}
}

func convertLotteryState(
	state *entity.LotteryState,
	raffle *entity.Raffle,
	phaseStartHeight uint32,
	remainingLedgers uint32,
) model.LotteryState {
	if state == nil {
		return model.LotteryState{}
	}

	result := model.LotteryState{
		Phase:            string(state.Phase),
		ParticipantCount: state.ParticipantCount,
		YieldAmount:      state.YieldAmount.String(),
		Currency:         state.Currency,
		InReserve:        state.InReserve,
		PhaseStartHeight: phaseStartHeight,
		RemainingLedgers: remainingLedgers,
	}

	if raffle != nil {
		result.WinnerSelected = raffle.WinnerSelected
	}

	return result
}
