package model

import "time"

type Ticket struct {
	ID       uint64 `json:"id"`
	Owner    string `json:"owner"`
	Currency string `json:"currency"`
	Amount   string `json:"amount"`
	Won      bool   `json:"won"`
}

type LotteryState struct {
	Phase            string `json:"phase"`
	ParticipantCount uint32 `json:"participant_count"`
	YieldAmount      string `json:"yield_amount"`
	Currency         string `json:"currency"`
	InReserve        bool   `json:"in_reserve"`
	WinnerSelected   bool   `json:"winner_selected"`
	PhaseStartHeight uint32 `json:"phase_start_height"`

	// RemainingLedgers is how many ledgers are left before the phase may
	// advance, as of the ledger the state was read at.
	RemainingLedgers uint32 `json:"remaining_ledgers"`
}

type LotteryEventType string

const (
	TicketBoughtEvent     LotteryEventType = "ticket_bought"
	TicketRedeemedEvent   LotteryEventType = "ticket_redeemed"
	PhaseChangedEvent     LotteryEventType = "phase_changed"
	WinnerDrawnEvent      LotteryEventType = "winner_drawn"
	ReserveDepositedEvent LotteryEventType = "reserve_deposited"
	ReserveWithdrawnEvent LotteryEventType = "reserve_withdrawn"
	EmissionsClaimedEvent LotteryEventType = "emissions_claimed"
)

// LotteryEvent is published after every state-changing operation commits.
type LotteryEvent struct {
	ID        string           `json:"id"`
	Type      LotteryEventType `json:"type"`
	Principal string           `json:"principal,omitempty"`
	TicketID  uint64           `json:"ticket_id,omitempty"`
	Amount    string           `json:"amount,omitempty"`
	Phase     string           `json:"phase,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// AccessToken is the payload of a bearer token. ID is the principal the
// requests act for.
type AccessToken struct {
	ID string `json:"id"`
}
