package model

type BuyTicketRequest struct{}

type BuyTicketResponse struct {
	Ticket Ticket `json:"ticket"`
}

type RedeemTicketRequest struct {
	TicketID uint64 `json:"ticket_id"`
}

type RedeemTicketResponse struct {
	Amount string `json:"amount"`
}

type DrawWinnerRequest struct{}

type DrawWinnerResponse struct {
	Ticket Ticket `json:"ticket"`
}

type SetPhaseRequest struct {
	Phase string `json:"phase"`
}

type SetPhaseResponse struct {
	Phase string `json:"phase"`
}

type DepositToReserveRequest struct{}

type DepositToReserveResponse struct {
	Amount string `json:"amount"`
}

type WithdrawFromReserveRequest struct{}

type WithdrawFromReserveResponse struct {
	Yield string `json:"yield"`
}

type ClaimEmissionsRequest struct{}

type ClaimEmissionsResponse struct {
	Amount string `json:"amount"`
}

type GetStateRequest struct {
	// Fresh skips the cached state.
	Fresh bool `form:"fresh" json:"fresh"`
}

type GetStateResponse struct {
	State LotteryState `json:"state"`
}

type GetTicketPriceRequest struct{}

type GetTicketPriceResponse struct {
	Price string `json:"price"`
}

type GetUserTicketsRequest struct {
	Owner string `form:"owner" json:"owner"`
}

type GetUserTicketsResponse struct {
	Tickets []Ticket `json:"tickets"`
}

type GetPhaseStartHeightRequest struct {
	// Phase defaults to the current phase when empty.
	Phase string `form:"phase" json:"phase"`
}

type GetPhaseStartHeightResponse struct {
	Phase  string `json:"phase"`
	Height uint32 `json:"height"`
}

type GetAdminRequest struct{}

type GetAdminResponse struct {
	Admin string `json:"admin"`
}

type GetPoolBalanceRequest struct{}

type GetPoolBalanceResponse struct {
	Balance string `json:"balance"`
}

type GetCurrentLedgerRequest struct{}

type GetCurrentLedgerResponse struct {
	Height    uint32 `json:"height"`
	Timestamp uint64 `json:"timestamp"`
}

type InitializeRequest struct{}

type InitializeResponse struct {
	State LotteryState `json:"state"`
}
