package entity

import (
	"database/sql"
	"time"

	"github.com/questx-lab/noloss/pkg/enum"
)

type LotteryPhase string

var (
	BuyIn        = enum.New(LotteryPhase("BuyIn"))
	YieldFarming = enum.New(LotteryPhase("YieldFarming"))
	Ended        = enum.New(LotteryPhase("Ended"))
)

// Next returns the only phase this phase may transition to.
func (p LotteryPhase) Next() LotteryPhase {
	switch p {
	case BuyIn:
		return YieldFarming
	case YieldFarming:
		return Ended
	default:
		return BuyIn
	}
}

// SingletonID is the primary key of tables holding exactly one row.
const SingletonID = 1

type LotteryState struct {
	ID        int `gorm:"primaryKey;autoIncrement:false"`
	UpdatedAt time.Time

	Phase            LotteryPhase `gorm:"type:varchar(32)"`
	ParticipantCount uint32
	YieldAmount      Amount `gorm:"type:varchar(64)"`
	Currency         string
	InReserve        bool
}

func NewLotteryState(currency string) *LotteryState {
	return &LotteryState{
		ID:          SingletonID,
		Phase:       BuyIn,
		YieldAmount: AmountFromInt64(0),
		Currency:    currency,
	}
}

// PhaseTimelock records the ledger at which a phase last began.
type PhaseTimelock struct {
	Phase         LotteryPhase `gorm:"primaryKey;type:varchar(32)"`
	StartedLedger uint32
	UpdatedAt     time.Time
}

// Raffle holds the fairness seed of the current Ended period and whether a
// winner has been drawn from it.
type Raffle struct {
	ID        int `gorm:"primaryKey;autoIncrement:false"`
	UpdatedAt time.Time

	Seed           []byte
	WinnerSelected bool
	WinnerTicketID sql.NullInt64
}

func NewRaffle() *Raffle {
	return &Raffle{ID: SingletonID}
}

// ReservePosition tracks the principal moved into the yield reserve.
type ReservePosition struct {
	ID        int `gorm:"primaryKey;autoIncrement:false"`
	UpdatedAt time.Time

	Currency    string
	SentBalance Amount `gorm:"type:varchar(64)"`
}

func NewReservePosition(currency string) *ReservePosition {
	return &ReservePosition{ID: SingletonID, Currency: currency, SentBalance: AmountFromInt64(0)}
}

// Sequence is a named counter whose values are never reused.
type Sequence struct {
	Name  string `gorm:"primaryKey;type:varchar(64)"`
	Value uint64
}

const TicketSequence = "ticket"
