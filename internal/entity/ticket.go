package entity

import "time"

type Ticket struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Owner    string `gorm:"index;type:varchar(128)"`
	Currency string
	Amount   Amount `gorm:"type:varchar(64)"`
	Won      bool
}

// UserTicket is one entry of an owner's ticket index.
type UserTicket struct {
	Owner     string `gorm:"primaryKey;type:varchar(128)"`
	TicketID  uint64 `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time
}

// ActiveTicket is one member of the set of tickets eligible for the raffle.
type ActiveTicket struct {
	TicketID  uint64 `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time
}
