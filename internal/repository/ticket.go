package repository

import (
	"context"

	"github.com/questx-lab/noloss/internal/entity"
	"github.com/questx-lab/noloss/pkg/xcontext"
	"gorm.io/gorm"
)

type TicketRepository interface {
	Create(ctx context.Context, ticket *entity.Ticket) error
	GetByID(ctx context.Context, id uint64) (*entity.Ticket, error)
	MarkWon(ctx context.Context, id uint64, amount entity.Amount) error
	Delete(ctx context.Context, id uint64) error

	AddUserTicket(ctx context.Context, owner string, ticketID uint64) error
	GetUserTicketIDs(ctx context.Context, owner string) ([]uint64, error)
	CountUserTickets(ctx context.Context, owner string) (int64, error)
	RemoveUserTicket(ctx context.Context, owner string, ticketID uint64) error

	AddActive(ctx context.Context, ticketID uint64) error
	GetActiveIDs(ctx context.Context) ([]uint64, error)
	CountActive(ctx context.Context) (int64, error)
	RemoveActive(ctx context.Context, ticketID uint64) error
}

type ticketRepository struct{}

func NewTicketRepository() *ticketRepository {
	return &ticketRepository{}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *entity.Ticket) error {
	return xcontext.DB(ctx).Create(ticket).Error
}

func (r *ticketRepository) GetByID(ctx context.Context, id uint64) (*entity.Ticket, error) {
	var result entity.Ticket
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *ticketRepository) MarkWon(ctx context.Context, id uint64, amount entity.Amount) error {
	tx := xcontext.DB(ctx).Model(&entity.Ticket{}).
		Where("id=?", id).
		Updates(map[string]any{"won": true, "amount": amount})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *ticketRepository) Delete(ctx context.Context, id uint64) error {
	tx := xcontext.DB(ctx).Delete(&entity.Ticket{}, "id=?", id)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *ticketRepository) AddUserTicket(ctx context.Context, owner string, ticketID uint64) error {
	return xcontext.DB(ctx).Create(&entity.UserTicket{Owner: owner, TicketID: ticketID}).Error
}

func (r *ticketRepository) GetUserTicketIDs(ctx context.Context, owner string) ([]uint64, error) {
	var result []uint64
	err := xcontext.DB(ctx).Model(&entity.UserTicket{}).
		Where("owner=?", owner).
		Order("ticket_id ASC").
		Pluck("ticket_id", &result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *ticketRepository) CountUserTickets(ctx context.Context, owner string) (int64, error) {
	var result int64
	err := xcontext.DB(ctx).Model(&entity.UserTicket{}).
		Where("owner=?", owner).
		Count(&result).Error
	if err != nil {
		return 0, err
	}

	return result, nil
}

func (r *ticketRepository) RemoveUserTicket(ctx context.Context, owner string, ticketID uint64) error {
	tx := xcontext.DB(ctx).Delete(&entity.UserTicket{}, "owner=? AND ticket_id=?", owner, ticketID)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *ticketRepository) AddActive(ctx context.Context, ticketID uint64) error {
	return xcontext.DB(ctx).Create(&entity.ActiveTicket{TicketID: ticketID}).Error
}

func (r *ticketRepository) GetActiveIDs(ctx context.Context) ([]uint64, error) {
	var result []uint64
	err := xcontext.DB(ctx).Model(&entity.ActiveTicket{}).
		Order("ticket_id ASC").
		Pluck("ticket_id", &result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *ticketRepository) CountActive(ctx context.Context) (int64, error) {
	var result int64
	if err := xcontext.DB(ctx).Model(&entity.ActiveTicket{}).Count(&result).Error; err != nil {
		return 0, err
	}

	return result, nil
}

func (r *ticketRepository) RemoveActive(ctx context.Context, ticketID uint64) error {
	tx := xcontext.DB(ctx).Delete(&entity.ActiveTicket{}, "ticket_id=?", ticketID)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
