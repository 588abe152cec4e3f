package repository

import (
	"context"

	"github.com/questx-lab/noloss/internal/entity"
	"github.com/questx-lab/noloss/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LotteryRepository interface {
	// State
	CreateState(ctx context.Context, state *entity.LotteryState) error
	GetState(ctx context.Context) (*entity.LotteryState, error)
	LockState(ctx context.Context) (*entity.LotteryState, error)
	UpdatePhase(ctx context.Context, phase entity.LotteryPhase) error
	IncreaseParticipantCount(ctx context.Context) error
	DecreaseParticipantCount(ctx context.Context) error
	UpdateYield(ctx context.Context, yieldAmount entity.Amount, inReserve bool) error
	UpdateInReserve(ctx context.Context, inReserve bool) error

	// Timelock
	UpsertTimelock(ctx context.Context, phase entity.LotteryPhase, startedLedger uint32) error
	GetTimelock(ctx context.Context, phase entity.LotteryPhase) (*entity.PhaseTimelock, error)

	// Raffle
	CreateRaffle(ctx context.Context, raffle *entity.Raffle) error
	GetRaffle(ctx context.Context) (*entity.Raffle, error)
	UpdateSeed(ctx context.Context, seed []byte) error
	ResetWinner(ctx context.Context) error
	SelectWinner(ctx context.Context, ticketID uint64) error

	// Reserve position
	CreateReservePosition(ctx context.Context, position *entity.ReservePosition) error
	GetReservePosition(ctx context.Context) (*entity.ReservePosition, error)
	UpdateSentBalance(ctx context.Context, sentBalance entity.Amount) error

	// Sequence
	NextSequence(ctx context.Context, name string) (uint64, error)
}

type lotteryRepository struct{}

func NewLotteryRepository() *lotteryRepository {
	return &lotteryRepository{}
}

func (r *lotteryRepository) CreateState(ctx context.Context, state *entity.LotteryState) error {
	return xcontext.DB(ctx).Create(state).Error
}

func (r *lotteryRepository) GetState(ctx context.Context) (*entity.LotteryState, error) {
	var result entity.LotteryState
	if err := xcontext.DB(ctx).Take(&result, "id=?", entity.SingletonID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

// LockState reads the lottery state and holds a write lock on its row until
// the enclosing transaction ends.
func (r *lotteryRepository) LockState(ctx context.Context) (*entity.LotteryState, error) {
	var result entity.LotteryState
	err := xcontext.DB(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Take(&result, "id=?", entity.SingletonID).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *lotteryRepository) UpdatePhase(ctx context.Context, phase entity.LotteryPhase) error {
	return r.updateState(ctx, map[string]any{"phase": phase})
}

func (r *lotteryRepository) IncreaseParticipantCount(ctx context.Context) error {
	return r.updateState(ctx, map[string]any{
		"participant_count": gorm.Expr("participant_count+?", 1),
	})
}

func (r *lotteryRepository) DecreaseParticipantCount(ctx context.Context) error {
	tx := xcontext.DB(ctx).Model(&entity.LotteryState{}).
		Where("id=? AND participant_count > 0", entity.SingletonID).
		Update("participant_count", gorm.Expr("participant_count-?", 1))
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *lotteryRepository) UpdateYield(ctx context.Context, yieldAmount entity.Amount, inReserve bool) error {
	return r.updateState(ctx, map[string]any{
		"yield_amount": yieldAmount,
		"in_reserve":   inReserve,
	})
}

func (r *lotteryRepository) UpdateInReserve(ctx context.Context, inReserve bool) error {
	return r.updateState(ctx, map[string]any{"in_reserve": inReserve})
}

func (r *lotteryRepository) updateState(ctx context.Context, updates map[string]any) error {
	tx := xcontext.DB(ctx).Model(&entity.LotteryState{}).
		Where("id=?", entity.SingletonID).
		Updates(updates)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *lotteryRepository) UpsertTimelock(
	ctx context.Context, phase entity.LotteryPhase, startedLedger uint32,
) error {
	return xcontext.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "phase"}},
		DoUpdates: clause.AssignmentColumns([]string{"started_ledger", "updated_at"}),
	}).Create(&entity.PhaseTimelock{Phase: phase, StartedLedger: startedLedger}).Error
}

func (r *lotteryRepository) GetTimelock(
	ctx context.Context, phase entity.LotteryPhase,
) (*entity.PhaseTimelock, error) {
	var result entity.PhaseTimelock
	if err := xcontext.DB(ctx).Take(&result, "phase=?", phase).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *lotteryRepository) CreateRaffle(ctx context.Context, raffle *entity.Raffle) error {
	return xcontext.DB(ctx).Create(raffle).Error
}

func (r *lotteryRepository) GetRaffle(ctx context.Context) (*entity.Raffle, error) {
	var result entity.Raffle
	if err := xcontext.DB(ctx).Take(&result, "id=?", entity.SingletonID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *lotteryRepository) UpdateSeed(ctx context.Context, seed []byte) error {
	return mustAffect(xcontext.DB(ctx).Model(&entity.Raffle{}).
		Where("id=?", entity.SingletonID).
		Update("seed", seed))
}

func (r *lotteryRepository) ResetWinner(ctx context.Context) error {
	return mustAffect(xcontext.DB(ctx).Model(&entity.Raffle{}).
		Where("id=?", entity.SingletonID).
		Updates(map[string]any{"winner_selected": false, "winner_ticket_id": nil}))
}

// SelectWinner marks the raffle as drawn. It fails with
// gorm.ErrRecordNotFound if a winner was already selected.
func (r *lotteryRepository) SelectWinner(ctx context.Context, ticketID uint64) error {
	return mustAffect(xcontext.DB(ctx).Model(&entity.Raffle{}).
		Where("id=? AND winner_selected=?", entity.SingletonID, false).
		Updates(map[string]any{"winner_selected": true, "winner_ticket_id": ticketID}))
}

// mustAffect reports gorm.ErrRecordNotFound when the statement matched no
// rows.
func mustAffect(tx *gorm.DB) error {
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *lotteryRepository) CreateReservePosition(ctx context.Context, position *entity.ReservePosition) error {
	return xcontext.DB(ctx).Create(position).Error
}

func (r *lotteryRepository) GetReservePosition(ctx context.Context) (*entity.ReservePosition, error) {
	var result entity.ReservePosition
	if err := xcontext.DB(ctx).Take(&result, "id=?", entity.SingletonID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *lotteryRepository) UpdateSentBalance(ctx context.Context, sentBalance entity.Amount) error {
	tx := xcontext.DB(ctx).Model(&entity.ReservePosition{}).
		Where("id=?", entity.SingletonID).
		Update("sent_balance", sentBalance)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// NextSequence returns the next value of the named counter, starting at 1.
func (r *lotteryRepository) NextSequence(ctx context.Context, name string) (uint64, error) {
	db := xcontext.DB(ctx)
	err := db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entity.Sequence{Name: name, Value: 0}).Error
	if err != nil {
		return 0, err
	}

	tx := db.Model(&entity.Sequence{}).
		Where("name=?", name).
		Update("value", gorm.Expr("value+?", 1))
	if tx.Error != nil {
		return 0, tx.Error
	}

	var seq entity.Sequence
	if err := db.Take(&seq, "name=?", name).Error; err != nil {
		return 0, err
	}

	return seq.Value, nil
}
