package repository_test

import (
	"testing"

	"github.com/questx-lab/noloss/internal/entity"
	"github.com/questx-lab/noloss/internal/repository"
	"github.com/questx-lab/noloss/pkg/testutil"
	"github.com/questx-lab/noloss/pkg/xcontext"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func Test_lotteryRepository_State(t *testing.T) {
	ctx := testutil.NewMockContext()
	repo := repository.NewLotteryRepository()

	_, err := repo.GetState(ctx)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	_, err = repo.LockState(ctx)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, repo.CreateState(ctx, entity.NewLotteryState(testutil.Currency)))

	locked, err := repo.LockState(ctx)
	require.NoError(t, err)
	require.Equal(t, entity.BuyIn, locked.Phase)

	state, err := repo.GetState(ctx)
	require.NoError(t, err)
	require.Equal(t, entity.BuyIn, state.Phase)
	require.Equal(t, testutil.Currency, state.Currency)
	require.True(t, state.YieldAmount.IsZero())

	require.NoError(t, repo.UpdatePhase(ctx, entity.YieldFarming))
	require.NoError(t, repo.IncreaseParticipantCount(ctx))
	require.NoError(t, repo.IncreaseParticipantCount(ctx))
	require.NoError(t, repo.DecreaseParticipantCount(ctx))
	require.NoError(t, repo.UpdateInReserve(ctx, true))

	state, err = repo.GetState(ctx)
	require.NoError(t, err)
	require.Equal(t, entity.YieldFarming, state.Phase)
	require.Equal(t, uint32(1), state.ParticipantCount)
	require.True(t, state.InReserve)

	yield, err := entity.ParseAmount("170141183460469231731687303715884105727")
	require.NoError(t, err)
	require.NoError(t, repo.UpdateYield(ctx, yield, false))

	state, err = repo.GetState(ctx)
	require.NoError(t, err)
	require.Equal(t, yield.String(), state.YieldAmount.String())
	require.False(t, state.InReserve)

	// The count never goes below zero.
	require.NoError(t, repo.DecreaseParticipantCount(ctx))
	require.ErrorIs(t, repo.DecreaseParticipantCount(ctx), gorm.ErrRecordNotFound)
}

func Test_lotteryRepository_Timelock(t *testing.T) {
	ctx := testutil.NewMockContext()
	repo := repository.NewLotteryRepository()

	_, err := repo.GetTimelock(ctx, entity.Ended)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, repo.UpsertTimelock(ctx, entity.Ended, 10))
	require.NoError(t, repo.UpsertTimelock(ctx, entity.Ended, 20))

	timelock, err := repo.GetTimelock(ctx, entity.Ended)
	require.NoError(t, err)
	require.Equal(t, uint32(20), timelock.StartedLedger)
}

func Test_lotteryRepository_Raffle(t *testing.T) {
	ctx := testutil.NewMockContext()
	repo := repository.NewLotteryRepository()

	require.ErrorIs(t, repo.SelectWinner(ctx, 1), gorm.ErrRecordNotFound)
	require.NoError(t, repo.CreateRaffle(ctx, entity.NewRaffle()))

	require.NoError(t, repo.UpdateSeed(ctx, []byte{1, 2, 3}))
	require.NoError(t, repo.SelectWinner(ctx, 7))
	require.ErrorIs(t, repo.SelectWinner(ctx, 8), gorm.ErrRecordNotFound)

	raffle, err := repo.GetRaffle(ctx)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, raffle.Seed)
	require.True(t, raffle.WinnerSelected)
	require.Equal(t, int64(7), raffle.WinnerTicketID.Int64)

	require.NoError(t, repo.ResetWinner(ctx))

	raffle, err = repo.GetRaffle(ctx)
	require.NoError(t, err)
	require.False(t, raffle.WinnerSelected)
	require.False(t, raffle.WinnerTicketID.Valid)
}

func Test_lotteryRepository_ReservePosition(t *testing.T) {
	ctx := testutil.NewMockContext()
	repo := repository.NewLotteryRepository()

	require.ErrorIs(t, repo.UpdateSentBalance(ctx, entity.AmountFromInt64(1)), gorm.ErrRecordNotFound)
	require.NoError(t, repo.CreateReservePosition(ctx, entity.NewReservePosition(testutil.Currency)))
	require.NoError(t, repo.UpdateSentBalance(ctx, entity.AmountFromInt64(30_000_000)))

	position, err := repo.GetReservePosition(ctx)
	require.NoError(t, err)
	require.Equal(t, "30000000", position.SentBalance.String())
}

func Test_lotteryRepository_NextSequence(t *testing.T) {
	ctx := testutil.NewMockContext()
	repo := repository.NewLotteryRepository()

	for i := uint64(1); i <= 3; i++ {
		id, err := repo.NextSequence(ctx, entity.TicketSequence)
		require.NoError(t, err)
		require.Equal(t, i, id)
	}

	id, err := repo.NextSequence(ctx, "other")
	require.NoError(t, err)
	require.Equal(t, uint64(1), id)

	// A rolled back allocation is handed out again.
	txCtx := xcontext.WithDBTransaction(ctx)
	id, err = repo.NextSequence(txCtx, entity.TicketSequence)
	require.NoError(t, err)
	require.Equal(t, uint64(4), id)
	xcontext.WithRollbackDBTransaction(txCtx)

	id, err = repo.NextSequence(ctx, entity.TicketSequence)
	require.NoError(t, err)
	require.Equal(t, uint64(4), id)
}
