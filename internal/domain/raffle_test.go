package domain

import (
	"testing"

	"github.com/questx-lab/noloss/internal/entity"
	"github.com/questx-lab/noloss/internal/repository"
	"github.com/questx-lab/noloss/pkg/crypto"
	"github.com/questx-lab/noloss/pkg/errorx"
	"github.com/questx-lab/noloss/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func Test_raffleEngine_Draw(t *testing.T) {
	ctx := testutil.NewMockContext()
	tickets := testutil.CreateFixture(ctx, 1, "alice", "bob", "alice", "carol")

	lotteryRepo := repository.NewLotteryRepository()
	ticketRepo := repository.NewTicketRepository()
	clock := testutil.NewMockClock(1, 1_700_000_000)
	sc := newTestStatusController(t, clock)
	engine := NewRaffleEngine(lotteryRepo, ticketRepo, sc)

	_, err := engine.Draw(ctx)
	require.True(t, errorx.Is(err, errorx.WrongPhase))

	clock.Set(100_000)
	require.NoError(t, sc.Transition(ctx, entity.YieldFarming))
	clock.Set(300_000)
	require.NoError(t, sc.Transition(ctx, entity.Ended))
	require.NoError(t, lotteryRepo.UpdateYield(ctx, entity.AmountFromInt64(42), false))

	raffle, err := lotteryRepo.GetRaffle(ctx)
	require.NoError(t, err)
	expected := tickets[crypto.SeededIntn(raffle.Seed, len(tickets))]

	winner, err := engine.Draw(ctx)
	require.NoError(t, err)
	require.Equal(t, expected.ID, winner.ID)
	require.True(t, winner.Won)
	require.Equal(t, "10000042", winner.Amount.String())

	stored, err := ticketRepo.GetByID(ctx, winner.ID)
	require.NoError(t, err)
	require.True(t, stored.Won)
	require.Equal(t, "10000042", stored.Amount.String())

	state, err := lotteryRepo.GetState(ctx)
	require.NoError(t, err)
	require.True(t, state.YieldAmount.IsZero())

	_, err = engine.Draw(ctx)
	require.True(t, errorx.Is(err, errorx.AlreadyDrawn))
}
