package domain

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/questx-lab/noloss/internal/client"
	"github.com/questx-lab/noloss/internal/entity"
	"github.com/questx-lab/noloss/internal/repository"
	"github.com/questx-lab/noloss/mocks"
	"github.com/questx-lab/noloss/pkg/errorx"
	"github.com/questx-lab/noloss/pkg/testutil"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// enterPhase walks the fixture from BuyIn to phase.
func enterPhase(t *testing.T, ctx context.Context, sc *statusController, clock *testutil.MockClock, phase entity.LotteryPhase) {
	heights := map[entity.LotteryPhase]uint32{entity.YieldFarming: 100_000, entity.Ended: 300_000}
	for _, next := range []entity.LotteryPhase{entity.YieldFarming, entity.Ended} {
		clock.Set(heights[next])
		require.NoError(t, sc.Transition(ctx, next))
		if next == phase {
			return
		}
	}
}

func Test_yieldBridge_Deposit(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixture(ctx, 1, "alice")

	clock := testutil.NewMockClock(1, 1_700_000_000)
	sc := newTestStatusController(t, clock)
	token := testutil.NewMockToken()
	reserve := testutil.NewMockReserve(token, testutil.Currency)
	bridge := NewYieldBridge(repository.NewLotteryRepository(), sc, token, reserve)

	_, err := bridge.Deposit(ctx)
	require.True(t, errorx.Is(err, errorx.WrongPhase))

	enterPhase(t, ctx, sc, clock, entity.YieldFarming)

	token.BalanceOfFunc = func(ctx context.Context, account string) (*big.Int, error) {
		return nil, errors.New("rpc timeout")
	}
	_, err = bridge.Deposit(ctx)
	require.True(t, errorx.Is(err, errorx.Unavailable))
	token.BalanceOfFunc = nil

	token.Mint(testutil.Pool, testutil.TicketPrice)
	amount, err := bridge.Deposit(ctx)
	require.NoError(t, err)
	require.Equal(t, "10000000", amount.String())

	position, err := repository.NewLotteryRepository().GetReservePosition(ctx)
	require.NoError(t, err)
	require.Equal(t, "10000000", position.SentBalance.String())
}

func Test_yieldBridge_WithdrawWithoutPosition(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixture(ctx, 1, "alice")

	clock := testutil.NewMockClock(1, 1_700_000_000)
	sc := newTestStatusController(t, clock)
	enterPhase(t, ctx, sc, clock, entity.Ended)
	require.NoError(t, repository.NewLotteryRepository().UpdateInReserve(ctx, true))

	token := testutil.NewMockToken()

	// The reserve does not list the lottery currency.
	reserve := &mocks.Reserve{}
	reserve.On("ReserveList", mock.Anything).Return([]string{"xlm"}, nil)
	bridge := NewYieldBridge(repository.NewLotteryRepository(), sc, token, reserve)

	_, err := bridge.Withdraw(ctx)
	require.True(t, errorx.Is(err, errorx.PositionNotFound))

	// The currency is listed but the pool never supplied it.
	reserve = &mocks.Reserve{}
	reserve.On("ReserveList", mock.Anything).Return([]string{testutil.Currency}, nil)
	reserve.On("Positions", mock.Anything, testutil.Pool).
		Return(client.Positions{Supply: map[uint32]*big.Int{}}, nil)
	bridge = NewYieldBridge(repository.NewLotteryRepository(), sc, token, reserve)

	_, err = bridge.Withdraw(ctx)
	require.True(t, errorx.Is(err, errorx.PositionNotFound))
	reserve.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)

	// The reserve is unreachable.
	reserve = &mocks.Reserve{}
	reserve.On("ReserveList", mock.Anything).Return(nil, errors.New("connection refused"))
	bridge = NewYieldBridge(repository.NewLotteryRepository(), sc, token, reserve)

	_, err = bridge.Withdraw(ctx)
	require.True(t, errorx.Is(err, errorx.Unavailable))
}

func Test_yieldBridge_WithdrawTwice(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixture(ctx, 1, "alice")
	lotteryRepo := repository.NewLotteryRepository()

	clock := testutil.NewMockClock(1, 1_700_000_000)
	sc := newTestStatusController(t, clock)
	token := testutil.NewMockToken()
	token.Mint(testutil.Pool, testutil.TicketPrice)
	reserve := testutil.NewMockReserve(token, testutil.Currency)
	bridge := NewYieldBridge(lotteryRepo, sc, token, reserve)

	enterPhase(t, ctx, sc, clock, entity.YieldFarming)
	_, err := bridge.Deposit(ctx)
	require.NoError(t, err)

	enterPhase(t, ctx, sc, clock, entity.Ended)
	reserve.Yield = big.NewInt(3_000_000)

	yield, err := bridge.Withdraw(ctx)
	require.NoError(t, err)
	require.Equal(t, "3000000", yield.String())

	position, err := lotteryRepo.GetReservePosition(ctx)
	require.NoError(t, err)
	require.True(t, position.SentBalance.IsZero())

	// A second withdrawal must not turn the prize negative.
	_, err = bridge.Withdraw(ctx)
	require.True(t, errorx.Is(err, errorx.WrongPhase))
	require.Len(t, reserve.Submissions(), 2)

	state, err := lotteryRepo.GetState(ctx)
	require.NoError(t, err)
	require.Equal(t, "3000000", state.YieldAmount.String())
	require.False(t, state.InReserve)
	require.Equal(t, int64(testutil.TicketPrice+3_000_000), token.Balance(testutil.Pool))
}

func Test_yieldBridge_ClaimEmissions(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixture(ctx, 1)

	reserve := &mocks.Reserve{}
	reserve.On("ReserveList", mock.Anything).Return([]string{testutil.Currency}, nil)
	reserve.On("Claim", mock.Anything, testutil.Pool, []uint32{1}, testutil.Admin).
		Return(big.NewInt(5), nil)

	sc := newTestStatusController(t, testutil.NewMockClock(1, 1))
	bridge := NewYieldBridge(repository.NewLotteryRepository(), sc, testutil.NewMockToken(), reserve)

	claimed, err := bridge.ClaimEmissions(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(5), claimed.Int64())
	reserve.AssertExpectations(t)
}
