package cron

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/questx-lab/noloss/internal/common"
	"github.com/questx-lab/noloss/internal/domain"
	"github.com/questx-lab/noloss/internal/entity"
	"github.com/questx-lab/noloss/internal/model"
	"github.com/questx-lab/noloss/internal/repository"
	"github.com/questx-lab/noloss/pkg/crypto"
	"github.com/questx-lab/noloss/pkg/testutil"
	"github.com/questx-lab/noloss/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func newTestKeeper(t *testing.T) (context.Context, domain.LotteryDomain, *testutil.MockClock, *testutil.MockReserve, *testutil.MockRedisClient) {
	ctx := testutil.NewMockContext()
	hasher, err := crypto.NewSeedHasher(crypto.HashSHA256)
	require.NoError(t, err)

	token := testutil.NewMockToken()
	token.Mint("alice", 10*testutil.TicketPrice)
	reserve := testutil.NewMockReserve(token, testutil.Currency)
	clock := testutil.NewMockClock(1, 1_700_000_000)
	redisClient := &testutil.MockRedisClient{}

	lotteryDomain := domain.NewLotteryDomain(
		repository.NewLotteryRepository(), repository.NewTicketRepository(),
		token, reserve, clock, hasher, &testutil.MockPublisher{}, redisClient)

	_, err = lotteryDomain.Initialize(ctx, &model.InitializeRequest{})
	require.NoError(t, err)

	return ctx, lotteryDomain, clock, reserve, redisClient
}

func getPhase(t *testing.T, ctx context.Context, lotteryDomain domain.LotteryDomain) model.LotteryState {
	resp, err := lotteryDomain.GetState(ctx, &model.GetStateRequest{Fresh: true})
	require.NoError(t, err)
	return resp.State
}

func TestPhaseKeeperCronJob_Cycle(t *testing.T) {
	ctx, lotteryDomain, clock, reserve, _ := newTestKeeper(t)
	job := NewPhaseKeeperCronJob(lotteryDomain, &testutil.MockRedisClient{}, time.Minute)

	_, err := lotteryDomain.BuyTicket(testutil.NewMockContextWithUserID(ctx, "alice"), &model.BuyTicketRequest{})
	require.NoError(t, err)

	// Nothing to do before the timelock elapses.
	job.Do(ctx)
	require.Equal(t, string(entity.BuyIn), getPhase(t, ctx, lotteryDomain).Phase)

	clock.Set(100_000)
	job.Do(ctx)
	state := getPhase(t, ctx, lotteryDomain)
	require.Equal(t, string(entity.YieldFarming), state.Phase)
	require.True(t, state.InReserve)

	reserve.Yield = big.NewInt(3)
	clock.Set(300_000)
	job.Do(ctx)
	state = getPhase(t, ctx, lotteryDomain)
	require.Equal(t, string(entity.Ended), state.Phase)
	require.False(t, state.InReserve)
	require.True(t, state.WinnerSelected)

	tickets, err := lotteryDomain.GetUserTickets(ctx, &model.GetUserTicketsRequest{Owner: "alice"})
	require.NoError(t, err)
	require.Len(t, tickets.Tickets, 1)
	require.True(t, tickets.Tickets[0].Won)
	require.Equal(t, "10000003", tickets.Tickets[0].Amount)

	clock.Set(400_000)
	job.Do(ctx)
	state = getPhase(t, ctx, lotteryDomain)
	require.Equal(t, string(entity.BuyIn), state.Phase)
	require.False(t, state.WinnerSelected)
}

func TestPhaseKeeperCronJob_EmptyPeriod(t *testing.T) {
	ctx, lotteryDomain, clock, reserve, _ := newTestKeeper(t)
	job := NewPhaseKeeperCronJob(lotteryDomain, nil, time.Minute)

	clock.Set(100_000)
	job.Do(ctx)
	require.Equal(t, string(entity.YieldFarming), getPhase(t, ctx, lotteryDomain).Phase)
	require.Empty(t, reserve.Submissions())

	clock.Set(300_000)
	job.Do(ctx)
	state := getPhase(t, ctx, lotteryDomain)
	require.Equal(t, string(entity.Ended), state.Phase)
	require.False(t, state.WinnerSelected)
}

func TestPhaseKeeperCronJob_Lock(t *testing.T) {
	ctx, lotteryDomain, clock, _, redisClient := newTestKeeper(t)
	job := NewPhaseKeeperCronJob(lotteryDomain, redisClient, time.Minute)

	// Another keeper holds the lock.
	lockKey := common.RedisKeyKeeperLock(xcontext.Configs(ctx).Lottery.PoolAddress)
	ok, err := redisClient.SetNX(ctx, lockKey, "other", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	clock.Set(100_000)
	job.Do(ctx)
	require.Equal(t, string(entity.BuyIn), getPhase(t, ctx, lotteryDomain).Phase)

	require.NoError(t, redisClient.Del(ctx, lockKey))
	job.Do(ctx)
	require.Equal(t, string(entity.YieldFarming), getPhase(t, ctx, lotteryDomain).Phase)

	exist, err := redisClient.Exist(ctx, lockKey)
	require.NoError(t, err)
	require.False(t, exist)
}

func TestPhaseKeeperCronJob_NoAdministrator(t *testing.T) {
	ctx, lotteryDomain, clock, _, _ := newTestKeeper(t)
	job := NewPhaseKeeperCronJob(lotteryDomain, nil, time.Minute)

	cfg := xcontext.Configs(ctx)
	cfg.Lottery.Admin = ""
	clock.Set(100_000)
	job.Do(xcontext.WithConfigs(ctx, cfg))
	require.Equal(t, string(entity.BuyIn), getPhase(t, ctx, lotteryDomain).Phase)
}

type countJob struct {
	runs chan struct{}
}

func (job *countJob) Do(context.Context) {
	select {
	case job.runs <- struct{}{}:
	default:
	}
}

func (job *countJob) RunNow() bool    { return true }
func (job *countJob) Next() time.Time { return time.Now().Add(time.Millisecond) }

func TestCronJobManager(t *testing.T) {
	ctx := testutil.NewMockContext()
	job := &countJob{runs: make(chan struct{}, 16)}

	manager := NewCronJobManager()
	manager.Register(job)

	stopped := make(chan struct{})
	go func() {
		manager.Start(ctx)
		close(stopped)
	}()

	for i := 0; i < 3; i++ {
		select {
		case <-job.runs:
		case <-time.After(5 * time.Second):
			require.FailNow(t, "job was not run")
		}
	}

	manager.Cancel(ctx)
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		require.FailNow(t, "manager did not stop")
	}
}
