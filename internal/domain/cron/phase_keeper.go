package cron

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/questx-lab/noloss/internal/common"
	"github.com/questx-lab/noloss/internal/domain"
	"github.com/questx-lab/noloss/internal/entity"
	"github.com/questx-lab/noloss/internal/model"
	"github.com/questx-lab/noloss/pkg/errorx"
	"github.com/questx-lab/noloss/pkg/xcontext"
	"github.com/questx-lab/noloss/pkg/xredis"
)

// A tick performs at most one deposit, withdrawal, draw and transition.
const maxKeeperSteps = 4

// PhaseKeeperCronJob drives the lottery through its phases on behalf of the
// administrator. It advances the phase once the timelock elapsed, moves the
// pool into the reserve at the start of yield farming, and withdraws and
// draws the winner once the period ended.
type PhaseKeeperCronJob struct {
	lotteryDomain domain.LotteryDomain
	redisClient   xredis.Client
	interval      time.Duration
	id            string
}

func NewPhaseKeeperCronJob(
	lotteryDomain domain.LotteryDomain,
	redisClient xredis.Client,
	interval time.Duration,
) *PhaseKeeperCronJob {
	return &PhaseKeeperCronJob{
		lotteryDomain: lotteryDomain,
		redisClient:   redisClient,
		interval:      interval,
		id:            uuid.NewString(),
	}
}

func (job *PhaseKeeperCronJob) Do(ctx context.Context) {
	cfg := xcontext.Configs(ctx)
	if cfg.Lottery.Admin == "" {
		xcontext.Logger(ctx).Warnf("Keeper is idle because no administrator is configured")
		return
	}

	if job.redisClient != nil {
		lockKey := common.RedisKeyKeeperLock(cfg.Lottery.PoolAddress)
		ok, err := job.redisClient.SetNX(ctx, lockKey, job.id, job.interval)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot acquire keeper lock: %v", err)
			return
		}

		if !ok {
			xcontext.Logger(ctx).Debugf("Another keeper holds the lock")
			return
		}

		defer func() {
			if err := job.redisClient.Del(ctx, lockKey); err != nil {
				xcontext.Logger(ctx).Warnf("Cannot release keeper lock: %v", err)
			}
		}()
	}

	ctx = xcontext.WithRequestUserID(ctx, cfg.Lottery.Admin)
	for i := 0; i < maxKeeperSteps; i++ {
		resp, err := job.lotteryDomain.GetState(ctx, &model.GetStateRequest{Fresh: true})
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get lottery state: %v", err)
			return
		}

		if !job.step(ctx, resp.State) {
			return
		}
	}
}

// step performs the next pending action for state and reports whether it
// succeeded.
func (job *PhaseKeeperCronJob) step(ctx context.Context, state model.LotteryState) bool {
	phase := entity.LotteryPhase(state.Phase)

	var err error
	switch {
	case phase == entity.YieldFarming && !state.InReserve && state.ParticipantCount > 0:
		_, err = job.lotteryDomain.DepositToReserve(ctx, &model.DepositToReserveRequest{})

	case phase == entity.Ended && state.InReserve:
		_, err = job.lotteryDomain.WithdrawFromReserve(ctx, &model.WithdrawFromReserveRequest{})

	case phase == entity.Ended && !state.WinnerSelected && state.ParticipantCount > 0:
		_, err = job.lotteryDomain.DrawWinner(ctx, &model.DrawWinnerRequest{})

	case state.RemainingLedgers == 0:
		_, err = job.lotteryDomain.SetPhase(ctx, &model.SetPhaseRequest{Phase: string(phase.Next())})

	default:
		return false
	}

	if err != nil {
		if errorx.Is(err, errorx.NoParticipants) {
			xcontext.Logger(ctx).Infof("Keeper skipped a step in phase %s: %v", phase, err)
		} else {
			xcontext.Logger(ctx).Errorf("Keeper failed in phase %s: %v", phase, err)
		}

		return false
	}

	return true
}

func (job *PhaseKeeperCronJob) RunNow() bool {
	return true
}

func (job *PhaseKeeperCronJob) Next() time.Time {
	return time.Now().Add(job.interval)
}
