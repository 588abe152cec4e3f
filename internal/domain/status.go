package domain

import (
	"context"
	"errors"

	"github.com/questx-lab/noloss/internal/client"
	"github.com/questx-lab/noloss/internal/entity"
	"github.com/questx-lab/noloss/internal/repository"
	"github.com/questx-lab/noloss/pkg/crypto"
	"github.com/questx-lab/noloss/pkg/errorx"
	"github.com/questx-lab/noloss/pkg/xcontext"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

// StatusController owns the lottery phase, the phase timelocks and the
// fairness seed.
type StatusController interface {
	Transition(ctx context.Context, target entity.LotteryPhase) error
	CurrentPhase(ctx context.Context) (entity.LotteryPhase, error)
	PhaseStartHeight(ctx context.Context, phase entity.LotteryPhase) (uint32, error)

	// RequirePhase returns the lottery state if its phase is one of phases,
	// otherwise a WrongPhase error.
	RequirePhase(ctx context.Context, phases ...entity.LotteryPhase) (*entity.LotteryState, error)

	// RemainingLedgers returns how many ledgers the current phase must still
	// last before it may advance. It is zero once the timelock has elapsed.
	RemainingLedgers(ctx context.Context) (uint32, error)
}

type statusController struct {
	lotteryRepo repository.LotteryRepository
	clock       client.Clock
	hasher      crypto.SeedHasher
}

func NewStatusController(
	lotteryRepo repository.LotteryRepository,
	clock client.Clock,
	hasher crypto.SeedHasher,
) *statusController {
	return &statusController{
		lotteryRepo: lotteryRepo,
		clock:       clock,
		hasher:      hasher,
	}
}

func (c *statusController) Transition(ctx context.Context, target entity.LotteryPhase) error {
	state, err := getState(ctx, c.lotteryRepo)
	if err != nil {
		return err
	}

	if state.Phase.Next() != target {
		return errorx.New(errorx.InvalidTransition,
			"Cannot change phase from %s to %s", state.Phase, target)
	}

	height, timestamp, err := c.clock.CurrentLedger(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get current ledger: %v", err)
		return errorx.Unknown
	}

	remaining, err := c.remainingAt(ctx, state.Phase, height)
	if err != nil {
		return err
	}

	if remaining > 0 {
		return errorx.New(errorx.TimelockNotElapsed,
			"Phase %s must last %d more ledgers", state.Phase, remaining)
	}

	switch target {
	case entity.Ended:
		seed := crypto.DeriveSeed(c.hasher, timestamp, height)
		if err := c.lotteryRepo.UpdateSeed(ctx, seed); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot write fairness seed: %v", err)
			return errorx.Unknown
		}

	case entity.BuyIn:
		if err := c.lotteryRepo.ResetWinner(ctx); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot reset winner: %v", err)
			return errorx.Unknown
		}
	}

	if err := c.lotteryRepo.UpsertTimelock(ctx, target, height); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot record start of phase %s: %v", target, err)
		return errorx.Unknown
	}

	if err := c.lotteryRepo.UpdatePhase(ctx, target); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update phase: %v", err)
		return errorx.Unknown
	}

	return nil
}

func (c *statusController) CurrentPhase(ctx context.Context) (entity.LotteryPhase, error) {
	state, err := getState(ctx, c.lotteryRepo)
	if err != nil {
		return "", err
	}

	return state.Phase, nil
}

func (c *statusController) PhaseStartHeight(ctx context.Context, phase entity.LotteryPhase) (uint32, error) {
	timelock, err := c.lotteryRepo.GetTimelock(ctx, phase)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, errorx.New(errorx.StateNotFound, "Phase %s has never started", phase)
		}

		xcontext.Logger(ctx).Errorf("Cannot get timelock of %s: %v", phase, err)
		return 0, errorx.Unknown
	}

	return timelock.StartedLedger, nil
}

func (c *statusController) RequirePhase(
	ctx context.Context, phases ...entity.LotteryPhase,
) (*entity.LotteryState, error) {
	state, err := getState(ctx, c.lotteryRepo)
	if err != nil {
		return nil, err
	}

	if !slices.Contains(phases, state.Phase) {
		return nil, errorx.New(errorx.WrongPhase, "Not allowed in phase %s", state.Phase)
	}

	return state, nil
}

func (c *statusController) RemainingLedgers(ctx context.Context) (uint32, error) {
	phase, err := c.CurrentPhase(ctx)
	if err != nil {
		return 0, err
	}

	height, err := c.clock.CurrentHeight(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get current height: %v", err)
		return 0, errorx.Unknown
	}

	return c.remainingAt(ctx, phase, height)
}

func (c *statusController) remainingAt(
	ctx context.Context, phase entity.LotteryPhase, height uint32,
) (uint32, error) {
	started, err := c.PhaseStartHeight(ctx, phase)
	if err != nil {
		return 0, err
	}

	// A clock reading below the recorded start counts as no time elapsed.
	var elapsed uint64
	if height > started {
		elapsed = uint64(height - started)
	}

	dwell := uint64(minimumDwell(ctx, phase))
	if elapsed >= dwell {
		return 0, nil
	}

	return uint32(dwell - elapsed), nil
}

func minimumDwell(ctx context.Context, phase entity.LotteryPhase) uint32 {
	timelocks := xcontext.Configs(ctx).Lottery.Timelocks
	switch phase {
	case entity.BuyIn:
		return timelocks.BuyIn
	case entity.YieldFarming:
		return timelocks.YieldFarming
	default:
		return timelocks.Ended
	}
}
