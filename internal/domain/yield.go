package domain

import (
	"context"
	"errors"
	"math/big"

	"github.com/questx-lab/noloss/internal/client"
	"github.com/questx-lab/noloss/internal/entity"
	"github.com/questx-lab/noloss/internal/repository"
	"github.com/questx-lab/noloss/pkg/errorx"
	"github.com/questx-lab/noloss/pkg/xcontext"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

const transferFunction = "transfer"

// YieldBridge moves the pooled funds in and out of the yield reserve. The
// pool keeps custody and only hands the reserve an authorization for the
// single transfer of each submission.
type YieldBridge interface {
	Deposit(ctx context.Context) (entity.Amount, error)
	Withdraw(ctx context.Context) (entity.Amount, error)
	ClaimEmissions(ctx context.Context) (*big.Int, error)
}

type yieldBridge struct {
	lotteryRepo      repository.LotteryRepository
	statusController StatusController
	token            client.Token
	reserve          client.Reserve
}

func NewYieldBridge(
	lotteryRepo repository.LotteryRepository,
	statusController StatusController,
	token client.Token,
	reserve client.Reserve,
) *yieldBridge {
	return &yieldBridge{
		lotteryRepo:      lotteryRepo,
		statusController: statusController,
		token:            token,
		reserve:          reserve,
	}
}

func (b *yieldBridge) Deposit(ctx context.Context) (entity.Amount, error) {
	state, err := b.statusController.RequirePhase(ctx, entity.YieldFarming)
	if err != nil {
		return entity.Amount{}, err
	}

	if state.InReserve {
		return entity.Amount{}, errorx.New(errorx.FundsInReserve, "Funds are already in the reserve")
	}

	pool, reserveAddress, err := b.addresses(ctx)
	if err != nil {
		return entity.Amount{}, err
	}

	balance, err := b.poolBalance(ctx, pool)
	if err != nil {
		return entity.Amount{}, err
	}

	if balance.Sign() <= 0 {
		return entity.Amount{}, errorx.New(errorx.NoParticipants, "Pool has no funds to deposit")
	}

	if err := b.lotteryRepo.UpdateSentBalance(ctx, balance); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot record sent balance: %v", err)
		return entity.Amount{}, errorx.Unknown
	}

	if err := b.lotteryRepo.UpdateInReserve(ctx, true); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot mark funds in reserve: %v", err)
		return entity.Amount{}, errorx.Unknown
	}

	_, err = b.reserve.Submit(ctx, client.SubmitRequest{
		From:    pool,
		Spender: pool,
		To:      pool,
		Requests: []client.Request{{
			Address:     state.Currency,
			Amount:      balance.Big(),
			RequestType: client.RequestSupply,
		}},
		Authorization: &client.Authorization{
			Contract: state.Currency,
			Function: transferFunction,
			From:     pool,
			To:       reserveAddress,
			Amount:   balance.Big(),
		},
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot deposit to reserve: %v", err)
		return entity.Amount{}, errorx.New(errorx.Unavailable, "Cannot deposit to the reserve")
	}

	return balance, nil
}

func (b *yieldBridge) Withdraw(ctx context.Context) (entity.Amount, error) {
	state, err := b.statusController.RequirePhase(ctx, entity.Ended)
	if err != nil {
		return entity.Amount{}, err
	}

	if !state.InReserve {
		return entity.Amount{}, errorx.New(errorx.WrongPhase, "Funds are not in the reserve")
	}

	pool, reserveAddress, err := b.addresses(ctx)
	if err != nil {
		return entity.Amount{}, err
	}

	position, err := b.lotteryRepo.GetReservePosition(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entity.Amount{}, errorx.New(errorx.StateNotFound, "Lottery is not initialized")
		}

		xcontext.Logger(ctx).Errorf("Cannot get reserve position: %v", err)
		return entity.Amount{}, errorx.Unknown
	}

	before, err := b.poolBalance(ctx, pool)
	if err != nil {
		return entity.Amount{}, err
	}

	index, err := b.reserveIndex(ctx, state.Currency)
	if err != nil {
		return entity.Amount{}, err
	}

	positions, err := b.reserve.Positions(ctx, pool)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get reserve positions: %v", err)
		return entity.Amount{}, errorx.New(errorx.Unavailable, "Cannot get reserve positions")
	}

	if _, ok := positions.Supply[index]; !ok {
		return entity.Amount{}, errorx.New(errorx.PositionNotFound, "Pool has no supply position")
	}

	_, err = b.reserve.Submit(ctx, client.SubmitRequest{
		From:    pool,
		Spender: pool,
		To:      pool,
		Requests: []client.Request{{
			Address:     state.Currency,
			Amount:      entity.MaxAmount.Big(),
			RequestType: client.RequestWithdraw,
		}},
		Authorization: &client.Authorization{
			Contract: state.Currency,
			Function: transferFunction,
			From:     reserveAddress,
			To:       pool,
			Amount:   entity.MaxAmount.Big(),
		},
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot withdraw from reserve: %v", err)
		return entity.Amount{}, errorx.New(errorx.Unavailable, "Cannot withdraw from the reserve")
	}

	after, err := b.poolBalance(ctx, pool)
	if err != nil {
		return entity.Amount{}, err
	}

	yield := after.Sub(before).Sub(position.SentBalance)
	if err := b.lotteryRepo.UpdateYield(ctx, yield, false); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot record yield: %v", err)
		return entity.Amount{}, errorx.Unknown
	}

	if err := b.lotteryRepo.UpdateSentBalance(ctx, entity.Amount{}); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot clear sent balance: %v", err)
		return entity.Amount{}, errorx.Unknown
	}

	return yield, nil
}

func (b *yieldBridge) ClaimEmissions(ctx context.Context) (*big.Int, error) {
	state, err := getState(ctx, b.lotteryRepo)
	if err != nil {
		return nil, err
	}

	admin := xcontext.Configs(ctx).Lottery.Admin
	if admin == "" {
		return nil, errorx.New(errorx.AdministratorNotFound, "Administrator is not configured")
	}

	pool, _, err := b.addresses(ctx)
	if err != nil {
		return nil, err
	}

	index, err := b.reserveIndex(ctx, state.Currency)
	if err != nil {
		return nil, err
	}

	// Each reserve has a debt token at index*2 and a supply token at
	// index*2+1.
	claimed, err := b.reserve.Claim(ctx, pool, []uint32{index*2 + 1}, admin)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot claim emissions: %v", err)
		return nil, errorx.New(errorx.Unavailable, "Cannot claim emissions")
	}

	return claimed, nil
}

func (b *yieldBridge) addresses(ctx context.Context) (string, string, error) {
	pool, err := getPoolAddress(ctx)
	if err != nil {
		return "", "", err
	}

	reserveAddress := xcontext.Configs(ctx).Lottery.ReserveAddress
	if reserveAddress == "" {
		xcontext.Logger(ctx).Errorf("Reserve address is not configured")
		return "", "", errorx.Unknown
	}

	return pool, reserveAddress, nil
}

func (b *yieldBridge) poolBalance(ctx context.Context, pool string) (entity.Amount, error) {
	balance, err := b.token.BalanceOf(ctx, pool)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get pool balance: %v", err)
		return entity.Amount{}, errorx.New(errorx.Unavailable, "Cannot get the pool balance")
	}

	return entity.NewAmount(balance), nil
}

func (b *yieldBridge) reserveIndex(ctx context.Context, currency string) (uint32, error) {
	reserves, err := b.reserve.ReserveList(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get reserve list: %v", err)
		return 0, errorx.New(errorx.Unavailable, "Cannot get the reserve list")
	}

	index := slices.Index(reserves, currency)
	if index < 0 {
		return 0, errorx.New(errorx.PositionNotFound, "Reserve does not list %s", currency)
	}

	return uint32(index), nil
}
