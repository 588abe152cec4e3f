package domain

import (
	"context"
	"errors"

	"github.com/questx-lab/noloss/internal/entity"
	"github.com/questx-lab/noloss/internal/repository"
	"github.com/questx-lab/noloss/pkg/errorx"
	"github.com/questx-lab/noloss/pkg/xcontext"
	"gorm.io/gorm"
)

func getState(ctx context.Context, lotteryRepo repository.LotteryRepository) (*entity.LotteryState, error) {
	state, err := lotteryRepo.GetState(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.StateNotFound, "Lottery is not initialized")
		}

		xcontext.Logger(ctx).Errorf("Cannot get lottery state: %v", err)
		return nil, errorx.Unknown
	}

	return state, nil
}

func getRaffle(ctx context.Context, lotteryRepo repository.LotteryRepository) (*entity.Raffle, error) {
	raffle, err := lotteryRepo.GetRaffle(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.StateNotFound, "Lottery is not initialized")
		}

		xcontext.Logger(ctx).Errorf("Cannot get raffle: %v", err)
		return nil, errorx.Unknown
	}

	return raffle, nil
}

func getTicketPrice(ctx context.Context) (entity.Amount, error) {
	price := xcontext.Configs(ctx).Lottery.TicketPrice
	if price == "" {
		return entity.Amount{}, errorx.New(errorx.PriceNotFound, "Ticket price is not configured")
	}

	amount, err := entity.ParseAmount(price)
	if err != nil || amount.Sign() <= 0 {
		xcontext.Logger(ctx).Errorf("Invalid ticket price %q: %v", price, err)
		return entity.Amount{}, errorx.New(errorx.PriceNotFound, "Ticket price is invalid")
	}

	return amount, nil
}

func getCurrency(ctx context.Context) (string, error) {
	currency := xcontext.Configs(ctx).Lottery.Currency
	if currency == "" {
		return "", errorx.New(errorx.CurrencyNotFound, "Currency is not configured")
	}

	return currency, nil
}

func getPoolAddress(ctx context.Context) (string, error) {
	pool := xcontext.Configs(ctx).Lottery.PoolAddress
	if pool == "" {
		xcontext.Logger(ctx).Errorf("Pool address is not configured")
		return "", errorx.Unknown
	}

	return pool, nil
}
