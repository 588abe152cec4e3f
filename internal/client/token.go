package client

import (
	"context"
	"math/big"
)

// Token moves the lottery currency between accounts.
type Token interface {
	Transfer(ctx context.Context, from, to string, amount *big.Int) error
	BalanceOf(ctx context.Context, account string) (*big.Int, error)
}
