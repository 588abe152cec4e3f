package eth

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/questx-lab/noloss/pkg/xcontext"
)

const erc20ABI = `[
	{"constant":true,"inputs":[{"name":"account","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"type":"function"},
	{"constant":false,"inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"type":"function"},
	{"constant":false,"inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"name":"transferFrom","outputs":[{"name":"","type":"bool"}],"type":"function"}
]`

var parsedERC20ABI = func() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		panic(err)
	}

	return parsed
}()

var ErrTransactionReverted = errors.New("transaction reverted")

// ERC20Token transfers an ERC-20 token signed by the pool account. Transfers
// out of another account are pulled with transferFrom and need a prior
// allowance granted to the pool.
type ERC20Token struct {
	client   EthClient
	contract *bind.BoundContract
	opts     *bind.TransactOpts
}

func NewERC20Token(client EthClient, address string, opts *bind.TransactOpts) (*ERC20Token, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid token address %q", address)
	}

	contract := bind.NewBoundContract(common.HexToAddress(address), parsedERC20ABI, client, client, client)
	return &ERC20Token{client: client, contract: contract, opts: opts}, nil
}

func (t *ERC20Token) BalanceOf(ctx context.Context, account string) (*big.Int, error) {
	if !common.IsHexAddress(account) {
		return nil, fmt.Errorf("invalid account address %q", account)
	}

	var out []any
	err := t.contract.Call(&bind.CallOpts{Context: ctx}, &out, "balanceOf", common.HexToAddress(account))
	if err != nil {
		return nil, err
	}

	balance, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected balanceOf output %T", out[0])
	}

	return balance, nil
}

func (t *ERC20Token) Transfer(ctx context.Context, from, to string, amount *big.Int) error {
	if !common.IsHexAddress(from) || !common.IsHexAddress(to) {
		return fmt.Errorf("invalid transfer %s -> %s", from, to)
	}

	opts := *t.opts
	opts.Context = ctx

	var tx *ethtypes.Transaction
	var err error
	if sameAddress(t.opts.From, from) {
		tx, err = t.contract.Transact(&opts, "transfer", common.HexToAddress(to), amount)
	} else {
		tx, err = t.contract.Transact(&opts, "transferFrom",
			common.HexToAddress(from), common.HexToAddress(to), amount)
	}
	if err != nil {
		return err
	}

	receipt, err := bind.WaitMined(ctx, t.client, tx)
	if err != nil {
		return err
	}

	if receipt.Status != ethtypes.ReceiptStatusSuccessful {
		xcontext.Logger(ctx).Errorf("Transfer %s reverted in block %s", tx.Hash(), receipt.BlockNumber)
		return ErrTransactionReverted
	}

	return nil
}
