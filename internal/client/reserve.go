package client

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rpc"
)

type RequestType uint32

const (
	RequestSupply   RequestType = 0
	RequestWithdraw RequestType = 1
)

type Request struct {
	Address     string      `json:"address"`
	Amount      *big.Int    `json:"amount"`
	RequestType RequestType `json:"request_type"`
}

// Authorization allows the reserve to perform exactly one token transfer
// on behalf of From while executing the submission it is attached to.
type Authorization struct {
	Contract string   `json:"contract"`
	Function string   `json:"function"`
	From     string   `json:"from"`
	To       string   `json:"to"`
	Amount   *big.Int `json:"amount"`
}

type SubmitRequest struct {
	From          string         `json:"from"`
	Spender       string         `json:"spender"`
	To            string         `json:"to"`
	Requests      []Request      `json:"requests"`
	Authorization *Authorization `json:"authorization"`
}

// Positions maps reserve indexes to amounts held by an account.
type Positions struct {
	Liabilities map[uint32]*big.Int `json:"liabilities"`
	Collateral  map[uint32]*big.Int `json:"collateral"`
	Supply      map[uint32]*big.Int `json:"supply"`
}

type Reserve interface {
	Submit(ctx context.Context, req SubmitRequest) (Positions, error)
	ReserveList(ctx context.Context) ([]string, error)
	Positions(ctx context.Context, account string) (Positions, error)
	Claim(ctx context.Context, from string, reserveTokenIDs []uint32, to string) (*big.Int, error)
}

type reserveCaller struct {
	client    *rpc.Client
	namespace string
}

func NewReserveCaller(client *rpc.Client, namespace string) *reserveCaller {
	return &reserveCaller{client: client, namespace: namespace}
}

func (c *reserveCaller) Submit(ctx context.Context, req SubmitRequest) (Positions, error) {
	var result Positions
	if err := c.client.CallContext(ctx, &result, c.fname("submit"), req); err != nil {
		return Positions{}, err
	}

	return result, nil
}

func (c *reserveCaller) ReserveList(ctx context.Context) ([]string, error) {
	var result []string
	if err := c.client.CallContext(ctx, &result, c.fname("getReserveList")); err != nil {
		return nil, err
	}

	return result, nil
}

func (c *reserveCaller) Positions(ctx context.Context, account string) (Positions, error) {
	var result Positions
	if err := c.client.CallContext(ctx, &result, c.fname("getPositions"), account); err != nil {
		return Positions{}, err
	}

	return result, nil
}

func (c *reserveCaller) Claim(
	ctx context.Context, from string, reserveTokenIDs []uint32, to string,
) (*big.Int, error) {
	var result big.Int
	if err := c.client.CallContext(ctx, &result, c.fname("claim"), from, reserveTokenIDs, to); err != nil {
		return nil, err
	}

	return &result, nil
}

func (c *reserveCaller) Close() {
	c.client.Close()
}

func (c *reserveCaller) fname(funcName string) string {
	return fmt.Sprintf("%s_%s", c.namespace, funcName)
}
