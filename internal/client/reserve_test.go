package client

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/require"
)

type reserveService struct {
	submitted []SubmitRequest
}

func (s *reserveService) Submit(req SubmitRequest) Positions {
	s.submitted = append(s.submitted, req)
	return Positions{Supply: map[uint32]*big.Int{1: req.Requests[0].Amount}}
}

func (s *reserveService) GetReserveList() []string {
	return []string{"usdc", "xlm"}
}

func (s *reserveService) GetPositions(account string) Positions {
	return Positions{Supply: map[uint32]*big.Int{1: big.NewInt(50)}}
}

func (s *reserveService) Claim(from string, ids []uint32, to string) *big.Int {
	return big.NewInt(int64(len(ids) * 7))
}

func newTestReserveCaller(t *testing.T) (*reserveCaller, *reserveService) {
	service := &reserveService{}
	server := rpc.NewServer()
	require.NoError(t, server.RegisterName("reserve", service))
	t.Cleanup(server.Stop)

	return NewReserveCaller(rpc.DialInProc(server), "reserve"), service
}

func TestReserveCaller(t *testing.T) {
	ctx := context.Background()
	caller, service := newTestReserveCaller(t)
	defer caller.Close()

	list, err := caller.ReserveList(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"usdc", "xlm"}, list)

	positions, err := caller.Submit(ctx, SubmitRequest{
		From: "pool", Spender: "pool", To: "pool",
		Requests: []Request{{Address: "usdc", Amount: big.NewInt(30), RequestType: RequestSupply}},
		Authorization: &Authorization{
			Contract: "usdc", Function: "transfer", From: "pool", To: "reserve", Amount: big.NewInt(30),
		},
	})
	require.NoError(t, err)
	require.Equal(t, big.NewInt(30), positions.Supply[1])
	require.Len(t, service.submitted, 1)
	require.Equal(t, "reserve", service.submitted[0].Authorization.To)

	positions, err = caller.Positions(ctx, "pool")
	require.NoError(t, err)
	require.Equal(t, big.NewInt(50), positions.Supply[1])

	claimed, err := caller.Claim(ctx, "pool", []uint32{1}, "admin")
	require.NoError(t, err)
	require.Equal(t, big.NewInt(7), claimed)
}
