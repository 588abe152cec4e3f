package mocks

import (
	"context"
	"math/big"

	"github.com/questx-lab/noloss/internal/client"
	"github.com/stretchr/testify/mock"
)

type Reserve struct {
	mock.Mock
}

func (r *Reserve) Submit(arg1 context.Context, arg2 client.SubmitRequest) (client.Positions, error) {
	args := r.Called(arg1, arg2)

	if args.Get(0) == nil {
		return client.Positions{}, args.Error(1)
	}
	return args.Get(0).(client.Positions), args.Error(1)
}

func (r *Reserve) ReserveList(arg1 context.Context) ([]string, error) {
	args := r.Called(arg1)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (r *Reserve) Positions(arg1 context.Context, arg2 string) (client.Positions, error) {
	args := r.Called(arg1, arg2)

	if args.Get(0) == nil {
		return client.Positions{}, args.Error(1)
	}
	return args.Get(0).(client.Positions), args.Error(1)
}

func (r *Reserve) Claim(arg1 context.Context, arg2 string, arg3 []uint32, arg4 string) (*big.Int, error) {
	args := r.Called(arg1, arg2, arg3, arg4)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*big.Int), args.Error(1)
}
