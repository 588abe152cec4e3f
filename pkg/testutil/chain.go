package testutil

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/questx-lab/noloss/internal/client"
	"golang.org/x/exp/slices"
)

var ErrInsufficientBalance = errors.New("insufficient balance")

// MockToken is an in-memory single currency ledger.
type MockToken struct {
	TransferFunc  func(ctx context.Context, from, to string, amount *big.Int) error
	BalanceOfFunc func(ctx context.Context, account string) (*big.Int, error)

	mu       sync.Mutex
	balances map[string]*big.Int
}

func NewMockToken() *MockToken {
	return &MockToken{balances: map[string]*big.Int{}}
}

// Mint credits account out of thin air.
func (m *MockToken) Mint(account string, amount int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.add(account, big.NewInt(amount))
}

func (m *MockToken) Transfer(ctx context.Context, from, to string, amount *big.Int) error {
	if m.TransferFunc != nil {
		return m.TransferFunc(ctx, from, to, amount)
	}

	return m.transfer(from, to, amount)
}

func (m *MockToken) transfer(from, to string, amount *big.Int) error {
	if amount.Sign() < 0 {
		return fmt.Errorf("negative amount %s", amount)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.balance(from).Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}

	m.add(from, new(big.Int).Neg(amount))
	m.add(to, amount)
	return nil
}

func (m *MockToken) BalanceOf(ctx context.Context, account string) (*big.Int, error) {
	if m.BalanceOfFunc != nil {
		return m.BalanceOfFunc(ctx, account)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balance(account), nil
}

// Balance returns the balance of account as an int64, for assertions.
func (m *MockToken) Balance(account string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balance(account).Int64()
}

func (m *MockToken) balance(account string) *big.Int {
	if b, ok := m.balances[account]; ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

func (m *MockToken) add(account string, amount *big.Int) {
	m.balances[account] = new(big.Int).Add(m.balance(account), amount)
}

// MockReserve is an in-memory lending pool over a MockToken. A submission
// must carry an authorization that exactly matches the single transfer it
// performs. Withdrawals pay the supplied principal plus Yield.
type MockReserve struct {
	SubmitFunc func(ctx context.Context, req client.SubmitRequest) (client.Positions, error)

	Address  string
	Reserves []string
	Token    *MockToken

	// Yield is paid on top of the principal by the next withdrawal.
	Yield *big.Int

	// Emissions is what Claim reports as paid out.
	Emissions *big.Int

	mu          sync.Mutex
	supply      map[string]map[uint32]*big.Int
	submissions []client.SubmitRequest
	claims      []Claim
}

type Claim struct {
	From            string
	ReserveTokenIDs []uint32
	To              string
}

func NewMockReserve(token *MockToken, reserves ...string) *MockReserve {
	return &MockReserve{
		Address:   Reserve,
		Reserves:  reserves,
		Token:     token,
		Yield:     new(big.Int),
		Emissions: new(big.Int),
		supply:    map[string]map[uint32]*big.Int{},
	}
}

func (m *MockReserve) Submit(ctx context.Context, req client.SubmitRequest) (client.Positions, error) {
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, req)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.submissions = append(m.submissions, req)

	if len(req.Requests) != 1 {
		return client.Positions{}, fmt.Errorf("expected one request, got %d", len(req.Requests))
	}

	r := req.Requests[0]
	index := slices.Index(m.Reserves, r.Address)
	if index < 0 {
		return client.Positions{}, fmt.Errorf("reserve %s not found", r.Address)
	}

	positions := m.positions(req.From)
	supplied := positions[uint32(index)]
	if supplied == nil {
		supplied = new(big.Int)
	}

	switch r.RequestType {
	case client.RequestSupply:
		want := client.Authorization{
			Contract: r.Address, Function: "transfer", From: req.From, To: m.Address, Amount: r.Amount,
		}
		if err := checkAuthorization(req.Authorization, want); err != nil {
			return client.Positions{}, err
		}

		if err := m.Token.transfer(req.From, m.Address, r.Amount); err != nil {
			return client.Positions{}, err
		}

		positions[uint32(index)] = new(big.Int).Add(supplied, r.Amount)

	case client.RequestWithdraw:
		want := client.Authorization{
			Contract: r.Address, Function: "transfer", From: m.Address, To: req.To, Amount: r.Amount,
		}
		if err := checkAuthorization(req.Authorization, want); err != nil {
			return client.Positions{}, err
		}

		owed := new(big.Int).Add(supplied, m.Yield)
		amount := owed
		if r.Amount.Cmp(owed) < 0 {
			amount = r.Amount
		}

		// The reserve holds the accrued yield itself.
		m.Token.mu.Lock()
		m.Token.add(m.Address, m.Yield)
		m.Token.mu.Unlock()
		m.Yield = new(big.Int)

		if err := m.Token.transfer(m.Address, req.To, amount); err != nil {
			return client.Positions{}, err
		}

		positions[uint32(index)] = new(big.Int).Sub(owed, amount)

	default:
		return client.Positions{}, fmt.Errorf("unsupported request type %d", r.RequestType)
	}

	return client.Positions{Supply: copySupply(positions)}, nil
}

func checkAuthorization(got *client.Authorization, want client.Authorization) error {
	if got == nil {
		return errors.New("missing authorization")
	}

	if got.Contract != want.Contract || got.Function != want.Function ||
		got.From != want.From || got.To != want.To ||
		got.Amount == nil || got.Amount.Cmp(want.Amount) != 0 {
		return fmt.Errorf("authorization %+v does not match the transfer", *got)
	}

	return nil
}

func (m *MockReserve) ReserveList(ctx context.Context) ([]string, error) {
	return append([]string{}, m.Reserves...), nil
}

func (m *MockReserve) Positions(ctx context.Context, account string) (client.Positions, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return client.Positions{Supply: copySupply(m.positions(account))}, nil
}

func (m *MockReserve) Claim(
	ctx context.Context, from string, reserveTokenIDs []uint32, to string,
) (*big.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.claims = append(m.claims, Claim{From: from, ReserveTokenIDs: reserveTokenIDs, To: to})
	return new(big.Int).Set(m.Emissions), nil
}

func (m *MockReserve) Submissions() []client.SubmitRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]client.SubmitRequest{}, m.submissions...)
}

func (m *MockReserve) Claims() []Claim {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Claim{}, m.claims...)
}

func (m *MockReserve) positions(account string) map[uint32]*big.Int {
	if _, ok := m.supply[account]; !ok {
		m.supply[account] = map[uint32]*big.Int{}
	}
	return m.supply[account]
}

func copySupply(supply map[uint32]*big.Int) map[uint32]*big.Int {
	result := map[uint32]*big.Int{}
	for k, v := range supply {
		result[k] = new(big.Int).Set(v)
	}
	return result
}

// MockClock is a manually advanced ledger clock.
type MockClock struct {
	mu        sync.Mutex
	height    uint32
	timestamp uint64
}

func NewMockClock(height uint32, timestamp uint64) *MockClock {
	return &MockClock{height: height, timestamp: timestamp}
}

// Set moves the clock to height, keeping five seconds per ledger.
func (m *MockClock) Set(height uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timestamp = uint64(int64(m.timestamp) + 5*(int64(height)-int64(m.height)))
	m.height = height
}

func (m *MockClock) CurrentHeight(ctx context.Context) (uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.height, nil
}

func (m *MockClock) CurrentLedger(ctx context.Context) (uint32, uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.height, m.timestamp, nil
}
