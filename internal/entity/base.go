package entity

import (
	"database/sql/driver"
	"fmt"
	"math/big"
	"strconv"
)

// Amount is a signed arbitrary-precision token amount. It is persisted as a
// decimal string so the full 128-bit range survives any SQL backend.
//
// The wrapped big.Int is never modified after construction, so Amount values
// may be copied freely. Every operation returns a new Amount.
type Amount struct {
	v *big.Int
}

var (
	// MaxAmount is the largest amount representable by the asset ledger,
	// 2^127-1. Reserves read it as "everything owed".
	MaxAmount = NewAmount(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1)))
	minAmount = NewAmount(new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127)))

	zeroInt = new(big.Int)
)

func NewAmount(v *big.Int) Amount {
	if v == nil {
		return Amount{}
	}
	return Amount{v: new(big.Int).Set(v)}
}

func AmountFromInt64(v int64) Amount {
	return NewAmount(big.NewInt(v))
}

// ParseAmount parses a base-10 amount and checks it fits in 128 bits.
func ParseAmount(s string) (Amount, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Amount{}, fmt.Errorf("invalid amount %q", s)
	}

	a := NewAmount(v)
	if !a.InRange() {
		return Amount{}, fmt.Errorf("amount %s overflows 128 bits", s)
	}

	return a, nil
}

// int returns the wrapped value for reading only.
func (a Amount) int() *big.Int {
	if a.v == nil {
		return zeroInt
	}
	return a.v
}

func (a Amount) Big() *big.Int {
	return new(big.Int).Set(a.int())
}

func (a Amount) Add(b Amount) Amount {
	return Amount{v: new(big.Int).Add(a.int(), b.int())}
}

func (a Amount) Sub(b Amount) Amount {
	return Amount{v: new(big.Int).Sub(a.int(), b.int())}
}

func (a Amount) Cmp(b Amount) int {
	return a.int().Cmp(b.int())
}

func (a Amount) Sign() int {
	return a.int().Sign()
}

func (a Amount) IsZero() bool {
	return a.Sign() == 0
}

func (a Amount) InRange() bool {
	return a.Cmp(minAmount) >= 0 && a.Cmp(MaxAmount) <= 0
}

func (a Amount) String() string {
	return a.int().String()
}

func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Amount) UnmarshalText(b []byte) error {
	v, ok := new(big.Int).SetString(string(b), 10)
	if !ok {
		return fmt.Errorf("invalid amount %q", string(b))
	}
	a.v = v
	return nil
}

// MarshalJSON encodes the amount as a quoted decimal.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(a.String())), nil
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	s, err := strconv.Unquote(string(b))
	if err != nil {
		s = string(b)
	}

	return a.UnmarshalText([]byte(s))
}

func (a *Amount) Scan(obj any) error {
	switch t := obj.(type) {
	case nil:
		a.v = nil
		return nil
	case int64:
		a.v = big.NewInt(t)
		return nil
	case string:
		return a.UnmarshalText([]byte(t))
	case []byte:
		return a.UnmarshalText(t)
	}

	return fmt.Errorf("cannot scan invalid data type %T", obj)
}

func (a Amount) Value() (driver.Value, error) {
	return a.String(), nil
}
