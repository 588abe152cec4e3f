package entity

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	a, err := ParseAmount("10000000")
	require.NoError(t, err)
	require.Equal(t, "10000000", a.String())

	max, err := ParseAmount("170141183460469231731687303715884105727")
	require.NoError(t, err)
	require.Zero(t, max.Cmp(MaxAmount))

	_, err = ParseAmount("170141183460469231731687303715884105728")
	require.Error(t, err)

	_, err = ParseAmount("-170141183460469231731687303715884105729")
	require.Error(t, err)

	_, err = ParseAmount("ten")
	require.Error(t, err)
}

func TestAmountArithmetic(t *testing.T) {
	a := AmountFromInt64(7)
	b := AmountFromInt64(10)

	require.Equal(t, "17", a.Add(b).String())
	require.Equal(t, "-3", a.Sub(b).String())
	require.Equal(t, "7", a.String(), "operands are not mutated")
	require.True(t, AmountFromInt64(0).IsZero())
	require.Equal(t, big.NewInt(7), a.Big())
}

func TestAmountScanValue(t *testing.T) {
	var a Amount
	require.NoError(t, a.Scan("123456789012345678901234567890"))
	v, err := a.Value()
	require.NoError(t, err)
	require.Equal(t, "123456789012345678901234567890", v)

	require.NoError(t, a.Scan(int64(-5)))
	require.Equal(t, "-5", a.String())

	require.NoError(t, a.Scan([]byte("42")))
	require.Equal(t, "42", a.String())

	require.Error(t, a.Scan(3.14))
}

func TestAmountCopies(t *testing.T) {
	src := big.NewInt(10)
	a := NewAmount(src)
	src.SetInt64(11)
	require.Equal(t, "10", a.String())

	b := a
	require.NoError(t, b.Scan("20"))
	require.Equal(t, "10", a.String())
	require.Equal(t, "20", b.String())

	a.Big().SetInt64(30)
	require.Equal(t, "10", a.String())

	var zero Amount
	require.True(t, zero.IsZero())
	require.Equal(t, "0", zero.String())
	require.Equal(t, 1, a.Cmp(zero))
}

func TestAmountJSON(t *testing.T) {
	b, err := json.Marshal(struct{ A Amount }{AmountFromInt64(99)})
	require.NoError(t, err)
	require.Equal(t, `{"A":"99"}`, string(b))

	var out struct{ A Amount }
	require.NoError(t, json.Unmarshal(b, &out))
	require.Equal(t, "99", out.A.String())
}

func TestLotteryPhaseNext(t *testing.T) {
	require.Equal(t, YieldFarming, BuyIn.Next())
	require.Equal(t, Ended, YieldFarming.Next())
	require.Equal(t, BuyIn, Ended.Next())
}
