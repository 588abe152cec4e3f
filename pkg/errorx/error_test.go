package errorx

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIs(t *testing.T) {
	err := New(WrongPhase, "Expected phase %s", "BuyIn")
	require.Equal(t, "Expected phase BuyIn", err.Error())
	require.True(t, Is(err, WrongPhase))
	require.False(t, Is(err, InvalidTransition))

	wrapped := fmt.Errorf("buy ticket: %w", err)
	require.True(t, Is(wrapped, WrongPhase))
	require.True(t, errors.Is(wrapped, Error{Code: WrongPhase}))
	require.False(t, errors.Is(wrapped, Unknown))

	require.False(t, Is(errors.New("plain"), WrongPhase))
	require.False(t, Is(nil, WrongPhase))
}
