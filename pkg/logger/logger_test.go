package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, DEBUG, ParseLevel("debug"))
	require.Equal(t, WARNING, ParseLevel("WARN"))
	require.Equal(t, ERROR, ParseLevel("error"))
	require.Equal(t, SILENCE, ParseLevel("silence"))
	require.Equal(t, INFO, ParseLevel(""))
	require.Equal(t, INFO, ParseLevel("verbose"))
}

func TestNewZapLogger(t *testing.T) {
	l, err := NewZapLogger("debug", true)
	require.NoError(t, err)
	l.Debugf("ticket %d bought by %s", 1, "alice")
	l.Errorf("cannot transfer: %v", "boom")
}
