package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	err := os.WriteFile(path, []byte(`
env = "test"

[database]
driver = "mysql"
host = "localhost"
port = "3306"
database = "noloss"
user = "root"

[lottery]
admin = "admin"
currency = "xlm"
ticket_price = "10000000"

[lottery.timelocks]
buy_in = 10
`), 0600)
	require.NoError(t, err)

	t.Setenv("NOLOSS_DB_PASSWORD", "secret")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "test", cfg.Env)
	require.Equal(t, "admin", cfg.Lottery.Admin)
	require.Equal(t, "10000000", cfg.Lottery.TicketPrice)
	require.Equal(t, uint32(10), cfg.Lottery.Timelocks.BuyIn)
	require.Equal(t, uint32(6*DayInLedgers), cfg.Lottery.Timelocks.YieldFarming)
	require.Equal(t, "sha256", cfg.Lottery.SeedHash)
	require.Equal(t, time.Minute, cfg.Keeper.Interval)
	require.Equal(t,
		"root:secret@tcp(localhost:3306)/noloss?charset=utf8mb4&parseTime=True&loc=Local&multiStatements=true",
		cfg.Database.ConnectionString())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}
