package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Configs struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`
	LogJSON  bool   `toml:"log_json"`

	Database  DatabaseConfigs `toml:"database"`
	ApiServer ServerConfigs   `toml:"api_server"`
	Auth      AuthConfigs     `toml:"auth"`
	Redis     RedisConfigs    `toml:"redis"`
	Kafka     KafkaConfigs    `toml:"kafka"`
	Eth       EthConfigs      `toml:"eth"`
	Lottery   LotteryConfigs  `toml:"lottery"`
	Keeper    KeeperConfigs   `toml:"keeper"`
}

type DatabaseConfigs struct {
	// Driver is either "mysql" or "sqlite".
	Driver   string `toml:"driver"`
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	Database string `toml:"database"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

func (d *DatabaseConfigs) ConnectionString() string {
	if d.Driver == "sqlite" {
		return d.Database
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local&multiStatements=true",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type ServerConfigs struct {
	Host           string   `toml:"host"`
	Port           string   `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

type AuthConfigs struct {
	TokenSecret string        `toml:"token_secret"`
	Expiration  time.Duration `toml:"expiration"`
}

type RedisConfigs struct {
	Addr     string        `toml:"addr"`
	StateTTL time.Duration `toml:"state_ttl"`
}

type KafkaConfigs struct {
	Addr  string `toml:"addr"`
	Topic string `toml:"topic"`
}

type EthConfigs struct {
	Rpc        string `toml:"rpc"`
	ReserveRpc string `toml:"reserve_rpc"`
	// ReserveNamespace prefixes the reserve JSON-RPC methods.
	ReserveNamespace string `toml:"reserve_namespace"`
	// PrivateKey signs the pool's token transfers. Hex encoded, no 0x prefix.
	PrivateKey string `toml:"private_key"`
}

type LotteryConfigs struct {
	Admin          string `toml:"admin"`
	PoolAddress    string `toml:"pool_address"`
	Currency       string `toml:"currency"`
	TicketPrice    string `toml:"ticket_price"`
	ReserveAddress string `toml:"reserve_address"`
	// SeedHash is "sha256" (default) or "blake3".
	SeedHash  string          `toml:"seed_hash"`
	Timelocks TimelockConfigs `toml:"timelocks"`
}

// TimelockConfigs holds the minimum number of ledgers each phase must last
// before the next transition is allowed.
type TimelockConfigs struct {
	BuyIn        uint32 `toml:"buy_in"`
	YieldFarming uint32 `toml:"yield_farming"`
	Ended        uint32 `toml:"ended"`
}

type KeeperConfigs struct {
	Interval time.Duration `toml:"interval"`
}

const DayInLedgers = 17300

func Default() Configs {
	return Configs{
		Env:      "local",
		LogLevel: "info",
		Database: DatabaseConfigs{
			Driver:   "sqlite",
			Database: "noloss.db",
		},
		ApiServer: ServerConfigs{
			Port:           "8080",
			AllowedOrigins: []string{"*"},
		},
		Auth: AuthConfigs{
			Expiration: 24 * time.Hour,
		},
		Redis: RedisConfigs{
			StateTTL: time.Minute,
		},
		Kafka: KafkaConfigs{
			Topic: "lottery",
		},
		Eth: EthConfigs{
			ReserveNamespace: "reserve",
		},
		Lottery: LotteryConfigs{
			SeedHash: "sha256",
			Timelocks: TimelockConfigs{
				BuyIn:        DayInLedgers,
				YieldFarming: 6 * DayInLedgers,
				Ended:        DayInLedgers,
			},
		},
		Keeper: KeeperConfigs{
			Interval: time.Minute,
		},
	}
}

// Load reads a TOML file on top of Default. Secrets may be overridden by
// environment variables so they stay out of the file.
func Load(path string) (Configs, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Configs{}, fmt.Errorf("cannot decode config %s: %w", path, err)
		}
	}

	if v := os.Getenv("NOLOSS_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("NOLOSS_TOKEN_SECRET"); v != "" {
		cfg.Auth.TokenSecret = v
	}
	if v := os.Getenv("NOLOSS_ETH_PRIVATE_KEY"); v != "" {
		cfg.Eth.PrivateKey = v
	}

	return cfg, nil
}
