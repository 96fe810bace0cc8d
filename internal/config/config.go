package config

import (
	"fmt"
	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/tonkeeper/tongo/config"
	"github.com/txsociety/tonkit/pkg/core"
	"github.com/txsociety/tonkit/pkg/wallet"
	"log/slog"
	"reflect"
	"strings"
	"time"
)

type Config struct {
	Port            int                 `env:"PORT" envDefault:"8081"`
	LogLevel        slog.Level          `env:"LOG_LEVEL" envDefault:"INFO"`
	Token           string              `env:"TOKEN"`
	LiteServers     []config.LiteServer `env:"LITE_SERVERS"`
	// MaxLatency drops lite servers slower than this at startup, zero keeps every server.
	MaxLatency      time.Duration       `env:"LITE_SERVER_MAX_LATENCY" envDefault:"350ms"`
	MetricsNS       string              `env:"METRICS_NAMESPACE" envDefault:"tonkit"`
	RetryAttempts   int                 `env:"RETRY_ATTEMPTS" envDefault:"4"`
	RetryDelay      time.Duration       `env:"RETRY_DELAY" envDefault:"100ms"`
	WebhookEndpoint string              `env:"WEBHOOK_ENDPOINT"`
	Wallet          Wallet
	Indexer         Indexer
}

type Wallet struct {
	// Seed is a space separated mnemonic. Secret is a 32 byte hex key used when no seed is set.
	Seed        string         `env:"WALLET_SEED"`
	Secret      string         `env:"WALLET_SECRET"`
	Version     wallet.Variant `env:"WALLET_VERSION" envDefault:"v4r2"`
	Workchain   int32          `env:"WALLET_WORKCHAIN" envDefault:"0"`
	SubWalletID uint32         `env:"WALLET_SUBWALLET_ID"`
}

type Indexer struct {
	Enabled      bool           `env:"INDEXER_ENABLED" envDefault:"false"`
	Workers      int            `env:"INDEXER_WORKERS" envDefault:"4"`
	PollInterval time.Duration  `env:"INDEXER_POLL_INTERVAL" envDefault:"5s"`
	Accounts     []core.Address `env:"TRACKED_ACCOUNTS"`
	Jettons      []core.Address `env:"TRACKED_JETTONS"`
}

// Configured reports whether wallet keys were supplied.
func (w Wallet) Configured() bool {
	return len(w.Seed) > 0 || len(w.Secret) > 0
}

func (w Wallet) SubWallet() uint32 {
	if w.SubWalletID != 0 {
		return w.SubWalletID
	}
	return wallet.DefaultSubWalletID(w.Workchain)
}

func Load() Config {
	c, err := Parse()
	if err != nil {
		panic("parse config error: " + err.Error())
	}
	return c
}

// Parse reads the environment, a .env file in the working directory is loaded first when present.
func Parse() (Config, error) {
	var (
		c  Config
		ll slog.Level
	)
	_ = godotenv.Load()
	err := env.ParseWithFuncs(&c, map[reflect.Type]env.ParserFunc{
		reflect.TypeOf(ll): func(v string) (interface{}, error) {
			var level slog.Level
			err := level.UnmarshalText([]byte(v))
			return level, err
		},
		reflect.TypeOf([]config.LiteServer{}): func(v string) (interface{}, error) {
			servers, err := config.ParseLiteServersEnvVar(v)
			if err != nil {
				return nil, err
			}
			return servers, nil
		},
		reflect.TypeOf(wallet.Variant(0)): func(v string) (interface{}, error) {
			variant, err := wallet.ParseVariant(v)
			if err != nil {
				return nil, err
			}
			return variant, nil
		},
		reflect.TypeOf([]core.Address{}): func(v string) (interface{}, error) {
			var res []core.Address
			seen := make(map[core.Address]struct{})
			for _, s := range strings.Split(v, ",") {
				s = strings.TrimSpace(s)
				if s == "" {
					continue
				}
				addr, err := core.ParseAddress(s)
				if err != nil {
					return nil, err
				}
				if _, ok := seen[addr]; ok {
					return nil, fmt.Errorf("duplicated address: %s", s)
				}
				seen[addr] = struct{}{}
				res = append(res, addr)
			}
			return res, nil
		},
	})
	if err != nil {
		return Config{}, err
	}
	if c.RetryAttempts < 1 {
		return Config{}, fmt.Errorf("%w: RETRY_ATTEMPTS must be positive", core.ErrValidation)
	}
	if c.Indexer.Workers < 1 {
		return Config{}, fmt.Errorf("%w: INDEXER_WORKERS must be positive", core.ErrValidation)
	}
	if len(c.Indexer.Jettons) > 0 && len(c.Indexer.Accounts) == 0 {
		return Config{}, fmt.Errorf("%w: TRACKED_JETTONS needs TRACKED_ACCOUNTS", core.ErrValidation)
	}
	return c, nil
}
