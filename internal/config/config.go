package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Ledger modes.
const (
	LedgerModeStub      = "stub"
	LedgerModeWebsocket = "websocket"
)

// Config holds the service configuration, loaded from an optional
// config.yaml and RWA_-prefixed environment variables.
type Config struct {
	ListenAddr    string        `mapstructure:"listen_addr"`
	LedgerMode    string        `mapstructure:"ledger_mode"`
	LedgerURL     string        `mapstructure:"ledger_url"`
	SubmitTimeout time.Duration `mapstructure:"submit_timeout"`
	LogLevel      string        `mapstructure:"log_level"`
}

// Load reads configuration with defaults suitable for local development.
func Load() (*Config, error) {
	v := viper.New()
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("ledger_mode", LedgerModeStub)
	v.SetDefault("ledger_url", "ws://localhost:6006")
	v.SetDefault("submit_timeout", 30*time.Second)
	v.SetDefault("log_level", "info")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix("RWA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.LedgerMode != LedgerModeStub && cfg.LedgerMode != LedgerModeWebsocket {
		return nil, fmt.Errorf("unknown ledger_mode %q", cfg.LedgerMode)
	}
	return &cfg, nil
}
