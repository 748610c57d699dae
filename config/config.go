// Package config loads runtime settings from flags, environment variables
// (STOCKLEDGER_*) and an optional config file.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const EnvPrefix = "STOCKLEDGER"

// Config mirrors the persistent CLI flags. Keys are the flag names.
type Config struct {
	Store           string        `mapstructure:"store"`
	StoreFile       string        `mapstructure:"store-file"`
	ConfigFile      string        `mapstructure:"config"`
	LogLevel        string        `mapstructure:"log-level"`
	Seed            bool          `mapstructure:"seed"`
	HTTPAddr        string        `mapstructure:"http-addr"`
	TaxRate         float64       `mapstructure:"tax-rate"`
	AnalysisURL     string        `mapstructure:"analysis-url"`
	AnalysisTimeout time.Duration `mapstructure:"analysis-timeout"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("store", "memory")
	v.SetDefault("store-file", "data/stockledger.json")
	v.SetDefault("log-level", "info")
	v.SetDefault("seed", false)
	v.SetDefault("http-addr", ":8080")
	v.SetDefault("tax-rate", 0.05)
	v.SetDefault("analysis-url", "")
	v.SetDefault("analysis-timeout", 30*time.Second)
}

// Load resolves the configuration held by v. A nil v means the global
// viper instance, which is where the CLI binds its flags.
func Load(v *viper.Viper) (Config, error) {
	if v == nil {
		v = viper.GetViper()
	}
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.TaxRate < 0 || c.TaxRate >= 1 {
		return fmt.Errorf("tax-rate must be in [0, 1), got %v", c.TaxRate)
	}
	if c.AnalysisTimeout < 0 {
		return fmt.Errorf("analysis-timeout must be non-negative, got %s", c.AnalysisTimeout)
	}
	return nil
}

// Tax returns the statement tax rate as a decimal.
func (c Config) Tax() decimal.Decimal {
	return decimal.NewFromFloat(c.TaxRate)
}

// ParseLevel maps debug|info|warn|warning|error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}
