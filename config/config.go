package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	RegimeExact  = "exact"
	RegimeApprox = "approx"
)

var (
	ErrSnapshotRequired = errors.New("config: snapshot path is required")
	ErrUnknownRegime    = errors.New("config: unknown regime")
	ErrInvalidLogLevel  = errors.New("config: invalid log level")
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	// Snapshot is the path of the pool snapshot JSON file.
	Snapshot string
	// Regime selects the arithmetic, RegimeExact or RegimeApprox.
	Regime     string
	ZeroForOne bool
	// Amount is in whole tokens of the specified asset.
	Amount   string
	ExactOut bool
	// PriceLimit is an optional Q64.96 sqrt price limit, decimal or 0x hex.
	PriceLimit  string
	LogLevel    string
	MetricsAddr string
}

// Load merges config file, environment variables, and flags into Config.
// Without cfgFile a v3quote config file in the working directory is read if present.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("V3QUOTE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("regime", RegimeExact)
	v.SetDefault("zero-for-one", true)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("v3quote")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return &Config{
		Snapshot:    v.GetString("snapshot"),
		Regime:      strings.ToLower(v.GetString("regime")),
		ZeroForOne:  v.GetBool("zero-for-one"),
		Amount:      v.GetString("amount"),
		ExactOut:    v.GetBool("exact-out"),
		PriceLimit:  v.GetString("price-limit"),
		LogLevel:    v.GetString("log-level"),
		MetricsAddr: v.GetString("metrics-addr"),
	}, nil
}

// Validate checks the settings every command depends on.
func (c *Config) Validate() error {
	if c.Snapshot == "" {
		return ErrSnapshotRequired
	}
	if c.Regime != RegimeExact && c.Regime != RegimeApprox {
		return fmt.Errorf("%w: %q", ErrUnknownRegime, c.Regime)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return level, fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}
	return level, nil
}
