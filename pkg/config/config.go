package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"

	"github.com/yurifrl/tally/pkg/normalize"
	"github.com/yurifrl/tally/pkg/reconcile"
	"github.com/yurifrl/tally/pkg/table"
)

// EnvPrefix prefixes environment overrides, e.g. TALLY_MATCH_MAX_DISTANCE_SECONDS.
const EnvPrefix = "TALLY"

type LedgerConfig struct {
	Delimiter  string `mapstructure:"delimiter"`
	DateColumn string `mapstructure:"date_column"`
}

type PaymentConfig struct {
	Delimiter  string `mapstructure:"delimiter"`
	DateColumn string `mapstructure:"date_column"`
	TimeColumn string `mapstructure:"time_column"`
	Layout     string `mapstructure:"layout"`
}

type MatchConfig struct {
	MaxDistanceSeconds uint64 `mapstructure:"max_distance_seconds"`
}

type NormalizeConfig struct {
	Markers            string `mapstructure:"markers"`
	ThousandsSeparator string `mapstructure:"thousands_separator"`
	DecimalSeparator   string `mapstructure:"decimal_separator"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Config is the resolved configuration of a run.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Ledger    LedgerConfig    `mapstructure:"ledger"`
	Payment   PaymentConfig   `mapstructure:"payment"`
	Match     MatchConfig     `mapstructure:"match"`
	Normalize NormalizeConfig `mapstructure:"normalize"`
	// Notes is the path to a rule file; empty disables annotation.
	Notes string `mapstructure:"notes"`
}

// flagKeys maps command line flags onto configuration keys.
var flagKeys = map[string]string{
	"log-level":                "log.level",
	"ledger-delimiter":         "ledger.delimiter",
	"ledger-date-column":       "ledger.date_column",
	"payment-delimiter":        "payment.delimiter",
	"payment-date-column":      "payment.date_column",
	"payment-time-column":      "payment.time_column",
	"payment-layout":           "payment.layout",
	"max-distance-seconds":     "match.max_distance_seconds",
	"normalize-if-starts-with": "normalize.markers",
	"thousands-separator":      "normalize.thousands_separator",
	"decimal-separator":        "normalize.decimal_separator",
	"notes":                    "notes",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("ledger.delimiter", ",")
	v.SetDefault("ledger.date_column", "Transaction Date")
	v.SetDefault("payment.delimiter", ",")
	v.SetDefault("payment.date_column", "Date")
	v.SetDefault("payment.time_column", "Time")
	v.SetDefault("payment.layout", reconcile.DefaultPaymentLayout)
	v.SetDefault("match.max_distance_seconds", 5)
	v.SetDefault("normalize.markers", "€$")
	v.SetDefault("normalize.thousands_separator", ".")
	v.SetDefault("normalize.decimal_separator", ",")
	v.SetDefault("notes", "")
}

// Build resolves the configuration from defaults, the optional config file,
// a .env file in the working directory, TALLY_* environment variables and
// finally the flags that were set explicitly.
func Build(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	if err := gotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise only fail in the middle of a run.
func (c *Config) Validate() error {
	if _, err := table.Delimiter(c.Ledger.Delimiter); err != nil {
		return fmt.Errorf("ledger delimiter: %w", err)
	}
	if _, err := table.Delimiter(c.Payment.Delimiter); err != nil {
		return fmt.Errorf("payment delimiter: %w", err)
	}
	if _, err := c.Normalizer(); err != nil {
		return err
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	return nil
}

// LedgerDelimiter returns the parsed ledger delimiter.
func (c *Config) LedgerDelimiter() rune {
	r, _ := table.Delimiter(c.Ledger.Delimiter)
	return r
}

// PaymentDelimiter returns the parsed payment delimiter.
func (c *Config) PaymentDelimiter() rune {
	r, _ := table.Delimiter(c.Payment.Delimiter)
	return r
}

// LogLevel returns the parsed log level, defaulting to info.
func (c *Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// Normalizer builds the currency normalizer.
func (c *Config) Normalizer() (*normalize.Normalizer, error) {
	return normalize.New(c.Normalize.Markers, c.Normalize.ThousandsSeparator, c.Normalize.DecimalSeparator)
}

// ReconcileOptions maps the configuration onto the reconciler options.
func (c *Config) ReconcileOptions() reconcile.Options {
	return reconcile.Options{
		LedgerDateColumn:   c.Ledger.DateColumn,
		PaymentDateColumn:  c.Payment.DateColumn,
		PaymentTimeColumn:  c.Payment.TimeColumn,
		PaymentLayout:      c.Payment.Layout,
		MaxDistanceSeconds: c.Match.MaxDistanceSeconds,
	}
}
