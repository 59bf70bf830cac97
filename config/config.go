package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/billbatista/acasinha-ledger/currency"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Ledger   LedgerConfig   `yaml:"ledger"`
	Rates    RatesConfig    `yaml:"rates"`
	Events   EventsConfig   `yaml:"events"`
}

type ServerConfig struct {
	Port             int `yaml:"port"`
	SessionTTLHours  int `yaml:"session_ttl_hours"`
	ShutdownTimeoutS int `yaml:"shutdown_timeout_seconds"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

type LedgerConfig struct {
	BaseCurrency      string  `yaml:"base_currency"`
	MonthlyBudget     float64 `yaml:"monthly_budget"`
	StrictSettlements bool    `yaml:"strict_settlements"`
}

type RatesConfig struct {
	URL             string `yaml:"url"`
	RefreshSchedule string `yaml:"refresh_schedule"` // cron spec, empty disables
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
}

type EventsConfig struct {
	BufferSize          int `yaml:"buffer_size"`
	DrainTimeoutSeconds int `yaml:"drain_timeout_seconds"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:             5000,
			SessionTTLHours:  7 * 24,
			ShutdownTimeoutS: 10,
		},
		Database: DatabaseConfig{
			URL: "host=localhost port=5432 user=postgres password=postgres dbname=expenses sslmode=disable",
		},
		Log: LogConfig{Level: "info", Format: "text"},
		Ledger: LedgerConfig{
			BaseCurrency:  string(currency.TWD),
			MonthlyBudget: 30000,
		},
		Rates: RatesConfig{
			URL:             "https://api.exchangerate-api.com/v4/latest/TWD",
			RefreshSchedule: "0 */6 * * *",
			TimeoutSeconds:  10,
		},
		Events: EventsConfig{BufferSize: 100, DrainTimeoutSeconds: 5},
	}
}

// Load reads configuration from a YAML file on top of Default. A missing
// file is not an error; environment variables win over both.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	if err := cfg.overrideWithEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) overrideWithEnv() error {
	if val := os.Getenv("DATABASE_URL"); val != "" {
		c.Database.URL = val
	}
	if val := os.Getenv("PORT"); val != "" {
		port, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", val, err)
		}
		c.Server.Port = port
	}
	if val := os.Getenv("BASE_CURRENCY"); val != "" {
		c.Ledger.BaseCurrency = val
	}
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}
	if val := os.Getenv("RATES_URL"); val != "" {
		c.Rates.URL = val
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port out of range: %d", c.Server.Port)
	}
	if c.Database.URL == "" {
		return errors.New("database url is required")
	}
	if _, err := currency.Parse(c.Ledger.BaseCurrency); err != nil {
		return fmt.Errorf("base currency %q: %w", c.Ledger.BaseCurrency, err)
	}
	if c.Ledger.MonthlyBudget < 0 {
		return errors.New("monthly budget can't be negative")
	}
	if c.Rates.RefreshSchedule != "" {
		if _, err := cron.ParseStandard(c.Rates.RefreshSchedule); err != nil {
			return fmt.Errorf("rates refresh schedule: %w", err)
		}
	}
	if c.Events.BufferSize <= 0 {
		return errors.New("events buffer size must be positive")
	}
	return nil
}

func (c *Config) BaseCurrency() currency.Code {
	code, _ := currency.Parse(c.Ledger.BaseCurrency)
	return code
}

func (c *Config) MonthlyBudget() decimal.Decimal {
	return decimal.NewFromFloat(c.Ledger.MonthlyBudget)
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Server.SessionTTLHours) * time.Hour
}

func (c *Config) RatesTimeout() time.Duration {
	return time.Duration(c.Rates.TimeoutSeconds) * time.Second
}

func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeoutS) * time.Second
}

func (c *Config) EventsDrainTimeout() time.Duration {
	return time.Duration(c.Events.DrainTimeoutSeconds) * time.Second
}
