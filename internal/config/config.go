package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/willfong/atmsim/internal/models"
	"github.com/willfong/atmsim/internal/utils"
)

// EnvPrefix is the prefix for environment overrides (ATMSIM_LIMITS_HISTORY_SIZE, ...)
const EnvPrefix = "ATMSIM"

// Config holds all configuration for the ATM simulator
type Config struct {
	// Seed accounts. Empty means the embedded reference set.
	Accounts []AccountConfig `mapstructure:"accounts"`

	// Balance rules and history size
	Limits LimitsConfig `mapstructure:"limits"`

	// Presentation settings
	Display DisplayConfig `mapstructure:"display"`

	// Optional audit journal
	Audit AuditConfig `mapstructure:"audit"`

	// Logging
	Log LogConfig `mapstructure:"log"`

	Verbose bool `mapstructure:"verbose"`
}

// AccountConfig describes one seed account
type AccountConfig struct {
	ID      string  `mapstructure:"id"`
	PIN     string  `mapstructure:"pin"`
	Balance float64 `mapstructure:"balance"`
	Kind    string  `mapstructure:"kind"` // standard or savings
}

// Account converts the seed entry into a model
func (a AccountConfig) Account() (models.Account, error) {
	kind, err := models.ParseAccountKind(a.Kind)
	if err != nil {
		return models.Account{}, fmt.Errorf("account %q: %w", a.ID, err)
	}
	return models.Account{
		ID:      a.ID,
		PIN:     a.PIN,
		Balance: a.Balance,
		Kind:    kind,
	}, nil
}

// LimitsConfig holds the engine's balance rules
type LimitsConfig struct {
	WithdrawalLimit float64 `mapstructure:"withdrawal_limit"`
	InterestRate    float64 `mapstructure:"interest_rate"` // annual, 0.05 = 5%
	HistorySize     int     `mapstructure:"history_size"`
}

// DisplayConfig holds presentation settings
type DisplayConfig struct {
	Currency   string `mapstructure:"currency"`
	TimeFormat string `mapstructure:"time_format"`
}

// AuditConfig holds settings for the audit journal
type AuditConfig struct {
	Enabled       bool           `mapstructure:"enabled"`
	BufferSize    int            `mapstructure:"buffer_size"`
	BatchSize     int            `mapstructure:"batch_size"`
	FlushInterval time.Duration  `mapstructure:"flush_interval"`
	Database      DatabaseConfig `mapstructure:"database"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	// Connection string (DSN)
	// Format: user:password@tcp(host:port)/database
	DSN string `mapstructure:"dsn"`

	// Driver (mysql)
	Driver string `mapstructure:"driver"`

	// Connection pool settings
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // text or json
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Limits: LimitsConfig{
			WithdrawalLimit: WithdrawalLimit,
			InterestRate:    SavingsInterestRate,
			HistorySize:     HistorySize,
		},
		Display: DisplayConfig{
			Currency:   DisplayCurrency,
			TimeFormat: HistoryTimeFormat,
		},
		Audit: AuditConfig{
			Enabled:       false,
			BufferSize:    AuditBufferSize,
			BatchSize:     AuditBatchSize,
			FlushInterval: AuditFlushInterval,
			Database: DatabaseConfig{
				Driver:          DBDriver,
				MaxOpenConns:    DBMaxOpenConns,
				MaxIdleConns:    DBMaxIdleConns,
				ConnMaxLifetime: DBConnMaxLifetime,
				ConnMaxIdleTime: DBConnMaxIdleTime,
			},
		},
		Log: LogConfig{
			Level:  LogLevel,
			Format: LogFormat,
		},
	}
}

// SetDefaults registers every scalar key with v so environment overrides
// apply even when no config file mentions the key.
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("limits.withdrawal_limit", d.Limits.WithdrawalLimit)
	v.SetDefault("limits.interest_rate", d.Limits.InterestRate)
	v.SetDefault("limits.history_size", d.Limits.HistorySize)

	v.SetDefault("display.currency", d.Display.Currency)
	v.SetDefault("display.time_format", d.Display.TimeFormat)

	v.SetDefault("audit.enabled", d.Audit.Enabled)
	v.SetDefault("audit.buffer_size", d.Audit.BufferSize)
	v.SetDefault("audit.batch_size", d.Audit.BatchSize)
	v.SetDefault("audit.flush_interval", d.Audit.FlushInterval)
	v.SetDefault("audit.database.dsn", d.Audit.Database.DSN)
	v.SetDefault("audit.database.driver", d.Audit.Database.Driver)
	v.SetDefault("audit.database.max_open_conns", d.Audit.Database.MaxOpenConns)
	v.SetDefault("audit.database.max_idle_conns", d.Audit.Database.MaxIdleConns)
	v.SetDefault("audit.database.conn_max_lifetime", d.Audit.Database.ConnMaxLifetime)
	v.SetDefault("audit.database.conn_max_idle_time", d.Audit.Database.ConnMaxIdleTime)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// Load reads configuration from the global viper instance into a Config struct
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads configuration from v into a Config struct
func LoadFrom(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()

	// Unmarshal viper config into struct
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// SeedAccounts converts the configured seed list into models
func (c *Config) SeedAccounts() ([]models.Account, error) {
	accounts := make([]models.Account, 0, len(c.Accounts))
	for _, ac := range c.Accounts {
		acc, err := ac.Account()
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acc)
	}
	return accounts, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []string

	// Validate seed accounts
	seen := make(map[string]bool, len(c.Accounts))
	for i, acc := range c.Accounts {
		if acc.ID == "" {
			errs = append(errs, fmt.Sprintf("accounts[%d].id must not be empty", i))
		} else if seen[acc.ID] {
			errs = append(errs, fmt.Sprintf("accounts[%d].id %q is duplicated", i, acc.ID))
		}
		seen[acc.ID] = true
		if acc.PIN == "" {
			errs = append(errs, fmt.Sprintf("accounts[%d].pin must not be empty", i))
		}
		if acc.Balance < 0 {
			errs = append(errs, fmt.Sprintf("accounts[%d].balance must be non-negative", i))
		}
		if _, err := models.ParseAccountKind(acc.Kind); err != nil {
			errs = append(errs, fmt.Sprintf("accounts[%d].kind must be standard or savings", i))
		}
	}

	// Validate limits
	if c.Limits.WithdrawalLimit <= 0 {
		errs = append(errs, "limits.withdrawal_limit must be positive")
	}
	if c.Limits.InterestRate <= 0 || c.Limits.InterestRate > 1 {
		errs = append(errs, "limits.interest_rate must be greater than 0.0 and at most 1.0")
	}
	if c.Limits.HistorySize < 1 {
		errs = append(errs, "limits.history_size must be >= 1")
	}

	// Validate display settings
	if c.Display.Currency != "" && !utils.IsKnownCurrency(c.Display.Currency) {
		errs = append(errs, fmt.Sprintf("display.currency %q has no formatting rules", c.Display.Currency))
	}
	if c.Display.TimeFormat == "" {
		errs = append(errs, "display.time_format must not be empty")
	}

	// Validate log settings
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, "log.level must be debug, info, warn or error")
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, "log.format must be text or json")
	}

	// Validate audit journal settings only when it is switched on
	if c.Audit.Enabled {
		if c.Audit.Database.DSN == "" {
			errs = append(errs, "audit.database.dsn is required when audit is enabled")
		}
		if c.Audit.BufferSize < 1 {
			errs = append(errs, "audit.buffer_size must be >= 1")
		}
		if c.Audit.BatchSize < 1 {
			errs = append(errs, "audit.batch_size must be >= 1")
		}
		if c.Audit.FlushInterval <= 0 {
			errs = append(errs, "audit.flush_interval must be positive")
		}
		if c.Audit.Database.MaxOpenConns < 1 {
			errs = append(errs, "audit.database.max_open_conns must be >= 1")
		}
		if c.Audit.Database.MaxIdleConns < 0 {
			errs = append(errs, "audit.database.max_idle_conns must be >= 0")
		}
		if c.Audit.Database.MaxIdleConns > c.Audit.Database.MaxOpenConns {
			errs = append(errs, "audit.database.max_idle_conns should not exceed max_open_conns")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation errors:\n  - %s", joinErrors(errs))
	}

	return nil
}

// joinErrors joins error messages with newline and bullet points
func joinErrors(errs []string) string {
	return strings.Join(errs, "\n  - ")
}
