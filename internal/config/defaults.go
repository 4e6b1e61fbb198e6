// Package config contains compile-time defaults for the ATM simulator.
// Most of these can be overridden from a config file, ATMSIM_* environment
// variables, or command-line flags.
package config

import "time"

// =============================================================================
// SESSION ENGINE DEFAULTS
// =============================================================================

// Balance rules
const (
	// WithdrawalLimit is the ceiling on a single withdrawal (not a rolling daily total)
	WithdrawalLimit = 50000.0

	// SavingsInterestRate is the annual rate used for the monthly interest projection
	SavingsInterestRate = 0.05

	// MonthsPerYear divides the annual rate into a monthly one
	MonthsPerYear = 12
)

// History
const (
	// HistorySize is how many transaction records a session keeps
	HistorySize = 5
)

// =============================================================================
// DISPLAY DEFAULTS
// =============================================================================

const (
	// DisplayCurrency selects formatting rules from utils.Currencies.
	// Empty prints amounts as plain numbers.
	DisplayCurrency = ""

	// HistoryTimeFormat is the layout for history timestamps
	HistoryTimeFormat = "2006-01-02 15:04:05"
)

// =============================================================================
// AUDIT JOURNAL DEFAULTS
// =============================================================================

const (
	// AuditBufferSize is how many events may wait for the writer before new ones are dropped
	AuditBufferSize = 1000

	// AuditBatchSize is the maximum rows per INSERT
	AuditBatchSize = 50

	// AuditFlushInterval is how often incomplete batches are written
	AuditFlushInterval = 500 * time.Millisecond

	// AuditShutdownTimeout is max wait for the writer to drain on exit
	AuditShutdownTimeout = 10 * time.Second
)

// =============================================================================
// DATABASE DEFAULTS
// =============================================================================

const (
	// DBDriver is the database driver to use
	DBDriver = "mysql"

	// DBMaxOpenConns is maximum open connections in the pool
	DBMaxOpenConns = 4

	// DBMaxIdleConns is maximum idle connections in the pool
	DBMaxIdleConns = 2

	// DBConnMaxLifetime is how long a connection can be reused
	DBConnMaxLifetime = 5 * time.Minute

	// DBConnMaxIdleTime is how long an idle connection is kept
	DBConnMaxIdleTime = 1 * time.Minute

	// DBConnectTimeout bounds the startup ping
	DBConnectTimeout = 10 * time.Second
)

// =============================================================================
// LOGGING
// =============================================================================

const (
	// LogLevel is the minimum level written to stderr
	LogLevel = "warn"

	// LogFormat is text or json
	LogFormat = "text"
)
