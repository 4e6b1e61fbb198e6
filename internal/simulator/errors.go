package simulator

import (
	"errors"
)

// Login errors. Session state is unchanged when either is returned.
var (
	ErrEmptyCredential    = errors.New("username and PIN are required")
	ErrInvalidCredentials = errors.New("invalid username or PIN")
)

// Operation errors. Balance and history are unchanged when any is returned.
var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrNonPositiveAmount = errors.New("amount must be positive")
	ErrLimitExceeded     = errors.New("withdrawal exceeds daily limit")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNoActiveSession   = errors.New("no active session")
)

// ErrNotSavingsAccount is carried as InterestReport.Notice, never returned as an error.
var ErrNotSavingsAccount = errors.New("not a savings account")

// ErrorType categorizes errors for metrics and audit reporting
type ErrorType string

const (
	ErrorTypeAuth       ErrorType = "auth"
	ErrorTypeInput      ErrorType = "input"
	ErrorTypeAmount     ErrorType = "amount"
	ErrorTypeDailyLimit ErrorType = "daily_limit"
	ErrorTypeFunds      ErrorType = "funds"
	ErrorTypeSession    ErrorType = "session"
	ErrorTypeUnknown    ErrorType = "unknown"
)

// ClassifyError maps an engine error to its reporting category
func ClassifyError(err error) ErrorType {
	switch {
	case errors.Is(err, ErrEmptyCredential), errors.Is(err, ErrInvalidCredentials):
		return ErrorTypeAuth
	case errors.Is(err, ErrInvalidAmount):
		return ErrorTypeInput
	case errors.Is(err, ErrNonPositiveAmount):
		return ErrorTypeAmount
	case errors.Is(err, ErrLimitExceeded):
		return ErrorTypeDailyLimit
	case errors.Is(err, ErrInsufficientFunds):
		return ErrorTypeFunds
	case errors.Is(err, ErrNoActiveSession):
		return ErrorTypeSession
	default:
		return ErrorTypeUnknown
	}
}

// IsValidationError returns true when the input could not be read as an amount,
// as opposed to an amount that was read but broke a business rule.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidAmount)
}

// IsBusinessRuleError returns true for amounts rejected by a balance rule
func IsBusinessRuleError(err error) bool {
	return errors.Is(err, ErrNonPositiveAmount) ||
		errors.Is(err, ErrLimitExceeded) ||
		errors.Is(err, ErrInsufficientFunds)
}
