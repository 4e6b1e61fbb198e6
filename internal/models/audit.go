package models

import (
	"time"
)

// AuditAction represents the type of action being logged
type AuditAction string

const (
	// Authentication actions
	AuditLoginSuccess AuditAction = "login_success"
	AuditLoginFailed  AuditAction = "login_failed"
	AuditLogout       AuditAction = "logout"

	// Operation attempted with no customer logged in
	AuditSessionRequired AuditAction = "session_required"

	// Transaction actions
	AuditTransactionCompleted AuditAction = "transaction_completed"
	AuditTransactionDeclined  AuditAction = "transaction_declined"

	// Query actions
	AuditBalanceInquiry      AuditAction = "balance_inquiry"
	AuditInterestCalculated  AuditAction = "interest_calculated"
	AuditInterestNotEligible AuditAction = "interest_not_eligible"
)

// AuditOutcome represents the result of the action
type AuditOutcome string

const (
	OutcomeSuccess AuditOutcome = "success"
	OutcomeFailure AuditOutcome = "failure"
	OutcomeDenied  AuditOutcome = "denied"
)

// AuditChannel represents where the action originated
type AuditChannel string

const (
	AuditChannelATM AuditChannel = "atm"
)

// AuditLog is one event in the audit journal
type AuditLog struct {
	ID int64 `db:"id" json:"id"`

	Timestamp time.Time `db:"timestamp" json:"timestamp"`

	// Groups events from one login to the matching logout
	SessionID string `db:"session_id" json:"session_id"`

	// Account the event concerns; may be an unknown id for failed logins
	AccountID string `db:"account_id" json:"account_id"`

	Action  AuditAction  `db:"action" json:"action"`
	Outcome AuditOutcome `db:"outcome" json:"outcome"`
	Channel AuditChannel `db:"channel" json:"channel"`

	// Amount involved, nil for non-monetary events
	Amount *float64 `db:"amount" json:"amount"`

	// Balance after the event, nil when no session was active
	BalanceAfter *float64 `db:"balance_after" json:"balance_after"`

	Description   string `db:"description" json:"description"`
	FailureReason string `db:"failure_reason" json:"failure_reason"`
}

// IsSuccessful returns true if the action completed successfully
func (a *AuditLog) IsSuccessful() bool {
	return a.Outcome == OutcomeSuccess
}

// IsAuthenticationEvent returns true if this is a login/logout event
func (a *AuditLog) IsAuthenticationEvent() bool {
	switch a.Action {
	case AuditLoginSuccess, AuditLoginFailed, AuditLogout:
		return true
	default:
		return false
	}
}

// IsTransactionEvent returns true if this is a balance-changing event
func (a *AuditLog) IsTransactionEvent() bool {
	switch a.Action {
	case AuditTransactionCompleted, AuditTransactionDeclined:
		return true
	default:
		return false
	}
}
