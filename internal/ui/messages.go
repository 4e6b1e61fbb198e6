package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/willfong/atmsim/internal/config"
	"github.com/willfong/atmsim/internal/models"
	"github.com/willfong/atmsim/internal/simulator"
	"github.com/willfong/atmsim/internal/utils"
)

// Messages turns engine results into the text shown to the customer.
// Both front ends share it so the wording is identical.
type Messages struct {
	Currency        string
	TimeFormat      string
	WithdrawalLimit float64
	HistorySize     int
}

// NewMessages builds a formatter from the display and limits config
func NewMessages(display config.DisplayConfig, limits config.LimitsConfig) Messages {
	return Messages{
		Currency:        display.Currency,
		TimeFormat:      display.TimeFormat,
		WithdrawalLimit: limits.WithdrawalLimit,
		HistorySize:     limits.HistorySize,
	}
}

// Amount renders a money value in the display currency
func (m Messages) Amount(amount float64) string {
	return utils.FormatAmount(amount, m.Currency)
}

// Error returns the customer wording for an engine error
func (m Messages) Error(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, simulator.ErrEmptyCredential):
		return "Please enter both username and PIN"
	case errors.Is(err, simulator.ErrInvalidCredentials):
		return "Invalid username or PIN"
	case errors.Is(err, simulator.ErrInvalidAmount):
		return "Invalid amount"
	case errors.Is(err, simulator.ErrNonPositiveAmount):
		return "Amount must be positive"
	case errors.Is(err, simulator.ErrLimitExceeded):
		return "Withdrawal exceeds daily limit of " + m.Amount(m.WithdrawalLimit)
	case errors.Is(err, simulator.ErrInsufficientFunds):
		return "Insufficient funds"
	case errors.Is(err, simulator.ErrNoActiveSession):
		return "Please log in first"
	case errors.Is(err, simulator.ErrNotSavingsAccount):
		return "This is not a savings account. No interest will be applied."
	default:
		return err.Error()
	}
}

// Welcome greets a customer after login
func (m Messages) Welcome(id string) string {
	return fmt.Sprintf("Welcome, %s!\nPlease select an operation.", id)
}

// Withdrawn confirms a withdrawal
func (m Messages) Withdrawn(balance float64) string {
	return "Withdrawal successful.\nNew balance: " + m.Amount(balance)
}

// Deposited confirms a deposit
func (m Messages) Deposited(balance float64) string {
	return "Deposit successful.\nNew balance: " + m.Amount(balance)
}

// Balance reports the current balance
func (m Messages) Balance(balance float64) string {
	return "Current balance: " + m.Amount(balance)
}

// Interest reports an interest projection. Non-savings accounts get the notice.
func (m Messages) Interest(r simulator.InterestReport) string {
	if !r.Applicable {
		return m.Error(r.Notice)
	}
	return fmt.Sprintf("Savings account interest (monthly): %s\nProjected balance after interest: %s",
		m.Amount(r.MonthlyInterest), m.Amount(r.ProjectedBalance))
}

// HistoryTitle is the heading above the transaction list
func (m Messages) HistoryTitle() string {
	n := m.HistorySize
	if n <= 0 {
		n = config.HistorySize
	}
	return fmt.Sprintf("Last %d Transactions:", n)
}

// HistoryLines renders entries one per line, newest first
func (m Messages) HistoryLines(entries []models.TransactionRecord) []string {
	layout := m.TimeFormat
	if layout == "" {
		layout = models.HistoryTimeFormat
	}
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.Format(layout)
	}
	return lines
}

// History renders the heading and the entries as one block
func (m Messages) History(entries []models.TransactionRecord) string {
	return m.HistoryTitle() + "\n" + strings.Join(m.HistoryLines(entries), "\n")
}
