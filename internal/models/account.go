package models

import (
	"fmt"
	"strings"
)

// AccountKind represents the type of ATM account
type AccountKind string

const (
	AccountKindStandard AccountKind = "standard"
	AccountKindSavings  AccountKind = "savings"
)

// ParseAccountKind converts a configuration value into an AccountKind.
// Matching is case-insensitive; an empty value means standard.
func ParseAccountKind(s string) (AccountKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(AccountKindStandard):
		return AccountKindStandard, nil
	case string(AccountKindSavings):
		return AccountKindSavings, nil
	default:
		return "", fmt.Errorf("unknown account kind %q", s)
	}
}

func (k AccountKind) String() string {
	return string(k)
}

// Account represents a PIN-protected balance record
type Account struct {
	// Login identifier (username)
	ID string `json:"id"`

	// Credential, compared verbatim
	PIN string `json:"-"`

	// Balance in major units. Floating point, no precision guarantees.
	Balance float64 `json:"balance"`

	Kind AccountKind `json:"kind"`
}

// IsSavings returns true if the account earns interest
func (a *Account) IsSavings() bool {
	return a.Kind == AccountKindSavings
}

// CanWithdraw checks if the balance covers the given amount
func (a *Account) CanWithdraw(amount float64) bool {
	return amount <= a.Balance
}

// CheckPIN reports whether pin matches the account credential exactly
func (a *Account) CheckPIN(pin string) bool {
	return a.PIN == pin
}
