package models

import (
	"time"
)

// HistoryTimeFormat is the layout used when a record is rendered as a history line
const HistoryTimeFormat = "2006-01-02 15:04:05"

// Record descriptions written by the session engine
const (
	DescLogin              = "Login"
	DescBalanceChecked     = "Balance checked"
	DescInterestCalculated = "Interest calculated"
	DescWithdrawPrefix     = "Withdraw: "
	DescDepositPrefix      = "Deposit: "
)

// TransactionRecord is one entry in the session history
type TransactionRecord struct {
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description"`
}

// String renders the record as "yyyy-MM-dd HH:mm:ss - description"
func (r TransactionRecord) String() string {
	return r.Format(HistoryTimeFormat)
}

// Format renders the record using the given time layout
func (r TransactionRecord) Format(layout string) string {
	return r.Timestamp.Format(layout) + " - " + r.Description
}
