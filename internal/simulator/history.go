// Package simulator implements the single-session ATM engine.
//
// FILE: history.go
// PURPOSE: Fixed-capacity transaction history. New records go in at the head;
// once full, each append overwrites the oldest slot.
//
// KEY TYPES:
// - TransactionLog: ring buffer of models.TransactionRecord
package simulator

import (
	"time"

	"github.com/willfong/atmsim/internal/config"
	"github.com/willfong/atmsim/internal/models"
)

// TransactionLog keeps the most recent records of the current session
type TransactionLog struct {
	buf  []models.TransactionRecord
	next int // slot the next record is written to
	size int
}

// NewTransactionLog creates a log holding at most capacity records.
// A non-positive capacity falls back to config.HistorySize.
func NewTransactionLog(capacity int) *TransactionLog {
	if capacity <= 0 {
		capacity = config.HistorySize
	}
	return &TransactionLog{
		buf: make([]models.TransactionRecord, capacity),
	}
}

// Append records a new entry, dropping the oldest when full
func (l *TransactionLog) Append(description string, now time.Time) {
	l.buf[l.next] = models.TransactionRecord{
		Timestamp:   now,
		Description: description,
	}
	l.next = (l.next + 1) % len(l.buf)
	if l.size < len(l.buf) {
		l.size++
	}
}

// Clear removes all records
func (l *TransactionLog) Clear() {
	for i := range l.buf {
		l.buf[i] = models.TransactionRecord{}
	}
	l.next = 0
	l.size = 0
}

// Entries returns the records newest first
func (l *TransactionLog) Entries() []models.TransactionRecord {
	out := make([]models.TransactionRecord, 0, l.size)
	for i := 1; i <= l.size; i++ {
		idx := (l.next - i + len(l.buf)) % len(l.buf)
		out = append(out, l.buf[idx])
	}
	return out
}

// Len returns the number of records held
func (l *TransactionLog) Len() int {
	return l.size
}

// Cap returns the maximum number of records held
func (l *TransactionLog) Cap() int {
	return len(l.buf)
}
