package simulator

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// OperationType represents an engine operation
type OperationType string

const (
	OpLogin        OperationType = "login"
	OpLogout       OperationType = "logout"
	OpWithdrawal   OperationType = "withdrawal"
	OpDeposit      OperationType = "deposit"
	OpBalanceCheck OperationType = "balance_check"
	OpInterest     OperationType = "interest"
)

// allOperations fixes the reporting order
var allOperations = []OperationType{OpLogin, OpWithdrawal, OpDeposit, OpBalanceCheck, OpInterest, OpLogout}

// Metrics counts completed operations and rejections for the process lifetime.
// Counters survive logout so a summary can be printed on exit.
type Metrics struct {
	totalOperations atomic.Int64
	totalErrors     atomic.Int64
	totalSessions   atomic.Int64

	opCounts map[OperationType]*atomic.Int64

	errMu     sync.Mutex
	errCounts map[ErrorType]int64

	startTime time.Time
}

// NewMetrics creates an empty metrics tracker
func NewMetrics() *Metrics {
	m := &Metrics{
		opCounts:  make(map[OperationType]*atomic.Int64, len(allOperations)),
		errCounts: make(map[ErrorType]int64),
		startTime: time.Now(),
	}
	for _, op := range allOperations {
		m.opCounts[op] = &atomic.Int64{}
	}
	return m
}

// RecordOperation counts one completed operation
func (m *Metrics) RecordOperation(op OperationType) {
	m.totalOperations.Add(1)
	if c, ok := m.opCounts[op]; ok {
		c.Add(1)
	}
}

// RecordError counts one rejected operation
func (m *Metrics) RecordError(errType ErrorType) {
	m.totalErrors.Add(1)
	m.errMu.Lock()
	m.errCounts[errType]++
	m.errMu.Unlock()
}

// RecordSession counts one successful login
func (m *Metrics) RecordSession() {
	m.totalSessions.Add(1)
}

// MetricsSnapshot is a point-in-time view of the counters
type MetricsSnapshot struct {
	Uptime     time.Duration
	Operations int64
	Errors     int64
	Sessions   int64

	ByOperation map[OperationType]int64
	ByError     map[ErrorType]int64
}

// Snapshot returns the current counters
func (m *Metrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{
		Uptime:      time.Since(m.startTime),
		Operations:  m.totalOperations.Load(),
		Errors:      m.totalErrors.Load(),
		Sessions:    m.totalSessions.Load(),
		ByOperation: make(map[OperationType]int64, len(m.opCounts)),
		ByError:     make(map[ErrorType]int64),
	}
	for op, c := range m.opCounts {
		s.ByOperation[op] = c.Load()
	}
	m.errMu.Lock()
	for et, n := range m.errCounts {
		s.ByError[et] = n
	}
	m.errMu.Unlock()
	return s
}

// OperationOrder returns the operation types in reporting order
func OperationOrder() []OperationType {
	out := make([]OperationType, len(allOperations))
	copy(out, allOperations)
	return out
}

// ErrorTypes returns the recorded error types sorted by name
func (s MetricsSnapshot) ErrorTypes() []ErrorType {
	types := make([]ErrorType, 0, len(s.ByError))
	for et := range s.ByError {
		types = append(types, et)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
