package simulator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/willfong/atmsim/internal/config"
	"github.com/willfong/atmsim/internal/models"
)

// AuditStore persists batches of audit logs. database.Queries implements it.
type AuditStore interface {
	InsertAuditLogs(ctx context.Context, logs []*models.AuditLog) error
}

// AuditWriter provides buffered, async writing of audit logs.
// It implements AuditRecorder so the engine can hand events off without waiting.
type AuditWriter struct {
	store  AuditStore
	logger *slog.Logger

	// Buffered channel for incoming audit logs
	buffer chan *models.AuditLog

	// Configuration
	batchSize     int
	flushInterval time.Duration
	writeTimeout  time.Duration

	// Lifecycle
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started atomic.Bool

	// Statistics
	stats AuditStats
}

// AuditStats tracks audit writing statistics
type AuditStats struct {
	logsReceived   atomic.Int64
	logsWritten    atomic.Int64
	batchesWritten atomic.Int64
	writeErrors    atomic.Int64
	droppedLogs    atomic.Int64
	lastFlushTime  atomic.Value // time.Time
}

// AuditWriterConfig holds configuration for the audit writer
type AuditWriterConfig struct {
	BufferSize    int           // Size of the audit log buffer
	BatchSize     int           // Max logs per batch insert
	FlushInterval time.Duration // How often to flush incomplete batches
	WriteTimeout  time.Duration // Deadline for a single batch insert
}

// DefaultAuditWriterConfig returns sensible defaults
func DefaultAuditWriterConfig() AuditWriterConfig {
	return AuditWriterConfig{
		BufferSize:    config.AuditBufferSize,
		BatchSize:     config.AuditBatchSize,
		FlushInterval: config.AuditFlushInterval,
		WriteTimeout:  5 * time.Second,
	}
}

// AuditWriterConfigFrom builds writer settings from the audit config section
func AuditWriterConfigFrom(cfg config.AuditConfig) AuditWriterConfig {
	wc := DefaultAuditWriterConfig()
	if cfg.BufferSize > 0 {
		wc.BufferSize = cfg.BufferSize
	}
	if cfg.BatchSize > 0 {
		wc.BatchSize = cfg.BatchSize
	}
	if cfg.FlushInterval > 0 {
		wc.FlushInterval = cfg.FlushInterval
	}
	return wc
}

// NewAuditWriter creates a new buffered audit writer
func NewAuditWriter(store AuditStore, cfg AuditWriterConfig, logger *slog.Logger) *AuditWriter {
	ctx, cancel := context.WithCancel(context.Background())

	if logger == nil {
		logger = slog.Default()
	}

	aw := &AuditWriter{
		store:         store,
		logger:        logger,
		buffer:        make(chan *models.AuditLog, cfg.BufferSize),
		batchSize:     cfg.BatchSize,
		flushInterval: cfg.FlushInterval,
		writeTimeout:  cfg.WriteTimeout,
		ctx:           ctx,
		cancel:        cancel,
	}

	aw.stats.lastFlushTime.Store(time.Time{})

	return aw
}

// Start begins the background write worker. A single worker keeps the
// journal in event order.
func (aw *AuditWriter) Start() {
	if !aw.started.CompareAndSwap(false, true) {
		return
	}
	aw.wg.Add(1)
	go aw.writeWorker()
}

// Write queues an audit log for async writing
// Returns immediately; the log will be written in the background
func (aw *AuditWriter) Write(log *models.AuditLog) {
	aw.stats.logsReceived.Add(1)

	select {
	case aw.buffer <- log:
		// Successfully queued
	default:
		// Buffer full - drop the log and record it
		aw.stats.droppedLogs.Add(1)
	}
}

// writeWorker processes logs from the buffer and writes them in batches
func (aw *AuditWriter) writeWorker() {
	defer aw.wg.Done()

	batch := make([]*models.AuditLog, 0, aw.batchSize)
	ticker := time.NewTicker(aw.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case log := <-aw.buffer:
			batch = append(batch, log)
			if len(batch) >= aw.batchSize {
				aw.writeBatch(batch)
				batch = batch[:0]
			}

		case <-ticker.C:
			// Periodic flush of incomplete batches
			if len(batch) > 0 {
				aw.writeBatch(batch)
				batch = batch[:0]
			}

		case <-aw.ctx.Done():
			// Drain remaining buffer on shutdown
			aw.drainBuffer(batch)
			return
		}
	}
}

// drainBuffer writes all remaining logs during shutdown
func (aw *AuditWriter) drainBuffer(batch []*models.AuditLog) {
	for {
		select {
		case log := <-aw.buffer:
			batch = append(batch, log)
			if len(batch) >= aw.batchSize {
				aw.writeBatch(batch)
				batch = batch[:0]
			}
		default:
			// Channel empty
			if len(batch) > 0 {
				aw.writeBatch(batch)
			}
			return
		}
	}
}

// writeBatch performs a bulk insert of audit logs
func (aw *AuditWriter) writeBatch(batch []*models.AuditLog) {
	if len(batch) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), aw.writeTimeout)
	defer cancel()

	if err := aw.store.InsertAuditLogs(ctx, batch); err != nil {
		aw.stats.writeErrors.Add(1)
		aw.logger.Warn("audit batch write failed", "size", len(batch), "err", err)
		return
	}

	aw.stats.logsWritten.Add(int64(len(batch)))
	aw.stats.batchesWritten.Add(1)
	aw.stats.lastFlushTime.Store(time.Now())
}

// Stop drains the buffer and waits for the worker, up to timeout
func (aw *AuditWriter) Stop(timeout time.Duration) error {
	// Signal worker to stop
	aw.cancel()

	done := make(chan struct{})
	go func() {
		aw.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("audit writer shutdown timed out")
	}
}

// GetStats returns current audit writing statistics
func (aw *AuditWriter) GetStats() AuditStatsSnapshot {
	lastFlush, _ := aw.stats.lastFlushTime.Load().(time.Time)
	return AuditStatsSnapshot{
		LogsReceived:   aw.stats.logsReceived.Load(),
		LogsWritten:    aw.stats.logsWritten.Load(),
		BatchesWritten: aw.stats.batchesWritten.Load(),
		WriteErrors:    aw.stats.writeErrors.Load(),
		DroppedLogs:    aw.stats.droppedLogs.Load(),
		BufferSize:     len(aw.buffer),
		BufferCapacity: cap(aw.buffer),
		LastFlushTime:  lastFlush,
	}
}

// AuditStatsSnapshot is a point-in-time view of audit stats
type AuditStatsSnapshot struct {
	LogsReceived   int64
	LogsWritten    int64
	BatchesWritten int64
	WriteErrors    int64
	DroppedLogs    int64
	BufferSize     int
	BufferCapacity int
	LastFlushTime  time.Time
}

// Pending returns the number of logs waiting to be written
func (s AuditStatsSnapshot) Pending() int64 {
	return s.LogsReceived - s.LogsWritten - s.DroppedLogs
}
