// Package database provides the audit journal storage for the ATM simulator.
//
// FILE: queries_audit.go
// PURPOSE: Audit log database operations.
//
// KEY FUNCTIONS:
// - InsertAuditLog: Records a single audit event
// - InsertAuditLogs: Records a batch with one multi-row INSERT
//
// RELATED FILES:
// - queries.go: Base Queries struct
package database

import (
	"context"
	"strings"

	"github.com/willfong/atmsim/internal/models"
)

const insertAuditPrefix = `INSERT INTO audit_logs (
		timestamp, session_id, account_id, action, outcome, channel,
		amount, balance_after, description, failure_reason
	) VALUES `

const auditPlaceholders = "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"

// auditColumns is the number of bound values per audit row
const auditColumns = 10

// InsertAuditLog records an audit event
func (q *Queries) InsertAuditLog(ctx context.Context, log *models.AuditLog) error {
	_, err := q.pool.ExecContext(ctx, insertAuditPrefix+auditPlaceholders, auditArgs(log)...)
	return err
}

// InsertAuditLogs performs a multi-row insert for efficiency
func (q *Queries) InsertAuditLogs(ctx context.Context, logs []*models.AuditLog) error {
	if len(logs) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(insertAuditPrefix)
	valueArgs := make([]any, 0, len(logs)*auditColumns)

	for i, log := range logs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(auditPlaceholders)
		valueArgs = append(valueArgs, auditArgs(log)...)
	}

	_, err := q.pool.ExecContext(ctx, sb.String(), valueArgs...)
	return err
}

func auditArgs(log *models.AuditLog) []any {
	return []any{
		log.Timestamp, log.SessionID, log.AccountID, string(log.Action), string(log.Outcome), string(log.Channel),
		log.Amount, log.BalanceAfter, log.Description, log.FailureReason,
	}
}
