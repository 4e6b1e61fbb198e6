package database

import (
	"context"
	"embed"
	"fmt"
	"strings"
)

//go:embed schemas/*.sql
var schemaFS embed.FS

// AuditSchema returns the DDL for the audit journal table
func AuditSchema() (string, error) {
	data, err := schemaFS.ReadFile("schemas/audit.sql")
	if err != nil {
		return "", fmt.Errorf("failed to read audit schema: %w", err)
	}
	return string(data), nil
}

// EnsureSchema creates the audit table if it does not exist
func (q *Queries) EnsureSchema(ctx context.Context) error {
	ddl, err := AuditSchema()
	if err != nil {
		return err
	}

	for _, stmt := range splitStatements(ddl) {
		if _, err := q.pool.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// splitStatements splits a SQL script on semicolons, dropping comments and blanks
func splitStatements(script string) []string {
	var lines []string
	for _, line := range strings.Split(script, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		lines = append(lines, line)
	}

	var stmts []string
	for _, stmt := range strings.Split(strings.Join(lines, "\n"), ";") {
		if s := strings.TrimSpace(stmt); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}
