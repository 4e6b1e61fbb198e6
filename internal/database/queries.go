// Package database provides the audit journal storage for the ATM simulator.
//
// FILE: queries.go
// PURPOSE: Base Queries struct and constructor. This is the entry point for all
// database operations.
//
// KEY TYPES:
// - Queries: Main struct holding database pool connection
//
// RELATED FILES:
// - queries_audit.go: Audit log insertion
// - schema.go: Embedded DDL for the audit table
package database

// Queries provides database operations for the audit journal
type Queries struct {
	pool *Pool
}

// NewQueries creates a new Queries instance
func NewQueries(pool *Pool) *Queries {
	return &Queries{pool: pool}
}
