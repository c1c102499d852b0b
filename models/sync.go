package models

import "time"

// SyncStatus is the process-wide synchronisation state. It is mutated only by
// the sync engine and persisted under the engine's status key so it survives a
// restart. SyncInProgress enforces non-reentrancy of a full sync pass.
type SyncStatus struct {
	IsOnline       bool       `json:"is_online"`
	LastSync       *time.Time `json:"last_sync,omitempty"`
	PendingChanges int        `json:"pending_changes"`
	SyncInProgress bool       `json:"sync_in_progress"`
}

// TableError records a single table's failure inside an aggregate sync result.
type TableError struct {
	Table string `json:"table"`
	Err   string `json:"error"`
}

// SyncResult aggregates the outcome of one full sync pass. Per-table failures
// are isolated: a failed table lands in Errors while its siblings still sync.
// Skipped is set when the pass was deliberately not attempted (logout in
// progress, offline, unauthenticated); that is a no-op, not a failure.
type SyncResult struct {
	Success      bool         `json:"success"`
	SyncedTables []string     `json:"synced_tables,omitempty"`
	Errors       []TableError `json:"errors,omitempty"`
	Skipped      string       `json:"skipped,omitempty"`
}
