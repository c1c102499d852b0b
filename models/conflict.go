package models

import "encoding/json"

// ConflictType classifies how the server side of a record diverged from the
// local copy.
type ConflictType string

const (
	// ConflictModified means both sides hold the record with different data.
	ConflictModified ConflictType = "modified"
	// ConflictDeleted means the record exists locally but is gone on the server.
	ConflictDeleted ConflictType = "deleted"
	// ConflictCreated means the record exists on the server but not locally.
	ConflictCreated ConflictType = "created"
)

// Resolution selects which side of a conflict wins. There is no automatic
// merge; the policy is caller-supplied last-writer-wins at record granularity.
type Resolution string

const (
	ResolutionLocal  Resolution = "local"
	ResolutionServer Resolution = "server"
)

// ConflictItem describes a single diverged record. It is transient: produced
// when a write detects divergence, consumed immediately by the resolver and
// then discarded, never persisted.
type ConflictItem struct {
	Table      string          `json:"table"`
	RecordID   string          `json:"record_id"`
	LocalData  json.RawMessage `json:"local_data,omitempty"`
	ServerData json.RawMessage `json:"server_data,omitempty"`
	Type       ConflictType    `json:"conflict_type"`
}
