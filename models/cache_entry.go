// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"time"
)

// CacheEntry is the versioned, checksummed, TTL-bearing wrapper around every
// table blob persisted by the cache engine. The JSON field names and the
// per-table key prefix form a fixed on-disk contract: a corrupted but
// well-formed entry must stay distinguishable from a genuinely absent key.
type CacheEntry struct {
	// Data is the cached table payload, kept opaque as raw JSON.
	Data json.RawMessage `json:"data"`

	// Version is the schema version the entry was written with.
	Version string `json:"version"`

	// Timestamp records when the entry was created. A timestamp ahead of
	// the current time is a corruption signal, never valid.
	Timestamp time.Time `json:"timestamp"`

	// TTL is the entry's time-to-live in milliseconds.
	TTL int64 `json:"ttl"`

	// Checksum is the hex-encoded SHA-256 digest of the compacted Data.
	Checksum string `json:"checksum"`
}

// TTLDuration returns the entry's TTL as a time.Duration.
func (e CacheEntry) TTLDuration() time.Duration {
	return time.Duration(e.TTL) * time.Millisecond
}

// Age returns how old the entry is relative to now.
func (e CacheEntry) Age(now time.Time) time.Duration {
	return now.Sub(e.Timestamp)
}

// Fresh reports whether the entry is still within its TTL at the given time.
func (e CacheEntry) Fresh(now time.Time) bool {
	return e.Age(now) < e.TTLDuration()
}

// ValidationReport is the outcome of validating a cache entry. Issues holds a
// human-readable string per failed check; callers mostly branch on IsValid and
// log the issue list.
type ValidationReport struct {
	IsValid bool
	Issues  []string
}
