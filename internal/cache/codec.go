// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/MKhiriev/go-event-companion/models"
)

// SchemaVersion is stamped into every entry the codec creates. Entries
// written under a different schema version fail validation and are treated
// as cache misses, forcing a refetch instead of a risky in-place migration.
const SchemaVersion = "1.0"

const (
	checksumIssuePrefix = "checksum mismatch"
	expiredIssuePrefix  = "entry expired"
)

// Codec builds and validates cache entries. It is pure and stateless apart
// from the injected clock, which exists so tests can construct entries at a
// chosen point in time.
type Codec struct {
	version string
	clock   func() time.Time
}

// NewCodec returns a Codec stamping entries with the current schema version.
// A nil clock defaults to time.Now.
func NewCodec(clock func() time.Time) *Codec {
	if clock == nil {
		clock = time.Now
	}
	return &Codec{version: SchemaVersion, clock: clock}
}

// CreateEntry wraps data into a checksummed entry with the given TTL and the
// codec's current time. It has no side effects.
func (c *Codec) CreateEntry(data json.RawMessage, ttl time.Duration) (models.CacheEntry, error) {
	if !json.Valid(data) {
		return models.CacheEntry{}, ErrMalformedData
	}

	sum, err := Checksum(data)
	if err != nil {
		return models.CacheEntry{}, fmt.Errorf("compute checksum: %w", err)
	}

	return models.CacheEntry{
		Data:      data,
		Version:   c.version,
		Timestamp: c.clock(),
		TTL:       ttl.Milliseconds(),
		Checksum:  sum,
	}, nil
}

// ValidateEntry checks, in order: structural well-formedness, schema version,
// timestamp not in the future, age within TTL, and checksum. Every failing
// check appends a human-readable issue; multiple issues may co-occur.
func (c *Codec) ValidateEntry(entry models.CacheEntry) models.ValidationReport {
	var issues []string

	if structural := c.structuralIssues(entry); len(structural) > 0 {
		return models.ValidationReport{Issues: structural}
	}

	if entry.Version != c.version {
		issues = append(issues, fmt.Sprintf("schema version mismatch: have %q, want %q", entry.Version, c.version))
	}

	now := c.clock()
	if entry.Timestamp.After(now) {
		issues = append(issues, fmt.Sprintf("timestamp %s is in the future", entry.Timestamp.Format(time.RFC3339)))
	} else if !entry.Fresh(now) {
		issues = append(issues, fmt.Sprintf("%s: age %s exceeds ttl %s", expiredIssuePrefix, entry.Age(now), entry.TTLDuration()))
	}

	sum, err := Checksum(entry.Data)
	if err != nil {
		issues = append(issues, fmt.Sprintf("checksum not computable: %v", err))
	} else if sum != entry.Checksum {
		issues = append(issues, fmt.Sprintf("%s: stored %s, computed %s", checksumIssuePrefix, entry.Checksum, sum))
	}

	return models.ValidationReport{IsValid: len(issues) == 0, Issues: issues}
}

// RepairEntry recomputes the checksum from the entry's current data and
// rebuilds the entry. It is meant to be called only when the sole validation
// issue is a checksum mismatch. Repair is skipped entirely when the data
// itself is not well-formed JSON, and abandoned when the rebuilt entry still
// fails validation.
func (c *Codec) RepairEntry(entry models.CacheEntry) (models.CacheEntry, error) {
	if !json.Valid(entry.Data) {
		return models.CacheEntry{}, ErrUnrecoverable
	}

	sum, err := Checksum(entry.Data)
	if err != nil {
		return models.CacheEntry{}, fmt.Errorf("%w: %v", ErrUnrecoverable, err)
	}

	repaired := entry
	repaired.Checksum = sum

	if report := c.ValidateEntry(repaired); !report.IsValid {
		return models.CacheEntry{}, fmt.Errorf("%w: %s", ErrRepairFailed, strings.Join(report.Issues, "; "))
	}

	return repaired, nil
}

// IsChecksumOnly reports whether a failed validation can be repaired, i.e.
// the report carries exactly one issue and it is a checksum mismatch.
func IsChecksumOnly(report models.ValidationReport) bool {
	return !report.IsValid &&
		len(report.Issues) == 1 &&
		strings.HasPrefix(report.Issues[0], checksumIssuePrefix)
}

// IsExpiredOnly reports whether the sole validation issue is TTL expiry.
// An expired entry is routine staleness, not corruption, and callers log it
// accordingly.
func IsExpiredOnly(report models.ValidationReport) bool {
	return !report.IsValid &&
		len(report.Issues) == 1 &&
		strings.HasPrefix(report.Issues[0], expiredIssuePrefix)
}

// Checksum returns the hex-encoded SHA-256 digest of the compacted JSON
// serialization of data. Compacting first makes the digest independent of
// insignificant whitespace.
func Checksum(data json.RawMessage) (string, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return "", fmt.Errorf("compact payload: %w", err)
	}

	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:]), nil
}

func (c *Codec) structuralIssues(entry models.CacheEntry) []string {
	var issues []string

	if len(entry.Data) == 0 {
		issues = append(issues, "missing data payload")
	} else if !json.Valid(entry.Data) {
		issues = append(issues, "data payload is not valid JSON")
	}
	if entry.Version == "" {
		issues = append(issues, "missing schema version")
	}
	if entry.Timestamp.IsZero() {
		issues = append(issues, "missing timestamp")
	}
	if entry.TTL <= 0 {
		issues = append(issues, "missing or non-positive ttl")
	}
	if entry.Checksum == "" {
		issues = append(issues, "missing checksum")
	}

	return issues
}
