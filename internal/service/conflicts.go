package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-event-companion/internal/logger"
	"github.com/MKhiriev/go-event-companion/models"
)

type conflictResolver struct {
	engine CacheSyncEngine
	logger *logger.Logger
}

// NewConflictResolver constructs a resolver that applies resolutions through
// the given engine.
func NewConflictResolver(engine CacheSyncEngine, log *logger.Logger) ConflictResolver {
	return &conflictResolver{engine: engine, logger: log}
}

// Resolve implements ConflictResolver. The chosen side's record replaces the
// local copy at record granularity; choosing a side with no data removes the
// record. The rewritten table goes back through the engine, so the logout
// gate and the mirror copy apply exactly as for any other write.
func (r *conflictResolver) Resolve(ctx context.Context, conflict models.ConflictItem, resolution models.Resolution) (bool, error) {
	var chosen json.RawMessage
	switch resolution {
	case models.ResolutionLocal:
		chosen = conflict.LocalData
	case models.ResolutionServer:
		chosen = conflict.ServerData
	default:
		return false, fmt.Errorf("resolve %q in %q: %w", conflict.RecordID, conflict.Table, ErrBadResolution)
	}

	blob, err := r.engine.Get(ctx, conflict.Table)
	if err != nil {
		return false, fmt.Errorf("load %q for resolution: %w", conflict.Table, err)
	}

	records, err := decodeRecords(blob)
	if err != nil {
		return false, fmt.Errorf("decode %q for resolution: %w", conflict.Table, err)
	}

	updated, changed := applyRecord(records, conflict.RecordID, chosen)
	if !changed {
		r.logger.Debug().
			Str("table", conflict.Table).
			Str("record_id", conflict.RecordID).
			Msg("resolution is a no-op, table already matches")
		return false, nil
	}

	payload, err := json.Marshal(updated)
	if err != nil {
		return false, fmt.Errorf("encode %q after resolution: %w", conflict.Table, err)
	}
	if err = r.engine.Set(ctx, conflict.Table, payload); err != nil {
		return false, fmt.Errorf("write %q after resolution: %w", conflict.Table, err)
	}

	r.logger.Info().
		Str("table", conflict.Table).
		Str("record_id", conflict.RecordID).
		Str("resolution", string(resolution)).
		Msg("conflict resolved")
	return true, nil
}

// DetectConflicts implements ConflictResolver. Records are matched by their
// top-level "id" field; records without one cannot be tracked across sides
// and are skipped.
func (r *conflictResolver) DetectConflicts(table string, local, server json.RawMessage) ([]models.ConflictItem, error) {
	localRecords, err := decodeRecords(local)
	if err != nil {
		return nil, fmt.Errorf("decode local %q: %w", table, err)
	}
	serverRecords, err := decodeRecords(server)
	if err != nil {
		return nil, fmt.Errorf("decode server %q: %w", table, err)
	}

	localByID := indexByID(localRecords)
	serverByID := indexByID(serverRecords)

	var conflicts []models.ConflictItem

	for _, rec := range localRecords {
		id := recordID(rec)
		if id == "" {
			continue
		}

		serverRec, onServer := serverByID[id]
		if !onServer {
			conflicts = append(conflicts, models.ConflictItem{
				Table:     table,
				RecordID:  id,
				LocalData: rec,
				Type:      models.ConflictDeleted,
			})
			continue
		}
		if !jsonEqual(rec, serverRec) {
			conflicts = append(conflicts, models.ConflictItem{
				Table:      table,
				RecordID:   id,
				LocalData:  rec,
				ServerData: serverRec,
				Type:       models.ConflictModified,
			})
		}
	}

	for _, rec := range serverRecords {
		id := recordID(rec)
		if id == "" {
			continue
		}
		if _, locally := localByID[id]; !locally {
			conflicts = append(conflicts, models.ConflictItem{
				Table:      table,
				RecordID:   id,
				ServerData: rec,
				Type:       models.ConflictCreated,
			})
		}
	}

	return conflicts, nil
}

// decodeRecords parses a table blob into its record list. A nil or empty blob
// decodes to no records.
func decodeRecords(blob json.RawMessage) ([]json.RawMessage, error) {
	if len(blob) == 0 {
		return nil, nil
	}

	var records []json.RawMessage
	if err := json.Unmarshal(blob, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// recordID extracts the record's top-level "id" as a string. Numeric ids keep
// their literal form; anything else yields an empty id.
func recordID(record json.RawMessage) string {
	var probe struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(record, &probe); err != nil || len(probe.ID) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(probe.ID, &s); err == nil {
		return s
	}

	id := strings.TrimSpace(string(probe.ID))
	if id == "null" {
		return ""
	}
	return id
}

func indexByID(records []json.RawMessage) map[string]json.RawMessage {
	index := make(map[string]json.RawMessage, len(records))
	for _, rec := range records {
		if id := recordID(rec); id != "" {
			index[id] = rec
		}
	}
	return index
}

// applyRecord replaces, appends, or removes the record with the given id. A
// nil replacement removes the record. The second return value reports whether
// the list actually changed.
func applyRecord(records []json.RawMessage, id string, replacement json.RawMessage) ([]json.RawMessage, bool) {
	for i, rec := range records {
		if recordID(rec) != id {
			continue
		}
		if replacement == nil {
			return append(records[:i:i], records[i+1:]...), true
		}
		if jsonEqual(rec, replacement) {
			return records, false
		}
		updated := make([]json.RawMessage, len(records))
		copy(updated, records)
		updated[i] = replacement
		return updated, true
	}

	if replacement == nil {
		return records, false
	}
	return append(records[:len(records):len(records)], replacement), true
}

func jsonEqual(a, b json.RawMessage) bool {
	var ca, cb bytes.Buffer
	if err := json.Compact(&ca, a); err != nil {
		return bytes.Equal(a, b)
	}
	if err := json.Compact(&cb, b); err != nil {
		return bytes.Equal(a, b)
	}
	return bytes.Equal(ca.Bytes(), cb.Bytes())
}
