package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-event-companion/internal/logger"
	"github.com/MKhiriev/go-event-companion/models"
)

func newConflictFixture(t *testing.T) (*engineFixture, ConflictResolver) {
	t.Helper()

	f := newEngineFixture(t)
	return f, NewConflictResolver(f.engine, logger.Nop())
}

func TestConflictResolver_DetectConflicts_Classification(t *testing.T) {
	_, resolver := newConflictFixture(t)

	local := json.RawMessage(`[
		{"id":"s1","title":"Keynote"},
		{"id":"s2","title":"Workshop"}
	]`)
	server := json.RawMessage(`[
		{"id":"s1","title":"Keynote (updated)"},
		{"id":"s3","title":"Panel"}
	]`)

	conflicts, err := resolver.DetectConflicts("agenda", local, server)
	require.NoError(t, err)
	require.Len(t, conflicts, 3)

	byID := make(map[string]models.ConflictItem, len(conflicts))
	for _, c := range conflicts {
		byID[c.RecordID] = c
	}

	assert.Equal(t, models.ConflictModified, byID["s1"].Type)
	assert.Equal(t, models.ConflictDeleted, byID["s2"].Type)
	assert.Equal(t, models.ConflictCreated, byID["s3"].Type)
	assert.Nil(t, byID["s3"].LocalData)
	assert.Nil(t, byID["s2"].ServerData)
}

func TestConflictResolver_DetectConflicts_NoDivergence(t *testing.T) {
	_, resolver := newConflictFixture(t)

	blob := json.RawMessage(`[{"id":"s1","title":"Keynote"}]`)
	// whitespace differences are not divergence
	server := json.RawMessage(`[ {"id":"s1", "title":"Keynote"} ]`)

	conflicts, err := resolver.DetectConflicts("agenda", blob, server)
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestConflictResolver_DetectConflicts_SkipsRecordsWithoutID(t *testing.T) {
	_, resolver := newConflictFixture(t)

	local := json.RawMessage(`[{"title":"anonymous"},{"id":"s1","title":"Keynote"}]`)
	server := json.RawMessage(`[{"id":"s1","title":"Keynote"}]`)

	conflicts, err := resolver.DetectConflicts("agenda", local, server)
	require.NoError(t, err)
	assert.Empty(t, conflicts, "records without an id cannot conflict")
}

func TestConflictResolver_DetectConflicts_NumericIDs(t *testing.T) {
	_, resolver := newConflictFixture(t)

	local := json.RawMessage(`[{"id":7,"name":"old"}]`)
	server := json.RawMessage(`[{"id":7,"name":"new"}]`)

	conflicts, err := resolver.DetectConflicts("agenda", local, server)
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "7", conflicts[0].RecordID)
	assert.Equal(t, models.ConflictModified, conflicts[0].Type)
}

func TestConflictResolver_Resolve_ServerWins(t *testing.T) {
	f, resolver := newConflictFixture(t)
	ctx := context.Background()

	require.NoError(t, f.engine.Set(ctx, "agenda", json.RawMessage(`[{"id":"s1","title":"Keynote"}]`)))

	applied, err := resolver.Resolve(ctx, models.ConflictItem{
		Table:      "agenda",
		RecordID:   "s1",
		LocalData:  json.RawMessage(`{"id":"s1","title":"Keynote"}`),
		ServerData: json.RawMessage(`{"id":"s1","title":"Keynote (updated)"}`),
		Type:       models.ConflictModified,
	}, models.ResolutionServer)
	require.NoError(t, err)
	assert.True(t, applied)

	got, err := f.engine.Get(ctx, "agenda")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"s1","title":"Keynote (updated)"}]`, string(got))
}

func TestConflictResolver_Resolve_LocalWinsIsNoOp(t *testing.T) {
	f, resolver := newConflictFixture(t)
	ctx := context.Background()

	require.NoError(t, f.engine.Set(ctx, "agenda", json.RawMessage(`[{"id":"s1","title":"Keynote"}]`)))

	applied, err := resolver.Resolve(ctx, models.ConflictItem{
		Table:      "agenda",
		RecordID:   "s1",
		LocalData:  json.RawMessage(`{"id":"s1","title":"Keynote"}`),
		ServerData: json.RawMessage(`{"id":"s1","title":"Keynote (updated)"}`),
		Type:       models.ConflictModified,
	}, models.ResolutionLocal)
	require.NoError(t, err)
	assert.False(t, applied, "keeping the local record changes nothing")
}

func TestConflictResolver_Resolve_ServerCreatedRecordAppended(t *testing.T) {
	f, resolver := newConflictFixture(t)
	ctx := context.Background()

	require.NoError(t, f.engine.Set(ctx, "agenda", json.RawMessage(`[{"id":"s1","title":"Keynote"}]`)))

	applied, err := resolver.Resolve(ctx, models.ConflictItem{
		Table:      "agenda",
		RecordID:   "s3",
		ServerData: json.RawMessage(`{"id":"s3","title":"Panel"}`),
		Type:       models.ConflictCreated,
	}, models.ResolutionServer)
	require.NoError(t, err)
	assert.True(t, applied)

	got, err := f.engine.Get(ctx, "agenda")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"s1","title":"Keynote"},{"id":"s3","title":"Panel"}]`, string(got))
}

func TestConflictResolver_Resolve_ServerDeletionRemovesRecord(t *testing.T) {
	f, resolver := newConflictFixture(t)
	ctx := context.Background()

	require.NoError(t, f.engine.Set(ctx, "agenda",
		json.RawMessage(`[{"id":"s1","title":"Keynote"},{"id":"s2","title":"Workshop"}]`)))

	applied, err := resolver.Resolve(ctx, models.ConflictItem{
		Table:     "agenda",
		RecordID:  "s2",
		LocalData: json.RawMessage(`{"id":"s2","title":"Workshop"}`),
		Type:      models.ConflictDeleted,
	}, models.ResolutionServer)
	require.NoError(t, err)
	assert.True(t, applied)

	got, err := f.engine.Get(ctx, "agenda")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"s1","title":"Keynote"}]`, string(got))
}

func TestConflictResolver_Resolve_BadResolution(t *testing.T) {
	_, resolver := newConflictFixture(t)

	_, err := resolver.Resolve(context.Background(), models.ConflictItem{
		Table:    "agenda",
		RecordID: "s1",
	}, models.Resolution("merge"))
	assert.ErrorIs(t, err, ErrBadResolution)
}
