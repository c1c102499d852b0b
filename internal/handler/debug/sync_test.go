package debug

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-event-companion/internal/adapter"
	"github.com/MKhiriev/go-event-companion/internal/breaker"
	"github.com/MKhiriev/go-event-companion/internal/logger"
	"github.com/MKhiriev/go-event-companion/internal/service"
	"github.com/MKhiriev/go-event-companion/internal/store"
	"github.com/MKhiriev/go-event-companion/models"
)

// debugServerConfig carries optional overrides for the test server fixture.
type debugServerConfig struct {
	cache  store.KVStore
	logger *logger.Logger
}

// failingGetKV fails every read; writes pass through.
type failingGetKV struct {
	store.KVStore
}

func (f *failingGetKV) Get(context.Context, string) ([]byte, error) {
	return nil, assert.AnError
}

// staticRemote serves the same payload for every table.
type staticRemote struct {
	payload json.RawMessage
}

func (s *staticRemote) FetchTable(context.Context, string) (json.RawMessage, error) {
	return s.payload, nil
}

func newDebugServer(t *testing.T, registry models.TableRegistry, opts ...func(*debugServerConfig)) (*httptest.Server, *service.ClientServices) {
	t.Helper()

	cfg := &debugServerConfig{
		cache:  store.NewMemoryStore("evcache", 0),
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	log := cfg.logger
	gate := service.NewGate(log)

	storages := &store.ClientStorages{
		Cache:    cfg.cache,
		Sessions: store.NewMemorySessionStore(),
	}

	mirror := service.NewMirrorWriter(
		store.NewMemoryStore("evcache", 0),
		breaker.New("mirror-cache", 3, 30*time.Second, log),
		log,
	)

	var remote adapter.RemoteSource = &staticRemote{payload: json.RawMessage(`[{"id":"r1"}]`)}

	engine := service.NewCacheSyncEngine(
		storages,
		remote,
		remote,
		breaker.New("secondary-source", 3, 30*time.Second, log),
		mirror,
		registry,
		gate,
		service.EngineConfig{DefaultTTL: time.Hour},
		log,
	)

	services := &service.ClientServices{Engine: engine}
	handler := NewHandler(services, log)

	srv := httptest.NewServer(handler.Init())
	t.Cleanup(srv.Close)

	return srv, services
}

func TestDebugHandler_SyncStatus(t *testing.T) {
	srv, services := newDebugServer(t, models.DefaultRegistry())
	services.Engine.SetOnline(true)

	resp, err := http.Get(srv.URL + "/debug/sync/status")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var status models.SyncStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.True(t, status.IsOnline)
	assert.False(t, status.SyncInProgress)
}

func TestDebugHandler_OfflineStatus(t *testing.T) {
	srv, services := newDebugServer(t, models.DefaultRegistry())

	err := services.Engine.Set(context.Background(), "agenda", json.RawMessage(`[{"id":"s1"}]`))
	require.NoError(t, err)

	resp, err := http.Get(srv.URL + "/debug/sync/offline")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var offline map[string]bool
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&offline))
	assert.True(t, offline["agenda"])
	assert.False(t, offline["sponsors"])
}

func TestDebugHandler_DumpTables(t *testing.T) {
	srv, services := newDebugServer(t, models.DefaultRegistry())

	err := services.Engine.Set(context.Background(), "dining", json.RawMessage(`[{"id":"d1","venue":"Hall B"}]`))
	require.NoError(t, err)

	resp, err := http.Get(srv.URL + "/debug/sync/dump")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var dump map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&dump))
	require.Len(t, dump, len(models.DefaultRegistry()))
	assert.JSONEq(t, `[{"id":"d1","venue":"Hall B"}]`, string(dump["dining"]))
	assert.JSONEq(t, `null`, string(dump["agenda"]))
}

func TestDebugHandler_DumpTables_EngineRegistryOnly(t *testing.T) {
	registry := models.TableRegistry{
		{Name: "agenda", RemoteID: "event/agenda"},
		{Name: "seats", RemoteID: "event/seats", TTL: 5 * time.Minute},
	}
	srv, services := newDebugServer(t, registry)

	err := services.Engine.Set(context.Background(), "agenda", json.RawMessage(`[{"id":"s1"}]`))
	require.NoError(t, err)

	resp, err := http.Get(srv.URL + "/debug/sync/dump")
	require.NoError(t, err)
	defer resp.Body.Close()

	// the dump enumerates the engine's registry, not some list of its own,
	// so a narrowed registry must not produce lookups for unknown tables
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var dump map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&dump))
	require.Len(t, dump, 2)
	assert.JSONEq(t, `[{"id":"s1"}]`, string(dump["agenda"]))
	assert.JSONEq(t, `null`, string(dump["seats"]))
}

func TestDebugHandler_DumpTables_StoreFailure(t *testing.T) {
	var buf bytes.Buffer
	log := &logger.Logger{Logger: zerolog.New(&buf)}

	srv, _ := newDebugServer(t, models.DefaultRegistry(), func(cfg *debugServerConfig) {
		cfg.cache = &failingGetKV{KVStore: store.NewMemoryStore("evcache", 0)}
		cfg.logger = log
	})

	resp, err := http.Get(srv.URL + "/debug/sync/dump")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, buf.String(), "error dumping cached table")
}

func TestDebugHandler_ForceSync(t *testing.T) {
	srv, _ := newDebugServer(t, models.DefaultRegistry())

	resp, err := http.Post(srv.URL+"/debug/sync/force", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result models.SyncResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.True(t, result.Success)
	assert.Len(t, result.SyncedTables, len(models.DefaultRegistry()))
}

func TestDebugHandler_ForceSync_ConflictDuringLogout(t *testing.T) {
	srv, services := newDebugServer(t, models.DefaultRegistry())

	services.Engine.SetLogoutInProgress(true)
	defer services.Engine.SetLogoutInProgress(false)

	resp, err := http.Post(srv.URL+"/debug/sync/force", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusConflict, resp.StatusCode)

	var result models.SyncResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "logout in progress", result.Skipped)
}
