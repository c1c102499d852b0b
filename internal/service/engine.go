// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MKhiriev/go-event-companion/internal/adapter"
	"github.com/MKhiriev/go-event-companion/internal/breaker"
	"github.com/MKhiriev/go-event-companion/internal/cache"
	"github.com/MKhiriev/go-event-companion/internal/logger"
	"github.com/MKhiriev/go-event-companion/internal/store"
	"github.com/MKhiriev/go-event-companion/models"
)

const (
	tableKeyPrefix = "table:"
	statusKey      = "status"
)

// EngineConfig carries the tunables of the sync engine.
type EngineConfig struct {
	// DefaultTTL applies to tables without a registry TTL override.
	DefaultTTL time.Duration

	// Clock is injected for tests; nil defaults to time.Now.
	Clock func() time.Time
}

type cacheSyncEngine struct {
	storages         *store.ClientStorages
	primary          adapter.RemoteSource
	secondary        adapter.RemoteSource
	secondaryBreaker *breaker.CircuitBreaker
	mirror           *MirrorWriter
	codec            *cache.Codec
	registry         models.TableRegistry
	gate             *Gate
	defaultTTL       time.Duration
	clock            func() time.Time
	logger           *logger.Logger

	statusMu sync.Mutex
	status   models.SyncStatus

	syncMu  sync.Mutex
	syncing bool

	cancelMu      sync.Mutex
	cancelPending context.CancelFunc

	subsMu sync.Mutex
	subs   []func(models.SyncStatus)
}

// NewCacheSyncEngine constructs the sync engine. All dependencies are
// injected so tests can build isolated instances; nothing in this package is
// process-global. Persisted sync status, if any, is restored from the store.
func NewCacheSyncEngine(
	storages *store.ClientStorages,
	primary adapter.RemoteSource,
	secondary adapter.RemoteSource,
	secondaryBreaker *breaker.CircuitBreaker,
	mirror *MirrorWriter,
	registry models.TableRegistry,
	gate *Gate,
	cfg EngineConfig,
	log *logger.Logger,
) CacheSyncEngine {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = time.Hour
	}

	e := &cacheSyncEngine{
		storages:         storages,
		primary:          primary,
		secondary:        secondary,
		secondaryBreaker: secondaryBreaker,
		mirror:           mirror,
		codec:            cache.NewCodec(cfg.Clock),
		registry:         registry,
		gate:             gate,
		defaultTTL:       cfg.DefaultTTL,
		clock:            cfg.Clock,
		logger:           log,
	}

	e.restoreStatus()
	return e
}


func (e *cacheSyncEngine) Get(ctx context.Context, table string) (json.RawMessage, error) {
	if _, ok := e.registry.Lookup(table); !ok {
		return nil, fmt.Errorf("get %q: %w", table, ErrUnknownTable)
	}

	raw, err := e.storages.Cache.Get(ctx, tableKeyPrefix+table)
	if errors.Is(err, store.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read entry for %q: %w", table, err)
	}

	var entry models.CacheEntry
	if err = json.Unmarshal(raw, &entry); err != nil {
		e.dropCorrupted(ctx, table, []string{"entry is not decodable: " + err.Error()})
		return nil, nil
	}

	report := e.codec.ValidateEntry(entry)
	if report.IsValid {
		return entry.Data, nil
	}

	if cache.IsChecksumOnly(report) {
		repaired, repairErr := e.codec.RepairEntry(entry)
		if repairErr == nil {
			e.persistRepaired(ctx, table, repaired)
			return repaired.Data, nil
		}
		e.dropCorrupted(ctx, table, append(report.Issues, repairErr.Error()))
		return nil, nil
	}

	if cache.IsExpiredOnly(report) {
		e.dropExpired(ctx, table)
		return nil, nil
	}

	e.dropCorrupted(ctx, table, report.Issues)
	return nil, nil
}

func (e *cacheSyncEngine) Tables() []string {
	return e.registry.Names()
}

func (e *cacheSyncEngine) OfflineStatus(ctx context.Context) map[string]bool {
	status := make(map[string]bool, len(e.registry))
	for _, reg := range e.registry {
		data, err := e.Get(ctx, reg.Name)
		status[reg.Name] = err == nil && hasRecords(data)
	}
	return status
}


func (e *cacheSyncEngine) Set(ctx context.Context, table string, data json.RawMessage) error {
	reg, ok := e.registry.Lookup(table)
	if !ok {
		return fmt.Errorf("set %q: %w", table, ErrUnknownTable)
	}

	written, err := e.writeEntry(ctx, reg, data)
	if err != nil {
		return err
	}
	if written {
		e.updateStatus(ctx, func(st *models.SyncStatus) { st.PendingChanges++ })
	}
	return nil
}

// writeEntry is the single choke point every mutating operation funnels
// through. The gate check happens here, immediately before the write lands,
// so a fetch that started before logout can never write into a cleared
// store. The returned bool reports whether the write was applied.
func (e *cacheSyncEngine) writeEntry(ctx context.Context, reg models.TableRegistration, data json.RawMessage) (bool, error) {
	if e.gate.Blocked() {
		e.logger.Info().Str("table", reg.Name).Msg("write dropped: logout in progress")
		return false, nil
	}

	entry, err := e.codec.CreateEntry(data, e.ttlFor(reg))
	if err != nil {
		return false, fmt.Errorf("build entry for %q: %w", reg.Name, err)
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return false, fmt.Errorf("encode entry for %q: %w", reg.Name, err)
	}

	if err = e.storages.Cache.Set(ctx, tableKeyPrefix+reg.Name, payload); err != nil {
		return false, fmt.Errorf("store entry for %q: %w", reg.Name, err)
	}

	e.mirror.Enqueue(tableKeyPrefix+reg.Name, payload)
	return true, nil
}

func (e *cacheSyncEngine) Invalidate(ctx context.Context, table string, refetch bool) error {
	if _, ok := e.registry.Lookup(table); !ok {
		return fmt.Errorf("invalidate %q: %w", table, ErrUnknownTable)
	}

	if err := e.storages.Cache.Remove(ctx, tableKeyPrefix+table); err != nil {
		return fmt.Errorf("invalidate %q: %w", table, err)
	}
	e.logger.Debug().Str("table", table).Msg("cache entry invalidated")

	if refetch {
		return e.SyncTable(ctx, table)
	}
	return nil
}

func (e *cacheSyncEngine) Clear(ctx context.Context) error {
	if err := e.storages.Cache.Clear(ctx); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}


func (e *cacheSyncEngine) SyncAll(ctx context.Context) models.SyncResult {
	return e.runPass(ctx, "manual")
}

func (e *cacheSyncEngine) ForceSync(ctx context.Context) models.SyncResult {
	return e.runPass(ctx, "forced")
}

func (e *cacheSyncEngine) TriggeredSync(ctx context.Context, reason string) models.SyncResult {
	if e.gate.Blocked() {
		return models.SyncResult{Skipped: "logout in progress"}
	}
	if !e.Status().IsOnline {
		return models.SyncResult{Skipped: "offline"}
	}
	if !e.authenticated(ctx) {
		e.logger.Debug().Str("reason", reason).Msg("sync skipped: not authenticated")
		return models.SyncResult{Skipped: "unauthenticated"}
	}
	return e.runPass(ctx, reason)
}

func (e *cacheSyncEngine) SyncTable(ctx context.Context, table string) error {
	reg, ok := e.registry.Lookup(table)
	if !ok {
		return fmt.Errorf("sync %q: %w", table, ErrUnknownTable)
	}
	if e.gate.Blocked() {
		e.logger.Info().Str("table", table).Msg("table sync dropped: logout in progress")
		return nil
	}
	return e.syncOne(ctx, reg)
}

// runPass executes one full sync pass. The pass is strictly non-reentrant
// and always clears syncInProgress on the way out, whatever happened inside.
func (e *cacheSyncEngine) runPass(ctx context.Context, reason string) models.SyncResult {
	if e.gate.Blocked() {
		e.logger.Info().Str("reason", reason).Msg("sync pass dropped: logout in progress")
		return models.SyncResult{Skipped: "logout in progress"}
	}

	e.syncMu.Lock()
	if e.syncing {
		e.syncMu.Unlock()
		return models.SyncResult{Success: false, Errors: []models.TableError{{Err: ErrSyncInProgress.Error()}}}
	}
	e.syncing = true
	e.syncMu.Unlock()

	passCtx, cancel := context.WithCancel(ctx)
	e.setCancel(cancel)

	log := e.logger.GetChildLogger()
	log.Logger = log.With().Str("pass_id", uuid.NewString()).Str("reason", reason).Logger()
	log.Info().Msg("sync pass started")

	e.updateStatus(ctx, func(st *models.SyncStatus) { st.SyncInProgress = true })

	defer func() {
		e.setCancel(nil)
		cancel()
		e.updateStatus(ctx, func(st *models.SyncStatus) { st.SyncInProgress = false })
		e.syncMu.Lock()
		e.syncing = false
		e.syncMu.Unlock()
	}()

	var result models.SyncResult
	for _, reg := range e.registry {
		if passCtx.Err() != nil {
			// aborted: normal early termination, not an error
			log.Info().Str("table", reg.Name).Msg("sync pass aborted")
			break
		}

		if err := e.syncOne(passCtx, reg); err != nil {
			if errors.Is(err, context.Canceled) {
				log.Info().Str("table", reg.Name).Msg("sync pass aborted mid-fetch")
				break
			}
			log.Warn().Err(err).Str("table", reg.Name).Msg("table sync failed")
			result.Errors = append(result.Errors, models.TableError{Table: reg.Name, Err: err.Error()})
			continue
		}
		result.SyncedTables = append(result.SyncedTables, reg.Name)
	}

	result.Success = len(result.Errors) == 0
	e.updateStatus(ctx, func(st *models.SyncStatus) {
		now := e.clock()
		st.LastSync = &now
		if result.Success {
			st.PendingChanges = 0
		}
	})

	log.Info().
		Bool("success", result.Success).
		Strs("synced", result.SyncedTables).
		Int("errors", len(result.Errors)).
		Msg("sync pass finished")
	return result
}

// syncOne refreshes a single table: primary source first, then the secondary
// source through its breaker. One table's failure never touches its siblings.
func (e *cacheSyncEngine) syncOne(ctx context.Context, reg models.TableRegistration) error {
	data, err := e.primary.FetchTable(ctx, reg.RemoteID)
	if err != nil {
		if ctx.Err() != nil {
			return context.Canceled
		}

		e.logger.Warn().Err(err).Str("table", reg.Name).Msg("primary fetch failed, trying secondary source")
		fallbackErr := e.secondaryBreaker.Execute(func() error {
			fallback, ferr := e.secondary.FetchTable(ctx, reg.RemoteID)
			if ferr != nil {
				return ferr
			}
			data = fallback
			return nil
		})
		if fallbackErr != nil {
			if ctx.Err() != nil {
				return context.Canceled
			}
			return fmt.Errorf("fetch %q: %w", reg.Name, err)
		}
	}

	if _, err = e.writeEntry(ctx, reg, data); err != nil {
		return err
	}
	return nil
}

func (e *cacheSyncEngine) AbortPendingOperations() {
	e.cancelMu.Lock()
	cancel := e.cancelPending
	e.cancelMu.Unlock()

	if cancel != nil {
		e.logger.Info().Msg("aborting in-flight sync operations")
		cancel()
	}
}


func (e *cacheSyncEngine) Status() models.SyncStatus {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	return e.status
}

func (e *cacheSyncEngine) SetOnline(online bool) {
	e.statusMu.Lock()
	changed := e.status.IsOnline != online
	e.status.IsOnline = online
	snapshot := e.status
	e.statusMu.Unlock()

	if !changed {
		return
	}

	e.logger.Info().Bool("online", online).Msg("connectivity changed")
	e.persistStatus(context.Background(), snapshot)
	e.notify(snapshot)
}

func (e *cacheSyncEngine) SetLogoutInProgress(inProgress bool) {
	if inProgress {
		e.gate.Begin()
		return
	}
	e.gate.Finish()
}

func (e *cacheSyncEngine) Subscribe(fn func(models.SyncStatus)) {
	e.subsMu.Lock()
	e.subs = append(e.subs, fn)
	e.subsMu.Unlock()
}

func (e *cacheSyncEngine) notify(status models.SyncStatus) {
	e.subsMu.Lock()
	subs := make([]func(models.SyncStatus), len(e.subs))
	copy(subs, e.subs)
	e.subsMu.Unlock()

	for _, fn := range subs {
		fn(status)
	}
}

// updateStatus mutates the in-memory status under lock and persists the copy
// so it survives a restart. Persistence is skipped while the gate is up: the
// store is being cleared and the row would only be re-created.
func (e *cacheSyncEngine) updateStatus(ctx context.Context, mutate func(*models.SyncStatus)) {
	e.statusMu.Lock()
	mutate(&e.status)
	snapshot := e.status
	e.statusMu.Unlock()

	e.persistStatus(ctx, snapshot)
}

func (e *cacheSyncEngine) persistStatus(ctx context.Context, status models.SyncStatus) {
	if e.gate.Blocked() {
		return
	}

	payload, err := json.Marshal(status)
	if err != nil {
		e.logger.Warn().Err(err).Msg("encode sync status")
		return
	}
	if err = e.storages.Cache.Set(ctx, statusKey, payload); err != nil {
		e.logger.Warn().Err(err).Msg("persist sync status")
	}
}

func (e *cacheSyncEngine) restoreStatus() {
	raw, err := e.storages.Cache.Get(context.Background(), statusKey)
	if err != nil {
		if !errors.Is(err, store.ErrKeyNotFound) {
			e.logger.Warn().Err(err).Msg("restore sync status")
		}
		return
	}

	var status models.SyncStatus
	if err = json.Unmarshal(raw, &status); err != nil {
		e.logger.Warn().Err(err).Msg("persisted sync status not decodable, starting fresh")
		return
	}

	// a crash mid-pass must not wedge the non-reentrancy guard forever
	status.SyncInProgress = false

	e.statusMu.Lock()
	e.status = status
	e.statusMu.Unlock()
}


func (e *cacheSyncEngine) ttlFor(reg models.TableRegistration) time.Duration {
	if reg.TTL > 0 {
		return reg.TTL
	}
	return e.defaultTTL
}

func (e *cacheSyncEngine) setCancel(cancel context.CancelFunc) {
	e.cancelMu.Lock()
	e.cancelPending = cancel
	e.cancelMu.Unlock()
}

// persistRepaired rewrites a successfully repaired entry. The rewrite goes
// through the gate like every other write; during logout the caller still
// gets the repaired data, only the persistence is dropped.
func (e *cacheSyncEngine) persistRepaired(ctx context.Context, table string, entry models.CacheEntry) {
	e.logger.Warn().Str("table", table).Msg("checksum mismatch repaired")

	if e.gate.Blocked() {
		return
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		e.logger.Warn().Err(err).Str("table", table).Msg("encode repaired entry")
		return
	}
	if err = e.storages.Cache.Set(ctx, tableKeyPrefix+table, payload); err != nil {
		e.logger.Warn().Err(err).Str("table", table).Msg("persist repaired entry")
	}
}

// dropExpired removes an entry whose only defect is age. Expiry is the
// normal end of an entry's life, so it logs at debug, not error.
func (e *cacheSyncEngine) dropExpired(ctx context.Context, table string) {
	e.logger.Debug().Str("table", table).Msg("expired cache entry treated as miss")

	if err := e.storages.Cache.Remove(ctx, tableKeyPrefix+table); err != nil {
		e.logger.Warn().Err(err).Str("table", table).Msg("remove expired entry")
	}
}

// dropCorrupted logs a corrupted entry and removes it lazily. The read that
// found it reports a miss, never wrong data.
func (e *cacheSyncEngine) dropCorrupted(ctx context.Context, table string, issues []string) {
	e.logger.Error().
		Str("table", table).
		Str("issues", strings.Join(issues, "; ")).
		Msg("corrupted cache entry treated as miss")

	if err := e.storages.Cache.Remove(ctx, tableKeyPrefix+table); err != nil {
		e.logger.Warn().Err(err).Str("table", table).Msg("remove corrupted entry")
	}
}

// hasRecords reports whether a table blob holds at least one record.
func hasRecords(data json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(data))
	switch trimmed {
	case "", "null", "[]", "{}":
		return false
	}
	return true
}
