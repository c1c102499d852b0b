package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/MKhiriev/go-event-companion/models"
)

// CacheSyncEngine is the public contract of the client-resident cache. The
// rest of the application (pages, admin tooling, the auth flow) only ever
// talks to the cache through this interface.
type CacheSyncEngine interface {
	// Get reads the cached table blob, validates it, and returns its data.
	// A checksum-only failure is repaired in place once; any other invalid
	// entry is logged as corruption and treated as a miss. Both a miss and
	// an expired entry yield (nil, nil): reads never return corrupted data
	// and never turn staleness into an error.
	Get(ctx context.Context, table string) (json.RawMessage, error)

	// Set wraps data into a cache entry with the table's configured TTL,
	// persists it, and mirrors it best-effort into the secondary cache.
	// While a logout is in progress the write is dropped silently.
	Set(ctx context.Context, table string, data json.RawMessage) error

	// SyncAll refreshes every registered table from the remote source. The
	// pass is strictly non-reentrant: a second call while one is running
	// returns immediately with an explicit "already in progress" error in
	// the result. Per-table failures are isolated and aggregated.
	SyncAll(ctx context.Context) models.SyncResult

	// SyncTable refreshes a single table, bypassing the normal triggers.
	SyncTable(ctx context.Context, table string) error

	// ForceSync runs a full refresh bypassing the online/authenticated
	// trigger gate. The logout gate and non-reentrancy still apply.
	ForceSync(ctx context.Context) models.SyncResult

	// TriggeredSync is the entry point for timer, connectivity, and
	// visibility triggers. The pass only runs when the client is online,
	// no sync is already in progress, and the user is authenticated
	// according to the local session marker; otherwise the result records
	// why it was skipped.
	TriggeredSync(ctx context.Context, reason string) models.SyncResult

	// Invalidate removes the cached entry for a table and, when refetch is
	// true, immediately re-fetches it.
	Invalidate(ctx context.Context, table string, refetch bool) error

	// Clear wipes every cached entry in the engine's namespace.
	Clear(ctx context.Context) error

	// OfflineStatus reports, for every registered table, whether a
	// non-empty valid entry is available locally.
	OfflineStatus(ctx context.Context) map[string]bool

	// Tables returns the logical names of every registered table in
	// registry order. Consumers that enumerate tables use this instead of
	// keeping a list of their own.
	Tables() []string

	// Status returns a copy of the current sync status.
	Status() models.SyncStatus

	// SetOnline records a connectivity change and notifies subscribers.
	SetOnline(online bool)

	// SetLogoutInProgress raises or lowers the logout gate directly. The
	// logout coordinator is the normal owner of the gate; this exists for
	// collaborators that sequence logout themselves.
	SetLogoutInProgress(inProgress bool)

	// AbortPendingOperations cancels any in-flight remote fetches. An
	// aborted pass terminates early without recording an error.
	AbortPendingOperations()

	// Subscribe registers a listener invoked with a status copy on every
	// online/offline transition.
	Subscribe(fn func(models.SyncStatus))
}

// SyncJob is the background worker that drives periodic and event-triggered
// sync passes.
type SyncJob interface {
	// Start launches the background goroutine. It syncs every interval,
	// defaulting to 5 minutes if interval is zero or negative, and reacts
	// to connectivity and visibility events from the trigger bus. Any
	// previously running job is stopped before the new one begins.
	Start(ctx context.Context, interval time.Duration)

	// Stop signals the background goroutine to exit and blocks until it
	// has fully terminated.
	Stop()
}

// LogoutCoordinator sequences the security-sensitive teardown on logout: no
// cached personal data may survive, even with background operations racing
// the logout.
type LogoutCoordinator interface {
	// Logout raises the write-blocking gate, stops the sync job, aborts
	// in-flight fetches, wipes the namespaced store, the mirror, and the
	// session marker, then lowers the gate. The gate is lowered on every
	// exit path, success or failure, so a failed wipe can never leave the
	// client permanently unable to sync after the next login.
	Logout(ctx context.Context) error
}

// ConflictResolver applies a caller-selected side of a diverged record.
type ConflictResolver interface {
	// Resolve writes the chosen side's data back through the engine for the
	// single conflicting record. Last-writer-wins, no merge, no retry: a
	// failed write is surfaced, never swallowed. The returned bool reports
	// whether the write was applied.
	Resolve(ctx context.Context, conflict models.ConflictItem, resolution models.Resolution) (bool, error)

	// DetectConflicts diffs a local and a server blob of the same table by
	// record id and classifies each divergence. It never merges.
	DetectConflicts(table string, local, server json.RawMessage) ([]models.ConflictItem, error)
}
