package store

import (
	"context"

	"github.com/MKhiriev/go-event-companion/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/mock_store.go -package=mock

// KVStore is the namespaced key→JSON-blob contract the cache engine persists
// through. All keys passed in are logical names; implementations prepend the
// engine namespace so Clear can wipe engine state without touching unrelated
// rows.
type KVStore interface {
	// Get returns the raw blob stored under key, or ErrKeyNotFound when the
	// key is absent. A stored-but-corrupted blob is still returned: telling
	// corruption apart from absence is the codec's job, not the store's.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous blob, and then
	// enforces the configured size budget by evicting oldest-stored-first
	// entries until the namespace is back under budget.
	Set(ctx context.Context, key string, value []byte) error

	// Remove deletes the blob stored under key. Removing an absent key is
	// not an error.
	Remove(ctx context.Context, key string) error

	// Clear deletes every key in this store's namespace and nothing else.
	// Cost is proportional to the number of namespaced keys only.
	Clear(ctx context.Context) error

	// Keys returns the logical names of all namespaced keys.
	Keys(ctx context.Context) ([]string, error)

	// TotalSize returns the summed byte length of all namespaced blobs.
	TotalSize(ctx context.Context) (int64, error)
}

// SessionStore persists the single local authentication marker. The marker is
// written by the (out of scope) login flow and deleted on logout together
// with the cached data.
type SessionStore interface {
	// SaveSession stores the marker, replacing any previous one.
	SaveSession(ctx context.Context, session models.Session) error

	// GetSession returns the stored marker or ErrSessionNotFound.
	GetSession(ctx context.Context) (models.Session, error)

	// DeleteSession removes the marker. Deleting an absent marker is not an
	// error.
	DeleteSession(ctx context.Context) error
}
