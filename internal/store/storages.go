package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-event-companion/internal/config"
	"github.com/MKhiriev/go-event-companion/internal/logger"
)

// ClientStorages groups the client-side storage backends into a single value
// that can be passed around the service layer: the SQLite-backed cache KV
// store and the local session-marker store.
type ClientStorages struct {
	// Cache is the namespaced key→blob store all cache entries live in.
	Cache KVStore

	// Sessions holds the local authentication marker.
	Sessions SessionStore
}

// NewClientStorages initialises the client storage layer using the supplied
// configuration and logger. It performs the following steps:
//  1. Opens an SQLite connection to the file path specified in cfg.DB.DSN,
//     creating the database file if it does not yet exist.
//  2. Runs pending schema migrations via [DB.Migrate].
//  3. Constructs and returns a [ClientStorages] value wired to the cache and
//     session stores.
//
// Returns an error if the database connection cannot be established or if
// migration fails.
func NewClientStorages(cfg config.ClientStorage, logger *logger.Logger) (*ClientStorages, error) {
	logger.Info().Msg("creating new storages...")

	db, err := NewConnectSQLite(context.Background(), cfg.DB, logger)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	if err := db.Migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &ClientStorages{
		Cache:    NewCacheStore(db, cfg.Cache.Namespace, cfg.Cache.SizeBudget, logger),
		Sessions: NewSessionStore(db, logger),
	}, nil
}
