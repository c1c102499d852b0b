// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MKhiriev/go-event-companion/internal/logger"
)

// cacheStore is the SQLite-backed implementation of [KVStore]. Every row in
// cache_entries carries the namespace prefix, its payload byte length, and
// its write time; the byte length feeds size accounting and the write time
// drives oldest-first eviction.
type cacheStore struct {
	*DB
	namespace string
	budget    int64
	clock     func() time.Time
	logger    *logger.Logger
}

// NewCacheStore constructs a [KVStore] over db. Namespace prefixes every
// key; budget caps the summed payload size in bytes (0 disables eviction).
func NewCacheStore(db *DB, namespace string, budget int64, log *logger.Logger) KVStore {
	return &cacheStore{
		DB:        db,
		namespace: namespace,
		budget:    budget,
		clock:     time.Now,
		logger:    log,
	}
}

func (s *cacheStore) fullKey(key string) string {
	return s.namespace + ":" + key
}

func (s *cacheStore) prefix() string {
	return s.namespace + ":"
}

func (s *cacheStore) Get(ctx context.Context, key string) ([]byte, error) {
	query, args, err := buildGetEntryQuery(s.fullKey(key))
	if err != nil {
		return nil, fmt.Errorf("build get query: %w", err)
	}

	var payload []byte
	err = s.DB.QueryRowContext(ctx, query, args...).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %q: %w", key, err)
	}

	return payload, nil
}

func (s *cacheStore) Set(ctx context.Context, key string, value []byte) error {
	query, args, err := buildUpsertEntryQuery(s.fullKey(key), value, s.clock())
	if err != nil {
		return fmt.Errorf("build upsert query: %w", err)
	}

	if _, err = s.DB.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}

	return s.enforceBudget(ctx)
}

func (s *cacheStore) Remove(ctx context.Context, key string) error {
	query, args, err := buildRemoveEntryQuery(s.fullKey(key))
	if err != nil {
		return fmt.Errorf("build remove query: %w", err)
	}

	if _, err = s.DB.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("remove %q: %w", key, err)
	}

	return nil
}

func (s *cacheStore) Clear(ctx context.Context) error {
	query, args, err := buildClearQuery(s.prefix())
	if err != nil {
		return fmt.Errorf("build clear query: %w", err)
	}

	res, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("clear namespace %q: %w", s.namespace, err)
	}

	if removed, raErr := res.RowsAffected(); raErr == nil {
		s.logger.Info().
			Str("namespace", s.namespace).
			Int64("removed", removed).
			Msg("cleared namespaced cache entries")
	}

	return nil
}

func (s *cacheStore) Keys(ctx context.Context) ([]string, error) {
	query, args, err := buildKeysQuery(s.prefix())
	if err != nil {
		return nil, fmt.Errorf("build keys query: %w", err)
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var full string
		if err = rows.Scan(&full); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		keys = append(keys, strings.TrimPrefix(full, s.prefix()))
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate keys: %w", err)
	}

	return keys, nil
}

func (s *cacheStore) TotalSize(ctx context.Context) (int64, error) {
	query, args, err := buildTotalSizeQuery(s.prefix())
	if err != nil {
		return 0, fmt.Errorf("build total size query: %w", err)
	}

	var total int64
	if err = s.DB.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum entry sizes: %w", err)
	}

	return total, nil
}

// enforceBudget evicts oldest-stored-first entries until the namespace is
// back under budget. Exceeding the budget is not an error to the caller;
// every eviction is logged.
func (s *cacheStore) enforceBudget(ctx context.Context) error {
	if s.budget <= 0 {
		return nil
	}

	total, err := s.TotalSize(ctx)
	if err != nil {
		return err
	}

	for total > s.budget {
		key, size, err := s.oldestEntry(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}

		query, args, err := buildRemoveEntryQuery(key)
		if err != nil {
			return fmt.Errorf("build evict query: %w", err)
		}
		if _, err = s.DB.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("evict %q: %w", key, err)
		}

		s.logger.Info().
			Str("key", key).
			Int64("freed_bytes", size).
			Int64("total_bytes", total-size).
			Msg("evicted oldest cache entry over size budget")

		total -= size
	}

	return nil
}

func (s *cacheStore) oldestEntry(ctx context.Context) (string, int64, error) {
	query, args, err := buildOldestEntryQuery(s.prefix())
	if err != nil {
		return "", 0, fmt.Errorf("build oldest entry query: %w", err)
	}

	var key string
	var size int64
	if err = s.DB.QueryRowContext(ctx, query, args...).Scan(&key, &size); err != nil {
		return "", 0, err
	}

	return key, size, nil
}
