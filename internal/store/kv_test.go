// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-event-companion/internal/logger"
)

func newMockCacheStore(t *testing.T, budget int64) (*cacheStore, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	db := &DB{DB: conn, logger: logger.Nop()}
	s := NewCacheStore(db, "evcache", budget, logger.Nop()).(*cacheStore)
	s.clock = func() time.Time { return time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC) }

	return s, mock
}

func TestCacheStore_Get_Hit(t *testing.T) {
	s, mock := newMockCacheStore(t, 0)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT payload FROM cache_entries WHERE cache_key = ?")).
		WithArgs("evcache:table:agenda").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow([]byte(`{"data":[]}`)))

	payload, err := s.Get(context.Background(), "table:agenda")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"data":[]}`), payload)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheStore_Get_Miss(t *testing.T) {
	s, mock := newMockCacheStore(t, 0)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT payload FROM cache_entries WHERE cache_key = ?")).
		WithArgs("evcache:table:agenda").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}))

	_, err := s.Get(context.Background(), "table:agenda")
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestCacheStore_Set_NoBudget(t *testing.T) {
	s, mock := newMockCacheStore(t, 0)
	payload := []byte(`{"data":[1,2,3]}`)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO cache_entries (cache_key,payload,byte_size,stored_at) VALUES (?,?,?,?) ON CONFLICT(cache_key) DO UPDATE SET")).
		WithArgs("evcache:table:seats", payload, len(payload), s.clock()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, s.Set(context.Background(), "table:seats", payload))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheStore_Set_EvictsOldestOverBudget(t *testing.T) {
	s, mock := newMockCacheStore(t, 100)
	payload := []byte(`{"data":[1,2,3]}`)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO cache_entries")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	// over budget on the first pass, back under after one eviction
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(byte_size), 0) FROM cache_entries WHERE cache_key LIKE ?")).
		WithArgs("evcache:%").
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(150))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT cache_key, byte_size FROM cache_entries WHERE cache_key LIKE ? ORDER BY stored_at ASC LIMIT 1")).
		WithArgs("evcache:%").
		WillReturnRows(sqlmock.NewRows([]string{"cache_key", "byte_size"}).AddRow("evcache:table:sponsors", 80))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM cache_entries WHERE cache_key = ?")).
		WithArgs("evcache:table:sponsors").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Set(context.Background(), "table:seats", payload))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheStore_Clear_OnlyNamespacedKeys(t *testing.T) {
	s, mock := newMockCacheStore(t, 0)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM cache_entries WHERE cache_key LIKE ?")).
		WithArgs("evcache:%").
		WillReturnResult(sqlmock.NewResult(0, 5))

	require.NoError(t, s.Clear(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheStore_Keys_StripsNamespace(t *testing.T) {
	s, mock := newMockCacheStore(t, 0)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT cache_key FROM cache_entries WHERE cache_key LIKE ? ORDER BY stored_at ASC")).
		WithArgs("evcache:%").
		WillReturnRows(sqlmock.NewRows([]string{"cache_key"}).
			AddRow("evcache:table:agenda").
			AddRow("evcache:status"))

	keys, err := s.Keys(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"table:agenda", "status"}, keys)
}

func TestSessionStore_RoundTrip(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	s := NewSessionStore(&DB{DB: conn, logger: logger.Nop()}, logger.Nop())
	savedAt := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO session (id,user_id,token,saved_at) VALUES (?,?,?,?) ON CONFLICT(id) DO UPDATE SET")).
		WithArgs(1, int64(42), "tok", savedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id, token, saved_at FROM session WHERE id = ?")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "token", "saved_at"}).AddRow(int64(42), "tok", savedAt))

	ctx := context.Background()
	require.NoError(t, s.SaveSession(ctx, modelsSession(42, "tok", savedAt)))

	session, err := s.GetSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), session.UserID)
	assert.Equal(t, "tok", session.Token)
}

func TestSessionStore_GetSession_NotFound(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	s := NewSessionStore(&DB{DB: conn, logger: logger.Nop()}, logger.Nop())

	mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id, token, saved_at FROM session")).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "token", "saved_at"}))

	_, err = s.GetSession(context.Background())
	require.ErrorIs(t, err, ErrSessionNotFound)
}
