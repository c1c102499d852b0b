// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"time"

	sq "github.com/Masterminds/squirrel"
)

// Query builders for the cache_entries and session tables. Keeping them
// separate from the repositories makes the generated SQL testable without a
// live connection.

func buildGetEntryQuery(fullKey string) (string, []interface{}, error) {
	return sq.Select("payload").
		From("cache_entries").
		Where(sq.Eq{"cache_key": fullKey}).
		ToSql()
}

func buildUpsertEntryQuery(fullKey string, payload []byte, storedAt time.Time) (string, []interface{}, error) {
	return sq.Insert("cache_entries").
		Columns("cache_key", "payload", "byte_size", "stored_at").
		Values(fullKey, payload, len(payload), storedAt).
		Suffix("ON CONFLICT(cache_key) DO UPDATE SET payload = excluded.payload, byte_size = excluded.byte_size, stored_at = excluded.stored_at").
		ToSql()
}

func buildRemoveEntryQuery(fullKey string) (string, []interface{}, error) {
	return sq.Delete("cache_entries").
		Where(sq.Eq{"cache_key": fullKey}).
		ToSql()
}

func buildClearQuery(prefix string) (string, []interface{}, error) {
	return sq.Delete("cache_entries").
		Where(sq.Like{"cache_key": prefix + "%"}).
		ToSql()
}

func buildKeysQuery(prefix string) (string, []interface{}, error) {
	return sq.Select("cache_key").
		From("cache_entries").
		Where(sq.Like{"cache_key": prefix + "%"}).
		OrderBy("stored_at ASC").
		ToSql()
}

func buildTotalSizeQuery(prefix string) (string, []interface{}, error) {
	return sq.Select("COALESCE(SUM(byte_size), 0)").
		From("cache_entries").
		Where(sq.Like{"cache_key": prefix + "%"}).
		ToSql()
}

func buildOldestEntryQuery(prefix string) (string, []interface{}, error) {
	return sq.Select("cache_key", "byte_size").
		From("cache_entries").
		Where(sq.Like{"cache_key": prefix + "%"}).
		OrderBy("stored_at ASC").
		Limit(1).
		ToSql()
}

func buildSaveSessionQuery(userID int64, token string, savedAt time.Time) (string, []interface{}, error) {
	return sq.Insert("session").
		Columns("id", "user_id", "token", "saved_at").
		Values(1, userID, token, savedAt).
		Suffix("ON CONFLICT(id) DO UPDATE SET user_id = excluded.user_id, token = excluded.token, saved_at = excluded.saved_at").
		ToSql()
}

func buildGetSessionQuery() (string, []interface{}, error) {
	return sq.Select("user_id", "token", "saved_at").
		From("session").
		Where(sq.Eq{"id": 1}).
		ToSql()
}

func buildDeleteSessionQuery() (string, []interface{}, error) {
	return sq.Delete("session").
		Where(sq.Eq{"id": 1}).
		ToSql()
}
