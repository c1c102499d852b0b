package store

import "errors"

var (
	// ErrKeyNotFound indicates the requested key has no row in the store's
	// namespace. Callers treat this as a cache miss, not a fault.
	ErrKeyNotFound = errors.New("key not found in local store")

	// ErrSessionNotFound indicates no local authentication marker is stored.
	ErrSessionNotFound = errors.New("local session not found")
)
