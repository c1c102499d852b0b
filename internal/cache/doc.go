// Package cache implements the cache entry codec: construction, validation,
// and checksum repair of the versioned, TTL-bearing entries the sync engine
// persists per table.
//
// The codec is deliberately pure. It never touches storage; the engine owns
// all I/O and calls the codec on every read and write.
package cache
