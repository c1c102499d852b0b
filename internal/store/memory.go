package store

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/go-event-companion/models"
)

// memoryStore is the in-memory implementation of [KVStore]. It backs the
// best-effort mirror cache and keeps the same namespacing and oldest-first
// eviction semantics as the SQLite store so tests can swap the two freely.
type memoryStore struct {
	namespace string
	budget    int64
	clock     func() time.Time

	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	payload  []byte
	storedAt time.Time
}

// NewMemoryStore constructs an in-memory [KVStore]. Budget semantics match
// [NewCacheStore]; 0 disables eviction.
func NewMemoryStore(namespace string, budget int64) KVStore {
	return &memoryStore{
		namespace: namespace,
		budget:    budget,
		clock:     time.Now,
		entries:   make(map[string]memoryEntry),
	}
}

func (m *memoryStore) fullKey(key string) string {
	return m.namespace + ":" + key
}

func (m *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[m.fullKey(key)]
	if !ok {
		return nil, ErrKeyNotFound
	}

	payload := make([]byte, len(entry.payload))
	copy(payload, entry.payload)
	return payload, nil
}

func (m *memoryStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	payload := make([]byte, len(value))
	copy(payload, value)
	m.entries[m.fullKey(key)] = memoryEntry{payload: payload, storedAt: m.clock()}

	m.evictLocked()
	return nil
}

func (m *memoryStore) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, m.fullKey(key))
	return nil
}

func (m *memoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[string]memoryEntry)
	return nil
}

func (m *memoryStore) Keys(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	prefix := m.namespace + ":"
	keys := make([]string, 0, len(m.entries))
	for full := range m.entries {
		keys = append(keys, full[len(prefix):])
	}
	return keys, nil
}

func (m *memoryStore) TotalSize(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.totalLocked(), nil
}

func (m *memoryStore) totalLocked() int64 {
	var total int64
	for _, entry := range m.entries {
		total += int64(len(entry.payload))
	}
	return total
}

func (m *memoryStore) evictLocked() {
	if m.budget <= 0 {
		return
	}

	for m.totalLocked() > m.budget && len(m.entries) > 0 {
		oldestKey := ""
		var oldestAt time.Time
		for key, entry := range m.entries {
			if oldestKey == "" || entry.storedAt.Before(oldestAt) {
				oldestKey = key
				oldestAt = entry.storedAt
			}
		}
		delete(m.entries, oldestKey)
	}
}

// memorySessionStore is the in-memory [SessionStore] used in tests.
type memorySessionStore struct {
	mu      sync.RWMutex
	session *models.Session
}

// NewMemorySessionStore constructs an in-memory [SessionStore].
func NewMemorySessionStore() SessionStore {
	return &memorySessionStore{}
}

func (m *memorySessionStore) SaveSession(_ context.Context, session models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.session = &session
	return nil
}

func (m *memorySessionStore) GetSession(_ context.Context) (models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.session == nil {
		return models.Session{}, ErrSessionNotFound
	}
	return *m.session, nil
}

func (m *memorySessionStore) DeleteSession(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.session = nil
	return nil
}
