package service

import (
	"context"
	"sync"

	"github.com/MKhiriev/go-event-companion/internal/breaker"
	"github.com/MKhiriev/go-event-companion/internal/logger"
	"github.com/MKhiriev/go-event-companion/internal/store"
)

type mirrorItem struct {
	key     string
	payload []byte
}

// MirrorWriter maintains the best-effort secondary mirror cache. Writes are
// queued and applied by a background goroutine through the mirror circuit
// breaker, so a consistently failing mirror degrades to dropped copies
// instead of slowing the primary path. The mirror is an accelerator, never
// authoritative: nothing in the engine reads it back.
type MirrorWriter struct {
	mirror  store.KVStore
	breaker *breaker.CircuitBreaker
	logger  *logger.Logger

	items chan mirrorItem

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewMirrorWriter constructs a MirrorWriter over the given mirror store and
// breaker. The writer is idle until Start is called.
func NewMirrorWriter(mirror store.KVStore, br *breaker.CircuitBreaker, log *logger.Logger) *MirrorWriter {
	return &MirrorWriter{
		mirror:  mirror,
		breaker: br,
		logger:  log,
		items:   make(chan mirrorItem, 64),
	}
}

// Start launches the background writer goroutine. Any previously running
// writer is stopped first.
func (m *MirrorWriter) Start(ctx context.Context) {
	m.Stop()

	m.mu.Lock()
	workerCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()
		for {
			select {
			case <-workerCtx.Done():
				return
			case item := <-m.items:
				m.write(workerCtx, item)
			}
		}
	}()
}

// Stop cancels the background goroutine and blocks until it has exited.
// Safe to call when the writer is not running.
func (m *MirrorWriter) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.wg.Wait()
}

// Enqueue queues a mirror copy without blocking. When the queue is full the
// copy is dropped; the primary store already holds the authoritative data.
func (m *MirrorWriter) Enqueue(key string, payload []byte) {
	item := mirrorItem{key: key, payload: make([]byte, len(payload))}
	copy(item.payload, payload)

	select {
	case m.items <- item:
	default:
		m.logger.Debug().Str("key", key).Msg("mirror queue full, copy dropped")
	}
}

// Clear drains any queued copies and wipes the mirror store. Called during
// logout after the writer goroutine has been stopped, so no new copies can
// land afterwards.
func (m *MirrorWriter) Clear(ctx context.Context) error {
	for {
		select {
		case <-m.items:
			continue
		default:
		}
		break
	}

	return m.mirror.Clear(ctx)
}

func (m *MirrorWriter) write(ctx context.Context, item mirrorItem) {
	err := m.breaker.Execute(func() error {
		return m.mirror.Set(ctx, item.key, item.payload)
	})
	if err != nil {
		// best effort only: failures are isolated by the breaker
		m.logger.Warn().Err(err).Str("key", item.key).Msg("mirror write failed")
	}
}
