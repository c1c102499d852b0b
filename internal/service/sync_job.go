package service

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/go-event-companion/internal/logger"
)

type syncJob struct {
	engine CacheSyncEngine
	bus    *TriggerBus
	logger *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSyncJob creates a syncJob that runs a full sync pass on a ticker and
// reacts to trigger bus events between ticks. The job is idle until Start is
// called.
func NewSyncJob(engine CacheSyncEngine, bus *TriggerBus, log *logger.Logger) SyncJob {
	return &syncJob{engine: engine, bus: bus, logger: log}
}

// Start implements SyncJob. It stops any previously running job, then launches
// a background goroutine that triggers a sync pass every interval and whenever
// the bus delivers a connectivity or visibility event. If interval is zero or
// negative it defaults to 5 minutes. The goroutine exits when ctx is cancelled
// or Stop is called.
func (j *syncJob) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	events := j.bus.Subscribe()

	go func() {
		defer j.wg.Done()
		defer j.bus.Unsubscribe(events)

		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				j.engine.TriggeredSync(jobCtx, "interval")
			case event := <-events:
				j.handleEvent(jobCtx, event)
			}
		}
	}()
}

// Stop implements SyncJob. It cancels the background goroutine's context and
// blocks until the goroutine has fully exited. Safe to call when the job is
// not running (no-op in that case).
func (j *syncJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}

func (j *syncJob) handleEvent(ctx context.Context, event Event) {
	switch event {
	case EventConnectivityLost:
		j.engine.SetOnline(false)
	case EventConnectivityRestored:
		j.engine.SetOnline(true)
		j.engine.TriggeredSync(ctx, "connectivity restored")
	case EventVisibilityRestored:
		j.engine.TriggeredSync(ctx, "visibility restored")
	default:
		j.logger.Debug().Int("event", int(event)).Msg("unknown trigger event ignored")
	}
}
