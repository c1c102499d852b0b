package service

import (
	"github.com/MKhiriev/go-event-companion/internal/adapter"
	"github.com/MKhiriev/go-event-companion/internal/breaker"
	"github.com/MKhiriev/go-event-companion/internal/config"
	"github.com/MKhiriev/go-event-companion/internal/logger"
	"github.com/MKhiriev/go-event-companion/internal/store"
	"github.com/MKhiriev/go-event-companion/models"
)

// ClientServices bundles every client-side service behind its interface.
type ClientServices struct {
	Engine    CacheSyncEngine
	Job       SyncJob
	Logout    LogoutCoordinator
	Conflicts ConflictResolver
	Bus       *TriggerBus
	Mirror    *MirrorWriter
}

// NewClientServices wires the full client service graph: the logout gate, the
// secondary-source and mirror circuit breakers, the in-memory mirror cache,
// the sync engine, the background job, and the logout coordinator.
func NewClientServices(
	storages *store.ClientStorages,
	primary adapter.RemoteSource,
	secondary adapter.RemoteSource,
	cfg *config.ClientConfig,
	log *logger.Logger,
) *ClientServices {
	gate := NewGate(log)
	bus := NewTriggerBus()

	secondaryBreaker := breaker.New("secondary-source", cfg.Breaker.Threshold, cfg.Breaker.Cooldown, log)
	mirrorBreaker := breaker.New("mirror-cache", cfg.Breaker.Threshold, cfg.Breaker.Cooldown, log)

	mirrorStore := store.NewMemoryStore(cfg.Storage.Cache.Namespace, cfg.Storage.Cache.SizeBudget)
	mirror := NewMirrorWriter(mirrorStore, mirrorBreaker, log)

	engine := NewCacheSyncEngine(
		storages,
		primary,
		secondary,
		secondaryBreaker,
		mirror,
		models.DefaultRegistry(),
		gate,
		EngineConfig{DefaultTTL: cfg.Storage.Cache.DefaultTTL},
		log,
	)

	job := NewSyncJob(engine, bus, log)

	return &ClientServices{
		Engine:    engine,
		Job:       job,
		Logout:    NewLogoutCoordinator(engine, job, mirror, storages, gate, log),
		Conflicts: NewConflictResolver(engine, log),
		Bus:       bus,
		Mirror:    mirror,
	}
}
