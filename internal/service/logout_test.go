// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-event-companion/internal/breaker"
	"github.com/MKhiriev/go-event-companion/internal/logger"
	"github.com/MKhiriev/go-event-companion/internal/mock"
	"github.com/MKhiriev/go-event-companion/internal/store"
	"github.com/MKhiriev/go-event-companion/models"
)

// slowClearKV delays Clear so tests can race writes against a logout that is
// still wiping the store.
type slowClearKV struct {
	store.KVStore
	clearDelay time.Duration
}

func (s *slowClearKV) Clear(ctx context.Context) error {
	time.Sleep(s.clearDelay)
	return s.KVStore.Clear(ctx)
}

// failingClearKV fails Clear unconditionally.
type failingClearKV struct {
	store.KVStore
}

func (f *failingClearKV) Clear(context.Context) error {
	return assert.AnError
}

type logoutFixture struct {
	engineFixture
	coordinator LogoutCoordinator
	job         SyncJob
}

func newLogoutFixture(t *testing.T, cacheKV store.KVStore) *logoutFixture {
	t.Helper()

	log := logger.Nop()
	clock := newFakeClock()
	gate := NewGate(log)

	storages := &store.ClientStorages{
		Cache:    cacheKV,
		Sessions: store.NewMemorySessionStore(),
	}

	mirrorKV := store.NewMemoryStore("evcache", 0)
	mirror := NewMirrorWriter(mirrorKV, breaker.New("mirror-cache", 3, 30*time.Second, log), log)

	primary := &stubRemote{}
	secondary := &stubRemote{}

	registry := models.TableRegistry{
		{Name: "agenda", RemoteID: "event/agenda"},
	}

	engine := NewCacheSyncEngine(
		storages,
		primary,
		secondary,
		breaker.New("secondary-source", 3, 30*time.Second, log),
		mirror,
		registry,
		gate,
		EngineConfig{DefaultTTL: time.Hour, Clock: clock.Now},
		log,
	)

	bus := NewTriggerBus()
	job := NewSyncJob(engine, bus, log)

	return &logoutFixture{
		engineFixture: engineFixture{
			engine:    engine,
			storages:  storages,
			mirrorKV:  mirrorKV,
			mirror:    mirror,
			gate:      gate,
			clock:     clock,
			primary:   primary,
			secondary: secondary,
			registry:  registry,
		},
		coordinator: NewLogoutCoordinator(engine, job, mirror, storages, gate, log),
		job:         job,
	}
}

func TestLogoutCoordinator_WipesEverything(t *testing.T) {
	f := newLogoutFixture(t, store.NewMemoryStore("evcache", 0))
	ctx := context.Background()

	require.NoError(t, f.engine.Set(ctx, "agenda", json.RawMessage(`[{"id":"s1"}]`)))
	require.NoError(t, f.storages.Sessions.SaveSession(ctx, models.Session{UserID: 1, Token: "tok"}))

	require.NoError(t, f.coordinator.Logout(ctx))

	got, err := f.engine.Get(ctx, "agenda")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = f.storages.Sessions.GetSession(ctx)
	assert.ErrorIs(t, err, store.ErrSessionNotFound)

	assert.False(t, f.gate.Blocked(), "gate must be lowered after logout")
}

func TestLogoutCoordinator_RacingWriteIsDropped(t *testing.T) {
	f := newLogoutFixture(t, &slowClearKV{
		KVStore:    store.NewMemoryStore("evcache", 0),
		clearDelay: 100 * time.Millisecond,
	})
	ctx := context.Background()

	require.NoError(t, f.engine.Set(ctx, "agenda", json.RawMessage(`[{"id":"old"}]`)))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		require.NoError(t, f.coordinator.Logout(ctx))
	}()

	// let the logout raise the gate and enter the slow Clear, then attempt
	// the write a background fetch would perform when its result arrives
	time.Sleep(30 * time.Millisecond)
	require.True(t, f.gate.Blocked())
	require.NoError(t, f.engine.Set(ctx, "agenda", json.RawMessage(`[{"id":"late"}]`)))

	wg.Wait()

	got, err := f.engine.Get(ctx, "agenda")
	require.NoError(t, err)
	assert.Nil(t, got, "a write racing the wipe must not survive it")
}

func TestLogoutCoordinator_Reentrant(t *testing.T) {
	f := newLogoutFixture(t, &slowClearKV{
		KVStore:    store.NewMemoryStore("evcache", 0),
		clearDelay: 80 * time.Millisecond,
	})
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		require.NoError(t, f.coordinator.Logout(ctx))
	}()

	time.Sleep(20 * time.Millisecond)
	err := f.coordinator.Logout(ctx)
	assert.ErrorIs(t, err, ErrLogoutInProgress)

	wg.Wait()
}

func TestLogoutCoordinator_GateLoweredOnFailure(t *testing.T) {
	f := newLogoutFixture(t, &failingClearKV{KVStore: store.NewMemoryStore("evcache", 0)})
	ctx := context.Background()

	err := f.coordinator.Logout(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)

	assert.False(t, f.gate.Blocked(), "a failed wipe must not leave the gate raised")

	// writes work again after the failed logout
	require.NoError(t, f.engine.Set(ctx, "agenda", json.RawMessage(`[{"id":"s1"}]`)))
	got, getErr := f.engine.Get(ctx, "agenda")
	require.NoError(t, getErr)
	assert.NotNil(t, got)
}

func TestLogoutCoordinator_SessionDeleteFailureStillClearsCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()
	log := logger.Nop()

	sessions := mock.NewMockSessionStore(ctrl)
	sessions.EXPECT().DeleteSession(gomock.Any()).Return(assert.AnError)

	gate := NewGate(log)
	cacheKV := store.NewMemoryStore("evcache", 0)
	storages := &store.ClientStorages{Cache: cacheKV, Sessions: sessions}

	mirrorKV := store.NewMemoryStore("evcache", 0)
	mirror := NewMirrorWriter(mirrorKV, breaker.New("mirror-cache", 3, 30*time.Second, log), log)

	primary := &stubRemote{}
	engine := NewCacheSyncEngine(
		storages,
		primary,
		primary,
		breaker.New("secondary-source", 3, 30*time.Second, log),
		mirror,
		models.TableRegistry{{Name: "agenda", RemoteID: "event/agenda"}},
		gate,
		EngineConfig{DefaultTTL: time.Hour},
		log,
	)
	job := NewSyncJob(engine, NewTriggerBus(), log)
	coordinator := NewLogoutCoordinator(engine, job, mirror, storages, gate, log)

	require.NoError(t, engine.Set(ctx, "agenda", json.RawMessage(`[{"id":"s1"}]`)))

	err := coordinator.Logout(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)

	// the failed session delete must not stop the cache wipe
	got, getErr := engine.Get(ctx, "agenda")
	require.NoError(t, getErr)
	assert.Nil(t, got)
	assert.False(t, gate.Blocked())
}

func TestLogoutCoordinator_AbortsInFlightSync(t *testing.T) {
	f := newLogoutFixture(t, store.NewMemoryStore("evcache", 0))
	ctx := context.Background()

	f.primary.delay = 150 * time.Millisecond
	f.primary.respond("event/agenda", `[{"id":"s1"}]`)

	done := make(chan models.SyncResult, 1)
	go func() {
		done <- f.engine.SyncAll(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, f.coordinator.Logout(ctx))

	result := <-done
	assert.Empty(t, result.Errors, "an aborted pass records no errors")

	got, err := f.engine.Get(ctx, "agenda")
	require.NoError(t, err)
	assert.Nil(t, got, "no fetched data may land after logout")
}
