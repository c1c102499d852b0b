// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-event-companion/internal/logger"
	"github.com/MKhiriev/go-event-companion/internal/store"
)

type logoutCoordinator struct {
	engine   CacheSyncEngine
	job      SyncJob
	mirror   *MirrorWriter
	storages *store.ClientStorages
	gate     *Gate
	logger   *logger.Logger
}

// NewLogoutCoordinator constructs the coordinator that tears down all
// client-resident state on logout.
func NewLogoutCoordinator(
	engine CacheSyncEngine,
	job SyncJob,
	mirror *MirrorWriter,
	storages *store.ClientStorages,
	gate *Gate,
	log *logger.Logger,
) LogoutCoordinator {
	return &logoutCoordinator{
		engine:   engine,
		job:      job,
		mirror:   mirror,
		storages: storages,
		gate:     gate,
		logger:   log,
	}
}

// Logout implements LogoutCoordinator. The sequence raises the write gate
// first, stops the background sync machinery, aborts in-flight fetches, and
// only then clears both cache layers and the session marker. Clearing
// failures are collected rather than short-circuiting: a failed mirror wipe
// must not leave the primary store populated. The gate is lowered on every
// exit path.
func (c *logoutCoordinator) Logout(ctx context.Context) error {
	if !c.gate.Begin() {
		return ErrLogoutInProgress
	}
	defer c.gate.Finish()

	c.logger.Info().Msg("logout started")

	c.job.Stop()
	c.engine.AbortPendingOperations()
	c.mirror.Stop()

	var errs []error
	if err := c.storages.Cache.Clear(ctx); err != nil {
		errs = append(errs, fmt.Errorf("clear cache: %w", err))
	}
	if err := c.mirror.Clear(ctx); err != nil {
		errs = append(errs, fmt.Errorf("clear mirror: %w", err))
	}
	if err := c.storages.Sessions.DeleteSession(ctx); err != nil && !errors.Is(err, store.ErrSessionNotFound) {
		errs = append(errs, fmt.Errorf("delete session: %w", err))
	}

	if len(errs) > 0 {
		err := errors.Join(errs...)
		c.logger.Error().Err(err).Msg("logout finished with errors")
		return err
	}

	c.logger.Info().Msg("logout finished")
	return nil
}
