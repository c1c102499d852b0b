package service

import "errors"

var (
	// ErrSyncInProgress reports a rejected re-entrant sync pass. Non-fatal:
	// the running pass is unaffected and the rejected one is not retried.
	ErrSyncInProgress = errors.New("sync already in progress")

	// ErrLogoutInProgress reports that a logout sequence is already running.
	ErrLogoutInProgress = errors.New("logout already in progress")

	// ErrUnknownTable reports a table name missing from the registry.
	ErrUnknownTable = errors.New("table is not registered")

	// ErrBadResolution reports a conflict resolution other than local/server.
	ErrBadResolution = errors.New("unknown conflict resolution")
)
