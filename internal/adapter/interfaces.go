package adapter

import (
	"context"
	"encoding/json"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/mock_adapter.go -package=mock

// RemoteSource is the opaque "table → records" contract the sync engine
// fetches through. Implementations return the raw JSON records for one remote
// table identifier; the engine never interprets record shapes.
//
// The engine holds two independent instances: the primary conference data
// service and a secondary read-only replica used as a fallback when the
// primary is unavailable. Only the secondary is routed through a circuit
// breaker.
type RemoteSource interface {
	// FetchTable downloads the records of the given remote table. The call
	// honours ctx cancellation; an aborted fetch returns the context error.
	FetchTable(ctx context.Context, remoteID string) (json.RawMessage, error)
}
