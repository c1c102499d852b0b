// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// TableRegistration maps a logical table name to its remote source identifier
// and an optional per-table TTL override (zero means the engine default).
type TableRegistration struct {
	Name     string
	RemoteID string
	TTL      time.Duration
}

// TableRegistry is the single source of truth for "all tables". Every code
// path that enumerates tables (sync-all, offline status, debug dump) consumes
// this registry; table-name lists must never be duplicated elsewhere.
// The registry is static configuration, read-only at runtime.
type TableRegistry []TableRegistration

// Lookup returns the registration for the given logical table name.
func (r TableRegistry) Lookup(name string) (TableRegistration, bool) {
	for _, reg := range r {
		if reg.Name == name {
			return reg, true
		}
	}
	return TableRegistration{}, false
}

// Names returns the logical table names in registry order.
func (r TableRegistry) Names() []string {
	names := make([]string, 0, len(r))
	for _, reg := range r {
		names = append(names, reg.Name)
	}
	return names
}

// DefaultRegistry returns the table set mirrored by the companion client.
// Seat assignments change more often than the rest, so they carry a shorter
// TTL override.
func DefaultRegistry() TableRegistry {
	return TableRegistry{
		{Name: "attendees", RemoteID: "event/attendees"},
		{Name: "agenda", RemoteID: "event/agenda"},
		{Name: "sponsors", RemoteID: "event/sponsors"},
		{Name: "dining", RemoteID: "event/dining"},
		{Name: "seats", RemoteID: "event/seats", TTL: 5 * time.Minute},
	}
}
