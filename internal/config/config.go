// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for the
// go-event-companion application. It aggregates all sub-configurations and is
// populated by merging values from environment variables, command-line flags,
// and an optional JSON file.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds application-level settings such as the runtime environment
	// and the application version.
	App App `envPrefix:"APP_"`

	// Remote holds endpoint addresses and timeouts for the conference data
	// sources.
	Remote Remote `envPrefix:"REMOTE_"`

	// Storage holds configuration for all persistence backends, including
	// the local database and the cache namespace.
	Storage Storage `envPrefix:"STORAGE_"`

	// Sync holds background synchronization settings.
	Sync Sync `envPrefix:"SYNC_"`

	// Breaker holds circuit breaker tunables shared by the secondary-source
	// and mirror-cache breakers.
	Breaker Breaker `envPrefix:"BREAKER_"`

	// Debug holds the local debug HTTP surface settings.
	Debug Debug `envPrefix:"DEBUG_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged on top of the values
	// already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds application-level configuration values.
type App struct {
	// Environment selects the runtime profile ("development" enables console
	// logging, anything else logs JSON).
	// Env: APP_ENVIRONMENT
	Environment string `env:"ENVIRONMENT"`

	// Version is the semantic version string of the running application
	// (e.g. "1.2.3").
	// Env: APP_VERSION
	Version string `env:"VERSION"`
}

// Remote holds network and timeout settings for the outbound data sources.
type Remote struct {
	// BaseURL is the primary conference API base URL
	// (e.g. "https://api.example.org").
	// Env: REMOTE_BASE_URL
	BaseURL string `env:"BASE_URL"`

	// SecondaryBaseURL is the fallback data source consulted through the
	// circuit breaker when the primary source fails.
	// Env: REMOTE_SECONDARY_BASE_URL
	SecondaryBaseURL string `env:"SECONDARY_BASE_URL"`

	// RequestTimeout is the maximum duration allowed for a single outbound
	// request before the client cancels it (e.g. "30s", "1m").
	// Env: REMOTE_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Storage groups the configuration for all storage backends used by the
// application.
type Storage struct {
	// DB holds the local database connection settings.
	DB DB `envPrefix:"DB_"`

	// Cache holds the cache namespace and budget settings.
	Cache Cache `envPrefix:"CACHE_"`
}

// DB holds connection settings for the local database backend.
type DB struct {
	// DSN is the SQLite Data Source Name (file path) used to open the local
	// database (e.g. "companion.db").
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Cache holds settings for the namespaced cache store.
type Cache struct {
	// Namespace is the key prefix isolating this application's entries from
	// anything else sharing the store.
	// Env: STORAGE_CACHE_NAMESPACE
	Namespace string `env:"NAMESPACE"`

	// SizeBudget is the byte budget for the namespace; the oldest entries
	// are evicted when new writes would exceed it.
	// Env: STORAGE_CACHE_SIZE_BUDGET
	SizeBudget int64 `env:"SIZE_BUDGET"`

	// DefaultTTL is the freshness window applied to tables without their own
	// TTL override (e.g. "1h").
	// Env: STORAGE_CACHE_DEFAULT_TTL
	DefaultTTL time.Duration `env:"DEFAULT_TTL"`
}

// Sync holds configuration for the background sync job.
type Sync struct {
	// Interval specifies how often the background job runs a full sync pass
	// (e.g. "5m").
	// Env: SYNC_INTERVAL
	Interval time.Duration `env:"INTERVAL"`
}

// Breaker holds circuit breaker tunables.
type Breaker struct {
	// Threshold is the number of consecutive failures that opens a breaker.
	// Env: BREAKER_THRESHOLD
	Threshold int `env:"THRESHOLD"`

	// Cooldown is how long an open breaker waits before allowing a single
	// probe attempt (e.g. "30s").
	// Env: BREAKER_COOLDOWN
	Cooldown time.Duration `env:"COOLDOWN"`
}

// Debug holds settings for the local debug HTTP surface.
type Debug struct {
	// HTTPAddress is the TCP address the debug server listens on, in
	// "host:port" format (e.g. "127.0.0.1:6060"). Empty disables the server.
	// Env: DEBUG_ADDRESS
	HTTPAddress string `env:"ADDRESS"`
}

// GetStructuredConfig loads, merges, and validates the application
// configuration from all available sources in the following priority order
// (last source wins for non-zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//
// Returns a fully populated *StructuredConfig or an error if any source
// fails to load or the final config fails validation.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		build()
}
