package config

import (
	"fmt"
	"time"
)

// Client-side defaults applied when the merged configuration leaves a field
// unset. Endpoint addresses and the DSN have no defaults: those must be
// provided explicitly.
const (
	DefaultCacheNamespace  = "evcache"
	DefaultCacheSizeBudget = int64(5 << 20)
	DefaultCacheTTL        = time.Hour
	DefaultSyncInterval    = 5 * time.Minute
	DefaultSyncIntervalDev = time.Minute
	DefaultRequestTimeout  = 30 * time.Second
	DefaultBreakerLimit    = 3
	DefaultBreakerCooldown = 30 * time.Second
)

// ClientApp holds client-side application settings derived from the shared
// structured config.
type ClientApp struct {
	// Environment selects the runtime profile.
	Environment string
	// Version is the application version string.
	Version string
}

// ClientRemote holds network settings used by the client transport layer.
type ClientRemote struct {
	// BaseURL is the primary data source endpoint.
	BaseURL string
	// SecondaryBaseURL is the fallback data source endpoint.
	SecondaryBaseURL string
	// RequestTimeout is the default timeout for outbound client requests.
	RequestTimeout time.Duration
}

// ClientDB contains local database connection settings for the client.
type ClientDB struct {
	// DSN is the SQLite connection string used by the client.
	DSN string
}

// ClientCache contains the cache namespace and budget settings.
type ClientCache struct {
	// Namespace is the key prefix for this application's cache entries.
	Namespace string
	// SizeBudget is the byte budget for the namespace.
	SizeBudget int64
	// DefaultTTL is the freshness window for tables without an override.
	DefaultTTL time.Duration
}

// ClientStorage groups client storage backend settings.
type ClientStorage struct {
	// DB holds local database settings.
	DB ClientDB
	// Cache holds the cache namespace settings.
	Cache ClientCache
}

// ClientSync contains client background sync settings.
type ClientSync struct {
	// Interval defines how often the background sync job should run.
	Interval time.Duration
}

// ClientBreaker contains circuit breaker tunables.
type ClientBreaker struct {
	// Threshold is the consecutive-failure count that opens a breaker.
	Threshold int
	// Cooldown is the open-state wait before a probe is allowed.
	Cooldown time.Duration
}

// ClientDebug contains the debug HTTP surface settings.
type ClientDebug struct {
	// HTTPAddress is the debug server listen address; empty disables it.
	HTTPAddress string
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	// App contains application-level client settings.
	App ClientApp
	// Remote contains client transport addresses and timeouts.
	Remote ClientRemote
	// Storage contains client storage settings.
	Storage ClientStorage
	// Sync contains background job settings.
	Sync ClientSync
	// Breaker contains circuit breaker settings.
	Breaker ClientBreaker
	// Debug contains the debug HTTP surface settings.
	Debug ClientDebug
}

// GetClientConfig builds and validates a client-specific config view from the
// merged structured configuration.
//
// It loads the base config via [GetStructuredConfig], maps only the fields
// relevant to the client runtime, fills unset tunables with defaults, and
// validates the resulting [ClientConfig].
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := &ClientConfig{
		App: ClientApp{
			Environment: cfg.App.Environment,
			Version:     cfg.App.Version,
		},
		Remote: ClientRemote{
			BaseURL:          cfg.Remote.BaseURL,
			SecondaryBaseURL: cfg.Remote.SecondaryBaseURL,
			RequestTimeout:   cfg.Remote.RequestTimeout,
		},
		Storage: ClientStorage{
			DB: ClientDB{
				DSN: cfg.Storage.DB.DSN,
			},
			Cache: ClientCache{
				Namespace:  cfg.Storage.Cache.Namespace,
				SizeBudget: cfg.Storage.Cache.SizeBudget,
				DefaultTTL: cfg.Storage.Cache.DefaultTTL,
			},
		},
		Sync:    ClientSync{Interval: cfg.Sync.Interval},
		Breaker: ClientBreaker{Threshold: cfg.Breaker.Threshold, Cooldown: cfg.Breaker.Cooldown},
		Debug:   ClientDebug{HTTPAddress: cfg.Debug.HTTPAddress},
	}
	clientCfg.applyDefaults()

	return clientCfg, clientCfg.validate()
}

func (cfg *ClientConfig) applyDefaults() {
	if cfg.Storage.Cache.Namespace == "" {
		cfg.Storage.Cache.Namespace = DefaultCacheNamespace
	}
	if cfg.Storage.Cache.SizeBudget <= 0 {
		cfg.Storage.Cache.SizeBudget = DefaultCacheSizeBudget
	}
	if cfg.Storage.Cache.DefaultTTL <= 0 {
		cfg.Storage.Cache.DefaultTTL = DefaultCacheTTL
	}
	if cfg.Sync.Interval <= 0 {
		if cfg.App.Environment == "development" {
			cfg.Sync.Interval = DefaultSyncIntervalDev
		} else {
			cfg.Sync.Interval = DefaultSyncInterval
		}
	}
	if cfg.Remote.RequestTimeout <= 0 {
		cfg.Remote.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Breaker.Threshold <= 0 {
		cfg.Breaker.Threshold = DefaultBreakerLimit
	}
	if cfg.Breaker.Cooldown <= 0 {
		cfg.Breaker.Cooldown = DefaultBreakerCooldown
	}
}
