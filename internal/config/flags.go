package config

import (
	"errors"
	"flag"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-a debug server address in format [host]:[port]
//	-d local database DSN
//	-r primary remote base URL
//	-secondary-url fallback remote base URL
//	-request-timeout outbound request timeout (e.g., "30s", "1m")
//	-sync-interval background sync interval (e.g., "5m")
//	-cache-namespace cache key namespace
//	-cache-budget cache size budget in bytes
//	-cache-ttl default cache entry TTL (e.g., "1h")
//	-breaker-threshold consecutive failures before a breaker opens
//	-breaker-cooldown open breaker cooldown (e.g., "30s")
//	-c/-config json file path with configs
func ParseFlags() *StructuredConfig {
	var debugAddress NetAddress
	var databaseDSN string
	var baseURL string
	var secondaryBaseURL string
	var requestTimeout time.Duration
	var syncInterval time.Duration
	var cacheNamespace string
	var cacheBudget int64
	var cacheTTL time.Duration
	var breakerThreshold int
	var breakerCooldown time.Duration
	var jsonConfigPath string

	flag.Var(&debugAddress, "a", "Debug server address host:port")
	flag.StringVar(&databaseDSN, "d", "", "Local database DSN")
	flag.StringVar(&baseURL, "r", "", "Primary remote base URL")
	flag.StringVar(&secondaryBaseURL, "secondary-url", "", "Fallback remote base URL")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	flag.DurationVar(&syncInterval, "sync-interval", 0, "Background sync interval (e.g., 5m)")
	flag.StringVar(&cacheNamespace, "cache-namespace", "", "Cache key namespace")
	flag.Int64Var(&cacheBudget, "cache-budget", 0, "Cache size budget in bytes")
	flag.DurationVar(&cacheTTL, "cache-ttl", 0, "Default cache entry TTL (e.g., 1h)")
	flag.IntVar(&breakerThreshold, "breaker-threshold", 0, "Failures before a breaker opens")
	flag.DurationVar(&breakerCooldown, "breaker-cooldown", 0, "Open breaker cooldown (e.g., 30s)")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")

	flag.Parse()

	return &StructuredConfig{
		Remote: Remote{
			BaseURL:          baseURL,
			SecondaryBaseURL: secondaryBaseURL,
			RequestTimeout:   requestTimeout,
		},
		Storage: Storage{
			DB: DB{
				DSN: databaseDSN,
			},
			Cache: Cache{
				Namespace:  cacheNamespace,
				SizeBudget: cacheBudget,
				DefaultTTL: cacheTTL,
			},
		},
		Sync: Sync{Interval: syncInterval},
		Breaker: Breaker{
			Threshold: breakerThreshold,
			Cooldown:  breakerCooldown,
		},
		Debug: Debug{
			HTTPAddress: debugAddress.String(),
		},
		JSONFilePath: jsonConfigPath,
	}
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 {
		return errors.New("port number is a positive integer")
	}

	if host != "localhost" {
		ip := net.ParseIP(hostAndPort[0])
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
