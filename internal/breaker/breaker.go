// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package breaker implements the circuit breaker guarding the engine's
// failure-prone dependencies: the secondary mirror cache and the secondary
// remote data source. Each protected dependency gets its own instance; the
// primary persistent store is never routed through a breaker.
package breaker

import (
	"sync"
	"time"

	"github.com/MKhiriev/go-event-companion/internal/logger"
)

// State is a point-in-time snapshot of a breaker, exposed for status
// reporting and tests.
type State struct {
	FailureCount  int        `json:"failure_count"`
	IsOpen        bool       `json:"is_open"`
	LastFailureAt *time.Time `json:"last_failure_at,omitempty"`
}

// CircuitBreaker tracks consecutive failures of one dependency and
// short-circuits calls while open. Closed: calls pass through. After
// threshold consecutive failures the breaker opens; short-circuited calls are
// still counted and logged. Once the cool-down window elapses the next call
// is let through as a probe; any success closes the breaker and zeroes the
// counter. There is no backoff beyond the fixed cool-down window.
type CircuitBreaker struct {
	name      string
	threshold int
	cooldown  time.Duration
	clock     func() time.Time
	logger    *logger.Logger

	mu          sync.Mutex
	failures    int
	open        bool
	lastFailure time.Time
}

// New constructs a breaker for the named dependency. A nil clock defaults to
// time.Now.
func New(name string, threshold int, cooldown time.Duration, log *logger.Logger) *CircuitBreaker {
	return &CircuitBreaker{
		name:      name,
		threshold: threshold,
		cooldown:  cooldown,
		clock:     time.Now,
		logger:    log,
	}
}

// Execute runs op through the breaker. While open and inside the cool-down
// window it returns ErrOpen without invoking op; the rejection is counted and
// logged. Otherwise op runs and its outcome is recorded.
func (b *CircuitBreaker) Execute(op func() error) error {
	if !b.Allow() {
		b.recordFailure(true)
		return ErrOpen
	}

	if err := op(); err != nil {
		b.recordFailure(false)
		return err
	}

	b.Success()
	return nil
}

// Allow reports whether a call may proceed. An open breaker lets one call
// through as a probe once the cool-down window has elapsed.
func (b *CircuitBreaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.open {
		return true
	}
	return b.clock().Sub(b.lastFailure) >= b.cooldown
}

// Success records a successful call. Any single success closes the breaker
// and zeroes the failure counter, not only the post-cool-down probe.
func (b *CircuitBreaker) Success() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.open {
		b.logger.Info().Str("breaker", b.name).Msg("circuit breaker closed after successful probe")
	}
	b.open = false
	b.failures = 0
}

// Failure records a failed call and opens the breaker once the consecutive
// failure count reaches the threshold.
func (b *CircuitBreaker) Failure() {
	b.recordFailure(false)
}

// Snapshot returns the breaker's current state.
func (b *CircuitBreaker) Snapshot() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	state := State{FailureCount: b.failures, IsOpen: b.open}
	if !b.lastFailure.IsZero() {
		at := b.lastFailure
		state.LastFailureAt = &at
	}
	return state
}

func (b *CircuitBreaker) recordFailure(shortCircuited bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++

	if shortCircuited {
		// rejections are counted but never touch lastFailure: restarting
		// the cool-down window here would let steady traffic starve the
		// probe and keep the breaker open forever
		b.logger.Warn().
			Str("breaker", b.name).
			Int("failures", b.failures).
			Msg("call short-circuited: circuit breaker open")
		return
	}

	b.lastFailure = b.clock()

	if !b.open && b.failures >= b.threshold {
		b.open = true
		b.logger.Warn().
			Str("breaker", b.name).
			Int("failures", b.failures).
			Dur("cooldown", b.cooldown).
			Msg("circuit breaker opened")
		return
	}

	if b.open {
		// failed probe: restart the cool-down window
		b.logger.Warn().Str("breaker", b.name).Msg("probe failed, circuit breaker re-opened")
	}
}
