// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"sync/atomic"

	"github.com/MKhiriev/go-event-companion/internal/logger"
)

// Gate lifecycle: Active → LoggingOut → Active again once clearing finishes.
// The transition back is unconditional: Finish runs on every exit path of
// the logout sequence, so a failure partway through clearing never leaves
// the gate permanently raised.
const (
	gateActive int32 = iota
	gateLoggingOut
)

// Gate is the process-wide write-blocking logout gate. Every write-capable
// engine operation passes through a single Blocked check before it performs
// its write; there is no second write path that could forget the check.
type Gate struct {
	phase  atomic.Int32
	logger *logger.Logger
}

// NewGate returns a gate in the Active phase.
func NewGate(log *logger.Logger) *Gate {
	return &Gate{logger: log}
}

// Begin moves the gate from Active to LoggingOut. It returns false when a
// logout is already in progress.
func (g *Gate) Begin() bool {
	if !g.phase.CompareAndSwap(gateActive, gateLoggingOut) {
		return false
	}
	g.logger.Info().Msg("logout gate raised: cache writes blocked")
	return true
}

// Finish returns the gate to Active. Safe to call from a defer regardless of
// how the logout sequence terminated.
func (g *Gate) Finish() {
	if g.phase.Swap(gateActive) == gateLoggingOut {
		g.logger.Info().Msg("logout gate lowered: cache writes unblocked")
	}
}

// Blocked reports whether writes must currently be dropped. Write paths call
// this immediately before the write lands, not once per pass: a fetch that
// started before logout must still observe the gate when its result arrives.
func (g *Gate) Blocked() bool {
	return g.phase.Load() == gateLoggingOut
}
