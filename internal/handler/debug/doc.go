// Package debug implements the loopback-only debug HTTP surface: sync status,
// per-table offline availability, a raw cache dump, and a forced sync trigger.
package debug
