// Package client assembles the client runtime: background sync, the mirror
// writer, and the optional debug HTTP surface, with signal-driven shutdown.
package client
