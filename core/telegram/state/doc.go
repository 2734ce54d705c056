// Package state stores per-chat FSM sessions behind a small Store interface.
// Backends: process memory (go-cache), Redis and Postgres.
package state
