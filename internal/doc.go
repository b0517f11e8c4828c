// Package internal documents the Planora server internals.
//
// The internal tree is organized by responsibility:
// - api: HTTP handlers, middleware, response envelope, and routing
// - domain: admin and event services with their repository contracts
// - storage: mongo and in-memory repositories
// - ratelimit: fixed-window counters (memory, redis)
// - auth, audit, config, metrics, telemetry, sanitize, validation: shared infrastructure
//
// Code in internal/ is not meant for external import.
package internal
