// Package mock provides test doubles for the ai interfaces.
//
// The mocks default to deterministic behavior (hash-seeded embedding
// vectors, a canned completion) and allow custom behavior injection via
// function fields. Call counters support assertions about provider usage,
// in particular that fail-closed paths never reach the provider.
package mock
