// Package clients is the outbound HTTP client of the garage service. Calls
// are retried with exponential backoff, guarded by a circuit breaker, traced,
// counted and tagged with the caller's request and correlation IDs.
package clients

import "errors"

var (
	// ErrCircuitOpen is returned without calling the endpoint while the
	// breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrRetriesExhausted wraps the last failure once every attempt failed.
	ErrRetriesExhausted = errors.New("retries exhausted")
)
