package repository

import "errors"

var (
	// ErrNoData means the provider answered but had no bars for the query.
	ErrNoData = errors.New("no data found for the given stock symbol and period")
	// ErrUpstream wraps a failed upstream call after retries.
	ErrUpstream = errors.New("upstream provider error")
	// ErrUpstreamUnavailable means the circuit breaker is open.
	ErrUpstreamUnavailable = errors.New("upstream provider unavailable")
)
