// Package constants provides a centralized location for all configuration
// values and magic numbers used throughout the shepherd engine.
package constants

import "time"

// Pagination caps. Every paginated scan is bounded; the caps double as the
// de facto per-invocation work limit since no explicit timeout is modeled.
const (
	// PerPage is the GitHub API page size used for all listings.
	PerPage = 100

	// MaxPages is the hard page cap per paginated scan.
	MaxPages = 8

	// MaxItems is the hard item cap per paginated scan.
	MaxItems = 500
)

// Retry policy for transient API failures. Retries happen only at the
// client layer; exhausted retries surface to policy code as indeterminate.
const (
	// MaxRetryAttempts is the number of retries after the initial attempt.
	MaxRetryAttempts = 3

	// InitialRetryDelay is the first backoff interval.
	InitialRetryDelay = 500 * time.Millisecond

	// MaxRetryDelay caps the backoff interval.
	MaxRetryDelay = 5 * time.Second
)

// Rate limiting constants
const (
	// RateLimitLowWatermark is the threshold below which rate limit
	// warnings are logged.
	RateLimitLowWatermark = 100
)

// Sweep constants
const (
	// SweepWorkers is the bounded concurrency for sweeping issues.
	SweepWorkers = 4

	// DefaultSweepLimit caps how many assigned issues one sweep examines.
	DefaultSweepLimit = 100
)
