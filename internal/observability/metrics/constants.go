// Package metrics provides constants used across metric definitions.
package metrics

import "time"

// Label value constants used for metric labels.
const (
	// LabelSuccess is the status label for successful operations.
	LabelSuccess = "success"
	// LabelError is the status label for failed operations.
	LabelError = "error"

	// LabelLive marks an SST reading fetched from the provider.
	LabelLive = "live"
	// LabelRetried marks a live reading for the previous day after today failed.
	LabelRetried = "retried"
	// LabelCached marks an SST reading served from the last good value.
	LabelCached = "cached"
	// LabelFallback marks the configured fallback SST reading.
	LabelFallback = "fallback"
)

// Histogram bucket configuration constants.
// These define the base values and factors for exponential bucket generation.
const (
	// BucketStart1ms is the starting bucket for 1ms histograms (1ms to ~1s range).
	BucketStart1ms = 0.001
	// BucketStart10ms is the starting bucket for 10ms histograms (10ms to ~40s range).
	BucketStart10ms = 0.01
	// BucketStart100ms is the starting bucket for 100ms histograms (100ms to ~100s range).
	BucketStart100ms = 0.1
	// BucketStart64B is the starting bucket for 64 byte histograms.
	BucketStart64B = 64.0

	// BucketFactor2 is the common exponential growth factor of 2 for histogram buckets.
	BucketFactor2 = 2

	// BucketCount10 defines 10 exponential buckets.
	BucketCount10 = 10
	// BucketCount12 defines 12 exponential buckets.
	BucketCount12 = 12
)

// Risk score histogram layout, one bucket per ten points.
const (
	RiskBucketStart = 10.0
	RiskBucketWidth = 10.0
	RiskBucketCount = 10
)

// Time constants.
const (
	// ShutdownTimeout is the timeout for graceful shutdown operations.
	ShutdownTimeout = 5 * time.Second
)
