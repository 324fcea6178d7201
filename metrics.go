package goCred

import (
	"time"

	internalmetrics "github.com/MrEthical07/goCred/internal/metrics"
)

// MetricID identifies a specific counter or histogram in the in-process metrics system.
type MetricID = internalmetrics.MetricID

const (
	// MetricAuthSuccess counts successful Authenticate calls.
	MetricAuthSuccess = internalmetrics.MetricAuthSuccess
	// MetricAuthFailure counts Authenticate calls that returned ErrInvalidCredentials.
	MetricAuthFailure = internalmetrics.MetricAuthFailure
	// MetricUserNotFound counts lookups that found no usable user.
	MetricUserNotFound = internalmetrics.MetricUserNotFound
	// MetricLookupError counts provider lookup failures.
	MetricLookupError = internalmetrics.MetricLookupError
	// MetricVerifyCanonical counts verifications against canonical credentials.
	MetricVerifyCanonical = internalmetrics.MetricVerifyCanonical
	// MetricVerifyLegacyLibrary counts verifications against bcrypt credentials.
	MetricVerifyLegacyLibrary = internalmetrics.MetricVerifyLegacyLibrary
	// MetricVerifyLegacyDotPair counts verifications against dot-pair credentials.
	MetricVerifyLegacyDotPair = internalmetrics.MetricVerifyLegacyDotPair
	// MetricVerifyUnrecognized counts stored credentials that matched no form.
	MetricVerifyUnrecognized = internalmetrics.MetricVerifyUnrecognized
	// MetricMigrationApplied counts credentials rewritten to canonical form.
	MetricMigrationApplied = internalmetrics.MetricMigrationApplied
	// MetricMigrationFailed counts rehash-on-login writes that failed.
	MetricMigrationFailed = internalmetrics.MetricMigrationFailed
	// MetricMigrationSkipped counts migrations that were due but not attempted.
	MetricMigrationSkipped = internalmetrics.MetricMigrationSkipped
	// MetricAuthenticateLatency is the Authenticate latency histogram.
	MetricAuthenticateLatency = internalmetrics.MetricAuthenticateLatency
)

// Metrics holds lock-free counters and latency histograms.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time copy of every counter and histogram.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics builds a Metrics from cfg. Engines create their own; this is exposed for
// exporters and tests.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{
		Enabled:                 cfg.Enabled,
		EnableLatencyHistograms: cfg.EnableLatencyHistograms,
	})
}

// LatencyBucketBounds returns the upper bounds of the latency histogram buckets, excluding
// the final +Inf bucket.
func LatencyBucketBounds() []time.Duration {
	out := make([]time.Duration, len(internalmetrics.HistogramBoundaries))
	copy(out, internalmetrics.HistogramBoundaries[:])
	return out
}
