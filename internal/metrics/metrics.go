package metrics

import (
	"sync/atomic"
	"time"
)

// MetricID identifies a counter slot.
type MetricID uint16

const (
	MetricAuthSuccess MetricID = iota
	MetricAuthFailure
	MetricUserNotFound
	MetricLookupError
	MetricVerifyCanonical
	MetricVerifyLegacyLibrary
	MetricVerifyLegacyDotPair
	MetricVerifyUnrecognized
	MetricMigrationApplied
	MetricMigrationFailed
	MetricMigrationSkipped
	MetricAuthenticateLatency
	MetricIDCount
)

var metricNames = [MetricIDCount]string{
	MetricAuthSuccess:         "auth_success_total",
	MetricAuthFailure:         "auth_failure_total",
	MetricUserNotFound:        "auth_user_not_found_total",
	MetricLookupError:         "auth_lookup_error_total",
	MetricVerifyCanonical:     "verify_canonical_total",
	MetricVerifyLegacyLibrary: "verify_legacy_library_total",
	MetricVerifyLegacyDotPair: "verify_legacy_dot_pair_total",
	MetricVerifyUnrecognized:  "verify_unrecognized_total",
	MetricMigrationApplied:    "migration_applied_total",
	MetricMigrationFailed:     "migration_failed_total",
	MetricMigrationSkipped:    "migration_skipped_total",
	MetricAuthenticateLatency: "authenticate_latency",
}

// Name returns the exporter-facing name of id, or "" when id is out of range.
func (id MetricID) Name() string {
	if id >= MetricIDCount {
		return ""
	}
	return metricNames[id]
}

const (
	HistBucketCount = 8
	cacheLineSize   = 64
)

// HistogramBoundaries are the inclusive upper bounds of the first seven buckets. The last
// bucket is +Inf.
var HistogramBoundaries = [HistBucketCount - 1]time.Duration{
	5 * time.Millisecond,
	10 * time.Millisecond,
	25 * time.Millisecond,
	50 * time.Millisecond,
	100 * time.Millisecond,
	250 * time.Millisecond,
	500 * time.Millisecond,
}

type histogram struct {
	buckets [HistBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Config enables counters and the latency histogram.
type Config struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// Metrics holds lock-free counters and latency histograms.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [MetricIDCount]paddedCounter
	histograms    [MetricIDCount]histogram
}

// Snapshot is a point-in-time copy of every counter and histogram.
type Snapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

func New(cfg Config) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= MetricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records d in the histogram for id. Only latency IDs carry histograms.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enableLatency || id != MetricAuthenticateLatency {
		return
	}
	atomic.AddUint64(&m.histograms[id].buckets[bucketIndex(d)], 1)
}

func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= MetricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

func (m *Metrics) Snapshot() Snapshot {
	if m == nil || !m.enabled {
		return Snapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := Snapshot{
		Counters:   make(map[MetricID]uint64, int(MetricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < MetricIDCount; id++ {
		if id == MetricAuthenticateLatency {
			continue
		}
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, HistBucketCount)
		for i := 0; i < HistBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricAuthenticateLatency].buckets[i])
		}
		s.Histograms[MetricAuthenticateLatency] = buckets
	}

	return s
}

func bucketIndex(d time.Duration) int {
	for i, upper := range HistogramBoundaries {
		if d <= upper {
			return i
		}
	}
	return HistBucketCount - 1
}
