package internaldefs

import (
	"strconv"
	"strings"

	goCred "github.com/MrEthical07/goCred"
)

// NamePrefix is prepended to every exported metric name.
const NamePrefix = "gocred_"

// CounterDef names one exported counter.
type CounterDef struct {
	ID   goCred.MetricID
	Name string
	Help string
}

// HistogramDef names one exported histogram.
type HistogramDef struct {
	ID   goCred.MetricID
	Name string
	Help string
}

// CounterDefs lists every counter in export order.
var CounterDefs = []CounterDef{
	counter(goCred.MetricAuthSuccess, "Successful Authenticate calls."),
	counter(goCred.MetricAuthFailure, "Authenticate calls rejected as invalid credentials."),
	counter(goCred.MetricUserNotFound, "Authenticate calls for identifiers with no usable user."),
	counter(goCred.MetricLookupError, "User provider lookups that failed."),
	counter(goCred.MetricVerifyCanonical, "Verifications against canonical PBKDF2 credentials."),
	counter(goCred.MetricVerifyLegacyLibrary, "Verifications against bcrypt credentials."),
	counter(goCred.MetricVerifyLegacyDotPair, "Verifications against dot-pair legacy credentials."),
	counter(goCred.MetricVerifyUnrecognized, "Stored credentials in no recognized form."),
	counter(goCred.MetricMigrationApplied, "Credentials rewritten to canonical form on login."),
	counter(goCred.MetricMigrationFailed, "Credential rewrites that failed."),
	counter(goCred.MetricMigrationSkipped, "Credential rewrites that were due but not attempted."),
}

// HistogramDefs lists every histogram in export order.
var HistogramDefs = []HistogramDef{
	{
		ID:   goCred.MetricAuthenticateLatency,
		Name: NamePrefix + goCred.MetricAuthenticateLatency.Name() + "_seconds",
		Help: "Authenticate latency histogram.",
	},
}

// BucketCount is the number of histogram buckets including +Inf.
const BucketCount = 8

// HistogramBounds holds the Prometheus "le" label of each bucket.
var HistogramBounds = bucketLabels(func(s string) string { return s }, "+Inf")

// HistogramBoundSuffix holds the instrument-name-safe form of each bound.
var HistogramBoundSuffix = bucketLabels(func(s string) string { return strings.ReplaceAll(s, ".", "_") }, "inf")

func counter(id goCred.MetricID, help string) CounterDef {
	return CounterDef{ID: id, Name: NamePrefix + id.Name(), Help: help}
}

func bucketLabels(format func(string) string, last string) []string {
	bounds := goCred.LatencyBucketBounds()
	out := make([]string, 0, len(bounds)+1)
	for _, d := range bounds {
		out = append(out, format(strconv.FormatFloat(d.Seconds(), 'f', -1, 64)))
	}
	return append(out, last)
}

// NormalizeBuckets copies raw into a fixed-size bucket array, zero-filling missing buckets.
func NormalizeBuckets(raw []uint64) [BucketCount]uint64 {
	var out [BucketCount]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts to running totals.
func CumulativeBuckets(raw [BucketCount]uint64) [BucketCount]uint64 {
	var out [BucketCount]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
