package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestMetricsDisabledNoIncrement(t *testing.T) {
	m := New(Config{Enabled: false})
	m.Inc(MetricAuthSuccess)

	if got := m.Value(MetricAuthSuccess); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	if snap := m.Snapshot(); len(snap.Counters) != 0 {
		t.Fatalf("expected empty snapshot, got %v", snap.Counters)
	}
}

func TestMetricsConcurrentIncrementSafe(t *testing.T) {
	m := New(Config{Enabled: true})

	const goroutines = 32
	const perG = 4000

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perG; j++ {
				m.Inc(MetricVerifyLegacyDotPair)
			}
		}()
	}
	wg.Wait()

	want := uint64(goroutines * perG)
	if got := m.Value(MetricVerifyLegacyDotPair); got != want {
		t.Fatalf("expected %d, got %d", want, got)
	}
}

func TestMetricsHistogramBucketCorrectness(t *testing.T) {
	m := New(Config{Enabled: true, EnableLatencyHistograms: true})

	observations := []time.Duration{
		5 * time.Millisecond,
		10 * time.Millisecond,
		25 * time.Millisecond,
		50 * time.Millisecond,
		100 * time.Millisecond,
		250 * time.Millisecond,
		500 * time.Millisecond,
		700 * time.Millisecond,
	}
	for _, d := range observations {
		m.Observe(MetricAuthenticateLatency, d)
	}
	// ignored: only the latency ID carries a histogram
	m.Observe(MetricAuthSuccess, time.Millisecond)

	buckets := m.Snapshot().Histograms[MetricAuthenticateLatency]
	if len(buckets) != HistBucketCount {
		t.Fatalf("expected %d buckets, got %d", HistBucketCount, len(buckets))
	}
	for i, v := range buckets {
		if v != 1 {
			t.Fatalf("bucket %d: expected 1, got %d", i, v)
		}
	}
}

func TestMetricsOutOfRangeIgnored(t *testing.T) {
	m := New(Config{Enabled: true})
	m.Inc(MetricIDCount + 1)
	if got := m.Value(MetricIDCount + 1); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	if MetricIDCount.Name() != "" {
		t.Fatal("expected empty name for out-of-range id")
	}
}

func TestMetricNamesUnique(t *testing.T) {
	seen := map[string]MetricID{}
	for id := MetricID(0); id < MetricIDCount; id++ {
		name := id.Name()
		if name == "" {
			t.Fatalf("metric %d has no name", id)
		}
		if prev, ok := seen[name]; ok {
			t.Fatalf("metric %d and %d share name %q", prev, id, name)
		}
		seen[name] = id
	}
}
