package phrasego

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus;
// the metric package provides such an implementation.
//
// Methods are called concurrently from the decoder's workers.
type MetricsCollector interface {
	// RecordDecode is called after each sentence. found is false when no
	// complete translation exists, err is nil if successful.
	RecordDecode(algorithm Algorithm, duration time.Duration, found bool, err error)

	// RecordSearch is called with the counters of each finished search.
	RecordSearch(stats Stats)

	// RecordNBest is called after each n-best extraction.
	RecordNBest(requested, returned int, duration time.Duration)

	// RecordCache is called for each cache lookup.
	RecordCache(hit bool)

	// RecordRejected is called when a sentence cannot be scheduled.
	RecordRejected()
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordDecode(Algorithm, time.Duration, bool, error) {}
func (NoopMetricsCollector) RecordSearch(Stats)                                 {}
func (NoopMetricsCollector) RecordNBest(int, int, time.Duration)                {}
func (NoopMetricsCollector) RecordCache(bool)                                   {}
func (NoopMetricsCollector) RecordRejected()                                    {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	DecodeCount      atomic.Int64
	DecodeErrors     atomic.Int64
	DecodeNotFound   atomic.Int64
	DecodeTotalNanos atomic.Int64
	Hypotheses       atomic.Int64
	Expansions       atomic.Int64
	Pruned           atomic.Int64
	Recombined       atomic.Int64
	NBestCount       atomic.Int64
	NBestReturned    atomic.Int64
	CacheHits        atomic.Int64
	CacheMisses      atomic.Int64
	Rejected         atomic.Int64
}

// RecordDecode implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDecode(_ Algorithm, duration time.Duration, found bool, err error) {
	b.DecodeCount.Add(1)
	b.DecodeTotalNanos.Add(duration.Nanoseconds())
	switch {
	case err != nil:
		b.DecodeErrors.Add(1)
	case !found:
		b.DecodeNotFound.Add(1)
	}
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(stats Stats) {
	b.Hypotheses.Add(int64(stats.Hypotheses))
	b.Expansions.Add(int64(stats.Expansions))
	b.Pruned.Add(int64(stats.Pruned))
	b.Recombined.Add(int64(stats.Recombined))
}

// RecordNBest implements MetricsCollector.
func (b *BasicMetricsCollector) RecordNBest(_, returned int, _ time.Duration) {
	b.NBestCount.Add(1)
	b.NBestReturned.Add(int64(returned))
}

// RecordCache implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCache(hit bool) {
	if hit {
		b.CacheHits.Add(1)
	} else {
		b.CacheMisses.Add(1)
	}
}

// RecordRejected implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRejected() {
	b.Rejected.Add(1)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		DecodeCount:    b.DecodeCount.Load(),
		DecodeErrors:   b.DecodeErrors.Load(),
		DecodeNotFound: b.DecodeNotFound.Load(),
		DecodeAvgNanos: b.getAvgDecodeNanos(),
		Hypotheses:     b.Hypotheses.Load(),
		Expansions:     b.Expansions.Load(),
		Pruned:         b.Pruned.Load(),
		Recombined:     b.Recombined.Load(),
		NBestCount:     b.NBestCount.Load(),
		NBestReturned:  b.NBestReturned.Load(),
		CacheHits:      b.CacheHits.Load(),
		CacheMisses:    b.CacheMisses.Load(),
		Rejected:       b.Rejected.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgDecodeNanos() int64 {
	count := b.DecodeCount.Load()
	if count == 0 {
		return 0
	}
	return b.DecodeTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	DecodeCount    int64
	DecodeErrors   int64
	DecodeNotFound int64
	DecodeAvgNanos int64
	Hypotheses     int64
	Expansions     int64
	Pruned         int64
	Recombined     int64
	NBestCount     int64
	NBestReturned  int64
	CacheHits      int64
	CacheMisses    int64
	Rejected       int64
}
