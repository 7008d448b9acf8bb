package prefetch

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting search metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordLoad is called for every candidate file the source delivers.
	// bytes is the stored size, err is nil if it decoded.
	RecordLoad(bytes int64, err error)

	// RecordCandidate is called for every searched candidate sketch.
	RecordCandidate(admitted bool)

	// RecordSkip is called for every candidate signature that was not searched.
	RecordSkip(reason SkipReason)

	// RecordDownsample is called whenever the working scale coarsens.
	RecordDownsample(from, to uint64)

	// RecordSearch is called once a search finishes.
	RecordSearch(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordLoad(int64, error)           {}
func (NoopMetricsCollector) RecordCandidate(bool)              {}
func (NoopMetricsCollector) RecordSkip(SkipReason)             {}
func (NoopMetricsCollector) RecordDownsample(uint64, uint64)   {}
func (NoopMetricsCollector) RecordSearch(time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	Loads            atomic.Int64
	LoadErrors       atomic.Int64
	LoadedBytes      atomic.Int64
	Candidates       atomic.Int64
	Admitted         atomic.Int64
	SkipIncompatible atomic.Int64
	SkipNumSketch    atomic.Int64
	Downsamples      atomic.Int64
	Searches         atomic.Int64
	SearchErrors     atomic.Int64
	SearchTotalNanos atomic.Int64
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(bytes int64, err error) {
	b.Loads.Add(1)
	b.LoadedBytes.Add(bytes)
	if err != nil {
		b.LoadErrors.Add(1)
	}
}

// RecordCandidate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCandidate(admitted bool) {
	b.Candidates.Add(1)
	if admitted {
		b.Admitted.Add(1)
	}
}

// RecordSkip implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSkip(reason SkipReason) {
	switch reason {
	case SkipIncompatible:
		b.SkipIncompatible.Add(1)
	case SkipNumSketch:
		b.SkipNumSketch.Add(1)
	}
}

// RecordDownsample implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDownsample(uint64, uint64) {
	b.Downsamples.Add(1)
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(duration time.Duration, err error) {
	b.Searches.Add(1)
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SearchErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		Loads:            b.Loads.Load(),
		LoadErrors:       b.LoadErrors.Load(),
		LoadedBytes:      b.LoadedBytes.Load(),
		Candidates:       b.Candidates.Load(),
		Admitted:         b.Admitted.Load(),
		SkipIncompatible: b.SkipIncompatible.Load(),
		SkipNumSketch:    b.SkipNumSketch.Load(),
		Downsamples:      b.Downsamples.Load(),
		Searches:         b.Searches.Load(),
		SearchErrors:     b.SearchErrors.Load(),
		SearchAvgNanos:   b.getAvgSearchNanos(),
	}
}

func (b *BasicMetricsCollector) getAvgSearchNanos() int64 {
	count := b.Searches.Load()
	if count == 0 {
		return 0
	}
	return b.SearchTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	Loads            int64
	LoadErrors       int64
	LoadedBytes      int64
	Candidates       int64
	Admitted         int64
	SkipIncompatible int64
	SkipNumSketch    int64
	Downsamples      int64
	Searches         int64
	SearchErrors     int64
	SearchAvgNanos   int64
}
