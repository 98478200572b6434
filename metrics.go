package xmcdata

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting pipeline metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordParse is called after the source text of a split was parsed.
	// rows is the number of retained rows, err is nil if successful.
	RecordParse(rows int, duration time.Duration, err error)

	// RecordTrim is called after trimming with the row counts before and after.
	RecordTrim(rowsBefore, rowsAfter int, duration time.Duration)

	// RecordCacheLoad is called after every cache lookup. hit reports whether
	// the cache was used; err is set when an existing cache was unusable.
	RecordCacheLoad(hit bool, duration time.Duration, err error)

	// RecordCacheSave is called after a split was written to the cache.
	RecordCacheSave(bytes int64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordParse(int, time.Duration, error)       {}
func (NoopMetricsCollector) RecordTrim(int, int, time.Duration)          {}
func (NoopMetricsCollector) RecordCacheLoad(bool, time.Duration, error)  {}
func (NoopMetricsCollector) RecordCacheSave(int64, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	ParseCount      atomic.Int64
	ParseErrors     atomic.Int64
	ParsedRows      atomic.Int64
	ParseTotalNanos atomic.Int64
	TrimCount       atomic.Int64
	TrimmedRows     atomic.Int64
	CacheHits       atomic.Int64
	CacheMisses     atomic.Int64
	CacheCorrupt    atomic.Int64
	CacheLoadNanos  atomic.Int64
	CacheSaveCount  atomic.Int64
	CacheSaveErrors atomic.Int64
	CacheSavedBytes atomic.Int64
}

// RecordParse implements MetricsCollector.
func (b *BasicMetricsCollector) RecordParse(rows int, duration time.Duration, err error) {
	b.ParseCount.Add(1)
	b.ParseTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ParseErrors.Add(1)
		return
	}
	b.ParsedRows.Add(int64(rows))
}

// RecordTrim implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTrim(rowsBefore, rowsAfter int, duration time.Duration) {
	b.TrimCount.Add(1)
	b.TrimmedRows.Add(int64(rowsBefore - rowsAfter))
}

// RecordCacheLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCacheLoad(hit bool, duration time.Duration, err error) {
	b.CacheLoadNanos.Add(duration.Nanoseconds())
	switch {
	case hit:
		b.CacheHits.Add(1)
	case err != nil:
		b.CacheMisses.Add(1)
		b.CacheCorrupt.Add(1)
	default:
		b.CacheMisses.Add(1)
	}
}

// RecordCacheSave implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCacheSave(bytes int64, duration time.Duration, err error) {
	b.CacheSaveCount.Add(1)
	if err != nil {
		b.CacheSaveErrors.Add(1)
		return
	}
	b.CacheSavedBytes.Add(bytes)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		ParseCount:      b.ParseCount.Load(),
		ParseErrors:     b.ParseErrors.Load(),
		ParsedRows:      b.ParsedRows.Load(),
		ParseAvgNanos:   b.getAvgParseNanos(),
		TrimCount:       b.TrimCount.Load(),
		TrimmedRows:     b.TrimmedRows.Load(),
		CacheHits:       b.CacheHits.Load(),
		CacheMisses:     b.CacheMisses.Load(),
		CacheCorrupt:    b.CacheCorrupt.Load(),
		CacheSaveCount:  b.CacheSaveCount.Load(),
		CacheSaveErrors: b.CacheSaveErrors.Load(),
		CacheSavedBytes: b.CacheSavedBytes.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgParseNanos() int64 {
	count := b.ParseCount.Load()
	if count == 0 {
		return 0
	}
	return b.ParseTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	ParseCount      int64
	ParseErrors     int64
	ParsedRows      int64
	ParseAvgNanos   int64
	TrimCount       int64
	TrimmedRows     int64
	CacheHits       int64
	CacheMisses     int64
	CacheCorrupt    int64
	CacheSaveCount  int64
	CacheSaveErrors int64
	CacheSavedBytes int64
}
