package models

import (
	"math"
	"time"
)

// DailyMetricRecord holds one day of zone analytics as fetched from the
// Cloudflare GraphQL API. Records live only for the duration of one
// collection run; the tabular store is the durable state.
type DailyMetricRecord struct {
	Date              time.Time
	UniqueVisitors    int64
	PageViews         int64
	TotalRequests     int64
	CachedRequests    int64
	TotalBytes        int64
	CachedBytes       int64
	ThreatsDetected   int64
	CacheRatioPercent float64
}

// DateKey returns the record's date in the canonical yyyy-mm-dd form used
// for deduplication against the store.
func (r *DailyMetricRecord) DateKey() string {
	return r.Date.Format("2006-01-02")
}

// StoreRow is the persisted representation of a DailyMetricRecord: byte
// counts rendered human-readable, the date kept typed so each store backend
// can emit a native date value.
type StoreRow struct {
	Date           time.Time
	UniqueVisitors int64
	PageViews      int64
	TotalRequests  int64
	CachedRequests int64
	CacheRatio     float64
	TotalData      string
	CachedData     string
	Threats        int64
}

// StoreSnapshot is the set of dates already present in a store, read once
// before an append. Empty reports whether the store held no rows at all
// (not even a header).
type StoreSnapshot struct {
	Dates map[string]struct{}
	Empty bool
}

// AppendConfirmation is the store's write acknowledgement.
type AppendConfirmation struct {
	UpdatedRange string
	UpdatedRows  int64
}

// AppendResult is returned by the append-with-dedup engine.
type AppendResult struct {
	Appended     int
	Duplicates   int
	Confirmation *AppendConfirmation
}

// RunSummary holds the aggregate totals over one fetched window, reported
// after a successful append.
type RunSummary struct {
	PeriodStart       time.Time
	PeriodEnd         time.Time
	Days              int
	TotalVisitors     int64
	TotalRequests     int64
	TotalCached       int64
	RequestCacheRatio float64
	TotalBytes        int64
	TotalCachedBytes  int64
	ByteCacheRatio    float64
	TotalThreats      int64
}

// CacheRatio returns cached/total as a percentage rounded to two decimals,
// or 0 when total is zero.
func CacheRatio(cached, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(cached)/float64(total)*100*100) / 100
}
