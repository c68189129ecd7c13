package services

import (
	"fmt"
	"sort"

	"cloudflare-analytics/models"
	"cloudflare-analytics/storage"
	"cloudflare-analytics/utils"
)

// Appender implements the append-with-dedup protocol: rows whose dates
// already exist in the store are skipped, the rest are written oldest-first
// in a single batch. Re-running with the same records after a successful
// append changes nothing.
type Appender struct {
	logger *utils.Logger
}

// NewAppender creates an Appender with the given logger.
func NewAppender(logger *utils.Logger) *Appender {
	return &Appender{logger: logger}
}

// AppendNew appends the subset of records not yet present in store.
// A failed snapshot read degrades to the empty-store assumption; only a
// failed write aborts. The date-format pass after a write is cosmetic and
// never fails the append.
func (a *Appender) AppendNew(records []*models.DailyMetricRecord, store storage.TabularStore) (*models.AppendResult, error) {
	result := &models.AppendResult{}
	if len(records) == 0 {
		a.logger.Info("[appender] %s: no records to append", store.Name())
		return result, nil
	}

	snap, err := store.Snapshot()
	if err != nil {
		a.logger.Warn("[appender] %s: snapshot read failed, assuming empty store: %v",
			store.Name(), err)
		snap = &models.StoreSnapshot{Dates: map[string]struct{}{}, Empty: true}
	}

	// Oldest first, so the store accumulates chronologically.
	sorted := make([]*models.DailyMetricRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	rows := make([]*models.StoreRow, 0, len(sorted))
	for _, rec := range sorted {
		if _, dup := snap.Dates[rec.DateKey()]; dup {
			result.Duplicates++
			continue
		}
		rows = append(rows, &models.StoreRow{
			Date:           rec.Date,
			UniqueVisitors: rec.UniqueVisitors,
			PageViews:      rec.PageViews,
			TotalRequests:  rec.TotalRequests,
			CachedRequests: rec.CachedRequests,
			CacheRatio:     rec.CacheRatioPercent,
			TotalData:      utils.FormatBytes(rec.TotalBytes),
			CachedData:     utils.FormatBytes(rec.CachedBytes),
			Threats:        rec.ThreatsDetected,
		})
	}

	if len(rows) == 0 {
		a.logger.Info("[appender] %s: nothing new to append (%d duplicates)",
			store.Name(), result.Duplicates)
		return result, nil
	}

	conf, err := store.Append(rows, snap.Empty)
	if err != nil {
		return nil, fmt.Errorf("appender: %s: %w", store.Name(), err)
	}
	result.Appended = len(rows)
	result.Confirmation = conf

	// The rows are already committed at this point.
	if err := store.ApplyDateFormat(); err != nil {
		a.logger.Warn("[appender] %s: date-format pass failed: %v", store.Name(), err)
	}

	a.logger.Info("[appender] %s: appended %d rows (%d duplicates skipped)",
		store.Name(), result.Appended, result.Duplicates)
	return result, nil
}
