package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"cloudflare-analytics/models"
)

// CSVArchive persists each fetched window to a monthly CSV file before any
// store write, keeping the raw integer counters for audit.
type CSVArchive struct {
	dir string
}

// NewCSVArchive returns an archive rooted at dir. The directory is created
// lazily on first write.
func NewCSVArchive(dir string) *CSVArchive {
	return &CSVArchive{dir: dir}
}

// WriteWindow writes records to <dir>/window_YYYY-MM.csv, overwriting any
// archive from an earlier attempt in the same month. Returns the file path.
func (a *CSVArchive) WriteWindow(records []*models.DailyMetricRecord, now time.Time) (string, error) {
	if len(records) == 0 {
		return "", nil
	}

	if err := os.MkdirAll(a.dir, 0755); err != nil {
		return "", fmt.Errorf("csv: create archive dir: %w", err)
	}

	path := filepath.Join(a.dir, fmt.Sprintf("window_%s.csv", now.Format("2006-01")))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("csv: create file %q: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{
		"date", "unique_visitors", "page_views", "total_requests", "cached_requests",
		"cache_ratio_percent", "total_bytes", "cached_bytes", "threats",
	}); err != nil {
		return "", fmt.Errorf("csv: write header: %w", err)
	}

	for _, r := range records {
		row := []string{
			r.DateKey(),
			strconv.FormatInt(r.UniqueVisitors, 10),
			strconv.FormatInt(r.PageViews, 10),
			strconv.FormatInt(r.TotalRequests, 10),
			strconv.FormatInt(r.CachedRequests, 10),
			strconv.FormatFloat(r.CacheRatioPercent, 'f', 2, 64),
			strconv.FormatInt(r.TotalBytes, 10),
			strconv.FormatInt(r.CachedBytes, 10),
			strconv.FormatInt(r.ThreatsDetected, 10),
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("csv: write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("csv: flush: %w", err)
	}
	return path, nil
}
