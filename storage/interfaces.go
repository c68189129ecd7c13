package storage

import "cloudflare-analytics/models"

// Header is the fixed nine-column header row written when a store is
// created empty. Column order matches the A:I data range.
var Header = []string{
	"Date", "Unique Visitors", "Page Views", "Total Requests",
	"Cached Requests", "Cache Ratio (%)", "Total Data", "Cached Data", "Threats",
}

// TabularStore is the interface any dedup-append destination must satisfy.
type TabularStore interface {
	// Name identifies the backend in log output.
	Name() string

	// Snapshot reads the dates already present, header excluded.
	Snapshot() (*models.StoreSnapshot, error)

	// Append writes rows to the end of the store in one batch, prefixing
	// the header row when withHeader is set.
	Append(rows []*models.StoreRow, withHeader bool) (*models.AppendConfirmation, error)

	// ApplyDateFormat applies date presentation metadata to the date
	// column. Cosmetic: callers log its error and move on.
	ApplyDateFormat() error
}
