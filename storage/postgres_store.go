package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"cloudflare-analytics/models"
)

// PostgresStore is an optional secondary TabularStore that mirrors appended
// rows into PostgreSQL. The spreadsheet stays the system of record; the
// mirror exists for SQL access to the same history.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection, waits for the database to come up,
// and runs the schema migration.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	ps := &PostgresStore{db: db}
	if err := ps.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return ps, nil
}

func (ps *PostgresStore) migrate() error {
	_, err := ps.db.Exec(`
		CREATE TABLE IF NOT EXISTS daily_metrics (
			date            DATE         PRIMARY KEY,
			unique_visitors BIGINT       NOT NULL DEFAULT 0,
			page_views      BIGINT       NOT NULL DEFAULT 0,
			total_requests  BIGINT       NOT NULL DEFAULT 0,
			cached_requests BIGINT       NOT NULL DEFAULT 0,
			cache_ratio     NUMERIC(5,2) NOT NULL DEFAULT 0,
			total_data      TEXT         NOT NULL DEFAULT '',
			cached_data     TEXT         NOT NULL DEFAULT '',
			threats         BIGINT       NOT NULL DEFAULT 0
		);
	`)
	return err
}

func (ps *PostgresStore) Name() string { return "postgres-mirror" }

// Snapshot reads the set of dates already mirrored.
func (ps *PostgresStore) Snapshot() (*models.StoreSnapshot, error) {
	rows, err := ps.db.Query(`SELECT date FROM daily_metrics`)
	if err != nil {
		return nil, fmt.Errorf("postgres: read dates: %w", err)
	}
	defer rows.Close()

	snap := &models.StoreSnapshot{Dates: make(map[string]struct{})}
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("postgres: scan date: %w", err)
		}
		snap.Dates[d.Format("2006-01-02")] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: read dates: %w", err)
	}
	snap.Empty = len(snap.Dates) == 0
	return snap, nil
}

// Append batch-inserts rows. The date column is a real DATE and the table
// has a header-free schema, so withHeader is ignored; ON CONFLICT keeps the
// insert idempotent even if the snapshot was stale.
func (ps *PostgresStore) Append(rows []*models.StoreRow, withHeader bool) (*models.AppendConfirmation, error) {
	if len(rows) == 0 {
		return &models.AppendConfirmation{}, nil
	}

	const batchSize = 50
	var total int64
	for i := 0; i < len(rows); i += batchSize {
		end := i + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		n, err := ps.insertBatch(rows[i:end])
		if err != nil {
			return nil, err
		}
		total += n
	}
	return &models.AppendConfirmation{UpdatedRows: total}, nil
}

func (ps *PostgresStore) insertBatch(batch []*models.StoreRow) (int64, error) {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*9)

	for idx, r := range batch {
		base := idx * 9
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9))
		valueArgs = append(valueArgs,
			r.Date, r.UniqueVisitors, r.PageViews, r.TotalRequests, r.CachedRequests,
			r.CacheRatio, r.TotalData, r.CachedData, r.Threats)
	}

	query := fmt.Sprintf(`
		INSERT INTO daily_metrics
			(date, unique_visitors, page_views, total_requests, cached_requests,
			 cache_ratio, total_data, cached_data, threats)
		VALUES %s
		ON CONFLICT (date) DO NOTHING
	`, strings.Join(valueStrings, ","))

	res, err := ps.db.Exec(query, valueArgs...)
	if err != nil {
		return 0, fmt.Errorf("postgres: insert batch: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// ApplyDateFormat is a no-op: the date column is natively typed.
func (ps *PostgresStore) ApplyDateFormat() error { return nil }

// Close releases the database connection.
func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}
