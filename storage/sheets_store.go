package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"cloudflare-analytics/models"
	"cloudflare-analytics/utils"
)

// sheetsEpoch is day zero of Google Sheets date serial numbers.
var sheetsEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// SheetsStore is the primary TabularStore: one named sheet inside one
// spreadsheet, data range A:I. Date cells are written as typed serial
// numbers under RAW input, never as formula text.
type SheetsStore struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string
	logger        *utils.Logger
}

// NewSheetsStore authenticates with the given service-account credentials
// file and returns a store bound to one sheet.
func NewSheetsStore(ctx context.Context, credentialsFile, spreadsheetID, sheetName string, logger *utils.Logger) (*SheetsStore, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("sheets: build service: %w", err)
	}

	return &SheetsStore{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		logger:        logger,
	}, nil
}

func (s *SheetsStore) Name() string { return "google-sheets" }

func (s *SheetsStore) dataRange() string {
	return fmt.Sprintf("%s!A:I", s.sheetName)
}

// Snapshot reads the current sheet contents and collects the set of dates
// in column A, skipping the header row.
func (s *SheetsStore) Snapshot() (*models.StoreSnapshot, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.dataRange()).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("SERIAL_NUMBER").
		Do()
	if err != nil {
		return nil, fmt.Errorf("sheets: read %s: %w", s.dataRange(), err)
	}

	s.logger.Debug("[sheets] Snapshot: %d rows in %s", len(resp.Values), s.dataRange())

	snap := &models.StoreSnapshot{
		Dates: make(map[string]struct{}),
		Empty: len(resp.Values) == 0,
	}
	for i, row := range resp.Values {
		if i == 0 || len(row) == 0 {
			continue
		}
		if key, ok := parseDateCell(row[0]); ok {
			snap.Dates[key] = struct{}{}
		}
	}
	return snap, nil
}

// Append writes rows after the last data row with INSERT_ROWS. RAW input
// keeps the byte-size strings literal while the serial-number date cells
// stay numeric.
func (s *SheetsStore) Append(rows []*models.StoreRow, withHeader bool) (*models.AppendConfirmation, error) {
	values := make([][]interface{}, 0, len(rows)+1)
	if withHeader {
		header := make([]interface{}, len(Header))
		for i, h := range Header {
			header[i] = h
		}
		values = append(values, header)
	}

	for _, r := range rows {
		values = append(values, []interface{}{
			dateToSerial(r.Date),
			r.UniqueVisitors,
			r.PageViews,
			r.TotalRequests,
			r.CachedRequests,
			r.CacheRatio,
			r.TotalData,
			r.CachedData,
			r.Threats,
		})
	}

	resp, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, s.dataRange(),
		&sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Do()
	if err != nil {
		return nil, fmt.Errorf("sheets: append %d rows: %w", len(values), err)
	}

	conf := &models.AppendConfirmation{}
	if resp.Updates != nil {
		conf.UpdatedRange = resp.Updates.UpdatedRange
		conf.UpdatedRows = resp.Updates.UpdatedRows
	}
	return conf, nil
}

// ApplyDateFormat sets a yyyy-mm-dd number format on column A for every
// data row, so the serial numbers render as dates.
func (s *SheetsStore) ApplyDateFormat() error {
	sheetID, err := s.sheetID()
	if err != nil {
		return err
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    1,
					StartColumnIndex: 0,
					EndColumnIndex:   1,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						NumberFormat: &sheets.NumberFormat{
							Type:    "DATE",
							Pattern: "yyyy-mm-dd",
						},
					},
				},
				Fields: "userEnteredFormat.numberFormat",
			},
		}},
	}

	if _, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Do(); err != nil {
		return fmt.Errorf("sheets: apply date format: %w", err)
	}
	return nil
}

func (s *SheetsStore) sheetID() (int64, error) {
	ss, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Fields("sheets.properties").Do()
	if err != nil {
		return 0, fmt.Errorf("sheets: lookup sheet id: %w", err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == s.sheetName {
			return sh.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("sheets: no sheet named %q in spreadsheet", s.sheetName)
}

// dateToSerial converts a calendar date to a Sheets serial number (whole
// days since 1899-12-30).
func dateToSerial(t time.Time) int64 {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return int64(d.Sub(sheetsEpoch).Hours() / 24)
}

// serialToDate is the inverse of dateToSerial; fractional day parts are
// dropped.
func serialToDate(serial float64) time.Time {
	return sheetsEpoch.AddDate(0, 0, int(math.Floor(serial)))
}

// parseDateCell turns a column-A cell into a canonical yyyy-mm-dd key.
// Cells may arrive as serial numbers (typed dates), plain date strings, or
// a =DATE(y,m,d) formula written by older revisions of this tool.
func parseDateCell(cell interface{}) (string, bool) {
	switch v := cell.(type) {
	case float64:
		return serialToDate(v).Format("2006-01-02"), true
	case int64:
		return serialToDate(float64(v)).Format("2006-01-02"), true
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return serialToDate(f).Format("2006-01-02"), true
		}
	case string:
		s := strings.TrimSpace(v)
		if t, err := time.Parse("2006-01-02", s); err == nil {
			return t.Format("2006-01-02"), true
		}
		if strings.HasPrefix(s, "=DATE(") {
			var y, m, d int
			if _, err := fmt.Sscanf(strings.ReplaceAll(s, " ", ""), "=DATE(%d,%d,%d)", &y, &m, &d); err == nil {
				return fmt.Sprintf("%04d-%02d-%02d", y, m, d), true
			}
		}
	}
	return "", false
}
