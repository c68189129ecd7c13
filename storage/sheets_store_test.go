package storage

import (
	"testing"
	"time"
)

func TestDateSerialRoundTrip(t *testing.T) {
	tests := []struct {
		date   string
		serial int64
	}{
		{"1899-12-31", 1},
		{"1900-01-01", 2},
		{"2024-01-01", 45292},
		{"2024-12-31", 45657},
	}

	for _, tt := range tests {
		d, err := time.Parse("2006-01-02", tt.date)
		if err != nil {
			t.Fatal(err)
		}
		if got := dateToSerial(d); got != tt.serial {
			t.Errorf("dateToSerial(%s) = %d; want %d", tt.date, got, tt.serial)
		}
		if got := serialToDate(float64(tt.serial)).Format("2006-01-02"); got != tt.date {
			t.Errorf("serialToDate(%d) = %s; want %s", tt.serial, got, tt.date)
		}
	}
}

func TestParseDateCell(t *testing.T) {
	tests := []struct {
		name string
		cell interface{}
		want string
		ok   bool
	}{
		{"serial number", float64(45292), "2024-01-01", true},
		{"serial with time part", 45292.75, "2024-01-01", true},
		{"plain date string", "2024-01-01", "2024-01-01", true},
		{"padded date string", "  2024-01-01 ", "2024-01-01", true},
		{"legacy formula", "=DATE(2024, 1, 5)", "2024-01-05", true},
		{"header text", "Date", "", false},
		{"empty string", "", "", false},
		{"nil cell", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseDateCell(tt.cell)
			if ok != tt.ok || got != tt.want {
				t.Errorf("parseDateCell(%v) = (%q, %v); want (%q, %v)",
					tt.cell, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestHeaderHasNineColumns(t *testing.T) {
	if len(Header) != 9 {
		t.Fatalf("header has %d columns; the data range is A:I", len(Header))
	}
	if Header[0] != "Date" {
		t.Errorf("first column = %q; dedup reads dates from column A", Header[0])
	}
}
