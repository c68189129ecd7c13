package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const validConfig = `{
  "cloudflare": {"api_token": "tok", "zone_id": "zone123"},
  "google_sheets": {
    "credentials_file": "creds.json",
    "spreadsheet_id": "sheet123",
    "sheet_name": "Analytics"
  }
}`

func TestLoadValid(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Cloudflare.ZoneID != "zone123" {
		t.Errorf("ZoneID = %q; want zone123", cfg.Cloudflare.ZoneID)
	}
	if cfg.GoogleSheets.SheetName != "Analytics" {
		t.Errorf("SheetName = %q; want Analytics", cfg.GoogleSheets.SheetName)
	}
	if cfg.CollectDay != 1 {
		t.Errorf("CollectDay default = %d; want 1", cfg.CollectDay)
	}
	if cfg.WindowDays != 30 {
		t.Errorf("WindowDays default = %d; want 30", cfg.WindowDays)
	}
	if cfg.CheckInterval.Minutes() != 60 {
		t.Errorf("CheckInterval default = %v; want 1h", cfg.CheckInterval)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadMalformed(t *testing.T) {
	_, err := Load(writeConfig(t, `{"cloudflare": `))
	if err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestLoadMissingFields(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			"missing cloudflare section",
			`{"google_sheets": {"credentials_file": "c", "spreadsheet_id": "s", "sheet_name": "n"}}`,
			"cloudflare.api_token",
		},
		{
			"empty zone id",
			`{"cloudflare": {"api_token": "tok", "zone_id": ""},
			  "google_sheets": {"credentials_file": "c", "spreadsheet_id": "s", "sheet_name": "n"}}`,
			"cloudflare.zone_id",
		},
		{
			"missing sheet name",
			`{"cloudflare": {"api_token": "tok", "zone_id": "z"},
			  "google_sheets": {"credentials_file": "c", "spreadsheet_id": "s"}}`,
			"google_sheets.sheet_name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not name %q", err, tt.want)
			}
		})
	}
}
