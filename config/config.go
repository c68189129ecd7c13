package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// CloudflareConfig holds the credentials for the analytics API.
type CloudflareConfig struct {
	APIToken string `json:"api_token"`
	ZoneID   string `json:"zone_id"`
}

// GoogleSheetsConfig identifies the destination spreadsheet.
type GoogleSheetsConfig struct {
	CredentialsFile string `json:"credentials_file"`
	SpreadsheetID   string `json:"spreadsheet_id"`
	SheetName       string `json:"sheet_name"`
}

// PostgresConfig holds the optional mirror-store connection settings,
// populated from environment variables.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DB       string
	SSLMode  string
}

// Config is the full application configuration: credentials from the JSON
// config file, operational knobs from the environment. Loaded once at
// startup and read-only afterwards.
type Config struct {
	Cloudflare   CloudflareConfig   `json:"cloudflare"`
	GoogleSheets GoogleSheetsConfig `json:"google_sheets"`

	CheckInterval time.Duration `json:"-"`
	CollectDay    int           `json:"-"`
	WindowDays    int           `json:"-"`
	CSVArchiveDir string        `json:"-"`

	MirrorEnabled bool           `json:"-"`
	Postgres      PostgresConfig `json:"-"`
}

// Path returns the config file location, honouring the CONFIG_PATH
// environment variable.
func Path() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config.json"
}

// Load reads and validates the JSON config file at path and fills in the
// environment-driven knobs. A missing or empty required field is an error
// naming the offending section and field.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cfg.CheckInterval = time.Duration(getEnvInt("CHECK_INTERVAL_MINUTES", 60)) * time.Minute
	cfg.CollectDay = getEnvInt("COLLECT_DAY", 1)
	cfg.WindowDays = getEnvInt("WINDOW_DAYS", 30)
	cfg.CSVArchiveDir = getEnv("CSV_ARCHIVE_DIR", "./output")

	cfg.MirrorEnabled = getEnv("POSTGRES_MIRROR", "false") == "true"
	cfg.Postgres = PostgresConfig{
		Host:     getEnv("POSTGRES_HOST", "localhost"),
		Port:     getEnv("POSTGRES_PORT", "5432"),
		User:     getEnv("POSTGRES_USER", "analytics"),
		Password: getEnv("POSTGRES_PASSWORD", ""),
		DB:       getEnv("POSTGRES_DB", "analytics_db"),
		SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
	}

	return cfg, nil
}

func (c *Config) validate() error {
	required := []struct {
		section, field, value string
	}{
		{"cloudflare", "api_token", c.Cloudflare.APIToken},
		{"cloudflare", "zone_id", c.Cloudflare.ZoneID},
		{"google_sheets", "credentials_file", c.GoogleSheets.CredentialsFile},
		{"google_sheets", "spreadsheet_id", c.GoogleSheets.SpreadsheetID},
		{"google_sheets", "sheet_name", c.GoogleSheets.SheetName},
	}

	for _, f := range required {
		if f.value == "" {
			return fmt.Errorf("config: required field %s.%s is missing or empty", f.section, f.field)
		}
	}
	return nil
}

// DSN returns the PostgreSQL connection string for the mirror store.
func (p *PostgresConfig) DSN() string {
	return "host=" + p.Host +
		" port=" + p.Port +
		" user=" + p.User +
		" password=" + p.Password +
		" dbname=" + p.DB +
		" sslmode=" + p.SSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}
