package main

import (
	"context"
	"time"

	"cloudflare-analytics/cloudflare"
	"cloudflare-analytics/config"
	"cloudflare-analytics/services"
	"cloudflare-analytics/storage"
	"cloudflare-analytics/utils"
)

// app is the application context: built once after the config loads,
// read-only afterwards, torn down only on process exit.
type app struct {
	cfg      *config.Config
	logger   *utils.Logger
	client   *cloudflare.Client
	archive  *storage.CSVArchive
	appender *services.Appender
	summary  *services.SummaryService
	mirror   *storage.PostgresStore
}

func main() {
	logger := utils.NewLogger()
	logger.Info("=== Cloudflare Analytics reporter starting ===")

	configPath := config.Path()

	// A bad config is not fatal: keep retrying at a fixed interval so a
	// fixed file heals the service without a restart.
	var cfg *config.Config
	startupRetry := &utils.FixedRetry{Interval: time.Hour, Logger: logger}
	startupRetry.DoForever("load config", func() error {
		c, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = c
		return nil
	})

	logger.Info("Config — path: %s | zone: %s", configPath, cfg.Cloudflare.ZoneID)
	logger.Info("Sheets — spreadsheet: %s | sheet: %s | credentials: %s",
		cfg.GoogleSheets.SpreadsheetID, cfg.GoogleSheets.SheetName, cfg.GoogleSheets.CredentialsFile)
	logger.Info("Schedule — collect day: %d | check interval: %v | window: %d days",
		cfg.CollectDay, cfg.CheckInterval, cfg.WindowDays)

	a := &app{
		cfg:      cfg,
		logger:   logger,
		client:   cloudflare.NewClient(cfg, logger),
		archive:  storage.NewCSVArchive(cfg.CSVArchiveDir),
		appender: services.NewAppender(logger),
		summary:  services.NewSummaryService(logger),
	}

	if cfg.MirrorEnabled {
		mirror, err := storage.NewPostgresStore(cfg.Postgres.DSN())
		if err != nil {
			logger.Error("Postgres mirror unavailable, continuing without it: %v", err)
		} else {
			a.mirror = mirror
			defer a.mirror.Close()
			logger.Info("Postgres mirror enabled (%s:%s/%s)",
				cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.DB)
		}
	}

	// One long-lived sequential loop: wake, check the gate, maybe collect,
	// sleep. Any cycle error is logged and retried next wake, forever.
	for {
		now := time.Now()
		if services.ShouldCollect(now, cfg.CollectDay) {
			logger.Info("Monthly collection triggered (%s)", now.Format("2006-01-02 15:04:05"))
			if err := a.runCycle(now); err != nil {
				logger.Error("Collection cycle failed: %v", err)
				logger.Info("Retrying in %v...", cfg.CheckInterval)
			}
		}
		time.Sleep(cfg.CheckInterval)
	}
}

// runCycle performs one fetch-then-append pass: trailing window from
// Cloudflare, raw archive to CSV, dedup-append to the sheet, summary, then
// the optional Postgres mirror.
func (a *app) runCycle(now time.Time) error {
	ctx := context.Background()

	records, err := a.client.FetchTrailingWindow(ctx, now, a.cfg.WindowDays)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		a.logger.Info("No analytics data in the window, nothing to store")
		return nil
	}

	if path, err := a.archive.WriteWindow(records, now); err != nil {
		a.logger.Warn("Raw window archive failed: %v", err)
	} else {
		a.logger.Info("Raw window archived to %s", path)
	}

	store, err := storage.NewSheetsStore(ctx,
		a.cfg.GoogleSheets.CredentialsFile,
		a.cfg.GoogleSheets.SpreadsheetID,
		a.cfg.GoogleSheets.SheetName,
		a.logger)
	if err != nil {
		return err
	}

	result, err := a.appender.AppendNew(records, store)
	if err != nil {
		return err
	}

	if result.Appended > 0 {
		a.summary.Print(a.summary.Build(records))
	}

	if a.mirror != nil {
		// The sheet is the system of record; a mirror failure must not
		// fail a cycle whose sheet append already succeeded.
		if _, err := a.appender.AppendNew(records, a.mirror); err != nil {
			a.logger.Error("Postgres mirror append failed: %v", err)
		}
	}

	return nil
}
