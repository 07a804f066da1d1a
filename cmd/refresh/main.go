package main

import (
	"context"
	"log"

	"orgchart/internal/pkg/logger"
	"orgchart/internal/platform/config"
	"orgchart/internal/platform/database"
	"orgchart/internal/platform/graph"
	"orgchart/internal/platform/ledger"
	"orgchart/internal/platform/settings"
	"orgchart/internal/platform/snapshot"
	"orgchart/internal/refresh"
)

// One-shot refresh for cron jobs and operational use: runs a single
// reconciliation cycle against the configured tenant and exits.
func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Logging)

	ledgerDB, err := database.OpenLedgerDB(cfg.Data.LedgerPath)
	if err != nil {
		log.Fatalf("Failed to open ledger database: %v", err)
	}
	defer ledgerDB.Close()

	refresher := refresh.NewService(
		graph.NewClient(cfg.Directory),
		snapshot.NewStore(cfg.Data.Dir),
		settings.NewStore(cfg.Data.SettingsFile),
		ledger.NewRepository(ledgerDB),
		cfg.Refresh,
	)

	if err := refresher.Run(context.Background()); err != nil {
		log.Fatalf("Refresh failed: %v", err)
	}
}
