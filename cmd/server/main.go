package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"orgchart/internal/api"
	"orgchart/internal/api/handlers"
	"orgchart/internal/api/middleware"
	"orgchart/internal/pkg/logger"
	"orgchart/internal/platform/auth"
	"orgchart/internal/platform/config"
	"orgchart/internal/platform/database"
	"orgchart/internal/platform/graph"
	"orgchart/internal/platform/ledger"
	"orgchart/internal/platform/settings"
	"orgchart/internal/platform/snapshot"
	"orgchart/internal/refresh"
	"orgchart/internal/scheduler"
)

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Logging)

	// Ledger database
	ledgerDB, err := database.OpenLedgerDB(cfg.Data.LedgerPath)
	if err != nil {
		log.Fatalf("Failed to open ledger database: %v", err)
	}
	defer ledgerDB.Close()

	// Stores and provider client
	snapshots := snapshot.NewStore(cfg.Data.Dir)
	settingsStore := settings.NewStore(cfg.Data.SettingsFile)
	ledgerRepo := ledger.NewRepository(ledgerDB)
	graphClient := graph.NewClient(cfg.Directory)

	// Services
	tokenSvc := auth.NewTokenService(cfg.JWT)
	refresher := refresh.NewService(graphClient, snapshots, settingsStore, ledgerRepo, cfg.Refresh)

	sched := scheduler.New(refresher, settingsStore)
	if err := sched.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	if cfg.Refresh.RunOnStart {
		go func() {
			if err := refresher.Run(context.Background()); err != nil {
				log.Printf("Startup refresh failed: %v", err)
			}
		}()
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(cfg.Admin, tokenSvc, cfg.JWT)
	reportHandler := handlers.NewReportHandler(snapshots, settingsStore, cfg.Refresh)
	refreshHandler := handlers.NewRefreshHandler(refresher)
	settingsHandler := handlers.NewSettingsHandler(settingsStore, sched)
	healthHandler := handlers.NewHealthHandler(ledgerDB, snapshots)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenSvc)

	// Router
	deps := &api.Dependencies{
		AuthHandler:     authHandler,
		ReportHandler:   reportHandler,
		RefreshHandler:  refreshHandler,
		SettingsHandler: settingsHandler,
		HealthHandler:   healthHandler,
		AuthMiddleware:  authMiddleware,
	}
	router := api.NewRouter(deps)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	log.Printf("Server starting on %s", addr)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
