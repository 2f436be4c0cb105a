package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/pulsedesk/pulsedesk/internal/adapter/cache"
	httpadapter "github.com/pulsedesk/pulsedesk/internal/adapter/http"
	"github.com/pulsedesk/pulsedesk/internal/adapter/persistence"
	"github.com/pulsedesk/pulsedesk/internal/config"
	"github.com/pulsedesk/pulsedesk/internal/logger"
	"github.com/pulsedesk/pulsedesk/internal/sla"
	"github.com/pulsedesk/pulsedesk/internal/usecase"
)

func main() {
	ctx := context.Background()

	// Load configuration; office-hours invariants are validated here
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	appLogger.WithField("env", cfg.Server.Environment).Info("Application starting")

	// Connect to database
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to open database")
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxConnections)
	db.SetConnMaxIdleTime(cfg.Database.MaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Database.ConnectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		appLogger.WithError(err).Fatal("Failed to ping database")
	}
	appLogger.Info("Database connection established")

	// SLA engine: one configuration snapshot for the process lifetime
	engine, err := sla.NewEngine(cfg.SLA.OfficeHours, cfg.SLA.Targets, cfg.SLA.Enabled)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to build SLA engine")
	}

	// Report cache (Redis-backed or noop based on config)
	reportCache, err := cache.NewReportCache(cache.ReportCacheConfig{
		Enabled:  cfg.Redis.CacheEnabled,
		RedisURL: cfg.Redis.URL,
	}, appLogger)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize report cache")
	}

	// Repositories
	conversationRepo := persistence.NewPostgresConversationRepository(db)
	metricsRepo := persistence.NewPostgresMetricsRepository(db)

	// Use cases
	computeUseCase := usecase.NewComputeUseCase(conversationRepo, metricsRepo, reportCache, engine, appLogger, cfg.Compute.Workers)
	reportUseCase := usecase.NewReportUseCase(metricsRepo, reportCache, cfg.Redis.CacheTTL, appLogger)

	// HTTP server
	server := httpadapter.NewServer(httpadapter.ServerConfig{
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}, reportUseCase, computeUseCase, appLogger)

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("HTTP server failed")
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancelShutdown := context.WithTimeout(ctx, 10*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Graceful shutdown failed")
	}
	appLogger.Info("Application stopped")
}
