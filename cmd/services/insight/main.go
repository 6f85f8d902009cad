package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/soltixdb/insight/internal/config"
	"github.com/soltixdb/insight/internal/logging"
	"github.com/soltixdb/insight/internal/queue"
	"github.com/soltixdb/insight/internal/router"
	"github.com/soltixdb/insight/internal/services"
	"github.com/soltixdb/insight/internal/source"
)

var (
	Version   = "dev"     // Injected via ldflags during build
	GitCommit = "unknown" // Injected via ldflags during build
	BuildTime = "unknown" // Injected via ldflags during build
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	envFile := flag.String("env-file", ".env", "Optional dotenv file with INSIGHT_* overrides")
	migrate := flag.Bool("migrate", false, "Create the postgres source tables before serving")
	flag.Parse()

	// A missing .env is fine; the environment may already be set
	_ = godotenv.Load(*envFile)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)
	logger.Info("Insight service starting...",
		"version", Version, "commit", GitCommit, "build time", BuildTime)

	logger.Info("Opening series source", "type", cfg.Source.Type)
	src, err := source.New(cfg.Source)
	if err != nil {
		logger.Fatal("Failed to open series source", "error", err)
	}
	defer func() { _ = src.Close() }()

	if pg, ok := src.(*source.PostgresSource); ok && *migrate {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Source.FetchTimeout)
		err := pg.Migrate(ctx)
		cancel()
		if err != nil {
			logger.Fatal("Failed to migrate postgres source", "error", err)
		}
		logger.Info("Postgres source schema ready")
	}

	var publisher *queue.EventPublisher
	if cfg.Publisher.Enabled {
		logger.Info("Connecting to result publisher", "type", cfg.Publisher.Type, "url", cfg.Publisher.URL)
		q, err := queue.New(cfg.Publisher)
		if err != nil {
			logger.Fatal("Failed to connect to publisher", "error", err)
		}
		publisher = queue.NewEventPublisher(q, cfg.Publisher.SubjectPrefix, logger)
		defer func() { _ = publisher.Close() }()
		logger.Info("Result publisher ready", "prefix", cfg.Publisher.SubjectPrefix)
	} else {
		logger.Info("Result publishing disabled")
	}

	if cfg.Auth.Enabled {
		logger.Info("API key authentication enabled", "num_keys", len(cfg.Auth.APIKeys))
	} else {
		logger.Warn("API key authentication DISABLED - all requests will be allowed")
	}

	analytics := services.NewAnalyticsService(logger, src, publisher, cfg.Analytics, cfg.Source)
	app := router.New(logger, analytics, cfg)

	go func() {
		addr := cfg.GetServerAddress()
		logger.Info("Server listening", "address", addr)
		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
