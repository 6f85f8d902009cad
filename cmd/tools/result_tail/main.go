package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/soltixdb/insight/internal/config"
	"github.com/soltixdb/insight/internal/logging"
	"github.com/soltixdb/insight/internal/queue"
)

// result_tail prints result events from the configured publisher backend as
// JSON lines, one per event, until interrupted.
func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	envFile := flag.String("env-file", ".env", "Optional dotenv file with INSIGHT_* overrides")
	kindsFlag := flag.String("kinds", "", "Comma-separated result kinds (default: all)")
	flag.Parse()

	_ = godotenv.Load(*envFile)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	kinds, err := queue.ParseKinds(*kindsFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	q, err := queue.New(cfg.Publisher)
	if err != nil {
		logger.Fatal("Failed to connect to publisher", "type", cfg.Publisher.Type, "error", err)
	}
	defer func() { _ = q.Close() }()

	var mu sync.Mutex
	enc := json.NewEncoder(os.Stdout)
	consumer := queue.NewEventConsumer(q, cfg.Publisher.SubjectPrefix, logger)
	err = consumer.Consume(kinds, func(event queue.ResultEvent) error {
		mu.Lock()
		defer mu.Unlock()
		return enc.Encode(event)
	})
	if err != nil {
		logger.Fatal("Failed to subscribe to result events", "error", err)
	}
	logger.Info("Tailing result events",
		"type", cfg.Publisher.Type,
		"prefix", cfg.Publisher.SubjectPrefix,
		"kinds", kinds)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	if err := consumer.Stop(); err != nil {
		logger.Warn("Failed to unsubscribe", "error", err)
	}
	logger.Info("Result tail stopped")
}
