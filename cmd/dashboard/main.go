package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/flycharts/flycharts/internal/airports"
	"github.com/flycharts/flycharts/internal/config"
	"github.com/flycharts/flycharts/internal/dashboard"
	"github.com/flycharts/flycharts/pkg/logger"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to configuration file (optional - will search in configs/ and root directory)")
	flag.Parse()

	cfg, err := config.LoadWithFallback(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting FlyCharts dashboard",
		logger.String("server_url", cfg.Dashboard.ServerURL))

	// The airport marker set is loaded once at startup
	airportIndex, err := airports.Load(cfg.Dashboard.AirportsPath, log)
	if err != nil {
		log.Warn("Failed to load airport data, continuing with empty index",
			logger.Error(err), logger.String("path", cfg.Dashboard.AirportsPath))
		airportIndex = airports.Empty()
	}

	session, err := dashboard.NewSession(cfg, airportIndex, log)
	if err != nil {
		log.Error("Failed to create dashboard session", logger.Error(err))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bring the live link up; the fallback poller covers us if this fails
	if err := session.Connect(ctx); err != nil {
		log.Warn("Live link unavailable, relying on fallback polling", logger.Error(err))
	}

	go session.Run(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("Shutting down dashboard...")

	if err := session.Disconnect(context.Background()); err != nil {
		log.Warn("Error during disconnect", logger.Error(err))
	}
	cancel()

	log.Info("Dashboard stopped")
}
