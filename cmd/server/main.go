package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/flycharts/flycharts/internal/airports"
	"github.com/flycharts/flycharts/internal/api"
	"github.com/flycharts/flycharts/internal/config"
	"github.com/flycharts/flycharts/internal/sim"
	"github.com/flycharts/flycharts/internal/storage/sqlite"
	"github.com/flycharts/flycharts/internal/websocket"
	"github.com/flycharts/flycharts/pkg/logger"
)

var (
	// Version is injected at build time
	Version = "dev"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to configuration file (optional - will search in configs/ and root directory)")
	flag.Parse()

	// Load configuration with fallback logic
	cfg, err := config.LoadWithFallback(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Create logger
	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting FlyCharts server",
		logger.String("version", Version),
		logger.String("config_path", *configPath),
	)

	// Generate today's database filename
	today := time.Now().Format("2006-01-02")
	dbFilename := fmt.Sprintf("flycharts-%s.db", today)
	dbPath := filepath.Join(cfg.Storage.SQLiteBasePath, dbFilename)

	// Ensure the directory exists
	if err := os.MkdirAll(cfg.Storage.SQLiteBasePath, 0755); err != nil {
		log.Error("Failed to create database directory", logger.Error(err), logger.String("path", cfg.Storage.SQLiteBasePath))
		os.Exit(1)
	}

	log.Info("Using daily database", logger.String("path", dbPath))

	positionStorage, err := sqlite.NewPositionStorage(dbPath, cfg.Storage.MaxPositionsInAPI, log)
	if err != nil {
		log.Error("Failed to create SQLite storage", logger.Error(err))
		os.Exit(1)
	}
	defer positionStorage.Close()

	// Create WebSocket server
	wsServer := websocket.NewServer(log)
	go wsServer.Run()

	// Create simulator link manager
	provider := sim.NewProvider(cfg.SimLink, cfg.Station)
	available := cfg.SimLink.Provider != "none"
	simManager := sim.NewManager(
		provider,
		available,
		time.Duration(cfg.SimLink.UpdateIntervalMs)*time.Millisecond,
		wsServer,
		positionStorage,
		log,
	)

	// Wire WebSocket message handling: client requests and the greeting
	// pushed to each new connection
	wsHandler := sim.NewWebSocketHandler(simManager, log)
	wsServer.SetMessageHandler(wsHandler)
	wsServer.SetRegisterCallback(wsHandler.GreetClient)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Attempt the simulator link at startup if configured
	if cfg.SimLink.AutoConnect {
		result := simManager.Connect(ctx)
		if result.Success {
			log.Info("Simulator link established at startup")
		} else {
			log.Warn("Simulator link unavailable at startup", logger.String("message", result.Message))
		}
	}

	// Load the airport index served to dashboard clients
	airportIndex, err := airports.Load(cfg.Dashboard.AirportsPath, log)
	if err != nil {
		log.Warn("Failed to load airport data, continuing with empty index",
			logger.Error(err), logger.String("path", cfg.Dashboard.AirportsPath))
		airportIndex = airports.Empty()
	}
	log.Info("Airport index loaded", logger.Int("count", airportIndex.Count()))

	// Create API router
	handler := api.NewHandler(simManager, airportIndex, positionStorage, cfg, log)
	router := api.NewRouter(handler, wsServer, cfg, log)

	// --- Setup for multiple HTTP servers ---
	var servers []*http.Server
	allPorts := []int{cfg.Server.Port}
	if len(cfg.Server.AdditionalPorts) > 0 {
		allPorts = append(allPorts, cfg.Server.AdditionalPorts...)
	}

	log.Info("Configured listener ports", logger.Any("ports", allPorts))

	for _, port := range allPorts {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, port)
		server := &http.Server{
			Addr:         addr,
			Handler:      router.Routes(),
			ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSecs) * time.Second,
			WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSecs) * time.Second,
			IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSecs) * time.Second,
		}
		servers = append(servers, server)

		go func(s *http.Server) {
			log.Info("Starting HTTP server", logger.String("addr", s.Addr))
			if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("HTTP server error on startup", logger.String("addr", s.Addr), logger.Error(err))
			}
		}(server)
	}

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("Shutting down server...")

	if simManager.Connected() {
		log.Info("Closing simulator link...")
		simManager.Disconnect()
		log.Info("Simulator link closed.")
	}

	cancel()

	// Shutdown all HTTP servers
	log.Info("Shutting down HTTP servers...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	var wg sync.WaitGroup
	for _, s := range servers {
		wg.Add(1)
		go func(srv *http.Server) {
			defer wg.Done()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error("HTTP server shutdown error", logger.String("addr", srv.Addr), logger.Error(err))
			} else {
				log.Info("HTTP server shutdown complete", logger.String("addr", srv.Addr))
			}
		}(s)
	}
	wg.Wait()

	log.Info("Server fully stopped")
}
