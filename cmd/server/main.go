package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yegors/airportdb/internal/airportdb"
	"github.com/yegors/airportdb/internal/api"
	"github.com/yegors/airportdb/internal/config"
	"github.com/yegors/airportdb/internal/geo"
	"github.com/yegors/airportdb/internal/storage/sqlite"
	"github.com/yegors/airportdb/internal/websocket"
	"github.com/yegors/airportdb/pkg/logger"
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
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting airport database server",
		logger.String("version", Version),
		logger.String("config_path", *configPath),
	)

	if err := run(cfg, log); err != nil {
		log.Error("Server exited with error", logger.Error(err))
		log.Sync()
		os.Exit(1)
	}
	log.Info("Server fully stopped")
}

func run(cfg *config.Config, log *logger.Logger) error {
	var metrics *airportdb.Metrics
	if cfg.Metrics.Enabled {
		m, err := airportdb.NewMetrics(nil)
		if err != nil {
			return fmt.Errorf("failed to register metrics: %w", err)
		}
		metrics = m
	}

	// Create WebSocket server; it receives database lifecycle events
	wsServer := websocket.NewServer(log)

	opts := airportdb.DefaultOptions(cfg.AirportDB.SimDir, cfg.AirportDB.CacheDir)
	opts.IFROnly = *cfg.AirportDB.IFROnly
	opts.NormalizeGateNames = cfg.AirportDB.NormalizeGateNames
	opts.OverrideSettings = cfg.AirportDB.OverrideSettings
	if cfg.AirportDB.LoadLimitNM > 0 {
		opts.LoadLimit = cfg.AirportDB.LoadLimitNM * geo.NMToMeters
	}
	opts.Events = wsServer
	opts.Metrics = metrics

	db, err := airportdb.New(opts, log)
	if err != nil {
		return fmt.Errorf("failed to create airport database: %w", err)
	}
	if err := db.Open(cfg.AirportDB.AppVersion); err != nil {
		return fmt.Errorf("failed to open airport database: %w", err)
	}

	// Mirror the global index into SQLite for attribute searches
	var indexStorage *sqlite.IndexStorage
	if cfg.Storage.Enabled {
		indexStorage, err = openIndexMirror(cfg.Storage.SQLitePath, db, log)
		if err != nil {
			return err
		}
		defer indexStorage.Close()
	}

	router := api.NewRouter(db, indexStorage, wsServer, metrics, cfg, log)
	wsServer.SetMessageHandler(api.NewWebSocketHandler(router.Handler(), log))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Routes(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSecs) * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return wsServer.Run(gctx)
	})
	g.Go(func() error {
		log.Info("Starting HTTP server", logger.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error on %s: %w", server.Addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("HTTP server shutdown: %w", err)
		}
		log.Info("HTTP server shutdown complete")
		return nil
	})

	return g.Wait()
}

// openIndexMirror opens the SQLite mirror and refreshes it from the
// in-memory index
func openIndexMirror(path string, db *airportdb.Database, log *logger.Logger) (*sqlite.IndexStorage, error) {
	storage, err := sqlite.NewIndexStorage(path, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create index mirror: %w", err)
	}

	var entries []airportdb.IndexEntry
	tx := db.Lock()
	tx.WalkIndex(func(e airportdb.IndexEntry) {
		entries = append(entries, e)
	})
	cycle := tx.AIRACCycle()
	tx.Unlock()

	if prevCycle, prevEntries, ok, err := storage.SyncState(); err == nil && ok {
		log.Debug("Refreshing index mirror",
			logger.Int("previous_airac_cycle", prevCycle),
			logger.Int("previous_entries", prevEntries))
	}

	if err := storage.ReplaceAll(entries, cycle); err != nil {
		storage.Close()
		return nil, err
	}
	return storage, nil
}
