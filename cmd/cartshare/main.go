package main

import (
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/vbonduro/cartshare/internal/config"
	"github.com/vbonduro/cartshare/internal/db"
	"github.com/vbonduro/cartshare/internal/docstore"
	"github.com/vbonduro/cartshare/internal/docstore/local"
	"github.com/vbonduro/cartshare/internal/logging"
	"github.com/vbonduro/cartshare/internal/metrics"
	"github.com/vbonduro/cartshare/internal/service"
	"github.com/vbonduro/cartshare/internal/store"
	"github.com/vbonduro/cartshare/internal/web"
	"github.com/vbonduro/cartshare/internal/web/templates"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	if err := run(cfg, logger); err != nil {
		logger.Error("fatal error", "error", err)
		cleanup()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	docs, closeStore, err := newDocumentStore(cfg, reg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	if cfg.SessionSecret == "dev-secret-change-me" {
		logger.Warn("SESSION_SECRET is the development default; set it in production")
	}

	svc := service.NewHouseholdService(docs, logger, service.WithRecorder(m))
	sessions := web.NewSessionManager(cfg.SessionSecret, cfg.SessionTTL, cfg.SessionSecure)
	server := web.NewServer(svc, templates.FS, sessions, m, reg, logger)

	return server.ListenAndServe(cfg.ListenAddr)
}

// newDocumentStore opens the configured household backend. The returned
// func releases it.
func newDocumentStore(cfg *config.Config, reg prometheus.Registerer, logger *slog.Logger) (docstore.DocumentStore, func(), error) {
	switch cfg.StoreBackend {
	case "local":
		logger.Info("using local household store", "path", cfg.HouseholdPath)
		s, err := local.NewLocalDocumentStore(cfg.HouseholdPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize household store: %w", err)
		}
		return s, func() {}, nil
	case "sqlite", "":
		logger.Info("using sqlite household store", "db_path", cfg.DBPath)
		database, err := db.Open(cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		households := store.NewHouseholdStore(database)
		if err := metrics.RegisterHouseholdGauge(reg, households, logger); err != nil {
			closeDB(database, logger)
			return nil, nil, fmt.Errorf("failed to register household gauge: %w", err)
		}
		return households, func() { closeDB(database, logger) }, nil
	default:
		return nil, nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
}

func closeDB(database *sql.DB, logger *slog.Logger) {
	if err := database.Close(); err != nil {
		logger.Error("failed to close database", "error", err)
	}
}
