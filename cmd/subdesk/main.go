package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/subdesk/pkg/audit"
	"github.com/platinummonkey/subdesk/pkg/cli"
	"github.com/platinummonkey/subdesk/pkg/config"
	"github.com/platinummonkey/subdesk/pkg/observability"
	"github.com/platinummonkey/subdesk/pkg/plans"
	"github.com/platinummonkey/subdesk/pkg/records"
	"github.com/platinummonkey/subdesk/pkg/storage"
	"github.com/platinummonkey/subdesk/pkg/subscribers"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() (err error) {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	// Logs go to stderr so menu output stays readable
	logger := observability.NewLogger(cfg.Observability.LogLevel, cfg.Observability.LogFormat, os.Stderr)
	observability.AddDefaultFields(logger, logrus.Fields{"session_id": uuid.NewString()})
	defer observability.RecoverPanicToError(logger, "subdesk", &err)

	metrics := observability.NewMetrics(nil)
	if path := cfg.Observability.MetricsFile; path != "" {
		defer func() {
			if werr := metrics.WriteTextfile(path); werr != nil {
				logger.WithError(werr).Warn("Failed to export metrics")
			}
		}()
	}

	catalog, err := loadCatalog(cfg.CatalogPath, logger)
	if err != nil {
		return err
	}

	ctx, stop := observability.NotifyShutdown(context.Background(), logger)
	defer stop()

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.Storage.Type, err)
	}
	defer store.Close()

	opts := []records.Option{
		records.WithLogger(logger),
		records.WithMetrics(metrics),
		records.WithBackendLabel(cfg.Storage.Type),
		records.WithListeners(subscribers.NewLimitNotifier(logger)),
	}
	if cfg.AuditDir != "" {
		auditor, err := audit.NewFileLogger(audit.DefaultFileLoggerConfig(cfg.AuditDir))
		if err != nil {
			return err
		}
		defer auditor.Close()
		opts = append(opts, records.WithAuditor(auditor))
	}

	registry := records.NewRegistry(catalog, store, opts...)
	if err := registry.Load(ctx); err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"store":       cfg.Storage.Type,
		"subscribers": registry.Len(),
		"plans":       catalog.Len(),
	}).Debug("Subdesk ready")

	app := &cli.App{
		Registry: registry,
		Log:      logger,
		In:       os.Stdin,
		Out:      os.Stdout,
		AuditDir: cfg.AuditDir,
	}
	if cfg.Storage.Type == storage.TypeFile {
		app.WatchPath = cfg.Storage.FilePath
	}
	if path := cfg.Observability.MetricsFile; path != "" {
		app.ExportMetrics = func() error { return metrics.WriteTextfile(path) }
		app.MetricsSchedule = cfg.Observability.MetricsSchedule
	}

	return cli.NewRootCommand(app).Execute(ctx)
}

func loadCatalog(path string, logger *logrus.Logger) (*plans.Catalog, error) {
	if path == "" {
		return plans.DefaultCatalog(), nil
	}

	catalog, err := plans.LoadCatalog(path)
	if err != nil {
		return nil, err
	}
	logger.WithFields(logrus.Fields{"path": path, "plans": catalog.Len()}).Info("Loaded plan catalog")
	return catalog, nil
}
