package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"bakerypay/config"
	"bakerypay/importer"
	"bakerypay/storage"
)

// app holds the storage and ingestion pipeline built from one configuration.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *storage.SQLiteStore
	gateway *storage.Gateway
	service *importer.Service
}

func loadApp() (*app, error) {
	cfg, err := config.LoadAndValidate()
	if err != nil {
		return nil, err
	}
	return openApp(cfg)
}

func openApp(cfg *config.Config) (*app, error) {
	logger := newLogger(cfg.Log, os.Stderr)

	store, err := storage.OpenSQLite(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	store.SetInsertBatchSize(cfg.Import.InsertBatchSize)

	blobs, err := storage.OpenBlobStore(cfg.Storage.Dir, cfg.Storage.Bucket, cfg.Storage.PublicURL)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	gateway := storage.NewGateway(store, blobs)
	return &app{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		gateway: gateway,
		service: importer.NewService(gateway, importOptions(cfg.Import), logger),
	}, nil
}

func (a *app) Close() error {
	if err := a.store.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

func importOptions(cfg config.ImportConfig) importer.Options {
	return importer.Options{
		Concurrency: cfg.Concurrency,
		ScanRows:    cfg.ScanRows,
		Convention:  importer.PeriodConvention(cfg.PeriodConvention),
	}
}
