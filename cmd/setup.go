package cmd

import (
	"fmt"

	"content-porter/core/config"
	"content-porter/core/database"
	"content-porter/core/logger"
	"content-porter/core/schema"
	"content-porter/core/storage"
	"content-porter/core/store"
	"content-porter/feature/porter"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app bundles the wiring shared by the CLI commands.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	db       *gorm.DB
	store    store.Store
	registry *schema.Registry
	objects  storage.Client
	porter   *porter.Service
}

// bootstrap loads configuration and connects the store, schema registry and
// (optionally) object storage. Storage failures are non-fatal: the porter
// degrades to metadata-only media handling.
func bootstrap(withStorage bool) (*app, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	st, err := store.New(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	registry := schema.NewRegistry()
	if err := registry.LoadDir(cfg.Porter.SchemaDir); err != nil {
		return nil, fmt.Errorf("failed to load schemas from %s: %w", cfg.Porter.SchemaDir, err)
	}

	var objects storage.Client
	if withStorage {
		if client, err := storage.NewClient(cfg.Storage); err != nil {
			logg.Warn("Object storage unavailable, media binaries will not be transferred", zap.Error(err))
		} else {
			objects = client
		}
	}

	svc := porter.NewService(registry, st, objects, cfg.Storage.Bucket, cfg.Server.PublicURL, cfg.Porter, logg)

	return &app{
		cfg:      cfg,
		logger:   logg,
		db:       db,
		store:    st,
		registry: registry,
		objects:  objects,
		porter:   svc,
	}, nil
}
