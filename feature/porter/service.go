package porter

import (
	"context"
	"time"

	"content-porter/core/document"
	"content-porter/core/export"
	"content-porter/core/importer"
	"content-porter/core/reconcile"
	"content-porter/core/schema"
	"content-porter/core/storage"
	"content-porter/core/store"

	"go.uber.org/zap"
)

// Service wires the export and import engines behind one surface used by
// both the HTTP handlers and the CLI commands.
type Service struct {
	registry *schema.Registry
	store    store.Store
	exporter *export.Processor
	importer *importer.Processor
	runner   *importer.Runner
	engine   *reconcile.Engine
	logger   *zap.Logger
}

// NewService creates a porter service. client may be nil; imported media is
// then tracked by metadata only, without re-uploading binaries.
func NewService(registry *schema.Registry, st store.Store, client storage.Client, bucket, publicURL string, cfg Config, logger *zap.Logger) *Service {
	media := importer.NewMediaResolver(st, client, bucket,
		time.Duration(cfg.MediaTimeoutSeconds)*time.Second, logger)
	proc := importer.NewProcessor(registry, st, media, logger)
	return &Service{
		registry: registry,
		store:    st,
		exporter: export.NewProcessor(registry, st, logger, publicURL),
		importer: proc,
		runner:   importer.NewRunner(proc, logger),
		engine:   reconcile.NewEngine(registry, st, time.Duration(cfg.PlanCacheSeconds)*time.Second),
		logger:   logger,
	}
}

// Export produces an interchange document for the given options.
func (s *Service) Export(ctx context.Context, opts export.Options) (*document.Document, error) {
	return s.exporter.Run(ctx, opts)
}

// Import runs a synchronous import, used by the CLI.
func (s *Service) Import(ctx context.Context, raw []byte, opts importer.Options) (*importer.Result, error) {
	s.engine.Invalidate()
	return s.importer.Process(ctx, raw, opts)
}

// StartImport launches a background import. At most one runs at a time;
// importer.ErrImportInProgress is returned while one is active.
func (s *Service) StartImport(raw []byte, opts importer.Options) (*importer.Progress, error) {
	s.engine.Invalidate()
	return s.runner.Start(raw, opts)
}

// Progress returns the latest status of the active or most recent import.
func (s *Service) Progress() (importer.Update, bool) {
	return s.runner.Status()
}

// Plan reconciles a payload against the store without writing anything.
func (s *Service) Plan(ctx context.Context, raw []byte, opts importer.Options) (*importer.Result, error) {
	opts.DryRun = true
	return s.importer.Process(ctx, raw, opts)
}
