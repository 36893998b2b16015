package porter

import (
	"content-porter/core/schema"
	"content-porter/core/storage"
	"content-porter/core/store"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	cfg     Config
	service *Service
	handler *Handler
}

// NewFeature creates a new Porter feature.
func NewFeature(registry *schema.Registry, st store.Store, client storage.Client, bucket, publicURL string, cfg Config, logger *zap.Logger) *Feature {
	svc := NewService(registry, st, client, bucket, publicURL, cfg, logger)
	h := NewHandler(svc)
	return &Feature{cfg: cfg, service: svc, handler: h}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "porter"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return f.cfg.Enabled
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}

// Service exposes the underlying service for CLI commands that reuse the
// feature wiring without the HTTP layer.
func (f *Feature) Service() *Service {
	return f.service
}
