package integrity

import (
	"context"

	"content-porter/core/schema"
	"content-porter/core/storage"
	"content-porter/feature/integrity/checks"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service handles integrity checks.
type Service struct {
	registry *schema.Registry
	client   storage.Client
	bucket   string
	db       *gorm.DB
	logger   *zap.Logger
}

// NewService creates a new integrity service. client and db may be nil; the
// corresponding checks then report as unavailable.
func NewService(registry *schema.Registry, client storage.Client, bucket string, db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{
		registry: registry,
		client:   client,
		bucket:   bucket,
		db:       db,
		logger:   logger,
	}
}

// CheckIdentifiers returns the content types whose identifier configuration
// would break export or import.
func (s *Service) CheckIdentifiers() []checks.IdentifierProblem {
	return checks.CheckIdentifiers(s.registry)
}

// CheckStore returns the missing columns per store table.
func (s *Service) CheckStore() (map[string][]string, error) {
	return checks.CheckStore(s.db)
}

// CheckBucket reports whether the media bucket exists.
func (s *Service) CheckBucket(ctx context.Context) (bool, error) {
	return checks.CheckBucket(ctx, s.client, s.bucket)
}

// FixBucket creates the media bucket.
func (s *Service) FixBucket(ctx context.Context) error {
	return checks.FixBucket(ctx, s.client, s.bucket, s.logger)
}
