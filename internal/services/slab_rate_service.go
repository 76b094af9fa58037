package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"watts-backend/internal/cache"
	"watts-backend/internal/models"
	"watts-backend/internal/timeutil"
)

type SlabRateService struct {
	Repo   SlabStore
	Now    func() time.Time
	logger *zap.Logger
}

func NewSlabRateService(repo SlabStore, logger *zap.Logger) *SlabRateService {
	return &SlabRateService{Repo: repo, Now: timeutil.Now, logger: logger.Named("slabs")}
}

func (s *SlabRateService) CreateConfiguration(ctx context.Context, req *models.CreateSlabRateRequest) (*models.SlabRateConfiguration, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	cfg := req.Configuration(s.Now())
	if err := s.Repo.Create(ctx, cfg); err != nil {
		return nil, err
	}
	cache.InvalidateReadModels(ctx)
	s.logger.Info("slab configuration created",
		zap.Int("config_id", cfg.ID),
		zap.String("name", cfg.ConfigName),
		zap.Bool("active", cfg.IsCurrentlyActive),
	)
	return cfg, nil
}

func (s *SlabRateService) ListConfigurations(ctx context.Context) ([]*models.SlabRateConfiguration, error) {
	return s.Repo.List(ctx)
}

func (s *SlabRateService) GetActive(ctx context.Context) (*models.SlabRateConfiguration, error) {
	return s.Repo.GetActive(ctx)
}

func (s *SlabRateService) Activate(ctx context.Context, id int) (*models.SlabRateConfiguration, error) {
	cfg, err := s.Repo.Activate(ctx, id)
	if err != nil {
		return nil, err
	}
	cache.InvalidateReadModels(ctx)
	s.logger.Info("slab configuration activated", zap.Int("config_id", cfg.ID))
	return cfg, nil
}

func (s *SlabRateService) Delete(ctx context.Context, id int) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	cache.InvalidateReadModels(ctx)
	return nil
}
