package services

import (
	"context"

	"go.uber.org/zap"

	"watts-backend/internal/apperr"
	"watts-backend/internal/cache"
	"watts-backend/internal/models"
)

type MeterService struct {
	Repo   MeterStore
	logger *zap.Logger
}

func NewMeterService(repo MeterStore, logger *zap.Logger) *MeterService {
	return &MeterService{Repo: repo, logger: logger.Named("meters")}
}

func (s *MeterService) CreateMeter(ctx context.Context, req *models.CreateMeterRequest) (*models.Meter, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	m := req.Meter()
	if err := s.Repo.Create(ctx, m); err != nil {
		return nil, err
	}
	cache.InvalidateReadModels(ctx)
	s.logger.Info("meter created", zap.Int("meter_id", m.ID), zap.String("name", m.Name))
	return m, nil
}

func (s *MeterService) ListMeters(ctx context.Context) ([]*models.Meter, error) {
	return s.Repo.List(ctx)
}

func (s *MeterService) GetMeter(ctx context.Context, id int) (*models.Meter, error) {
	return s.Repo.Get(ctx, id)
}

func (s *MeterService) UpdateMeter(ctx context.Context, id int, req *models.UpdateMeterRequest) (*models.Meter, error) {
	m, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := req.Apply(m); err != nil {
		return nil, err
	}
	if err := s.Repo.Update(ctx, m); err != nil {
		return nil, err
	}
	cache.InvalidateReadModels(ctx)
	return m, nil
}

// SetActiveGeneral marks a general-purpose meter as the one in use.
func (s *MeterService) SetActiveGeneral(ctx context.Context, id int) (*models.Meter, error) {
	m, err := s.Repo.SetActiveGeneral(ctx, id, func(m *models.Meter) error {
		if !m.IsGeneralPurpose {
			return apperr.Validation("Only general purpose meters can be set as active general meter.")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	cache.InvalidateReadModels(ctx)
	s.logger.Info("active general meter changed", zap.Int("meter_id", m.ID))
	return m, nil
}
