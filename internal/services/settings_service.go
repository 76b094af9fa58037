package services

import (
	"context"

	"watts-backend/internal/cache"
	"watts-backend/internal/models"
)

type SettingsService struct {
	Repo SettingsStore
}

func NewSettingsService(repo SettingsStore) *SettingsService {
	return &SettingsService{Repo: repo}
}

func (s *SettingsService) GetSettings(ctx context.Context) (*models.Settings, error) {
	return s.Repo.Get(ctx)
}

func (s *SettingsService) UpdateSettings(ctx context.Context, req *models.UpdateSettingsRequest) (*models.Settings, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	settings, err := s.Repo.UpdateTarget(ctx, *req.ConsumptionTarget)
	if err != nil {
		return nil, err
	}
	cache.InvalidateReadModels(ctx)
	return settings, nil
}
