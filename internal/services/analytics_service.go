package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"watts-backend/internal/apperr"
	"watts-backend/internal/cache"
	"watts-backend/internal/models"
	"watts-backend/internal/tariff"
)

// AnalyticsService aggregates closed cycles for charts. Historical costs are
// priced with the currently active slab configuration.
type AnalyticsService struct {
	Meters   MeterStore
	Cycles   CycleStore
	Readings ReadingStore
	Slabs    SlabStore
	cacheTTL time.Duration
	logger   *zap.Logger
}

func NewAnalyticsService(meters MeterStore, cycles CycleStore, readings ReadingStore, slabs SlabStore, logger *zap.Logger) *AnalyticsService {
	return &AnalyticsService{
		Meters:   meters,
		Cycles:   cycles,
		Readings: readings,
		Slabs:    slabs,
		logger:   logger.Named("analytics"),
	}
}

func (s *AnalyticsService) SetCacheTTL(ttl time.Duration) {
	s.cacheTTL = ttl
}

// activeSlabs returns the active configuration, or nil when none is set.
func (s *AnalyticsService) activeSlabs(ctx context.Context) (*models.SlabRateConfiguration, error) {
	cfg, err := s.Slabs.GetActive(ctx)
	if apperr.Is(err, apperr.KindNotFound) {
		s.logger.Warn("no active slab configuration; analytics costs will be zero")
		return nil, nil
	}
	return cfg, err
}

// CycleSummary returns total consumption and cost per closed cycle, oldest
// first. Closed cycles without readings are left out.
func (s *AnalyticsService) CycleSummary(ctx context.Context) ([]models.CycleSummary, error) {
	out := []models.CycleSummary{}
	if s.cacheTTL > 0 && cache.GetJSON(ctx, cache.AnalyticsCycleSummaryKey, &out) {
		return out, nil
	}

	cfg, err := s.activeSlabs(ctx)
	if err != nil {
		return nil, err
	}
	cycles, err := s.Cycles.ListClosed(ctx)
	if err != nil {
		return nil, err
	}

	for _, c := range cycles {
		byMeter, err := s.Readings.ConsumptionByMeter(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		if len(byMeter) == 0 {
			continue
		}
		var units float64
		for _, u := range byMeter {
			units += u
		}
		out = append(out, models.CycleSummary{
			ID:               c.ID,
			Name:             c.Label(),
			TotalConsumption: round2(units),
			TotalCost:        tariff.Calculate(units, cfg),
		})
	}

	if s.cacheTTL > 0 {
		cache.SetJSON(ctx, cache.AnalyticsCycleSummaryKey, out, s.cacheTTL)
	}
	return out, nil
}

// MeterBreakdown returns one row per closed cycle, oldest first, keyed by
// meter name. Every meter appears in every row.
func (s *AnalyticsService) MeterBreakdown(ctx context.Context) ([]models.MeterBreakdownRow, error) {
	out := []models.MeterBreakdownRow{}
	if s.cacheTTL > 0 && cache.GetJSON(ctx, cache.AnalyticsBreakdownKey, &out) {
		return out, nil
	}

	meters, err := s.Meters.List(ctx)
	if err != nil {
		return nil, err
	}
	cycles, err := s.Cycles.ListClosed(ctx)
	if err != nil {
		return nil, err
	}

	for _, c := range cycles {
		byMeter, err := s.Readings.ConsumptionByMeter(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		row := models.MeterBreakdownRow{}
		for _, m := range meters {
			row[m.Name] = round2(byMeter[m.ID])
		}
		row[models.BreakdownLabelKey] = c.Label()
		out = append(out, row)
	}

	if s.cacheTTL > 0 {
		cache.SetJSON(ctx, cache.AnalyticsBreakdownKey, out, s.cacheTTL)
	}
	return out, nil
}
