package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"watts-backend/internal/apperr"
	"watts-backend/internal/cache"
	"watts-backend/internal/metrics"
	"watts-backend/internal/models"
	"watts-backend/internal/tariff"
	"watts-backend/internal/timeutil"
)

type DashboardService struct {
	Meters   MeterStore
	Cycles   CycleStore
	Readings ReadingStore
	Slabs    SlabStore
	Settings SettingsStore
	Now      func() time.Time
	cacheTTL time.Duration
	logger   *zap.Logger
}

func NewDashboardService(
	meters MeterStore,
	cycles CycleStore,
	readings ReadingStore,
	slabs SlabStore,
	settings SettingsStore,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		Meters:   meters,
		Cycles:   cycles,
		Readings: readings,
		Slabs:    slabs,
		Settings: settings,
		Now:      timeutil.Now,
		logger:   logger.Named("dashboard"),
	}
}

// SetCacheTTL enables the Redis read-model cache for the summary.
func (s *DashboardService) SetCacheTTL(ttl time.Duration) {
	s.cacheTTL = ttl
}

// Summary builds the current-cycle overview for every meter.
func (s *DashboardService) Summary(ctx context.Context) (*models.DashboardSummary, error) {
	if s.cacheTTL > 0 {
		var cached models.DashboardSummary
		if cache.GetJSON(ctx, cache.DashboardSummaryKey, &cached) {
			return &cached, nil
		}
	}

	active, err := s.Cycles.GetActive(ctx)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.NotFound("No active billing cycle found. Please start one.")
		}
		return nil, err
	}
	slabs, err := s.Slabs.GetActive(ctx)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.NotFound("No active slab rate configuration found. Cost calculations cannot be performed.")
		}
		return nil, err
	}
	meters, err := s.Meters.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(meters) == 0 {
		return nil, apperr.NotFound("No meters found. Please add meters.")
	}
	settings, err := s.Settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	current, err := s.Readings.ConsumptionByMeter(ctx, active.ID)
	if err != nil {
		return nil, err
	}

	previous, err := s.Cycles.PreviousClosed(ctx, active.StartDate, active.ID)
	if err != nil {
		return nil, err
	}
	var previousUnits map[int]float64
	if previous != nil {
		if previousUnits, err = s.Readings.ConsumptionByMeter(ctx, previous.ID); err != nil {
			return nil, err
		}
	}

	days := timeutil.DaysSince(active.StartDate, s.Now())
	target := settings.ConsumptionTarget

	summary := &models.DashboardSummary{
		CurrentBillingCycle: models.DashboardCycle{
			ID:          active.ID,
			StartDate:   active.StartDate,
			EndDate:     active.EndDate,
			Status:      active.Status,
			Notes:       active.Notes,
			DaysInCycle: days,
		},
		ActiveSlabConfiguration: slabs.Ref(),
		ConsumptionTarget:       target,
		MeterSummaries:          make([]models.MeterSummary, 0, len(meters)),
	}
	if previous != nil {
		summary.PreviousBillingCycle = &models.DashboardCycle{
			ID:        previous.ID,
			StartDate: previous.StartDate,
			EndDate:   previous.EndDate,
			Status:    previous.Status,
			Notes:     previous.Notes,
		}
	}

	var total float64
	for _, m := range meters {
		units := round2(current[m.ID])
		cost := tariff.Calculate(units, slabs)
		metrics.ObserveTariff(units > tariff.SlabThreshold)
		total += cost

		ms := models.MeterSummary{
			MeterID:                  m.ID,
			MeterName:                m.Name,
			MeterType:                m.MeterType,
			IsGeneralPurpose:         m.IsGeneralPurpose,
			IsCurrentlyActiveGeneral: m.IsCurrentlyActiveGeneral,
			CurrentCycleConsumption:  units,
			CurrentCycleCost:         cost,
			AverageDailyConsumption:  round2(units / float64(days)),
			PreviousCycleConsumption: round2(previousUnits[m.ID]),
		}
		ms.UnitsRemainingTo500, ms.PercentageTo500 = progress(units, tariff.SlabThreshold)
		ms.UnitsRemainingToTarget, ms.PercentageToTarget = progress(units, target)
		summary.MeterSummaries = append(summary.MeterSummaries, ms)
	}
	summary.CurrentCycleTotalBill = round2(total)

	if s.cacheTTL > 0 {
		cache.SetJSON(ctx, cache.DashboardSummaryKey, summary, s.cacheTTL)
	}
	return summary, nil
}

// progress reports how far units are from limit. Past the limit there is
// nothing remaining and the percentage is pinned at 100.
func progress(units, limit float64) (*float64, float64) {
	if units > limit {
		return nil, 100
	}
	remaining := round2(limit - units)
	return &remaining, pct(units, limit)
}
