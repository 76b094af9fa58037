package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"watts-backend/internal/apperr"
	"watts-backend/internal/cache"
	"watts-backend/internal/metrics"
	"watts-backend/internal/models"
	"watts-backend/internal/timeutil"
)

// BillingCycleService owns the cycle ledger: exactly one active cycle, and
// closing it always opens the next one.
type BillingCycleService struct {
	Cycles   CycleStore
	Readings ReadingStore
	Now      func() time.Time
	logger   *zap.Logger
}

func NewBillingCycleService(cycles CycleStore, readings ReadingStore, logger *zap.Logger) *BillingCycleService {
	return &BillingCycleService{
		Cycles:   cycles,
		Readings: readings,
		Now:      timeutil.Now,
		logger:   logger.Named("billing_cycles"),
	}
}

func (s *BillingCycleService) StartCycle(ctx context.Context, req *models.StartCycleRequest) (*models.BillingCycle, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.Cycles.GetActive(ctx)
	if err != nil && !apperr.Is(err, apperr.KindNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict(
			"An active billing cycle (ID: %d) already exists starting %s. Please close it before starting a new one.",
			existing.ID, existing.StartDate.In(timeutil.IST).Format(timeutil.DisplayLayout),
		)
	}

	c := &models.BillingCycle{
		StartDate: req.StartDate.Time,
		Status:    models.CycleActive,
		Notes:     req.Notes,
	}
	if err := s.Cycles.Create(ctx, c); err != nil {
		return nil, err
	}
	cache.InvalidateReadModels(ctx)
	s.logger.Info("billing cycle started", zap.Int("cycle_id", c.ID), zap.Time("start_date", c.StartDate))
	return c, nil
}

// CloseCurrent closes the active cycle on the government collection date and
// opens its successor starting that same date.
func (s *BillingCycleService) CloseCurrent(ctx context.Context, req *models.CloseCycleRequest) (*models.CloseCycleResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	collection := req.CollectionDate()
	if collection.After(timeutil.EndOfDay(s.Now())) {
		return nil, apperr.Validation("Government collection date cannot be in the future.")
	}

	closed, opened, err := s.Cycles.CloseActive(ctx, func(active *models.BillingCycle) (*models.BillingCycle, error) {
		if collection.Before(active.StartDate) {
			return nil, apperr.Validation("Government collection date cannot be before the active cycle's start date.")
		}
		end := collection
		active.EndDate = &end
		active.GovernmentCollectionDate = &end
		if req.NotesForClosedCycle != "" {
			active.Notes = req.NotesForClosedCycle
		}

		notes := req.NotesForNewCycle
		if notes == "" {
			notes = models.DefaultNewCycleNotes
		}
		return &models.BillingCycle{
			StartDate: collection,
			Status:    models.CycleActive,
			Notes:     notes,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	metrics.CyclesClosed.Inc()
	cache.InvalidateReadModels(ctx)
	s.logger.Info("billing cycle closed",
		zap.Int("closed_cycle_id", closed.ID),
		zap.Int("new_cycle_id", opened.ID),
		zap.Time("collection_date", collection),
	)

	return &models.CloseCycleResult{
		Message:        "Billing cycle closed and new one started successfully.",
		ClosedCycle:    closed,
		NewActiveCycle: opened,
	}, nil
}

// GetActive returns the open cycle. The not-found message tells an empty
// ledger apart from one whose cycles are all closed.
func (s *BillingCycleService) GetActive(ctx context.Context) (*models.BillingCycle, error) {
	c, err := s.Cycles.GetActive(ctx)
	if err == nil {
		return c, nil
	}
	if !apperr.Is(err, apperr.KindNotFound) {
		return nil, err
	}
	n, cerr := s.Cycles.Count(ctx)
	if cerr != nil {
		return nil, cerr
	}
	if n == 0 {
		return nil, apperr.NotFound("No billing cycles found. Please start the first billing cycle.")
	}
	return nil, apperr.NotFound("No active billing cycle found. Please ensure a cycle is marked active or start a new one after closing the previous.")
}

func (s *BillingCycleService) ListCycles(ctx context.Context) ([]*models.BillingCycle, error) {
	return s.Cycles.List(ctx)
}

func (s *BillingCycleService) GetCycle(ctx context.Context, id int) (*models.BillingCycle, error) {
	return s.Cycles.Get(ctx, id)
}

// UpdateCycle corrects a cycle's dates or notes.
func (s *BillingCycleService) UpdateCycle(ctx context.Context, id int, req *models.UpdateCycleRequest) (*models.BillingCycle, error) {
	current, err := s.Cycles.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	updated := *current
	if err := req.Apply(&updated); err != nil {
		return nil, err
	}
	if err := s.Cycles.Update(ctx, &updated); err != nil {
		return nil, err
	}
	cache.InvalidateReadModels(ctx)
	return &updated, nil
}

// DeleteCycle removes a cycle that no reading references.
func (s *BillingCycleService) DeleteCycle(ctx context.Context, id int) error {
	if _, err := s.Cycles.Get(ctx, id); err != nil {
		return err
	}
	n, err := s.Readings.CountByCycle(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperr.Conflict(
			"Cannot delete this billing cycle because it has %d reading(s) associated with it. Please delete the readings first.", n)
	}
	if err := s.Cycles.Delete(ctx, id); err != nil {
		return err
	}
	cache.InvalidateReadModels(ctx)
	s.logger.Info("billing cycle deleted", zap.Int("cycle_id", id))
	return nil
}

// CheckRecoverable logs a warning when cycles exist but none is active, the
// state left behind if a close ever committed without its successor.
func (s *BillingCycleService) CheckRecoverable(ctx context.Context) error {
	n, err := s.Cycles.Count(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	_, err = s.Cycles.GetActive(ctx)
	if apperr.Is(err, apperr.KindNotFound) {
		s.logger.Warn("billing cycles exist but none is active; start one with POST /api/billing-cycles/start",
			zap.Int("cycles", n))
		return nil
	}
	return err
}
