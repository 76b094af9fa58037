package services

import (
	"context"
	"math"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"watts-backend/internal/apperr"
	"watts-backend/internal/cache"
	"watts-backend/internal/metrics"
	"watts-backend/internal/models"
	"watts-backend/internal/timeutil"
)

type ReadingService struct {
	Repo   ReadingStore
	sink   ReadingSink
	logger *zap.Logger
}

func NewReadingService(repo ReadingStore, logger *zap.Logger) *ReadingService {
	return &ReadingService{Repo: repo, logger: logger.Named("readings")}
}

// SetSink mirrors every recorded reading to sink. Sink failures are logged
// and never fail the request.
func (s *ReadingService) SetSink(sink ReadingSink) {
	s.sink = sink
}

// consumedSince returns value minus the previous reading, or 0 when there is
// no previous reading.
func consumedSince(value float64, prev *models.Reading) float64 {
	if prev == nil {
		return 0
	}
	return decimal.NewFromFloat(value).Sub(decimal.NewFromFloat(prev.ReadingValue)).InexactFloat64()
}

func belowPrevious(value float64, meterName string, prev *models.Reading) error {
	return apperr.Validation(
		"New reading value (%v) for meter \"%s\" must be greater than or equal to its previous reading value (%v recorded on %s). Please enter a valid sequential reading.",
		value, meterName, prev.ReadingValue, prev.Date.In(timeutil.IST).Format(timeutil.DisplayLayout),
	)
}

func meterName(rd *models.Reading) string {
	if rd.Meter != nil {
		return rd.Meter.Name
	}
	return ""
}

// RecordReading appends a reading to the active cycle and derives the units
// consumed since the meter's previous reading.
func (s *ReadingService) RecordReading(ctx context.Context, req *models.CreateReadingRequest) (*models.Reading, error) {
	if err := req.Validate(); err != nil {
		metrics.ReadingsRecorded.WithLabelValues("rejected").Inc()
		return nil, err
	}
	rd := req.Reading()

	err := s.Repo.Record(ctx, rd, func(active *models.BillingCycle, prev *models.Reading) error {
		if active == nil {
			return apperr.Validation("No active billing cycle found. Please start or activate a billing cycle.")
		}
		if rd.Date.Before(active.StartDate) {
			return apperr.Validation(
				"Reading date (%s) cannot be before the start date (%s) of the active billing cycle.",
				rd.Date.In(timeutil.IST).Format(timeutil.DisplayLayout),
				active.StartDate.In(timeutil.IST).Format(timeutil.DisplayLayout),
			)
		}
		if prev != nil && rd.ReadingValue < prev.ReadingValue {
			return belowPrevious(rd.ReadingValue, meterName(prev), prev)
		}
		rd.BillingCycleID = active.ID
		rd.UnitsConsumedSincePrevious = consumedSince(rd.ReadingValue, prev)
		return nil
	})
	if err != nil {
		outcome := "error"
		if apperr.Is(err, apperr.KindValidation) || apperr.Is(err, apperr.KindNotFound) {
			outcome = "rejected"
		}
		metrics.ReadingsRecorded.WithLabelValues(outcome).Inc()
		return nil, err
	}

	metrics.ReadingsRecorded.WithLabelValues("accepted").Inc()
	cache.InvalidateReadModels(ctx)
	s.mirror(ctx, rd)
	return rd, nil
}

func (s *ReadingService) mirror(ctx context.Context, rd *models.Reading) {
	if s.sink == nil {
		return
	}
	if err := s.sink.WriteReading(ctx, rd); err != nil {
		s.logger.Warn("failed to mirror reading", zap.Int("reading_id", rd.ID), zap.Error(err))
	}
}

// ListReadings returns one page of readings, newest first.
func (s *ReadingService) ListReadings(ctx context.Context, f models.ReadingFilter) (*models.ReadingPage, error) {
	f.Normalize()
	readings, total, err := s.Repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return &models.ReadingPage{
		Readings:      readings,
		TotalPages:    int(math.Ceil(float64(total) / float64(f.Limit))),
		CurrentPage:   f.Page,
		TotalReadings: total,
	}, nil
}

func (s *ReadingService) GetReading(ctx context.Context, id int) (*models.Reading, error) {
	return s.Repo.Get(ctx, id)
}

// UpdateReading edits a reading and recomputes its own consumption against
// the latest reading before its date. Later readings keep their values.
func (s *ReadingService) UpdateReading(ctx context.Context, id int, req *models.UpdateReadingRequest) (*models.Reading, error) {
	current, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	rd := *current
	if err := req.Apply(&rd); err != nil {
		return nil, err
	}

	err = s.Repo.Update(ctx, &rd, func(prev *models.Reading) error {
		if prev != nil && rd.ReadingValue < prev.ReadingValue {
			return belowPrevious(rd.ReadingValue, meterName(&rd), prev)
		}
		rd.UnitsConsumedSincePrevious = consumedSince(rd.ReadingValue, prev)
		return nil
	})
	if err != nil {
		return nil, err
	}
	cache.InvalidateReadModels(ctx)
	return &rd, nil
}

func (s *ReadingService) DeleteReading(ctx context.Context, id int) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	cache.InvalidateReadModels(ctx)
	return nil
}

// DeleteAllReadings wipes every reading and returns how many were removed.
func (s *ReadingService) DeleteAllReadings(ctx context.Context) (int64, error) {
	n, err := s.Repo.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	cache.InvalidateReadModels(ctx)
	s.logger.Warn("all readings deleted", zap.Int64("count", n))
	return n, nil
}
