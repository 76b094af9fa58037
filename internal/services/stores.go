package services

import (
	"context"
	"time"

	"watts-backend/internal/models"
)

// The interfaces below are the persistence surface the services rely on. The
// repositories package provides the PostgreSQL implementations.

type MeterStore interface {
	Create(ctx context.Context, m *models.Meter) error
	Get(ctx context.Context, id int) (*models.Meter, error)
	List(ctx context.Context) ([]*models.Meter, error)
	Update(ctx context.Context, m *models.Meter) error
	SetActiveGeneral(ctx context.Context, id int, check func(*models.Meter) error) (*models.Meter, error)
}

type CycleStore interface {
	Create(ctx context.Context, c *models.BillingCycle) error
	GetActive(ctx context.Context) (*models.BillingCycle, error)
	Get(ctx context.Context, id int) (*models.BillingCycle, error)
	List(ctx context.Context) ([]*models.BillingCycle, error)
	ListClosed(ctx context.Context) ([]*models.BillingCycle, error)
	Count(ctx context.Context) (int, error)
	PreviousClosed(ctx context.Context, before time.Time, excludeID int) (*models.BillingCycle, error)
	Update(ctx context.Context, c *models.BillingCycle) error
	Delete(ctx context.Context, id int) error
	CloseActive(ctx context.Context, closeFn func(active *models.BillingCycle) (*models.BillingCycle, error)) (closed, opened *models.BillingCycle, err error)
}

type ReadingStore interface {
	Record(ctx context.Context, rd *models.Reading, check func(active *models.BillingCycle, prev *models.Reading) error) error
	Get(ctx context.Context, id int) (*models.Reading, error)
	List(ctx context.Context, f models.ReadingFilter) ([]*models.Reading, int, error)
	Update(ctx context.Context, rd *models.Reading, check func(prev *models.Reading) error) error
	Delete(ctx context.Context, id int) error
	DeleteAll(ctx context.Context) (int64, error)
	CountByCycle(ctx context.Context, cycleID int) (int, error)
	ConsumptionByMeter(ctx context.Context, cycleID int) (map[int]float64, error)
}

type SlabStore interface {
	Create(ctx context.Context, c *models.SlabRateConfiguration) error
	List(ctx context.Context) ([]*models.SlabRateConfiguration, error)
	Get(ctx context.Context, id int) (*models.SlabRateConfiguration, error)
	GetActive(ctx context.Context) (*models.SlabRateConfiguration, error)
	Activate(ctx context.Context, id int) (*models.SlabRateConfiguration, error)
	Delete(ctx context.Context, id int) error
}

type SettingsStore interface {
	Get(ctx context.Context) (*models.Settings, error)
	UpdateTarget(ctx context.Context, target float64) (*models.Settings, error)
}

// ReadingSink receives every recorded reading, e.g. a time-series mirror.
type ReadingSink interface {
	WriteReading(ctx context.Context, r *models.Reading) error
}

// Uploader stores generated documents and returns their object key.
type Uploader interface {
	Upload(ctx context.Context, name, contentType string, data []byte) (string, error)
}
