package handlers

import (
	"context"

	"watts-backend/internal/models"
)

// Service surfaces the handlers depend on; internal/services implements them.

type MeterService interface {
	CreateMeter(ctx context.Context, req *models.CreateMeterRequest) (*models.Meter, error)
	ListMeters(ctx context.Context) ([]*models.Meter, error)
	GetMeter(ctx context.Context, id int) (*models.Meter, error)
	UpdateMeter(ctx context.Context, id int, req *models.UpdateMeterRequest) (*models.Meter, error)
	SetActiveGeneral(ctx context.Context, id int) (*models.Meter, error)
}

type BillingCycleService interface {
	StartCycle(ctx context.Context, req *models.StartCycleRequest) (*models.BillingCycle, error)
	CloseCurrent(ctx context.Context, req *models.CloseCycleRequest) (*models.CloseCycleResult, error)
	GetActive(ctx context.Context) (*models.BillingCycle, error)
	ListCycles(ctx context.Context) ([]*models.BillingCycle, error)
	GetCycle(ctx context.Context, id int) (*models.BillingCycle, error)
	UpdateCycle(ctx context.Context, id int, req *models.UpdateCycleRequest) (*models.BillingCycle, error)
	DeleteCycle(ctx context.Context, id int) error
}

type ReadingService interface {
	RecordReading(ctx context.Context, req *models.CreateReadingRequest) (*models.Reading, error)
	ListReadings(ctx context.Context, f models.ReadingFilter) (*models.ReadingPage, error)
	GetReading(ctx context.Context, id int) (*models.Reading, error)
	UpdateReading(ctx context.Context, id int, req *models.UpdateReadingRequest) (*models.Reading, error)
	DeleteReading(ctx context.Context, id int) error
	DeleteAllReadings(ctx context.Context) (int64, error)
}

type SlabRateService interface {
	CreateConfiguration(ctx context.Context, req *models.CreateSlabRateRequest) (*models.SlabRateConfiguration, error)
	ListConfigurations(ctx context.Context) ([]*models.SlabRateConfiguration, error)
	GetActive(ctx context.Context) (*models.SlabRateConfiguration, error)
	Activate(ctx context.Context, id int) (*models.SlabRateConfiguration, error)
	Delete(ctx context.Context, id int) error
}

type SettingsService interface {
	GetSettings(ctx context.Context) (*models.Settings, error)
	UpdateSettings(ctx context.Context, req *models.UpdateSettingsRequest) (*models.Settings, error)
}

type DashboardService interface {
	Summary(ctx context.Context) (*models.DashboardSummary, error)
}

type AnalyticsService interface {
	CycleSummary(ctx context.Context) ([]models.CycleSummary, error)
	MeterBreakdown(ctx context.Context) ([]models.MeterBreakdownRow, error)
}

type StatementService interface {
	Statement(ctx context.Context, id int) (*models.CycleStatement, error)
	StatementPDF(ctx context.Context, id int) ([]byte, error)
	Archive(ctx context.Context, id int) (*models.ArchiveResult, error)
}
