package http

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"watts-backend/internal/handlers"
)

type Handlers struct {
	Meter        *handlers.MeterHandler
	BillingCycle *handlers.BillingCycleHandler
	Reading      *handlers.ReadingHandler
	SlabRate     *handlers.SlabRateHandler
	Settings     *handlers.SettingsHandler
	Report       *handlers.ReportHandler
	Health       *handlers.HealthHandler
}

func NewRouter(h Handlers, mw ...mux.MiddlewareFunc) *mux.Router {
	r := mux.NewRouter()
	r.Use(mw...)

	api := r.PathPrefix("/api").Subrouter()

	// Meters
	api.HandleFunc("/meters", h.Meter.CreateMeter).Methods("POST")
	api.HandleFunc("/meters", h.Meter.ListMeters).Methods("GET")
	api.HandleFunc("/meters/{id:[0-9]+}", h.Meter.GetMeter).Methods("GET")
	api.HandleFunc("/meters/{id:[0-9]+}", h.Meter.UpdateMeter).Methods("PUT")
	api.HandleFunc("/meters/{id:[0-9]+}/set-active-general", h.Meter.SetActiveGeneral).Methods("PUT")

	// Billing cycles
	api.HandleFunc("/billing-cycles", h.BillingCycle.ListCycles).Methods("GET")
	api.HandleFunc("/billing-cycles/start", h.BillingCycle.StartCycle).Methods("POST")
	api.HandleFunc("/billing-cycles/close-current", h.BillingCycle.CloseCurrent).Methods("POST")
	api.HandleFunc("/billing-cycles/active", h.BillingCycle.GetActive).Methods("GET")
	api.HandleFunc("/billing-cycles/{id:[0-9]+}", h.BillingCycle.GetCycle).Methods("GET")
	api.HandleFunc("/billing-cycles/{id:[0-9]+}", h.BillingCycle.UpdateCycle).Methods("PUT")
	api.HandleFunc("/billing-cycles/{id:[0-9]+}", h.BillingCycle.DeleteCycle).Methods("DELETE")
	api.HandleFunc("/billing-cycles/{id:[0-9]+}/statement", h.Report.Statement).Methods("GET")
	api.HandleFunc("/billing-cycles/{id:[0-9]+}/statement.pdf", h.Report.StatementPDF).Methods("GET")
	api.HandleFunc("/billing-cycles/{id:[0-9]+}/archive", h.Report.ArchiveStatement).Methods("POST")

	// Readings
	api.HandleFunc("/readings", h.Reading.CreateReading).Methods("POST")
	api.HandleFunc("/readings", h.Reading.ListReadings).Methods("GET")
	api.HandleFunc("/readings/action/delete-all-globally", h.Reading.DeleteAllReadings).Methods("DELETE")
	api.HandleFunc("/readings/{id:[0-9]+}", h.Reading.GetReading).Methods("GET")
	api.HandleFunc("/readings/{id:[0-9]+}", h.Reading.UpdateReading).Methods("PUT")
	api.HandleFunc("/readings/{id:[0-9]+}", h.Reading.DeleteReading).Methods("DELETE")

	// Slab rate configurations
	api.HandleFunc("/slabs", h.SlabRate.ListConfigurations).Methods("GET")
	api.HandleFunc("/slabs", h.SlabRate.CreateConfiguration).Methods("POST")
	api.HandleFunc("/slabs/active", h.SlabRate.GetActive).Methods("GET")
	api.HandleFunc("/slabs/{id:[0-9]+}/activate", h.SlabRate.Activate).Methods("PUT")
	api.HandleFunc("/slabs/{id:[0-9]+}", h.SlabRate.Delete).Methods("DELETE")

	// Read models
	api.HandleFunc("/dashboard/summary", h.Report.DashboardSummary).Methods("GET")
	api.HandleFunc("/analytics/cycle-summary", h.Report.CycleSummary).Methods("GET")
	api.HandleFunc("/analytics/meter-breakdown", h.Report.MeterBreakdown).Methods("GET")

	// Settings
	api.HandleFunc("/settings", h.Settings.GetSettings).Methods("GET")
	api.HandleFunc("/settings", h.Settings.UpdateSettings).Methods("PUT")

	// Health and metrics
	r.HandleFunc("/health", h.Health.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", h.Health.ReadinessHealth).Methods("GET")
	r.HandleFunc("/health/detailed", h.Health.DetailedHealth).Methods("GET")
	r.Handle("/metrics", promhttp.Handler())

	return r
}
