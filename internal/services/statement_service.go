package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf/v2"
	"go.uber.org/zap"

	"watts-backend/internal/apperr"
	"watts-backend/internal/models"
	"watts-backend/internal/tariff"
	"watts-backend/internal/timeutil"
)

// StatementService prices a single cycle per meter and renders it as JSON or
// PDF. PDFs can be archived to object storage when an Uploader is set.
type StatementService struct {
	Meters   MeterStore
	Cycles   CycleStore
	Readings ReadingStore
	Slabs    SlabStore
	Now      func() time.Time
	uploader Uploader
	logger   *zap.Logger
}

func NewStatementService(meters MeterStore, cycles CycleStore, readings ReadingStore, slabs SlabStore, logger *zap.Logger) *StatementService {
	return &StatementService{
		Meters:   meters,
		Cycles:   cycles,
		Readings: readings,
		Slabs:    slabs,
		Now:      timeutil.Now,
		logger:   logger.Named("statements"),
	}
}

func (s *StatementService) SetUploader(u Uploader) {
	s.uploader = u
}

// Statement prices every meter's consumption in cycle id with the active
// slab configuration.
func (s *StatementService) Statement(ctx context.Context, id int) (*models.CycleStatement, error) {
	cycle, err := s.Cycles.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	cfg, err := s.Slabs.GetActive(ctx)
	if err != nil {
		return nil, err
	}
	meters, err := s.Meters.List(ctx)
	if err != nil {
		return nil, err
	}
	byMeter, err := s.Readings.ConsumptionByMeter(ctx, cycle.ID)
	if err != nil {
		return nil, err
	}

	st := &models.CycleStatement{
		Cycle:             cycle,
		SlabConfiguration: cfg.Ref(),
		Meters:            make([]models.MeterCharge, 0, len(meters)),
		GeneratedAt:       s.Now(),
	}
	var units, cost float64
	for _, m := range meters {
		res := tariff.Apply(round2(byMeter[m.ID]), cfg)
		st.Meters = append(st.Meters, models.MeterCharge{
			MeterID:   m.ID,
			MeterName: m.Name,
			MeterType: m.MeterType,
			Units:     res.Units,
			Cost:      res.Cost,
			Slabs:     res.Lines,
		})
		units += res.Units
		cost += res.Cost
	}
	st.TotalUnits = round2(units)
	st.TotalCost = round2(cost)
	return st, nil
}

// StatementPDF renders the statement for cycle id.
func (s *StatementService) StatementPDF(ctx context.Context, id int) ([]byte, error) {
	st, err := s.Statement(ctx, id)
	if err != nil {
		return nil, err
	}
	return RenderStatementPDF(st)
}

// Archive renders the statement PDF and uploads it.
func (s *StatementService) Archive(ctx context.Context, id int) (*models.ArchiveResult, error) {
	if s.uploader == nil {
		return nil, apperr.Validation("Archive storage is not configured.")
	}
	data, err := s.StatementPDF(ctx, id)
	if err != nil {
		return nil, err
	}
	key, err := s.uploader.Upload(ctx, StatementFileName(id), "application/pdf", data)
	if err != nil {
		return nil, fmt.Errorf("archive statement %d: %w", id, err)
	}
	s.logger.Info("statement archived", zap.Int("cycle_id", id), zap.String("key", key))
	return &models.ArchiveResult{Message: "Statement archived successfully.", Key: key}, nil
}

func StatementFileName(id int) string {
	return fmt.Sprintf("cycle-%d-statement.pdf", id)
}

func displayDate(t *time.Time) string {
	if t == nil {
		return "Ongoing"
	}
	return t.In(timeutil.IST).Format(timeutil.DisplayLayout)
}

func RenderStatementPDF(st *models.CycleStatement) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, "Electricity Billing Statement", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("Generated: %s", st.GeneratedAt.In(timeutil.IST).Format("02-Jan-2006 03:04 PM")), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	// Cycle
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Billing Cycle", "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 11)
	start := st.Cycle.StartDate
	pdf.CellFormat(95, 7, fmt.Sprintf("Start: %s", displayDate(&start)), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("End: %s", displayDate(st.Cycle.EndDate)), "RB", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Status: %s", st.Cycle.Status), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Tariff: %s", st.SlabConfiguration.ConfigName), "RB", 1, "L", false, 0, "")
	pdf.Ln(5)

	for _, m := range st.Meters {
		pdf.SetFont("Arial", "B", 12)
		pdf.SetFillColor(240, 240, 240)
		pdf.CellFormat(190, 8, fmt.Sprintf("%s (%s)", m.MeterName, m.MeterType), "1", 1, "L", true, 0, "")

		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(200, 200, 200)
		pdf.CellFormat(50, 7, "Slab", "1", 0, "C", true, 0, "")
		pdf.CellFormat(40, 7, "Units", "1", 0, "C", true, 0, "")
		pdf.CellFormat(40, 7, "Rate", "1", 0, "C", true, 0, "")
		pdf.CellFormat(60, 7, "Amount", "1", 1, "C", true, 0, "")

		pdf.SetFont("Arial", "", 10)
		if len(m.Slabs) == 0 {
			pdf.CellFormat(190, 6, "No consumption recorded", "1", 1, "C", false, 0, "")
		}
		for _, line := range m.Slabs {
			pdf.CellFormat(50, 6, fmt.Sprintf("%g - %g", line.FromUnit, line.ToUnit), "1", 0, "C", false, 0, "")
			pdf.CellFormat(40, 6, fmt.Sprintf("%.2f", line.Units), "1", 0, "R", false, 0, "")
			pdf.CellFormat(40, 6, fmt.Sprintf("Rs. %.2f", line.Rate), "1", 0, "R", false, 0, "")
			pdf.CellFormat(60, 6, fmt.Sprintf("Rs. %.2f", line.Amount), "1", 1, "R", false, 0, "")
		}

		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(90, 7, fmt.Sprintf("Units: %.2f", m.Units), "1", 0, "L", false, 0, "")
		pdf.CellFormat(100, 7, fmt.Sprintf("Cost: Rs. %.2f", m.Cost), "1", 1, "R", false, 0, "")
		pdf.Ln(4)
	}

	// Totals
	pdf.SetFillColor(200, 255, 200)
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(95, 10, fmt.Sprintf("Total Units: %.2f", st.TotalUnits), "1", 0, "C", true, 0, "")
	pdf.CellFormat(95, 10, fmt.Sprintf("Total Bill: Rs. %.2f", st.TotalCost), "1", 1, "C", true, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render statement: %w", err)
	}
	return buf.Bytes(), nil
}
