package handlers

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"watts-backend/pkg/utils"
)

// ReportHandler serves the read models: dashboard, analytics and statements.
type ReportHandler struct {
	Dashboard  DashboardService
	Analytics  AnalyticsService
	Statements StatementService
	logger     *zap.Logger
}

func NewReportHandler(dashboard DashboardService, analytics AnalyticsService, statements StatementService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		Dashboard:  dashboard,
		Analytics:  analytics,
		Statements: statements,
		logger:     logger,
	}
}

func (h *ReportHandler) DashboardSummary(w http.ResponseWriter, r *http.Request) {
	s, err := h.Dashboard.Summary(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusOK, s)
}

func (h *ReportHandler) CycleSummary(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Analytics.CycleSummary(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusOK, rows)
}

func (h *ReportHandler) MeterBreakdown(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Analytics.MeterBreakdown(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusOK, rows)
}

func (h *ReportHandler) Statement(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	st, err := h.Statements.Statement(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusOK, st)
}

func (h *ReportHandler) StatementPDF(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	pdf, err := h.Statements.StatementPDF(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=cycle-%d-statement.pdf", id))
	w.Write(pdf)
}

func (h *ReportHandler) ArchiveStatement(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	res, err := h.Statements.Archive(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusOK, res)
}
