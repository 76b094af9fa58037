package handlers

import (
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"watts-backend/internal/apperr"
	"watts-backend/internal/models"
	"watts-backend/internal/timeutil"
	"watts-backend/pkg/utils"
)

type ReadingHandler struct {
	Service ReadingService
	logger  *zap.Logger
}

func NewReadingHandler(service ReadingService, logger *zap.Logger) *ReadingHandler {
	return &ReadingHandler{Service: service, logger: logger}
}

func (h *ReadingHandler) CreateReading(w http.ResponseWriter, r *http.Request) {
	var req models.CreateReadingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	rd, err := h.Service.RecordReading(r.Context(), &req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusCreated, rd)
}

// readingFilter parses meterId, billingCycleId, startDate, endDate, page and
// limit from the query string.
func readingFilter(r *http.Request) (models.ReadingFilter, error) {
	q := r.URL.Query()
	var f models.ReadingFilter

	ints := []struct {
		key string
		dst *int
	}{
		{"meterId", &f.MeterID},
		{"billingCycleId", &f.BillingCycleID},
		{"page", &f.Page},
		{"limit", &f.Limit},
	}
	for _, p := range ints {
		v := q.Get(p.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, apperr.Validation("Invalid %s.", p.key)
		}
		*p.dst = n
	}

	dates := []struct {
		key string
		dst **time.Time
	}{
		{"startDate", &f.StartDate},
		{"endDate", &f.EndDate},
	}
	for _, p := range dates {
		v := q.Get(p.key)
		if v == "" {
			continue
		}
		t, err := timeutil.ParseDate(v)
		if err != nil {
			return f, apperr.Validation("Invalid %s.", p.key)
		}
		*p.dst = &t
	}
	return f, nil
}

func (h *ReadingHandler) ListReadings(w http.ResponseWriter, r *http.Request) {
	f, err := readingFilter(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	page, err := h.Service.ListReadings(r.Context(), f)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusOK, page)
}

func (h *ReadingHandler) GetReading(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	rd, err := h.Service.GetReading(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusOK, rd)
}

func (h *ReadingHandler) UpdateReading(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var req models.UpdateReadingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	rd, err := h.Service.UpdateReading(r.Context(), id, &req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusOK, rd)
}

func (h *ReadingHandler) DeleteReading(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.Service.DeleteReading(r.Context(), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.Message(w, http.StatusOK, "Reading deleted successfully.")
}

func (h *ReadingHandler) DeleteAllReadings(w http.ResponseWriter, r *http.Request) {
	n, err := h.Service.DeleteAllReadings(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"message":      "All readings deleted successfully.",
		"deletedCount": n,
	})
}
