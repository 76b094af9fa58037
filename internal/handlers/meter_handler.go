package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"watts-backend/internal/models"
	"watts-backend/pkg/utils"
)

type MeterHandler struct {
	Service MeterService
	logger  *zap.Logger
}

func NewMeterHandler(service MeterService, logger *zap.Logger) *MeterHandler {
	return &MeterHandler{Service: service, logger: logger}
}

func (h *MeterHandler) CreateMeter(w http.ResponseWriter, r *http.Request) {
	var req models.CreateMeterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	m, err := h.Service.CreateMeter(r.Context(), &req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusCreated, m)
}

func (h *MeterHandler) ListMeters(w http.ResponseWriter, r *http.Request) {
	meters, err := h.Service.ListMeters(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusOK, meters)
}

func (h *MeterHandler) GetMeter(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	m, err := h.Service.GetMeter(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusOK, m)
}

func (h *MeterHandler) UpdateMeter(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var req models.UpdateMeterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	m, err := h.Service.UpdateMeter(r.Context(), id, &req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusOK, m)
}

func (h *MeterHandler) SetActiveGeneral(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	m, err := h.Service.SetActiveGeneral(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusOK, m)
}
