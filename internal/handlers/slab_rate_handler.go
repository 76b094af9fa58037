package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"watts-backend/internal/models"
	"watts-backend/pkg/utils"
)

type SlabRateHandler struct {
	Service SlabRateService
	logger  *zap.Logger
}

func NewSlabRateHandler(service SlabRateService, logger *zap.Logger) *SlabRateHandler {
	return &SlabRateHandler{Service: service, logger: logger}
}

func (h *SlabRateHandler) CreateConfiguration(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSlabRateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	cfg, err := h.Service.CreateConfiguration(r.Context(), &req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusCreated, cfg)
}

func (h *SlabRateHandler) ListConfigurations(w http.ResponseWriter, r *http.Request) {
	configs, err := h.Service.ListConfigurations(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusOK, configs)
}

func (h *SlabRateHandler) GetActive(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.Service.GetActive(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusOK, cfg)
}

func (h *SlabRateHandler) Activate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	cfg, err := h.Service.Activate(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusOK, cfg)
}

func (h *SlabRateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.Message(w, http.StatusOK, "Slab rate configuration deleted successfully.")
}
