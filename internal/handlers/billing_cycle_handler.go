package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"watts-backend/internal/models"
	"watts-backend/pkg/utils"
)

type BillingCycleHandler struct {
	Service BillingCycleService
	logger  *zap.Logger
}

func NewBillingCycleHandler(service BillingCycleService, logger *zap.Logger) *BillingCycleHandler {
	return &BillingCycleHandler{Service: service, logger: logger}
}

func (h *BillingCycleHandler) StartCycle(w http.ResponseWriter, r *http.Request) {
	var req models.StartCycleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	c, err := h.Service.StartCycle(r.Context(), &req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusCreated, c)
}

func (h *BillingCycleHandler) CloseCurrent(w http.ResponseWriter, r *http.Request) {
	var req models.CloseCycleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	res, err := h.Service.CloseCurrent(r.Context(), &req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusOK, res)
}

func (h *BillingCycleHandler) GetActive(w http.ResponseWriter, r *http.Request) {
	c, err := h.Service.GetActive(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusOK, c)
}

func (h *BillingCycleHandler) ListCycles(w http.ResponseWriter, r *http.Request) {
	cycles, err := h.Service.ListCycles(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusOK, cycles)
}

func (h *BillingCycleHandler) GetCycle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	c, err := h.Service.GetCycle(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusOK, c)
}

func (h *BillingCycleHandler) UpdateCycle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var req models.UpdateCycleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	c, err := h.Service.UpdateCycle(r.Context(), id, &req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusOK, c)
}

func (h *BillingCycleHandler) DeleteCycle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.Service.DeleteCycle(r.Context(), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.Message(w, http.StatusOK, "Billing cycle deleted successfully.")
}
