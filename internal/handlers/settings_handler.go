package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"watts-backend/internal/models"
	"watts-backend/pkg/utils"
)

type SettingsHandler struct {
	Service SettingsService
	logger  *zap.Logger
}

func NewSettingsHandler(service SettingsService, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{Service: service, logger: logger}
}

func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.Service.GetSettings(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusOK, s)
}

func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateSettingsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	s, err := h.Service.UpdateSettings(r.Context(), &req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusOK, s)
}
