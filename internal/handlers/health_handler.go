package handlers

import (
	"context"
	"net/http"

	"watts-backend/internal/health"
	"watts-backend/pkg/utils"
)

// HealthChecker is satisfied by *health.HealthChecker.
type HealthChecker interface {
	CheckBasic() health.HealthStatus
	CheckDetailed(ctx context.Context) health.DetailedStatus
}

type HealthHandler struct {
	checker HealthChecker
}

func NewHealthHandler(checker HealthChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// BasicHealth is the liveness probe; it never touches the database.
func (h *HealthHandler) BasicHealth(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "watts-backend"})
}

// ReadinessHealth answers 503 while the database is unreachable.
func (h *HealthHandler) ReadinessHealth(w http.ResponseWriter, r *http.Request) {
	status := h.checker.CheckBasic()
	utils.JSON(w, readinessCode(status), status)
}

func (h *HealthHandler) DetailedHealth(w http.ResponseWriter, r *http.Request) {
	status := h.checker.CheckDetailed(r.Context())
	utils.JSON(w, readinessCode(status.HealthStatus), status)
}

func readinessCode(s health.HealthStatus) int {
	if s.Status == "healthy" {
		return http.StatusOK
	}
	return http.StatusServiceUnavailable
}
