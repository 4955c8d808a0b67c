package systemstatus

import (
	"encoding/json"
	"net/http"

	"ip-lookup/internal/logger"

	"go.uber.org/zap"
)

// SystemStatusHandlers struct holds the system status service
type SystemStatusHandlers struct {
	Service *SystemStatusService
}

// NewSystemStatusHandlers creates new system status HTTP handlers
func NewSystemStatusHandlers(service *SystemStatusService) *SystemStatusHandlers {
	return &SystemStatusHandlers{Service: service}
}

// GetLatestSystemStatus handles fetching the latest system status
func (h *SystemStatusHandlers) GetLatestSystemStatus(w http.ResponseWriter, r *http.Request) {
	systemStatus, err := h.Service.GetLatest(r.Context())
	if err != nil {
		logger.L().Error("status_failed", zap.Error(err))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"error": "Store unavailable", "message": "Store unavailable"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(systemStatus)
}

// Healthz reports liveness only
func (h *SystemStatusHandlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}
