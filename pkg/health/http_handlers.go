package health

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/smartcontractkit/chainlink-common/pkg/logger"

	"github.com/vialabs/message-gateway/pkg/common"
)

// HTTPHandlers exposes liveness and readiness probes on the gateway's API
// router.
type HTTPHandlers struct {
	manager *Manager
	logger  logger.SugaredLogger
}

func NewHTTPHandlers(manager *Manager, logger logger.SugaredLogger) *HTTPHandlers {
	return &HTTPHandlers{
		manager: manager,
		logger:  logger,
	}
}

func (h *HTTPHandlers) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health/live", h.handleLiveness).Methods(http.MethodGet)
	r.HandleFunc("/health/ready", h.handleReadiness).Methods(http.MethodGet)
	r.HandleFunc("/health", h.handleReadiness).Methods(http.MethodGet)
}

func (h *HTTPHandlers) handleLiveness(w http.ResponseWriter, r *http.Request) {
	liveness := h.manager.CheckLiveness(r.Context())

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(liveness)
}

func (h *HTTPHandlers) handleReadiness(w http.ResponseWriter, r *http.Request) {
	status, components := h.manager.CheckReadiness(r.Context())

	response := map[string]interface{}{
		"status":     string(status),
		"components": components,
		"timestamp":  time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")

	switch status {
	case common.HealthStatusHealthy:
		w.WriteHeader(http.StatusOK)
	case common.HealthStatusDegraded:
		w.WriteHeader(http.StatusOK)
		h.logger.Warnw("Service degraded", "components", components)
	case common.HealthStatusUnhealthy:
		w.WriteHeader(http.StatusServiceUnavailable)
		h.logger.Errorw("Service unhealthy", "components", components)
	}

	json.NewEncoder(w).Encode(response)
}
