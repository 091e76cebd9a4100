// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	service "github.com/okian/pinlog/internal/app"
	"github.com/okian/pinlog/pkg/metrics"
)

// StateProvider reports the session state.
type StateProvider interface {
	State() service.State
}

// HealthHandler handles liveness and metrics requests.
type HealthHandler struct {
	state StateProvider
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(state StateProvider) *HealthHandler {
	return &HealthHandler{state: state}
}

type healthResponse struct {
	Status string        `json:"status"`
	State  service.State `json:"state"`
}

// HandleHealth handles GET /healthz requests.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", State: h.state.State()})
}

// HandleMetrics handles GET /metrics requests from the custom registry.
func (h *HealthHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}).ServeHTTP(w, r)
}
