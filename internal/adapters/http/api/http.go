// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/pinlog/internal/adapters/mapview"
	"github.com/okian/pinlog/internal/adapters/repository"
	service "github.com/okian/pinlog/internal/app"
	"github.com/okian/pinlog/internal/domain/dedupe"
	"github.com/okian/pinlog/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the session implementation.
type Dependencies interface {
	dedupe.Deduper
	SessionDependencies
	WorkoutDependencies
}

// Server wires HTTP routes for the session API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	sessionHandler  *SessionHandler
	workoutsHandler *WorkoutsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(deps),
		statsHandler:    NewStatsHandler(statsProvider),
		sessionHandler:  NewSessionHandler(deps),
		workoutsHandler: NewWorkoutsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /metrics", MetricsMiddleware(s.healthHandler.HandleMetrics, "metrics"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("GET /session", MetricsMiddleware(s.sessionHandler.HandleGetSession, "session"))
	mux.HandleFunc("GET /map", MetricsMiddleware(s.sessionHandler.HandleGetMap, "map"))
	mux.HandleFunc("POST /map/click", MetricsMiddleware(s.sessionHandler.HandleClick, "map_click"))
	mux.HandleFunc("POST /form/kind", MetricsMiddleware(s.sessionHandler.HandleToggleKind, "form_kind"))
	mux.HandleFunc("POST /reset", MetricsMiddleware(s.sessionHandler.HandleReset, "reset"))

	mux.HandleFunc("GET /workouts", MetricsMiddleware(s.workoutsHandler.HandleList, "workouts"))
	mux.HandleFunc("POST /workouts", MetricsMiddleware(s.workoutsHandler.HandleCreate, "workouts"))
	mux.HandleFunc("POST /workouts/{id}/select", MetricsMiddleware(s.workoutsHandler.HandleSelect, "workout_select"))
}

type statusResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeSessionError maps session errors to their HTTP status and code.
func writeSessionError(w http.ResponseWriter, op string, err error) {
	status, code := http.StatusInternalServerError, "internal_error"
	switch {
	case errors.Is(err, model.ErrValidation):
		status, code = http.StatusUnprocessableEntity, "validation_failed"
	case errors.Is(err, model.ErrUnknownKind):
		status, code = http.StatusUnprocessableEntity, "unknown_kind"
	case errors.Is(err, service.ErrFormClosed):
		status, code = http.StatusConflict, "form_closed"
	case errors.Is(err, service.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrMapUnavailable):
		status, code = http.StatusConflict, "map_unavailable"
	case errors.Is(err, mapview.ErrInvalidCoordinates):
		status, code = http.StatusBadRequest, "bad_request"
	case errors.Is(err, service.ErrBusy):
		status, code = http.StatusTooManyRequests, "busy"
	case errors.Is(err, repository.ErrUnavailable):
		status, code = http.StatusServiceUnavailable, "storage_unavailable"
	case errors.Is(err, service.ErrNotStarted), errors.Is(err, service.ErrStopped), errors.Is(err, service.ErrSuperseded):
		status, code = http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status, code = http.StatusServiceUnavailable, "unavailable"
	}
	if status == http.StatusInternalServerError {
		err = WrapKind(op, ErrInternal, err)
	}
	writeError(w, status, code, err)
}
