// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/pinlog/internal/adapters/mapview"
	service "github.com/okian/pinlog/internal/app"
	"github.com/okian/pinlog/internal/domain/model"
)

// SessionDependencies defines what the session routes need.
type SessionDependencies interface {
	StateProvider
	Session() service.Session
	Map() mapview.View
	Click(ctx context.Context, coords model.Coordinates) error
	ToggleKind(ctx context.Context, kind string) error
	Reset(ctx context.Context) error
}

// SessionHandler handles map, form and reset requests.
type SessionHandler struct {
	deps SessionDependencies
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(deps SessionDependencies) *SessionHandler {
	return &SessionHandler{deps: deps}
}

type clickRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

func (c clickRequest) validate() error {
	if c.Lat == nil || c.Lng == nil {
		return errors.New("lat and lng are required")
	}
	return nil
}

type kindRequest struct {
	Type string `json:"type"`
}

// HandleGetSession handles GET /session requests.
func (h *SessionHandler) HandleGetSession(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Session())
}

// HandleGetMap handles GET /map requests.
func (h *SessionHandler) HandleGetMap(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Map())
}

// HandleClick handles POST /map/click requests.
func (h *SessionHandler) HandleClick(w http.ResponseWriter, r *http.Request) {
	const op = "api.map_click"
	var req clickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	coords := model.Coordinates{Lat: *req.Lat, Lng: *req.Lng}
	if err := h.deps.Click(r.Context(), coords); err != nil {
		writeSessionError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Session())
}

// HandleToggleKind handles POST /form/kind requests.
func (h *SessionHandler) HandleToggleKind(w http.ResponseWriter, r *http.Request) {
	const op = "api.toggle_kind"
	var req kindRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.deps.ToggleKind(r.Context(), req.Type); err != nil {
		writeSessionError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Session().View.Form)
}

// HandleReset handles POST /reset requests.
func (h *SessionHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Reset(r.Context()); err != nil {
		writeSessionError(w, "api.reset", err)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Session())
}
