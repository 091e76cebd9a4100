// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	service "github.com/okian/pinlog/internal/app"
	"github.com/okian/pinlog/internal/domain/dedupe"
	"github.com/okian/pinlog/internal/domain/model"
	"github.com/okian/pinlog/internal/domain/types"
)

// IdempotencyKeyHeader names the header that makes POST /workouts safe to retry.
const IdempotencyKeyHeader = "Idempotency-Key"

// WorkoutDependencies defines what the workout routes need.
type WorkoutDependencies interface {
	dedupe.Deduper
	Session() service.Session
	Workouts(ctx context.Context) []model.Workout
	Submit(ctx context.Context, sub service.Submission) (model.Workout, error)
	Select(ctx context.Context, id string) (model.Workout, error)
}

// WorkoutsHandler handles workout requests.
type WorkoutsHandler struct {
	deps WorkoutDependencies
}

// NewWorkoutsHandler creates a new workouts handler.
func NewWorkoutsHandler(deps WorkoutDependencies) *WorkoutsHandler {
	return &WorkoutsHandler{deps: deps}
}

// formValue accepts a JSON string or number and keeps its text, so numbers
// are parsed by the session exactly like typed form input.
type formValue string

func (f *formValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*f = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = formValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = formValue(n)
	return nil
}

// workoutRequest mirrors the OpenAPI schema for POST /workouts.
type workoutRequest struct {
	Type      string    `json:"type"`
	Distance  formValue `json:"distance"`
	Duration  formValue `json:"duration"`
	Cadence   formValue `json:"cadence"`
	Elevation formValue `json:"elevation"`
}

func (r workoutRequest) submission() service.Submission {
	return service.Submission{
		Kind:      r.Type,
		Distance:  string(r.Distance),
		Duration:  string(r.Duration),
		Cadence:   string(r.Cadence),
		Elevation: string(r.Elevation),
	}
}

type metricResponse struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

type workoutResponse struct {
	ID             string            `json:"id"`
	CreatedAt      time.Time         `json:"created_at"`
	Kind           model.Kind        `json:"kind"`
	Coords         model.Coordinates `json:"coords"`
	DistanceKm     float64           `json:"distance_km"`
	DurationMin    float64           `json:"duration_min"`
	Title          string            `json:"title"`
	CadenceSPM     *float64          `json:"cadence_spm,omitempty"`
	ElevationGainM *float64          `json:"elevation_gain_m,omitempty"`
	Metric         metricResponse    `json:"metric"`
}

func toResponse(w model.Workout) workoutResponse {
	m := w.Metric()
	resp := workoutResponse{
		ID:          w.ID,
		CreatedAt:   w.CreatedAt,
		Kind:        w.Kind,
		Coords:      w.Coords,
		DistanceKm:  w.DistanceKm,
		DurationMin: w.DurationMin,
		Title:       w.Title,
		Metric:      metricResponse{Name: m.Name, Value: m.Value, Unit: m.Unit},
	}
	if v, ok := w.Cadence(); ok {
		resp.CadenceSPM = &v
	}
	if v, ok := w.ElevationGain(); ok {
		resp.ElevationGainM = &v
	}
	return resp
}

type createdResponse struct {
	Status  string          `json:"status"`
	Workout workoutResponse `json:"workout"`
	Row     types.Row       `json:"row"`
}

type listResponse struct {
	Rows     []types.Row       `json:"rows"`
	Workouts []workoutResponse `json:"workouts"`
}

// HandleList handles GET /workouts requests: rows newest first, records in
// creation order.
func (h *WorkoutsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	workouts := h.deps.Workouts(r.Context())
	resp := listResponse{
		Rows:     h.deps.Session().View.Rows,
		Workouts: make([]workoutResponse, 0, len(workouts)),
	}
	for _, wk := range workouts {
		resp.Workouts = append(resp.Workouts, toResponse(wk))
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleCreate handles POST /workouts requests.
func (h *WorkoutsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_workout"
	var req workoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	key := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
	if key != "" && h.deps.SeenAndRecord(r.Context(), key) {
		writeJSON(w, http.StatusOK, statusResponse{Status: "duplicate"})
		return
	}

	wk, err := h.deps.Submit(r.Context(), req.submission())
	if err != nil {
		if key != "" {
			h.deps.Unrecord(r.Context(), key)
		}
		writeSessionError(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, createdResponse{
		Status:  "created",
		Workout: toResponse(wk),
		Row:     types.RowFor(wk),
	})
}

// HandleSelect handles POST /workouts/{id}/select requests.
func (h *WorkoutsHandler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	const op = "api.select_workout"
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	wk, err := h.deps.Select(r.Context(), id)
	if err != nil {
		writeSessionError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(wk))
}
