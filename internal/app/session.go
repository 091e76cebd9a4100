package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/okian/pinlog/internal/adapters/mapview"
	"github.com/okian/pinlog/internal/adapters/repository"
	"github.com/okian/pinlog/internal/adapters/view"
	"github.com/okian/pinlog/internal/domain/model"
	"github.com/okian/pinlog/pkg/logger"
	"github.com/okian/pinlog/pkg/metrics"
)

// Submission carries the raw form values. Numbers arrive as text and are
// read the way a browser form reads them: blank is zero, anything
// unparsable fails validation.
type Submission struct {
	Kind      string `json:"type"`
	Distance  string `json:"distance"`
	Duration  string `json:"duration"`
	Cadence   string `json:"cadence"`
	Elevation string `json:"elevation"`
}

// Session is what a reader sees of the session at one moment.
type Session struct {
	State   State              `json:"state"`
	Pending *model.Coordinates `json:"pending,omitempty"`
	View    view.Snapshot      `json:"view"`
}

// Click forwards a map click to the map surface, which delivers it to the
// session's click handler once the map is ready.
func (s *Service) Click(ctx context.Context, coords model.Coordinates) error {
	err := s.mapView.Click(ctx, coords)
	if errors.Is(err, mapview.ErrNotReady) {
		return ErrMapUnavailable
	}
	return err
}

// handleClick is registered with the map. A click while the form is open
// replaces the pending coordinates.
func (s *Service) handleClick(ctx context.Context, coords model.Coordinates) error {
	return s.dispatch(ctx, "map_click", func(ctx context.Context) error {
		if !s.State().mapReady() {
			return ErrMapUnavailable
		}
		s.mu.Lock()
		c := coords
		s.pending = &c
		s.mu.Unlock()

		s.view.ShowForm(ctx)
		s.setState(FormOpen)
		s.logger.Debug(ctx, "form opened",
			logger.Float64("lat", coords.Lat),
			logger.Float64("lng", coords.Lng),
		)
		return nil
	})
}

// Submit creates a workout at the pending coordinates. An unknown kind is
// ignored without an alert; invalid numbers raise the validation alert and
// keep the form open. A failed save also keeps the form open and returns an
// error wrapping repository.ErrUnavailable.
func (s *Service) Submit(ctx context.Context, sub Submission) (model.Workout, error) {
	var created model.Workout
	err := s.dispatch(ctx, "submit", func(ctx context.Context) error {
		s.mu.RLock()
		state, pending := s.state, s.pending
		s.mu.RUnlock()
		if state != FormOpen || pending == nil {
			return ErrFormClosed
		}

		kind, err := model.ParseKind(sub.Kind)
		if err != nil {
			metrics.RecordUnknownKind()
			s.logger.Debug(ctx, "ignoring submission", logger.String("type", sub.Kind))
			return err
		}

		extra := sub.Cadence
		if kind == model.Cycling {
			extra = sub.Elevation
		}
		w, err := s.factory.Create(kind, *pending,
			parseNumber(sub.Distance), parseNumber(sub.Duration), parseNumber(extra))
		if err != nil {
			if errors.Is(err, model.ErrValidation) {
				metrics.RecordValidationFailure()
				s.view.Alert(ctx, AlertInvalid)
			}
			return err
		}

		s.mu.RLock()
		all := make([]model.Workout, len(s.workouts), len(s.workouts)+1)
		copy(all, s.workouts)
		s.mu.RUnlock()
		all = append(all, w)

		// The list is only committed once it is stored; on failure the
		// form stays open with its pending coordinates.
		if err := s.store.Save(context.WithoutCancel(ctx), all); err != nil {
			s.logger.Error(ctx, "saving workouts failed",
				logger.String("workoutID", w.ID),
				logger.Error(err),
			)
			return persistenceError("save", err)
		}

		s.mu.Lock()
		s.workouts = all
		s.pending = nil
		s.mu.Unlock()

		s.render(ctx, w, true)
		s.view.HideForm(ctx)
		s.view.ClearAlert(ctx)
		s.setState(MapReady)

		metrics.RecordWorkoutCreated(kind.Slug())
		metrics.UpdateSessionWorkouts(len(all))
		s.logger.Info(ctx, "workout created",
			logger.String("workoutID", w.ID),
			logger.String("kind", string(kind)),
			logger.Float64("metric", w.Metric().Value),
		)
		created = w
		return nil
	})
	return created, err
}

// Select pans the map to the workout with id.
func (s *Service) Select(ctx context.Context, id string) (model.Workout, error) {
	var found model.Workout
	err := s.dispatch(ctx, "select", func(ctx context.Context) error {
		w, ok := s.lookup(id)
		if !ok {
			return ErrNotFound
		}
		if !s.State().mapReady() {
			return ErrMapUnavailable
		}
		if err := s.mapView.SetView(ctx, w.Coords, s.zoom, mapview.Animated(selectPanSeconds)); err != nil {
			return err
		}
		found = w
		return nil
	})
	return found, err
}

// ToggleKind switches the form between cadence and elevation input.
func (s *Service) ToggleKind(ctx context.Context, kind string) error {
	k, err := model.ParseKind(kind)
	if err != nil {
		return err
	}
	return s.dispatch(ctx, "toggle_kind", func(ctx context.Context) error {
		s.view.ToggleKind(ctx, k)
		return nil
	})
}

// Reset deletes every stored workout, clears the surfaces and runs the
// startup sequence again. When the store cannot be cleared nothing changes.
func (s *Service) Reset(ctx context.Context) error {
	err := s.dispatch(ctx, "reset", func(ctx context.Context) error {
		if err := s.store.Clear(context.WithoutCancel(ctx)); err != nil {
			s.logger.Error(ctx, "clearing workouts failed", logger.Error(err))
			return persistenceError("clear", err)
		}
		s.mu.Lock()
		s.gen++
		s.workouts = nil
		s.pending = nil
		s.mu.Unlock()

		s.view.Reset(ctx)
		s.mapView.Reset(ctx)
		s.setState(Uninitialized)
		metrics.UpdateSessionWorkouts(0)
		s.logger.Info(ctx, "session reset")
		return nil
	})
	if err != nil {
		return err
	}
	return s.startup(ctx)
}

func persistenceError(op string, err error) error {
	if errors.Is(err, repository.ErrUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", repository.ErrUnavailable, op, err)
}

func (s *Service) lookup(id string) (model.Workout, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, w := range s.workouts {
		if w.ID == id {
			return w, true
		}
	}
	return model.Workout{}, false
}

// Workouts returns the session's workouts in creation order.
func (s *Service) Workouts(_ context.Context) []model.Workout {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Workout, len(s.workouts))
	copy(out, s.workouts)
	return out
}

// State returns the current state.
func (s *Service) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Pending returns the coordinates waiting for a submission.
func (s *Service) Pending() (model.Coordinates, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.pending == nil {
		return model.Coordinates{}, false
	}
	return *s.pending, true
}

// Session returns the state, the pending coordinates and the view.
func (s *Service) Session() Session {
	out := Session{State: s.State(), View: s.view.Snapshot()}
	if c, ok := s.Pending(); ok {
		out.Pending = &c
	}
	return out
}

// Map returns the current map state.
func (s *Service) Map() mapview.View {
	return s.mapView.Snapshot()
}

// SeenAndRecord reports whether an idempotency key was already used and
// records it if not.
func (s *Service) SeenAndRecord(ctx context.Context, key string) bool {
	seen := s.deduper.SeenAndRecord(ctx, key)
	if seen {
		metrics.RecordSubmissionDuplicate()
	}
	return seen
}

// Unrecord forgets an idempotency key so the submission can be retried.
func (s *Service) Unrecord(ctx context.Context, key string) {
	s.deduper.Unrecord(ctx, key)
}

// Size returns the number of remembered idempotency keys.
func (s *Service) Size() int64 {
	return s.deduper.Size()
}

// GetStats returns session statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.lifeMu.Lock()
	started, q := s.started, s.queue
	s.lifeMu.Unlock()

	s.mu.RLock()
	stats := map[string]interface{}{
		"started":    started,
		"state":      s.state.String(),
		"workouts":   len(s.workouts),
		"pending":    s.pending != nil,
		"queueSize":  s.queueSize,
		"dedupeSize": s.deduper.Size(),
	}
	s.mu.RUnlock()

	if started && q != nil {
		stats["queueLength"] = q.Len()
	}
	return stats
}

// parseNumber reads form text like a browser's numeric coercion: surrounding
// whitespace is ignored, blank is zero and anything else unparsable is NaN.
func parseNumber(text string) float64 {
	t := strings.TrimSpace(text)
	if t == "" {
		return 0
	}
	if strings.ContainsAny(t, "_pP") {
		return math.NaN()
	}
	if v, err := strconv.ParseFloat(t, 64); err == nil {
		return v
	}
	// 0x, 0o and 0b integers
	if u, err := strconv.ParseUint(t, 0, 64); err == nil {
		return float64(u)
	}
	return math.NaN()
}
