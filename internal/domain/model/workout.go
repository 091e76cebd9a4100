// Package model contains domain models passed between layers.
package model

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind discriminates the workout variants.
type Kind string

// Supported workout kinds.
const (
	Running Kind = "Running"
	Cycling Kind = "Cycling"
)

// ParseKind maps a form value such as "running" to its Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "running":
		return Running, nil
	case "cycling":
		return Cycling, nil
	}
	return "", ErrUnknownKind
}

// Slug is the lower-case form value of the kind ("running", "cycling").
func (k Kind) Slug() string { return strings.ToLower(string(k)) }

// Coordinates is a latitude/longitude pair in degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Workout is one logged activity. All fields are fixed at creation.
type Workout struct {
	ID          string      // opaque unique id
	CreatedAt   time.Time   // creation instant, UTC
	Kind        Kind        // Running or Cycling
	Coords      Coordinates // where the pin was dropped
	DistanceKm  float64
	DurationMin float64
	Title       string // "<Kind> on <Month> <Day>"

	// Extra is the kind-specific input: cadence (steps/min) for Running,
	// elevation gain (m) for Cycling.
	Extra float64
}

// Cadence returns the running cadence in steps per minute.
func (w Workout) Cadence() (float64, bool) {
	if w.Kind != Running {
		return 0, false
	}
	return w.Extra, true
}

// ElevationGain returns the cycling elevation gain in metres.
func (w Workout) ElevationGain() (float64, bool) {
	if w.Kind != Cycling {
		return 0, false
	}
	return w.Extra, true
}

// Metric is a derived workout figure.
type Metric struct {
	Name  string
	Value float64
	Unit  string
}

// Metric returns the derived metric for the workout's kind:
// pace for Running, speed for Cycling.
func (w Workout) Metric() Metric {
	switch w.Kind {
	case Running:
		return Metric{Name: "pace", Value: Pace(w.DistanceKm, w.DurationMin), Unit: "min/km"}
	case Cycling:
		return Metric{Name: "speed", Value: Speed(w.DistanceKm, w.DurationMin), Unit: "km/h"}
	}
	return Metric{}
}

// Pace is minutes per kilometre.
func Pace(distanceKm, durationMin float64) float64 {
	return durationMin / distanceKm
}

// Speed is kilometres per hour.
func Speed(distanceKm, durationMin float64) float64 {
	return distanceKm / (durationMin / 60)
}

// Factory creates workouts with an injectable clock and id source.
type Factory struct {
	now   func() time.Time
	newID func() string
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithClock sets the time source used for CreatedAt and the title.
func WithClock(now func() time.Time) FactoryOption {
	return func(f *Factory) {
		if now != nil {
			f.now = now
		}
	}
}

// WithIDGenerator sets the id source.
func WithIDGenerator(gen func() string) FactoryOption {
	return func(f *Factory) {
		if gen != nil {
			f.newID = gen
		}
	}
}

// NewFactory returns a Factory using the wall clock and random UUIDs.
func NewFactory(opts ...FactoryOption) *Factory {
	f := &Factory{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create validates the inputs and returns a new workout.
// The title uses the clock's local calendar day; CreatedAt is stored in UTC.
func (f *Factory) Create(kind Kind, coords Coordinates, distanceKm, durationMin, extra float64) (Workout, error) {
	if err := Validate(kind, distanceKm, durationMin, extra); err != nil {
		return Workout{}, err
	}
	now := f.now()
	return Workout{
		ID:          f.newID(),
		CreatedAt:   now.UTC().Round(0),
		Kind:        kind,
		Coords:      coords,
		DistanceKm:  distanceKm,
		DurationMin: durationMin,
		Title:       FormatTitle(kind, now),
		Extra:       extra,
	}, nil
}

// Restore rebuilds a workout read back from storage. Stored identity and
// title are kept; inputs are validated again.
func Restore(id string, createdAt time.Time, kind Kind, coords Coordinates, distanceKm, durationMin, extra float64, title string) (Workout, error) {
	if kind != Running && kind != Cycling {
		return Workout{}, ErrUnknownKind
	}
	if id == "" {
		return Workout{}, ErrMissingID
	}
	if err := Validate(kind, distanceKm, durationMin, extra); err != nil {
		return Workout{}, err
	}
	if title == "" {
		title = FormatTitle(kind, createdAt)
	}
	return Workout{
		ID:          id,
		CreatedAt:   createdAt.UTC().Round(0),
		Kind:        kind,
		Coords:      coords,
		DistanceKm:  distanceKm,
		DurationMin: durationMin,
		Title:       title,
		Extra:       extra,
	}, nil
}

// Validate checks the numeric inputs of a workout as one combined rule:
// everything finite, distance and duration positive, cadence positive,
// elevation gain non-negative.
func Validate(kind Kind, distanceKm, durationMin, extra float64) error {
	if !finite(distanceKm, durationMin, extra) {
		return ErrValidation
	}
	if distanceKm <= 0 || durationMin <= 0 {
		return ErrValidation
	}
	switch kind {
	case Running:
		if extra <= 0 {
			return ErrValidation
		}
	case Cycling:
		if extra < 0 {
			return ErrValidation
		}
	default:
		return ErrUnknownKind
	}
	return nil
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
