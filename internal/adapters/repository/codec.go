package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/okian/pinlog/internal/domain/model"
)

// record is the persisted layout of one workout. kind is always written and
// selects which of the variant fields must be present on read. The derived
// metric is written for readers of the raw blob and recomputed on load.
type record struct {
	ID          string            `json:"id"`
	CreatedAt   time.Time         `json:"created_at"`
	Kind        model.Kind        `json:"kind"`
	Coords      model.Coordinates `json:"coords"`
	DistanceKm  float64           `json:"distance_km"`
	DurationMin float64           `json:"duration_min"`
	Title       string            `json:"title"`

	CadenceSPM     *float64 `json:"cadence_spm,omitempty"`
	ElevationGainM *float64 `json:"elevation_gain_m,omitempty"`
	PaceMinPerKm   *float64 `json:"pace_min_per_km,omitempty"`
	SpeedKmPerH    *float64 `json:"speed_km_per_h,omitempty"`
}

// Encode renders workouts as a JSON array in their given order.
func Encode(workouts []model.Workout) ([]byte, error) {
	records := make([]record, 0, len(workouts))
	for _, w := range workouts {
		r := record{
			ID:          w.ID,
			CreatedAt:   w.CreatedAt.UTC(),
			Kind:        w.Kind,
			Coords:      w.Coords,
			DistanceKm:  w.DistanceKm,
			DurationMin: w.DurationMin,
			Title:       w.Title,
		}
		extra, metric := w.Extra, w.Metric().Value
		switch w.Kind {
		case model.Running:
			r.CadenceSPM, r.PaceMinPerKm = &extra, &metric
		case model.Cycling:
			r.ElevationGainM, r.SpeedKmPerH = &extra, &metric
		default:
			return nil, fmt.Errorf("encode workout %s: %w", w.ID, model.ErrUnknownKind)
		}
		records = append(records, r)
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode workouts: %w", err)
	}
	return data, nil
}

// Decode parses a blob written by Encode and rebuilds each variant.
// Any malformed record makes the whole blob ErrCorrupt.
func Decode(data []byte) ([]model.Workout, error) {
	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	workouts := make([]model.Workout, 0, len(records))
	for i, r := range records {
		var extra *float64
		switch r.Kind {
		case model.Running:
			extra = r.CadenceSPM
		case model.Cycling:
			extra = r.ElevationGainM
		default:
			return nil, fmt.Errorf("%w: record %d: kind %q", ErrCorrupt, i, r.Kind)
		}
		if extra == nil {
			return nil, fmt.Errorf("%w: record %d: %s without its variant field", ErrCorrupt, i, r.Kind)
		}

		w, err := model.Restore(r.ID, r.CreatedAt, r.Kind, r.Coords, r.DistanceKm, r.DurationMin, *extra, r.Title)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %w", ErrCorrupt, i, err)
		}
		workouts = append(workouts, w)
	}
	return workouts, nil
}
