package demo

import (
	"context"
	"fmt"
	"math"
	"net/http"
)

type listResponse struct {
	Rows     []map[string]any `json:"rows"`
	Workouts []Workout        `json:"workouts"`
}

// verify checks that every created workout is listed with a correct metric.
func verify(ctx context.Context, client *HTTPClient, before int, created []Workout, stats *Stats) error {
	var list listResponse
	status, err := client.do(ctx, http.MethodGet, "/workouts", nil, nil, &list)
	if err != nil || status != http.StatusOK {
		return fmt.Errorf("listing workouts: status %d: %w", status, err)
	}
	stats.Listed = len(list.Workouts)

	if want := before + len(created); len(list.Workouts) != want {
		return fmt.Errorf("listed %d workouts, want %d", len(list.Workouts), want)
	}
	if len(list.Rows) != len(list.Workouts) {
		return fmt.Errorf("listed %d rows for %d workouts", len(list.Rows), len(list.Workouts))
	}

	byID := make(map[string]Workout, len(list.Workouts))
	for _, w := range list.Workouts {
		byID[w.ID] = w
	}
	for _, c := range created {
		w, ok := byID[c.ID]
		if !ok {
			return fmt.Errorf("created workout %s is not listed", c.ID)
		}
		if err := checkMetric(w); err != nil {
			return err
		}
	}
	return nil
}

func checkMetric(w Workout) error {
	var want float64
	switch w.Kind {
	case "Running":
		want = w.DurationMin / w.DistanceKm
	case "Cycling":
		want = w.DistanceKm / (w.DurationMin / 60)
	default:
		return fmt.Errorf("workout %s has unknown kind %q", w.ID, w.Kind)
	}
	if math.Abs(w.Metric.Value-want) > metricEpsilon*math.Max(1, want) {
		return fmt.Errorf("workout %s %s = %v, want %v", w.ID, w.Metric.Name, w.Metric.Value, want)
	}
	return nil
}
