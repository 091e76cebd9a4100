// Package types contains read shapes shared by the controller, the view
// adapters and the HTTP API.
package types

import "github.com/okian/pinlog/internal/domain/model"

// Popup describes the popup bound to a map marker.
type Popup struct {
	Content      string `json:"content"`
	ClassName    string `json:"class_name"`
	MaxWidth     int    `json:"max_width"`
	MinWidth     int    `json:"min_width"`
	AutoClose    bool   `json:"auto_close"`
	CloseOnClick bool   `json:"close_on_click"`
}

// Marker is a pin on the map.
type Marker struct {
	WorkoutID string            `json:"workout_id"`
	Coords    model.Coordinates `json:"coords"`
	Popup     Popup             `json:"popup"`
}

// Detail is one value/unit cell of a list row.
type Detail struct {
	Icon  string  `json:"icon"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// Row is one entry of the workout list.
type Row struct {
	ID      string   `json:"id"`
	Kind    string   `json:"kind"`
	Title   string   `json:"title"`
	Details []Detail `json:"details"`
}

// Icon returns the emoji used for a kind in popups and rows.
func Icon(kind model.Kind) string {
	if kind == model.Running {
		return "🏃‍♂️"
	}
	return "🚴‍♀️"
}

// RowFor renders the list row of a workout: distance, duration, the derived
// metric and the kind-specific input.
func RowFor(w model.Workout) Row {
	m := w.Metric()
	extra := Detail{Icon: "⛰", Value: w.Extra, Unit: "m"}
	if w.Kind == model.Running {
		extra = Detail{Icon: "🦶🏼", Value: w.Extra, Unit: "spm"}
	}
	return Row{
		ID:    w.ID,
		Kind:  w.Kind.Slug(),
		Title: w.Title,
		Details: []Detail{
			{Icon: Icon(w.Kind), Value: w.DistanceKm, Unit: "km"},
			{Icon: "⏱", Value: w.DurationMin, Unit: "min"},
			{Icon: "⚡️", Value: m.Value, Unit: m.Unit},
			extra,
		},
	}
}

// PopupFor renders the marker popup of a workout.
func PopupFor(w model.Workout) Popup {
	return Popup{
		Content:      Icon(w.Kind) + " " + w.Title,
		ClassName:    w.Kind.Slug() + "-popup",
		MaxWidth:     250,
		MinWidth:     100,
		AutoClose:    false,
		CloseOnClick: false,
	}
}
