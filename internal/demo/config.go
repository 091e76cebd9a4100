// Package demo drives a running pinlog server through a scripted session:
// clicks, submissions (valid and invalid), idempotent retries and selection.
package demo

import "time"

// Config holds configuration for a demo run.
type Config struct {
	BaseURL  string        // Base URL of the service
	Workouts int           // Number of valid workouts to log
	Invalid  int           // Number of invalid submissions to try
	Workers  int           // Concurrent clients
	Timeout  time.Duration // HTTP request timeout
	Reset    bool          // Reset the session before starting
	Seed     uint64        // Seed for the workout generator; 0 picks one
	Verbose  bool          // Log every request
}

// Plan is one generated click plus submission.
type Plan struct {
	Lat        float64    `json:"lat"`
	Lng        float64    `json:"lng"`
	Submission Submission `json:"submission"`
	Valid      bool       `json:"valid"`
	Key        string     `json:"idempotency_key"`
}

// Submission mirrors the POST /workouts body.
type Submission struct {
	Type      string `json:"type"`
	Distance  string `json:"distance"`
	Duration  string `json:"duration"`
	Cadence   string `json:"cadence,omitempty"`
	Elevation string `json:"elevation,omitempty"`
}

// Metric mirrors the derived metric of a workout.
type Metric struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// Workout mirrors a workout as the API returns it.
type Workout struct {
	ID          string  `json:"id"`
	Kind        string  `json:"kind"`
	Title       string  `json:"title"`
	DistanceKm  float64 `json:"distance_km"`
	DurationMin float64 `json:"duration_min"`
	Metric      Metric  `json:"metric"`
}

// Stats holds run statistics.
type Stats struct {
	Planned    int
	Created    int
	Duplicates int
	Rejected   int
	Conflicts  int
	Failed     int
	Listed     int
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
}
