package demo

import "time"

// Defaults used by the demo command.
const (
	DefaultBaseURL  = "http://localhost:9080"
	DefaultWorkouts = 20
	DefaultInvalid  = 3
	DefaultTimeout  = 10 * time.Second
)

const (
	// submitAttempts bounds retries when another client took the form.
	submitAttempts = 5
	metricEpsilon  = 1e-9
)
