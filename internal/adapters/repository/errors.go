package repository

import "errors"

// Sentinel kinds for persistence errors.
var (
	ErrNotFound    = errors.New("key not found")
	ErrUnavailable = errors.New("persistence unavailable")
	ErrCorrupt     = errors.New("persisted workouts are corrupt")
	ErrInvalidKey  = errors.New("invalid key")
)
