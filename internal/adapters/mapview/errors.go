package mapview

import "errors"

// Sentinel kinds for map errors.
var (
	ErrNotReady           = errors.New("map has no click handler")
	ErrInvalidCoordinates = errors.New("coordinates out of range")
)
