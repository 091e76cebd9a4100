package service

import "errors"

// Sentinel kinds for session errors.
var (
	ErrNotStarted     = errors.New("session not started")
	ErrStopped        = errors.New("session stopped")
	ErrBusy           = errors.New("session busy")
	ErrFormClosed     = errors.New("form is not open")
	ErrNotFound       = errors.New("workout not found")
	ErrMapUnavailable = errors.New("map unavailable")
	ErrSuperseded     = errors.New("startup superseded by reset")
)

// User-visible alert texts.
const (
	AlertLocation = "Could not get your location!"
	AlertInvalid  = "Inputs have to be positive numbers!"
)
