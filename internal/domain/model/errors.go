package model

import "errors"

// Sentinel kinds for model errors.
var (
	ErrValidation  = errors.New("inputs have to be positive numbers")
	ErrUnknownKind = errors.New("unknown workout kind")
	ErrMissingID   = errors.New("workout id missing")
)
