// Package geolocation resolves the user's current position.
package geolocation

import (
	"context"
	"errors"
	"time"

	"github.com/okian/pinlog/internal/domain/model"
)

// ErrUnavailable reports that no position could be obtained.
var ErrUnavailable = errors.New("geolocation unavailable")

// Locator resolves the current position. It may block and must honour ctx.
type Locator interface {
	Locate(ctx context.Context) (model.Coordinates, error)
}

// Fixed always answers with the same coordinates.
type Fixed struct {
	coords model.Coordinates
	delay  time.Duration
}

// Option applies a configuration option to Fixed.
type Option func(*Fixed)

// WithDelay makes Locate wait before answering.
func WithDelay(d time.Duration) Option {
	return func(f *Fixed) {
		if d > 0 {
			f.delay = d
		}
	}
}

// NewFixed returns a locator that reports coords.
func NewFixed(coords model.Coordinates, opts ...Option) *Fixed {
	f := &Fixed{coords: coords}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Fixed) Locate(ctx context.Context) (model.Coordinates, error) {
	if f.delay > 0 {
		t := time.NewTimer(f.delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return model.Coordinates{}, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return model.Coordinates{}, err
	}
	return f.coords, nil
}

// Unavailable is a locator for hosts without a position source.
type Unavailable struct{}

func (Unavailable) Locate(context.Context) (model.Coordinates, error) {
	return model.Coordinates{}, ErrUnavailable
}
