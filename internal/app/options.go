package service

import (
	"github.com/okian/pinlog/internal/adapters/geolocation"
	"github.com/okian/pinlog/internal/adapters/repository"
	"github.com/okian/pinlog/internal/domain/model"
	"github.com/okian/pinlog/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithStore sets where workouts are persisted.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithMap sets the map surface.
func WithMap(m Map) Option {
	return func(s *Service) {
		if m != nil {
			s.mapView = m
		}
	}
}

// WithView sets the form and list surface.
func WithView(v View) Option {
	return func(s *Service) {
		if v != nil {
			s.view = v
		}
	}
}

// WithLocator sets the geolocation source.
func WithLocator(l geolocation.Locator) Option {
	return func(s *Service) {
		if l != nil {
			s.locator = l
		}
	}
}

// WithFactory sets the workout factory.
func WithFactory(f *model.Factory) Option {
	return func(s *Service) {
		if f != nil {
			s.factory = f
		}
	}
}

// WithZoom sets the map zoom used on startup and selection. Zoom 0 shows
// the whole world; negative values are ignored.
func WithZoom(zoom int) Option {
	return func(s *Service) {
		if zoom >= 0 {
			s.zoom = zoom
		}
	}
}

// WithQueueSize sets how many tasks may wait for the event loop.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many idempotency keys are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}
