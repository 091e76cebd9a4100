// Package repository persists the workout session as a single named blob on
// top of a pluggable key-value substrate.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/pinlog/internal/domain/model"
	"github.com/okian/pinlog/pkg/metrics"
)

const defaultKey = "workouts"

// Store loads and saves the ordered workout list of a session.
type Store interface {
	// Load returns the persisted workouts in creation order.
	// A store that was never written returns an empty list and no error.
	Load(ctx context.Context) ([]model.Workout, error)

	// Save replaces the persisted list with workouts.
	Save(ctx context.Context, workouts []model.Workout) error

	// Clear removes the persisted list.
	Clear(ctx context.Context) error
}

// Blob is a raw key-value substrate.
type Blob interface {
	// Get returns ErrNotFound when key has no value.
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	// Delete succeeds when key has no value.
	Delete(ctx context.Context, key string) error
	// Name identifies the backend in logs and metrics.
	Name() string
}

// BlobStore implements Store by encoding the whole list under one key.
type BlobStore struct {
	blob Blob
	key  string
}

// Option applies a configuration option to a BlobStore.
type Option func(*BlobStore)

// WithKey sets the blob key holding the session; defaults to "workouts".
func WithKey(key string) Option {
	return func(s *BlobStore) {
		if key != "" {
			s.key = key
		}
	}
}

// NewBlobStore creates a Store on top of blob.
func NewBlobStore(blob Blob, opts ...Option) *BlobStore {
	s := &BlobStore{blob: blob, key: defaultKey}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads and decodes the session blob.
func (s *BlobStore) Load(ctx context.Context) ([]model.Workout, error) {
	defer observe("load", time.Now())
	metrics.RecordPersistenceOp("load", s.blob.Name())

	data, err := s.blob.Get(ctx, s.key)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		metrics.RecordPersistenceError("load", s.blob.Name())
		return nil, fmt.Errorf("%w: %s get %q: %w", ErrUnavailable, s.blob.Name(), s.key, err)
	}

	workouts, err := Decode(data)
	if err != nil {
		metrics.RecordPersistenceError("load", s.blob.Name())
		return nil, err
	}
	return workouts, nil
}

// Save encodes workouts and writes them under the session key.
func (s *BlobStore) Save(ctx context.Context, workouts []model.Workout) error {
	defer observe("save", time.Now())
	metrics.RecordPersistenceOp("save", s.blob.Name())

	data, err := Encode(workouts)
	if err != nil {
		metrics.RecordPersistenceError("save", s.blob.Name())
		return err
	}
	if err := s.blob.Put(ctx, s.key, data); err != nil {
		metrics.RecordPersistenceError("save", s.blob.Name())
		return fmt.Errorf("%w: %s put %q: %w", ErrUnavailable, s.blob.Name(), s.key, err)
	}
	return nil
}

// Clear deletes the session key.
func (s *BlobStore) Clear(ctx context.Context) error {
	defer observe("clear", time.Now())
	metrics.RecordPersistenceOp("clear", s.blob.Name())

	if err := s.blob.Delete(ctx, s.key); err != nil {
		metrics.RecordPersistenceError("clear", s.blob.Name())
		return fmt.Errorf("%w: %s delete %q: %w", ErrUnavailable, s.blob.Name(), s.key, err)
	}
	return nil
}

// Close releases the substrate when it holds resources.
func (s *BlobStore) Close() error {
	if c, ok := s.blob.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

func observe(op string, start time.Time) {
	metrics.RecordPersistenceLatency(op, float64(time.Since(start).Microseconds())/1000)
}
