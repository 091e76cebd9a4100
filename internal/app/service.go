// Package service implements the workout session: the state machine that
// turns map clicks and form submissions into persisted, rendered workouts.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/pinlog/internal/adapters/geolocation"
	"github.com/okian/pinlog/internal/adapters/mapview"
	eventqueue "github.com/okian/pinlog/internal/adapters/mq/queue"
	eventloop "github.com/okian/pinlog/internal/adapters/mq/worker"
	"github.com/okian/pinlog/internal/adapters/repository"
	"github.com/okian/pinlog/internal/adapters/view"
	"github.com/okian/pinlog/internal/domain/dedupe"
	"github.com/okian/pinlog/internal/domain/model"
	"github.com/okian/pinlog/internal/domain/types"
	"github.com/okian/pinlog/pkg/logger"
	"github.com/okian/pinlog/pkg/metrics"
)

const (
	defaultZoom         = 13
	defaultQueueSize    = 64
	defaultDedupeSize   = 1024
	selectPanSeconds    = 1
	loopShutdownTimeout = 5 * time.Second
)

// Map is the map surface the session draws on.
type Map interface {
	SetView(ctx context.Context, coords model.Coordinates, zoom int, opts ...mapview.ViewOption) error
	AddMarker(ctx context.Context, m types.Marker) error
	OnClick(h mapview.ClickHandler)
	Click(ctx context.Context, coords model.Coordinates) error
	Reset(ctx context.Context)
	Snapshot() mapview.View
}

// View is the form, list and alert surface.
type View interface {
	ShowForm(ctx context.Context)
	HideForm(ctx context.Context)
	ToggleKind(ctx context.Context, kind model.Kind)
	AppendRow(ctx context.Context, row types.Row)
	Alert(ctx context.Context, msg string)
	ClearAlert(ctx context.Context)
	Reset(ctx context.Context)
	Snapshot() view.Snapshot
}

// Service owns one workout session. Every state change runs on a single
// event loop; callers block until their change has been applied.
type Service struct {
	lifeMu  sync.Mutex
	started bool

	// mu guards the fields below for readers outside the loop.
	mu       sync.RWMutex
	state    State
	pending  *model.Coordinates
	workouts []model.Workout
	gen      uint64

	store   repository.Store
	mapView Map
	view    View
	locator geolocation.Locator
	factory *model.Factory
	deduper dedupe.Deduper

	queue *eventqueue.InMemoryQueue
	loop  *eventloop.Loop

	zoom       int
	queueSize  int
	dedupeSize int

	logger logger.Logger
}

// New constructs a Service. Adapters that are not supplied default to
// in-memory ones and a locator fixed on London.
func New(opts ...Option) *Service {
	s := &Service{
		zoom:       defaultZoom,
		queueSize:  defaultQueueSize,
		dedupeSize: defaultDedupeSize,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil {
		s.store = repository.NewBlobStore(repository.NewMemoryBlob())
	}
	if s.mapView == nil {
		s.mapView = mapview.NewCanvas()
	}
	if s.view == nil {
		s.view = view.NewPanel()
	}
	if s.locator == nil {
		s.locator = geolocation.NewFixed(model.Coordinates{Lat: 51.505, Lng: -0.09})
	}
	if s.factory == nil {
		s.factory = model.NewFactory()
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	return s
}

// Start launches the event loop and runs the startup sequence: locate the
// user, prepare the map (or degrade to list-only) and replay stored
// workouts. Calling Start on a started service is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.lifeMu.Lock()
	if s.started {
		s.lifeMu.Unlock()
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("session")
	}

	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.loop = eventloop.NewLoop(s.queue,
		eventloop.WithName("session-loop"),
		eventloop.WithLogger(s.logger.Named("loop")),
	)
	go s.loop.Run(context.Background())
	s.started = true
	s.lifeMu.Unlock()

	s.logger.Info(ctx, "session starting",
		logger.Int("queueSize", s.queueSize),
		logger.Int("zoom", s.zoom),
	)
	return s.startup(ctx)
}

// Stop closes the queue and waits for queued tasks to drain.
func (s *Service) Stop() {
	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()

	if !s.started {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), loopShutdownTimeout)
	defer cancel()

	_ = s.queue.Close()
	select {
	case <-s.loop.Done():
	case <-ctx.Done():
		_ = s.loop.Shutdown(ctx)
	}

	s.started = false
	s.logger.Info(ctx, "session stopped")
}

type loopKey struct{}

// Task claim states. A queued task runs only if it moves from queued to
// running before its caller gives up and moves it to abandoned.
const (
	taskQueued int32 = iota
	taskRunning
	taskAbandoned
)

// dispatch runs fn on the event loop and waits for its result. Calls made
// from inside a loop task run inline. Once fn has started the caller always
// waits for it, so a canceled caller never misses an applied change.
func (s *Service) dispatch(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	if ctx.Value(loopKey{}) != nil {
		return fn(ctx)
	}

	s.lifeMu.Lock()
	started, q, loop := s.started, s.queue, s.loop
	s.lifeMu.Unlock()
	if !started {
		return ErrNotStarted
	}

	var claim atomic.Int32
	done := make(chan error, 1)
	inner := context.WithValue(ctx, loopKey{}, name)
	task := eventqueue.Task{Name: name, Run: func() {
		if ctx.Err() != nil || !claim.CompareAndSwap(taskQueued, taskRunning) {
			claim.Store(taskAbandoned)
			done <- ctx.Err()
			return
		}
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("%s: panic: %v", name, r)
				panic(r)
			}
		}()
		done <- fn(inner)
	}}

	if err := q.Enqueue(ctx, task); err != nil {
		switch {
		case errors.Is(err, eventqueue.ErrFull):
			return ErrBusy
		case errors.Is(err, eventqueue.ErrClosed):
			return ErrStopped
		}
		return err
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		if claim.CompareAndSwap(taskQueued, taskAbandoned) || claim.Load() == taskAbandoned {
			return ctx.Err()
		}
		return <-done
	case <-loop.Done():
		select {
		case err := <-done:
			return err
		default:
			return ErrStopped
		}
	}
}

// setState must run on the loop.
func (s *Service) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	metrics.UpdateControllerState(st.String())
}

// startup runs outside the loop so the locator can block without stalling it.
func (s *Service) startup(ctx context.Context) error {
	var gen uint64
	err := s.dispatch(ctx, "await_location", func(ctx context.Context) error {
		s.mu.Lock()
		s.gen++
		gen = s.gen
		s.mu.Unlock()
		s.setState(AwaitingLocation)
		return nil
	})
	if err != nil {
		return err
	}

	coords, locErr := s.locator.Locate(ctx)
	if locErr != nil && ctx.Err() != nil {
		return ctx.Err()
	}

	return s.dispatch(ctx, "location_resolved", func(ctx context.Context) error {
		s.mu.RLock()
		current := s.gen
		s.mu.RUnlock()
		if current != gen {
			return ErrSuperseded
		}

		if locErr != nil {
			s.degrade(ctx, locErr)
		} else if err := s.prepareMap(ctx, coords); err != nil {
			s.degrade(ctx, err)
		}
		s.replay(ctx)
		return nil
	})
}

func (s *Service) prepareMap(ctx context.Context, coords model.Coordinates) error {
	if err := s.mapView.SetView(ctx, coords, s.zoom); err != nil {
		return err
	}
	s.mapView.OnClick(s.handleClick)
	s.setState(MapReady)
	s.logger.Info(ctx, "map ready",
		logger.Float64("lat", coords.Lat),
		logger.Float64("lng", coords.Lng),
	)
	return nil
}

func (s *Service) degrade(ctx context.Context, cause error) {
	metrics.RecordGeolocationFailure()
	s.logger.Warn(ctx, "geolocation failed, continuing without map", logger.Error(cause))
	s.view.Alert(ctx, AlertLocation)
	s.setState(Degraded)
}

// replay renders stored workouts once. It never writes to the store.
func (s *Service) replay(ctx context.Context) {
	stored, err := s.store.Load(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrCorrupt) {
			s.logger.Warn(ctx, "stored workouts unreadable, starting empty", logger.Error(err))
		} else {
			s.logger.Error(ctx, "loading workouts failed, starting empty", logger.Error(err))
		}
		stored = nil
	}

	s.mu.Lock()
	s.workouts = stored
	state := s.state
	s.mu.Unlock()

	for _, w := range stored {
		s.render(ctx, w, state.mapReady())
	}

	metrics.RecordWorkoutsReplayed(len(stored))
	metrics.UpdateSessionWorkouts(len(stored))
	s.logger.Info(ctx, "session restored",
		logger.Int("workouts", len(stored)),
		logger.String("state", state.String()),
	)
}

func (s *Service) render(ctx context.Context, w model.Workout, withMarker bool) {
	if withMarker {
		marker := types.Marker{WorkoutID: w.ID, Coords: w.Coords, Popup: types.PopupFor(w)}
		if err := s.mapView.AddMarker(ctx, marker); err != nil {
			s.logger.Warn(ctx, "adding marker failed",
				logger.String("workoutID", w.ID),
				logger.Error(err),
			)
		}
	}
	s.view.AppendRow(ctx, types.RowFor(w))
}
