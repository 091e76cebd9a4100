package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/pinlog/internal/adapters/geolocation"
	"github.com/okian/pinlog/internal/adapters/mapview"
	"github.com/okian/pinlog/internal/adapters/repository"
	"github.com/okian/pinlog/internal/adapters/view"
	service "github.com/okian/pinlog/internal/app"
	"github.com/okian/pinlog/internal/domain/model"
	"github.com/okian/pinlog/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

var (
	newYork = model.Coordinates{Lat: 40.7128, Lng: -74.0060}
	march14 = time.Date(2024, time.March, 14, 9, 30, 0, 0, time.UTC)
)

type harness struct {
	svc    *service.Service
	blob   *repository.MemoryBlob
	store  *repository.BlobStore
	canvas *mapview.Canvas
	panel  *view.Panel
}

func newHarness(locator geolocation.Locator) *harness {
	h := &harness{
		blob:   repository.NewMemoryBlob(),
		canvas: mapview.NewCanvas(),
		panel:  view.NewPanel(),
	}
	h.store = repository.NewBlobStore(h.blob)
	h.svc = h.build(locator)
	return h
}

func (h *harness) build(locator geolocation.Locator) *service.Service {
	return service.New(
		service.WithStore(h.store),
		service.WithMap(h.canvas),
		service.WithView(h.panel),
		service.WithLocator(locator),
		service.WithFactory(model.NewFactory(model.WithClock(func() time.Time { return march14 }))),
	)
}

func running(distance, duration, cadence string) service.Submission {
	return service.Submission{Kind: "running", Distance: distance, Duration: duration, Cadence: cadence}
}

func cycling(distance, duration, elevation string) service.Submission {
	return service.Submission{Kind: "cycling", Distance: distance, Duration: duration, Elevation: elevation}
}

func TestService_Startup(t *testing.T) {
	Convey("Given a service with a working locator", t, func() {
		ctx := context.Background()
		h := newHarness(geolocation.NewFixed(newYork))
		defer h.svc.Stop()

		Convey("Before Start, operations report ErrNotStarted", func() {
			_, err := h.svc.Submit(ctx, running("5", "25", "170"))
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			So(h.svc.State(), ShouldEqual, service.Uninitialized)
		})

		Convey("Start centres the map and registers the click handler", func() {
			So(h.svc.Start(ctx), ShouldBeNil)
			So(h.svc.State(), ShouldEqual, service.MapReady)

			m := h.svc.Map()
			So(m.Ready, ShouldBeTrue)
			So(m.Center, ShouldResemble, newYork)
			So(m.Zoom, ShouldEqual, 13)
			So(h.svc.Workouts(ctx), ShouldBeEmpty)
		})

		Convey("Start twice is a no-op", func() {
			So(h.svc.Start(ctx), ShouldBeNil)
			So(h.svc.Start(ctx), ShouldBeNil)
			So(h.svc.State(), ShouldEqual, service.MapReady)
		})
	})

	Convey("Given stored workouts", t, func() {
		ctx := context.Background()
		h := newHarness(geolocation.NewFixed(newYork))

		f := model.NewFactory(model.WithClock(func() time.Time { return march14 }))
		run, err := f.Create(model.Running, newYork, 5, 25, 170)
		So(err, ShouldBeNil)
		ride, err := f.Create(model.Cycling, newYork, 20, 60, 300)
		So(err, ShouldBeNil)
		So(h.store.Save(ctx, []model.Workout{run, ride}), ShouldBeNil)
		writes := h.blob.Writes()

		Convey("Startup replays each record once without writing", func() {
			So(h.svc.Start(ctx), ShouldBeNil)
			defer h.svc.Stop()

			So(h.svc.Workouts(ctx), ShouldResemble, []model.Workout{run, ride})
			So(h.svc.Map().Markers, ShouldHaveLength, 2)
			rows := h.svc.Session().View.Rows
			So(rows, ShouldHaveLength, 2)
			So(rows[0].ID, ShouldEqual, ride.ID)
			So(h.blob.Writes(), ShouldEqual, writes)
		})

		Convey("A degraded startup renders rows but no markers", func() {
			svc := h.build(geolocation.Unavailable{})
			So(svc.Start(ctx), ShouldBeNil)
			defer svc.Stop()

			So(svc.State(), ShouldEqual, service.Degraded)
			session := svc.Session()
			So(session.View.LastAlert, ShouldEqual, service.AlertLocation)
			So(session.View.Rows, ShouldHaveLength, 2)
			So(svc.Map().Markers, ShouldBeEmpty)
			So(svc.Map().Ready, ShouldBeFalse)
			So(h.blob.Writes(), ShouldEqual, writes)

			Convey("Map interactions are unavailable", func() {
				So(errors.Is(svc.Click(ctx, newYork), service.ErrMapUnavailable), ShouldBeTrue)
				_, err := svc.Select(ctx, run.ID)
				So(errors.Is(err, service.ErrMapUnavailable), ShouldBeTrue)
			})
		})
	})

	Convey("Given corrupt storage", t, func() {
		ctx := context.Background()
		h := newHarness(geolocation.NewFixed(newYork))
		So(h.blob.Put(ctx, "workouts", []byte(`[{"kind":"Swimming"}]`)), ShouldBeNil)

		Convey("The session starts empty", func() {
			So(h.svc.Start(ctx), ShouldBeNil)
			defer h.svc.Stop()

			So(h.svc.State(), ShouldEqual, service.MapReady)
			So(h.svc.Workouts(ctx), ShouldBeEmpty)
			So(h.svc.Session().View.Rows, ShouldBeEmpty)
		})
	})
}

func TestService_Submit(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		h := newHarness(geolocation.NewFixed(newYork))
		So(h.svc.Start(ctx), ShouldBeNil)
		defer h.svc.Stop()

		Convey("Submitting without a click fails with ErrFormClosed", func() {
			_, err := h.svc.Submit(ctx, running("5", "25", "170"))
			So(errors.Is(err, service.ErrFormClosed), ShouldBeTrue)
		})

		Convey("A click opens the form with pending coordinates", func() {
			So(h.svc.Click(ctx, newYork), ShouldBeNil)
			So(h.svc.State(), ShouldEqual, service.FormOpen)
			p, ok := h.svc.Pending()
			So(ok, ShouldBeTrue)
			So(p, ShouldResemble, newYork)
			So(h.svc.Session().View.Form.Visible, ShouldBeTrue)

			Convey("A second click replaces them", func() {
				other := model.Coordinates{Lat: 40.8, Lng: -73.9}
				So(h.svc.Click(ctx, other), ShouldBeNil)
				p, _ := h.svc.Pending()
				So(p, ShouldResemble, other)
				So(h.svc.State(), ShouldEqual, service.FormOpen)
			})

			Convey("A valid run is created, stored and rendered", func() {
				w, err := h.svc.Submit(ctx, running("5", "25", "170"))
				So(err, ShouldBeNil)
				So(w.Kind, ShouldEqual, model.Running)
				So(w.Coords, ShouldResemble, newYork)
				So(w.Metric().Value, ShouldEqual, 5.0)
				So(w.Title, ShouldEqual, "Running on March 14")

				So(h.svc.State(), ShouldEqual, service.MapReady)
				_, pending := h.svc.Pending()
				So(pending, ShouldBeFalse)

				session := h.svc.Session()
				So(session.View.Form.Visible, ShouldBeFalse)
				So(session.View.Rows, ShouldHaveLength, 1)
				So(session.View.Rows[0].ID, ShouldEqual, w.ID)

				markers := h.svc.Map().Markers
				So(markers, ShouldHaveLength, 1)
				So(markers[0].WorkoutID, ShouldEqual, w.ID)
				So(markers[0].Popup.ClassName, ShouldEqual, "running-popup")

				stored, err := h.store.Load(ctx)
				So(err, ShouldBeNil)
				So(stored, ShouldResemble, []model.Workout{w})
			})

			Convey("A ride with blank elevation counts as zero gain", func() {
				w, err := h.svc.Submit(ctx, cycling("20", "60", ""))
				So(err, ShouldBeNil)
				gain, ok := w.ElevationGain()
				So(ok, ShouldBeTrue)
				So(gain, ShouldEqual, 0.0)
				So(w.Metric().Value, ShouldEqual, 20.0)
			})

			Convey("An unknown kind is ignored silently", func() {
				_, err := h.svc.Submit(ctx, service.Submission{Kind: "swimming", Distance: "1", Duration: "1"})
				So(errors.Is(err, model.ErrUnknownKind), ShouldBeTrue)
				So(h.svc.State(), ShouldEqual, service.FormOpen)
				So(h.svc.Session().View.LastAlert, ShouldBeEmpty)
				So(h.svc.Workouts(ctx), ShouldBeEmpty)
			})

			Convey("Invalid inputs alert and change nothing", func() {
				invalid := []service.Submission{
					running("-1", "25", "170"),
					running("abc", "25", "170"),
					running("5", "0", "170"),
					running("5", "25", "0"),
					running("5", "25", ""),
					running("", "25", "170"),
					cycling("20", "60", "-5"),
					cycling("0x1p3", "60", "10"),
					cycling("20", "Infinity", "10"),
				}
				for _, sub := range invalid {
					_, err := h.svc.Submit(ctx, sub)
					So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
				}

				session := h.svc.Session()
				So(session.State, ShouldEqual, service.FormOpen)
				So(session.View.LastAlert, ShouldEqual, service.AlertInvalid)
				So(session.View.Alerts, ShouldEqual, len(invalid))
				So(session.View.Form.Visible, ShouldBeTrue)
				So(h.svc.Workouts(ctx), ShouldBeEmpty)
				So(h.blob.Writes(), ShouldEqual, 0)

				Convey("and the next valid submission clears the alert", func() {
					_, err := h.svc.Submit(ctx, running(" 5 ", "25", "170"))
					So(err, ShouldBeNil)
					So(h.svc.Session().View.LastAlert, ShouldBeEmpty)
				})
			})
		})
	})
}

func TestService_SelectAndReset(t *testing.T) {
	Convey("Given a session with one workout", t, func() {
		ctx := context.Background()
		h := newHarness(geolocation.NewFixed(model.Coordinates{Lat: 51.5, Lng: -0.09}))
		So(h.svc.Start(ctx), ShouldBeNil)
		defer h.svc.Stop()

		So(h.svc.Click(ctx, newYork), ShouldBeNil)
		w, err := h.svc.Submit(ctx, running("5", "25", "170"))
		So(err, ShouldBeNil)

		Convey("Select pans to the workout", func() {
			got, err := h.svc.Select(ctx, w.ID)
			So(err, ShouldBeNil)
			So(got.ID, ShouldEqual, w.ID)

			m := h.svc.Map()
			So(m.Center, ShouldResemble, newYork)
			So(m.Zoom, ShouldEqual, 13)
			So(m.Animate, ShouldBeTrue)
			So(m.PanSeconds, ShouldEqual, 1.0)
			So(h.svc.State(), ShouldEqual, service.MapReady)
		})

		Convey("Select with an unknown id fails with ErrNotFound", func() {
			_, err := h.svc.Select(ctx, "missing")
			So(errors.Is(err, service.ErrNotFound), ShouldBeTrue)
		})

		Convey("Reset clears storage, list and map, then starts again", func() {
			So(h.svc.Reset(ctx), ShouldBeNil)

			So(h.svc.State(), ShouldEqual, service.MapReady)
			So(h.svc.Workouts(ctx), ShouldBeEmpty)
			So(h.svc.Session().View.Rows, ShouldBeEmpty)
			So(h.svc.Map().Markers, ShouldBeEmpty)

			stored, err := h.store.Load(ctx)
			So(err, ShouldBeNil)
			So(stored, ShouldBeEmpty)

			So(h.svc.Click(ctx, newYork), ShouldBeNil)
			So(h.svc.State(), ShouldEqual, service.FormOpen)
		})

		Convey("ToggleKind switches the form fields", func() {
			So(h.svc.ToggleKind(ctx, "cycling"), ShouldBeNil)
			So(h.svc.Session().View.Form.ShowElevation, ShouldBeTrue)
			So(errors.Is(h.svc.ToggleKind(ctx, "rowing"), model.ErrUnknownKind), ShouldBeTrue)
		})

		Convey("After Stop, operations report ErrNotStarted", func() {
			h.svc.Stop()
			_, err := h.svc.Select(ctx, w.ID)
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		})
	})
}

func TestService_ConcurrentSubmissions(t *testing.T) {
	Convey("Given many clients clicking and submitting at once", t, func() {
		ctx := context.Background()
		h := newHarness(geolocation.NewFixed(newYork))
		So(h.svc.Start(ctx), ShouldBeNil)
		defer h.svc.Stop()

		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			successes int
		)
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				coords := model.Coordinates{Lat: 40 + float64(i)/100, Lng: -74}
				if err := h.svc.Click(ctx, coords); err != nil {
					return
				}
				if _, err := h.svc.Submit(ctx, running(fmt.Sprint(i+1), "30", "160")); err == nil {
					mu.Lock()
					successes++
					mu.Unlock()
				}
			}(i)
		}
		wg.Wait()

		Convey("Every accepted submission is stored and rendered exactly once", func() {
			So(successes, ShouldBeGreaterThan, 0)
			So(h.svc.Workouts(ctx), ShouldHaveLength, successes)
			So(h.svc.Session().View.Rows, ShouldHaveLength, successes)
			So(h.svc.Map().Markers, ShouldHaveLength, successes)

			stored, err := h.store.Load(ctx)
			So(err, ShouldBeNil)
			So(stored, ShouldHaveLength, successes)
		})
	})
}

func TestService_Idempotency(t *testing.T) {
	Convey("Given a service", t, func() {
		ctx := context.Background()
		svc := service.New()

		Convey("A key is reported as seen only on repeat", func() {
			So(svc.SeenAndRecord(ctx, "k1"), ShouldBeFalse)
			So(svc.SeenAndRecord(ctx, "k1"), ShouldBeTrue)
			So(svc.Size(), ShouldEqual, int64(1))

			svc.Unrecord(ctx, "k1")
			So(svc.SeenAndRecord(ctx, "k1"), ShouldBeFalse)
		})

		Convey("Stats reflect the lifecycle", func() {
			So(svc.GetStats()["started"], ShouldEqual, false)
			So(svc.Start(ctx), ShouldBeNil)
			defer svc.Stop()

			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, true)
			So(stats["state"], ShouldEqual, "map_ready")
			So(stats["workouts"], ShouldEqual, 0)
		})
	})
}
