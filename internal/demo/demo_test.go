package demo_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/pinlog/internal/adapters/geolocation"
	"github.com/okian/pinlog/internal/adapters/http/api"
	service "github.com/okian/pinlog/internal/app"
	"github.com/okian/pinlog/internal/demo"
	"github.com/okian/pinlog/internal/domain/model"
	"github.com/okian/pinlog/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func newServer(t *testing.T, locator geolocation.Locator) (*httptest.Server, *service.Service) {
	t.Helper()
	svc := service.New(service.WithLocator(locator))
	if err := svc.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(svc.Stop)

	mux := http.NewServeMux()
	api.NewServer(svc, svc).Register(context.Background(), mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, svc
}

func TestGenerate(t *testing.T) {
	Convey("Given a seeded config", t, func() {
		cfg := &demo.Config{Workouts: 10, Invalid: 4, Seed: 7}
		plans := demo.Generate(cfg, 51.5, -0.09)

		Convey("valid plans come first with unique keys", func() {
			So(len(plans), ShouldEqual, 14)
			keys := make(map[string]struct{}, len(plans))
			for i, p := range plans {
				So(p.Valid, ShouldEqual, i < 10)
				keys[p.Key] = struct{}{}
			}
			So(len(keys), ShouldEqual, 14)
		})

		Convey("valid plans carry only their kind's extra field", func() {
			for _, p := range plans[:10] {
				switch p.Submission.Type {
				case "running":
					So(p.Submission.Cadence, ShouldNotBeEmpty)
					So(p.Submission.Elevation, ShouldBeEmpty)
				case "cycling":
					So(p.Submission.Elevation, ShouldNotBeEmpty)
					So(p.Submission.Cadence, ShouldBeEmpty)
				default:
					t.Fatalf("unexpected type %q", p.Submission.Type)
				}
			}
		})

		Convey("the same seed yields the same submissions", func() {
			again := demo.Generate(cfg, 51.5, -0.09)
			for i := range plans {
				So(again[i].Submission, ShouldResemble, plans[i].Submission)
				So(again[i].Lat, ShouldEqual, plans[i].Lat)
			}
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a running pinlog server", t, func() {
		srv, svc := newServer(t, geolocation.NewFixed(model.Coordinates{Lat: 40.7128, Lng: -74.0060}))
		cfg := &demo.Config{
			BaseURL:  srv.URL,
			Workouts: 6,
			Invalid:  2,
			Workers:  1,
			Timeout:  5 * time.Second,
			Seed:     42,
		}

		Convey("the scripted session logs every valid workout", func() {
			stats, err := demo.Run(context.Background(), cfg)
			So(err, ShouldBeNil)
			So(stats.Planned, ShouldEqual, 8)
			So(stats.Created, ShouldEqual, 6)
			So(stats.Rejected, ShouldEqual, 2)
			So(stats.Duplicates, ShouldEqual, 1)
			So(stats.Listed, ShouldEqual, 6)
			So(len(svc.Workouts(context.Background())), ShouldEqual, 6)
		})

		Convey("reset starts from an empty list", func() {
			_, err := demo.Run(context.Background(), cfg)
			So(err, ShouldBeNil)

			cfg.Reset = true
			stats, err := demo.Run(context.Background(), cfg)
			So(err, ShouldBeNil)
			So(stats.Listed, ShouldEqual, 6)
		})
	})

	Convey("Given a server without geolocation", t, func() {
		srv, _ := newServer(t, geolocation.Unavailable{})
		cfg := &demo.Config{BaseURL: srv.URL, Workouts: 1, Timeout: time.Second}

		Convey("the run stops before submitting", func() {
			stats, err := demo.Run(context.Background(), cfg)
			So(err, ShouldNotBeNil)
			So(stats.Created, ShouldEqual, 0)
		})
	})

	Convey("Given no server", t, func() {
		cfg := &demo.Config{BaseURL: "http://127.0.0.1:1", Timeout: time.Second}

		Convey("the health check fails", func() {
			_, err := demo.Run(context.Background(), cfg)
			So(err, ShouldNotBeNil)
		})
	})
}
