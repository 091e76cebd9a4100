package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/pinlog/internal/adapters/geolocation"
	"github.com/okian/pinlog/internal/config"
	"github.com/okian/pinlog/internal/domain/model"
	"github.com/okian/pinlog/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestNewStore(t *testing.T) {
	convey.Convey("Given each configured backend", t, func() {
		ctx := context.Background()
		mr := miniredis.RunT(t)

		backends := []struct {
			name      string
			configure func(*config.Config)
		}{
			{config.StoreMemory, func(*config.Config) {}},
			{config.StoreFile, func(c *config.Config) { c.DataDir = t.TempDir() }},
			{config.StoreSQLite, func(c *config.Config) { c.SQLitePath = filepath.Join(t.TempDir(), "pinlog.db") }},
			{config.StoreRedis, func(c *config.Config) { c.RedisAddr = mr.Addr() }},
		}

		for _, b := range backends {
			convey.Convey("Then the "+b.name+" store round-trips an empty session", func() {
				cfg := config.New(ctx)
				cfg.Store = b.name
				b.configure(cfg)

				store, closeFn, err := newStore(ctx, cfg)
				convey.So(err, convey.ShouldBeNil)
				defer closeFn()

				convey.So(store.Save(ctx, []model.Workout{}), convey.ShouldBeNil)
				got, err := store.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(got, convey.ShouldBeEmpty)
			})
		}

		convey.Convey("Then an unknown backend is rejected", func() {
			cfg := config.New(ctx)
			cfg.Store = "etcd"
			_, _, err := newStore(ctx, cfg)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("Then an unreachable redis is reported", func() {
			cfg := config.New(ctx)
			cfg.Store = config.StoreRedis
			cfg.RedisAddr = "127.0.0.1:1"
			_, _, err := newStore(ctx, cfg)
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestNewLocator(t *testing.T) {
	convey.Convey("Given the geolocation setting", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("fixed answers with the home coordinates", func() {
			got, err := newLocator(cfg).Locate(context.Background())
			convey.So(err, convey.ShouldBeNil)
			convey.So(got, convey.ShouldResemble, model.Coordinates{Lat: cfg.HomeLat, Lng: cfg.HomeLng})
		})

		convey.Convey("off is unavailable", func() {
			cfg.Geolocation = config.GeolocationOff
			_, err := newLocator(cfg).Locate(context.Background())
			convey.So(errors.Is(err, geolocation.ErrUnavailable), convey.ShouldBeTrue)
		})
	})
}

func TestNewMux(t *testing.T) {
	convey.Convey("Given the assembled application", t, func() {
		ctx := context.Background()
		cfg := config.New(ctx)
		cfg.Store = config.StoreMemory

		store, closeFn, err := newStore(ctx, cfg)
		convey.So(err, convey.ShouldBeNil)
		defer closeFn()

		svc := newService(cfg, store, logger.Get())
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		mux := newMux(ctx, svc)

		convey.Convey("Then every surface is routed", func() {
			for _, path := range []string{"/", "/healthz", "/metrics", "/openapi.yaml", "/api-docs", "/map", "/session", "/workouts"} {
				req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			}
		})

		convey.Convey("Then the map uses the configured tiles", func() {
			convey.So(svc.Map().TileURL, convey.ShouldEqual, cfg.TileURL)
			convey.So(svc.Map().Zoom, convey.ShouldEqual, cfg.MapZoom)
		})

		convey.Convey("Then a full click and submit works end to end", func() {
			req := httptest.NewRequest(http.MethodPost, "/map/click", strings.NewReader(`{"lat":51.5,"lng":-0.1}`))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)

			req = httptest.NewRequest(http.MethodPost, "/workouts", strings.NewReader(`{"type":"cycling","distance":"20","duration":"60","elevation":"150"}`))
			w = httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			convey.So(w.Code, convey.ShouldEqual, http.StatusCreated)

			saved, err := store.Load(ctx)
			convey.So(err, convey.ShouldBeNil)
			convey.So(saved, convey.ShouldHaveLength, 1)
		})
	})
}

func TestRun(t *testing.T) {
	convey.Convey("Given a run with a cancellable context", t, func() {
		cfg := config.New(context.Background())
		cfg.Store = config.StoreMemory
		cfg.Addr = "127.0.0.1:0"

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- run(ctx, cfg, logger.Get()) }()

		convey.Convey("Then cancelling shuts it down cleanly", func() {
			time.Sleep(50 * time.Millisecond)
			cancel()
			select {
			case err := <-done:
				convey.So(err, convey.ShouldBeNil)
			case <-time.After(5 * time.Second):
				t.Fatal("run did not return after cancel")
			}
		})
	})
}
