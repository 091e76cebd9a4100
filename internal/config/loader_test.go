package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/pinlog/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

var configEnvVars = []string{
	"PINLOG_CONFIG", "PINLOG_ADDR", "PINLOG_STORE", "PINLOG_STORE_KEY", "PINLOG_MAP_ZOOM",
	"PINLOG_HOME_LAT", "PINLOG_HOME_LNG", "PINLOG_GEOLOCATION", "PINLOG_QUEUE_SIZE", "PINLOG_LOG_LEVEL",
}

func clearConfigEnvVars() {
	for _, name := range configEnvVars {
		_ = os.Unsetenv(name)
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pinlog.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load the defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.Store, convey.ShouldEqual, config.StoreFile)
				convey.So(cfg.MapZoom, convey.ShouldEqual, 13)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("PINLOG_ADDR", ":8080")
			_ = os.Setenv("PINLOG_STORE", "memory")
			_ = os.Setenv("PINLOG_HOME_LAT", "40.7")
			_ = os.Setenv("PINLOG_HOME_LNG", "-74.0")
			_ = os.Setenv("PINLOG_MAP_ZOOM", "15")

			cfg, err := config.Load(ctx)

			convey.Convey("Then env values override the defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.Store, convey.ShouldEqual, config.StoreMemory)
				convey.So(cfg.HomeLat, convey.ShouldEqual, 40.7)
				convey.So(cfg.HomeLng, convey.ShouldEqual, -74.0)
				convey.So(cfg.MapZoom, convey.ShouldEqual, 15)
			})
		})

		convey.Convey("When loading config with a YAML file and env", func() {
			path := writeConfigFile(t, `
addr: ":9090"
store: sqlite
sqlite_path: /tmp/pinlog-test.db
queue_size: 8
geolocation: "off"
`)
			_ = os.Setenv("PINLOG_CONFIG", path)
			_ = os.Setenv("PINLOG_QUEUE_SIZE", "16")

			cfg, err := config.Load(ctx)

			convey.Convey("Then the file applies and env wins over it", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.Store, convey.ShouldEqual, config.StoreSQLite)
				convey.So(cfg.SQLitePath, convey.ShouldEqual, "/tmp/pinlog-test.db")
				convey.So(cfg.Geolocation, convey.ShouldEqual, config.GeolocationOff)
				convey.So(cfg.QueueSize, convey.ShouldEqual, 16)
				convey.So(cfg.StoreKey, convey.ShouldEqual, "workouts")
			})
		})

		convey.Convey("When the YAML file is malformed", func() {
			_ = os.Setenv("PINLOG_CONFIG", writeConfigFile(t, `invalid: yaml: content: [`))

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the YAML file does not exist", func() {
			_ = os.Setenv("PINLOG_CONFIG", "/non/existent/pinlog.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the merged config is invalid", func() {
			_ = os.Setenv("PINLOG_CONFIG", writeConfigFile(t, `addr: ""`))

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
			})
		})

		convey.Convey("When a numeric env value is not a number", func() {
			_ = os.Setenv("PINLOG_QUEUE_SIZE", "lots")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}
