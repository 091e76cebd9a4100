// Package config defines service configuration and its loading.
//
// Values are layered defaults -> optional YAML file -> environment; see Load.
package config

import (
	"context"
	"fmt"
	"math"
	"strings"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// Geolocation modes.
const (
	GeolocationFixed = "fixed"
	GeolocationOff   = "off"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is "text" or "json".
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// Store selects the key-value substrate: memory, file, sqlite or redis.
	Store string `koanf:"store"`
	// StoreKey names the blob holding the session.
	StoreKey string `koanf:"store_key"`
	// DataDir is the directory used by the file store.
	DataDir string `koanf:"data_dir"`
	// SQLitePath is the database file used by the sqlite store.
	SQLitePath string `koanf:"sqlite_path"`

	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
	RedisPrefix   string `koanf:"redis_prefix"`

	// Geolocation is "fixed" (use HomeLat/HomeLng) or "off".
	Geolocation string  `koanf:"geolocation"`
	HomeLat     float64 `koanf:"home_lat"`
	HomeLng     float64 `koanf:"home_lng"`

	// MapZoom is used for the initial view and for recentring on a workout.
	MapZoom         int    `koanf:"map_zoom"`
	TileURL         string `koanf:"tile_url"`
	TileAttribution string `koanf:"tile_attribution"`

	// QueueSize bounds the event loop's pending tasks.
	QueueSize int `koanf:"queue_size"`
	// DedupeSize bounds the remembered submission idempotency keys.
	DedupeSize int `koanf:"dedupe_size"`
}

// New returns a Config populated with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            ":9080",
		Store:           StoreFile,
		StoreKey:        "workouts",
		DataDir:         "data",
		SQLitePath:      "data/pinlog.db",
		RedisAddr:       "localhost:6379",
		RedisPrefix:     "pinlog:",
		Geolocation:     GeolocationFixed,
		HomeLat:         51.505,
		HomeLng:         -0.09,
		MapZoom:         13,
		TileURL:         "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
		TileAttribution: `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`,
		QueueSize:       64,
		DedupeSize:      1024,
	}
}

// Validate reports the first invalid setting wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.StoreKey) == "":
		return fmt.Errorf("%w: store_key must not be empty", ErrInvalidConfig)
	case c.MapZoom < 0 || c.MapZoom > 19:
		return fmt.Errorf("%w: map_zoom must be within [0,19], got %d", ErrInvalidConfig, c.MapZoom)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive, got %d", ErrInvalidConfig, c.QueueSize)
	}

	switch c.Store {
	case StoreMemory:
	case StoreFile:
		if c.DataDir == "" {
			return fmt.Errorf("%w: data_dir is required for the file store", ErrInvalidConfig)
		}
	case StoreSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("%w: sqlite_path is required for the sqlite store", ErrInvalidConfig)
		}
	case StoreRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("%w: redis_addr is required for the redis store", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store %q", ErrInvalidConfig, c.Store)
	}

	switch c.Geolocation {
	case GeolocationOff:
	case GeolocationFixed:
		if math.Abs(c.HomeLat) > 90 || math.Abs(c.HomeLng) > 180 {
			return fmt.Errorf("%w: home coordinate out of range (%v, %v)", ErrInvalidConfig, c.HomeLat, c.HomeLng)
		}
	default:
		return fmt.Errorf("%w: unknown geolocation mode %q", ErrInvalidConfig, c.Geolocation)
	}
	return nil
}
