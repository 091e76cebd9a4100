package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/okian/pinlog/internal/adapters/geolocation"
	"github.com/okian/pinlog/internal/adapters/http/api"
	"github.com/okian/pinlog/internal/adapters/http/site"
	"github.com/okian/pinlog/internal/adapters/http/swagger"
	"github.com/okian/pinlog/internal/adapters/mapview"
	"github.com/okian/pinlog/internal/adapters/repository"
	app "github.com/okian/pinlog/internal/app"
	"github.com/okian/pinlog/internal/config"
	"github.com/okian/pinlog/internal/domain/model"
	"github.com/okian/pinlog/pkg/logger"
)

// newStore opens the configured substrate. The returned func releases it.
func newStore(ctx context.Context, cfg *config.Config) (*repository.BlobStore, func(), error) {
	var (
		blob    repository.Blob
		closeFn = func() {}
	)
	switch cfg.Store {
	case config.StoreMemory:
		blob = repository.NewMemoryBlob()
	case config.StoreFile:
		b, err := repository.NewFileBlob(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		blob = b
	case config.StoreSQLite:
		b, err := repository.OpenSQLiteBlob(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		blob, closeFn = b, func() { _ = b.Close() }
	case config.StoreRedis:
		client := repository.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if client == nil {
			return nil, nil, fmt.Errorf("%w: redis_addr is empty", config.ErrInvalidConfig)
		}
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("connecting to redis %s: %w", cfg.RedisAddr, err)
		}
		blob, closeFn = repository.NewRedisBlob(client, cfg.RedisPrefix), func() { _ = client.Close() }
	default:
		return nil, nil, fmt.Errorf("%w: unknown store %q", config.ErrInvalidConfig, cfg.Store)
	}
	return repository.NewBlobStore(blob, repository.WithKey(cfg.StoreKey)), closeFn, nil
}

func newLocator(cfg *config.Config) geolocation.Locator {
	if cfg.Geolocation == config.GeolocationOff {
		return geolocation.Unavailable{}
	}
	return geolocation.NewFixed(model.Coordinates{Lat: cfg.HomeLat, Lng: cfg.HomeLng})
}

func newService(cfg *config.Config, store repository.Store, log logger.Logger) *app.Service {
	return app.New(
		app.WithLogger(log.Named("session")),
		app.WithStore(store),
		app.WithMap(mapview.NewCanvas(mapview.WithTiles(cfg.TileURL, cfg.TileAttribution))),
		app.WithLocator(newLocator(cfg)),
		app.WithZoom(cfg.MapZoom),
		app.WithQueueSize(cfg.QueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
	)
}

func newMux(ctx context.Context, svc *app.Service) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc).Register(ctx, mux)
	site.Register(ctx, mux)
	return mux
}
