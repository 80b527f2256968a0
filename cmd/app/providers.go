package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/safetravels/internal/domain/auth"
	"github.com/yanqian/safetravels/internal/domain/route"
	"github.com/yanqian/safetravels/internal/domain/stops"
	"github.com/yanqian/safetravels/internal/infra/catalog"
	"github.com/yanqian/safetravels/internal/infra/config"
	"github.com/yanqian/safetravels/internal/infra/places/google"
	"github.com/yanqian/safetravels/internal/infra/realtime"
	"github.com/yanqian/safetravels/internal/infra/routecache"
	"github.com/yanqian/safetravels/internal/infra/telemetry"
	mcpiface "github.com/yanqian/safetravels/internal/interface/mcp"
	"github.com/yanqian/safetravels/pkg/metrics"
)

const catalogLoadTimeout = 15 * time.Second

func provideTelemetry(cfg *config.Config, logger *slog.Logger) (*metrics.Recorder, func(), error) {
	recorder, shutdown, err := telemetry.Setup(telemetry.Options{
		Enabled:      cfg.Telemetry.Enabled,
		ServiceName:  cfg.Telemetry.ServiceName,
		StdoutTraces: cfg.Telemetry.StdoutTraces,
	}, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			logger.Error("telemetry shutdown failed", "error", err)
		}
	}
	return recorder, cleanup, nil
}

func provideAuthConfig(cfg *config.Config) auth.Config {
	return auth.Config{
		Secret:          cfg.Auth.Secret,
		Issuer:          cfg.Auth.Issuer,
		TokenTTL:        cfg.Auth.TokenTTL,
		RefreshTokenTTL: cfg.Auth.RefreshTokenTTL,
	}
}

func provideStopsConfig(cfg *config.Config) stops.Config {
	return stops.Config{
		DefaultRadiusMiles: cfg.Stops.DefaultRadiusMiles,
		DefaultLimit:       cfg.Stops.DefaultLimit,
		FallbackThreshold:  cfg.Stops.FallbackThreshold,
		FallbackTimeout:    cfg.Places.Timeout,
		FallbackKeyword:    cfg.Places.Keyword,
	}
}

func provideRouteConfig(cfg *config.Config) route.Config {
	return route.Config{
		CacheTTL:       cfg.RouteCache.TTL,
		SampleInterval: cfg.Route.SampleIntervalMiles,
	}
}

func provideMCPConfig(cfg *config.Config) mcpiface.Config {
	return mcpiface.Config{Name: cfg.MCP.Name, Version: cfg.MCP.Version}
}

// provideCatalogStore loads the first available catalog. A failure leaves
// the store empty so the service still starts.
func provideCatalogStore(cfg *config.Config, logger *slog.Logger) *catalog.Store {
	store := catalog.NewStore(nil, logger)

	var sources []catalog.Source
	if cfg.Catalog.Object.Enabled {
		src, err := catalog.NewObjectSource(catalog.ObjectConfig{
			Endpoint:  cfg.Catalog.Object.Endpoint,
			Bucket:    cfg.Catalog.Object.Bucket,
			Key:       cfg.Catalog.Object.Key,
			AccessKey: cfg.Catalog.Object.AccessKey,
			SecretKey: cfg.Catalog.Object.SecretKey,
			Region:    cfg.Catalog.Object.Region,
		})
		if err != nil {
			logger.Error("invalid catalog object storage, skipping", "error", err)
		} else {
			sources = append(sources, src)
		}
	}
	if path := strings.TrimSpace(cfg.Catalog.Path); path != "" {
		sources = append(sources, catalog.NewFileSource(path))
	}
	if len(sources) == 0 {
		logger.Warn("no catalog source configured, starting with an empty catalog")
		return store
	}

	ctx, cancel := context.WithTimeout(context.Background(), catalogLoadTimeout)
	defer cancel()
	if err := store.LoadFirst(ctx, sources...); err != nil {
		logger.Error("catalog load failed, starting with an empty catalog", "error", err)
	}
	return store
}

func provideCatalogWatcher(cfg *config.Config, store *catalog.Store, logger *slog.Logger) *catalog.Watcher {
	path := strings.TrimSpace(cfg.Catalog.Path)
	if !cfg.Catalog.Watch || path == "" {
		return nil
	}
	watcher, err := catalog.NewWatcher(store, catalog.NewFileSource(path), logger)
	if err != nil {
		logger.Error("catalog hot reload disabled", "error", err)
		return nil
	}
	logger.Info("catalog hot reload enabled", "path", path)
	return watcher
}

func providePlacesSearcher(cfg *config.Config, logger *slog.Logger) stops.PlacesSearcher {
	if strings.TrimSpace(cfg.Places.APIKey) == "" {
		logger.Info("google places api key not set, places fallback disabled")
		return nil
	}
	client := google.NewClient(google.Config{
		APIKey:  cfg.Places.APIKey,
		BaseURL: cfg.Places.BaseURL,
		Timeout: cfg.Places.Timeout,
	})
	return google.NewBreakerSearcher(client, google.BreakerConfig{
		MaxFailures: cfg.Places.Breaker.MaxFailures,
		OpenTimeout: cfg.Places.Breaker.OpenTimeout,
		Interval:    cfg.Places.Breaker.Interval,
	}, logger)
}

func provideAvailability(cfg *config.Config, logger *slog.Logger) stops.AvailabilityProvider {
	if !cfg.Realtime.Enabled {
		return nil
	}
	return realtime.NewAggregator(realtime.Options{Simulate: cfg.Realtime.Simulate}, logger)
}

func provideStopLocator(svc stops.Service) route.StopLocator {
	return svc
}

func provideRouteCache(cfg *config.Config, logger *slog.Logger) (route.Cache, func()) {
	noop := func() {}
	if cfg.RouteCache.Valkey.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
			return routecache.NewMemoryStore(0), noop
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
			return routecache.NewMemoryStore(0), noop
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory cache", "error", err)
			client.Close()
		} else {
			logger.Info("route valkey cache enabled", "addr", cfg.RouteCache.Valkey.Addr)
			return routecache.NewValkeyStore(client, cfg.RouteCache.Valkey.Prefix), client.Close
		}
	}
	return routecache.NewMemoryStore(0), noop
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.RouteCache.Valkey.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.RouteCache.Valkey.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.RouteCache.Valkey.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}
