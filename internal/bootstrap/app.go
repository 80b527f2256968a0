package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/yanqian/safetravels/internal/domain/auth"
	"github.com/yanqian/safetravels/internal/domain/proximity"
	"github.com/yanqian/safetravels/internal/domain/risk"
	"github.com/yanqian/safetravels/internal/domain/route"
	"github.com/yanqian/safetravels/internal/domain/stops"
	"github.com/yanqian/safetravels/internal/infra/catalog"
	"github.com/yanqian/safetravels/internal/infra/config"
	mcpiface "github.com/yanqian/safetravels/internal/interface/mcp"
)

// Services exposes the domain services to one-shot CLI commands.
type Services struct {
	Risk      risk.Service
	Route     route.Service
	Stops     stops.Service
	Proximity proximity.Service
	Auth      auth.Service
}

// NewServices groups the domain services.
func NewServices(riskSvc risk.Service, routeSvc route.Service, stopsSvc stops.Service, proximitySvc proximity.Service, authSvc auth.Service) Services {
	return Services{Risk: riskSvc, Route: routeSvc, Stops: stopsSvc, Proximity: proximitySvc, Auth: authSvc}
}

// App encapsulates the server lifecycles.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	server   *http.Server
	tools    *mcpiface.Server
	watcher  *catalog.Watcher
	services Services
}

// NewApp is used by Wire to build the runnable app. watcher may be nil.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server, tools *mcpiface.Server, watcher *catalog.Watcher, services Services) *App {
	return &App{
		cfg:      cfg,
		logger:   logger.With("component", "bootstrap"),
		server:   server,
		tools:    tools,
		watcher:  watcher,
		services: services,
	}
}

// Services returns the wired domain services.
func (a *App) Services() Services {
	return a.services
}

// Run starts the HTTP server and blocks until shutdown.
func (a *App) Run(ctx context.Context) error {
	a.startWatcher(ctx)
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("http server starting", "address", a.cfg.HTTP.Address)
		if err := a.server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.logger.Info("shutdown signal received")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// RunMCP serves the tool surface over stdio until the client disconnects.
func (a *App) RunMCP(ctx context.Context) error {
	a.startWatcher(ctx)
	a.logger.Info("mcp server starting", "transport", "stdio")
	err := a.tools.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *App) startWatcher(ctx context.Context) {
	if a.watcher == nil {
		return
	}
	go func() {
		if err := a.watcher.Run(ctx); err != nil {
			a.logger.Error("catalog watcher stopped", "error", err)
		}
	}()
}
