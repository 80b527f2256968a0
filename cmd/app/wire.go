//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/safetravels/internal/bootstrap"
	"github.com/yanqian/safetravels/internal/domain/auth"
	"github.com/yanqian/safetravels/internal/domain/proximity"
	"github.com/yanqian/safetravels/internal/domain/risk"
	"github.com/yanqian/safetravels/internal/domain/route"
	"github.com/yanqian/safetravels/internal/domain/stops"
	"github.com/yanqian/safetravels/internal/infra/catalog"
	"github.com/yanqian/safetravels/internal/infra/config"
	httpiface "github.com/yanqian/safetravels/internal/interface/http"
	mcpiface "github.com/yanqian/safetravels/internal/interface/mcp"
	"github.com/yanqian/safetravels/pkg/logger"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		provideTelemetry,
		provideAuthConfig,
		provideStopsConfig,
		provideRouteConfig,
		provideMCPConfig,
		provideCatalogStore,
		provideCatalogWatcher,
		providePlacesSearcher,
		provideAvailability,
		provideStopLocator,
		provideRouteCache,
		risk.DefaultTable,
		risk.NewScorer,
		risk.NewService,
		route.NewScanner,
		route.NewService,
		stops.NewService,
		proximity.NewService,
		auth.NewService,
		wire.Bind(new(stops.CatalogProvider), new(*catalog.Store)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		mcpiface.New,
		bootstrap.NewServices,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
