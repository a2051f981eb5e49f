// Package app contains the application setup for the store service.
package app

import (
	"log/slog"
	"net/http"

	"github.com/abgdnv/store-api/internal/config"
	"github.com/abgdnv/store-api/internal/metrics"
	"github.com/abgdnv/store-api/internal/service"
	"github.com/abgdnv/store-api/internal/store"
	"github.com/abgdnv/store-api/internal/transport/rest"
	"github.com/abgdnv/store-api/pkg/server"
	"github.com/go-chi/chi/v5"
)

type Dependencies struct {
	StoreService service.StoreService
	Metrics      *metrics.Metrics
	Logger       *slog.Logger
}

// SetupDependencies wires the store, service and metrics together.
func SetupDependencies(logger *slog.Logger) *Dependencies {
	sService := service.NewService(store.NewMemoryStore())

	return &Dependencies{
		StoreService: sService,
		Metrics:      metrics.New(sService),
		Logger:       logger,
	}
}

// SetupHttpHandler initializes the HTTP routes for the store service.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	mux.Use(deps.Metrics.Instrument)
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes for the store service.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	storeHandler := rest.NewHandler(deps.StoreService, deps.Logger)
	storeHandler.RegisterRoutes(mux)
	mux.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
}

// SetupHttpServer creates and configures an HTTP server for the store service.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux)
}
