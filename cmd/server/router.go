package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/tahina-randria/finary-icons-platform/internal/api"
	apiMiddleware "github.com/tahina-randria/finary-icons-platform/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	return newRouter(routerDeps{
		generation: app.generation,
		catalog:    app.catalog,
		tasks:      app.taskStore,
		pending:    app.taskRunner.Pending,
		catalogOn:  app.catalog.Configured(),
	}, app.logger)
}

// routerDeps holds what the HTTP surface needs, so routes can be tested
// without building a full application.
type routerDeps struct {
	generation api.GenerationService
	catalog    api.IconCatalog
	tasks      api.TaskStoreStatus
	pending    func() int
	catalogOn  bool
}

func newRouter(deps routerDeps, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware(logger))
	r.Use(apiMiddleware.RequestLogger)

	generationHandler := api.NewGenerationHandler(deps.generation)
	iconHandler := api.NewIconHandler(deps.catalog)
	healthHandler := api.NewHealthHandler(deps.tasks, deps.pending, deps.catalogOn)

	r.Route("/api", func(r chi.Router) {
		r.Post("/generate/youtube", generationHandler.GenerateFromYouTube)
		r.Get("/generate/status/{task_id}", generationHandler.GetStatus)

		r.Get("/icons", iconHandler.ListIcons)
		r.Get("/icons/{id}", iconHandler.GetIcon)
	})

	r.Get("/health", healthHandler.Health)

	return r
}
