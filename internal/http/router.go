package http

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"docinsight/internal/handlers"
	"docinsight/internal/insights"
	"docinsight/internal/storage"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Engine         insights.Engine
	Documents      storage.DocumentStore
	DB             *sql.DB
	VectorStore    handlers.CollectionChecker
	CollectionName string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)

	insightsHandler := handlers.NewInsightsHandler(deps.Engine)
	documentsHandler := handlers.NewDocumentsHandler(deps.Documents)
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.VectorStore, deps.CollectionName)

	r.Route("/api/v1", func(r chi.Router) {
		r.Method(http.MethodPost, "/insights", insightsHandler)
		r.Method(http.MethodPost, "/documents", documentsHandler)
		r.Method(http.MethodGet, "/health", healthHandler)
	})

	return r
}
