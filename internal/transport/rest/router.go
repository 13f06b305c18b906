package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GraceHermine/GenerateurDocument/internal/config"
	"github.com/GraceHermine/GenerateurDocument/internal/transport/middleware"
)

// RouterDeps is the fixed set of handlers and middleware the HTTP surface
// is built from. Nil optional fields disable the matching feature.
type RouterDeps struct {
	Logger    *slog.Logger
	Health    *HealthHandler
	Templates *TemplateHandler
	Documents *DocumentHandler
	Auth      middleware.Middleware
	CORS      config.CORSConfig

	// Optional.
	HTTPMetrics    middleware.Middleware
	MetricsPath    string
	MetricsHandler http.Handler
	GenerateLimit  middleware.Middleware
}

// NewRouter builds the HTTP handler.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Chain(
		middleware.Recovery(deps.Logger),
		middleware.RequestID,
		middleware.ClientIP,
		middleware.Logger(deps.Logger),
		deps.HTTPMetrics,
		middleware.CORS(deps.CORS),
		deps.Auth,
	))

	r.Get("/live", deps.Health.Live)
	r.Get("/ready", deps.Health.Ready)
	r.Get("/health", deps.Health.Health)
	if deps.MetricsHandler != nil && deps.MetricsPath != "" {
		r.Method(http.MethodGet, deps.MetricsPath, deps.MetricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/templates", func(r chi.Router) {
			r.Get("/", deps.Templates.List)
			r.Post("/", deps.Templates.Create)
			r.Get("/{id}", deps.Templates.Get)
			r.Get("/{id}/schema", deps.Templates.Schema)
			r.Post("/{id}/versions", deps.Templates.CreateVersion)
			r.Post("/{id}/versions/{number}/activate", deps.Templates.Activate)
		})
		r.Get("/versions/{id}/forms", deps.Templates.Forms)
		r.Patch("/questions/{id}", deps.Templates.UpdateQuestion)

		r.Route("/documents", func(r chi.Router) {
			r.Method(http.MethodPost, "/", middleware.Chain(deps.GenerateLimit)(http.HandlerFunc(deps.Documents.Generate)))
			r.Get("/", deps.Documents.List)
			r.Get("/{id}", deps.Documents.Status)
			r.Get("/{id}/download", deps.Documents.Download)
			r.Post("/{id}/retry", deps.Documents.Retry)
			r.Delete("/{id}", deps.Documents.Delete)
			r.Get("/{id}/audit", deps.Documents.History)
		})
	})

	return r
}
