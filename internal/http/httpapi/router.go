package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"streamoverlay/internal/http/handlers"
	"streamoverlay/internal/infra"
	"streamoverlay/internal/middleware"
)

func NewRouter(app *handlers.App, cfg *infra.Config, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.Logger(logger),
		middleware.Recover(cfg.IsDevelopment()),
		middleware.Metrics,
		middleware.CORS(cfg.CORSOrigins),
	)

	r.NotFound(app.NotFound)
	r.MethodNotAllowed(app.NotFound)

	r.Get("/", app.Root)
	r.Get("/healthz", app.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/openapi.json", app.OpenAPIJSON)
		r.Get("/docs", app.OpenAPIDocs)

		r.Route("/overlays", func(r chi.Router) {
			r.Use(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute))
			r.Get("/", app.OverlaysList)
			r.Post("/", app.OverlaysCreate)
			r.Get("/{id}", app.OverlaysGet)
			r.Put("/{id}", app.OverlaysUpdate)
			r.Delete("/{id}", app.OverlaysDelete)
			r.Patch("/{id}/toggle", app.OverlaysToggle)
		})
	})

	return r
}
