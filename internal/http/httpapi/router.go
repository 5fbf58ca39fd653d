package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"videogen/internal/http/handlers"
	"videogen/internal/middleware"
)

// Options tunes the router's cross-cutting middleware.
type Options struct {
	AllowedOrigins []string
	CountryLookup  middleware.CountryLookup
	GeneratePerMin int
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(opts.AllowedOrigins),
		middleware.Country(opts.CountryLookup),
	)

	r.Get("/healthz", app.Health)
	r.With(middleware.RateLimit(opts.GeneratePerMin, time.Minute)).Post("/generate", app.Generate)
	r.Get("/status/{job_id}", app.Status)
	r.Get("/video/{job_id}", app.Video)
	r.Post("/optimize_prompt", app.OptimizePrompt)
	r.Post("/feedback", app.Feedback)

	r.Handle("/static/*", app.Static())
	r.Get("/", app.Index)

	return r
}
