package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/givehope/platform/internal/http/handlers"
	"github.com/givehope/platform/internal/infra"
	"github.com/givehope/platform/internal/middleware"
)

const rateWindow = time.Minute

// NewRouter assembles the API routes and middleware chain.
func NewRouter(cfg *infra.Config, app *handlers.App, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(logger),
		middleware.CORS(cfg.CORSAllowedOrigins),
		middleware.Locale(cfg.DefaultLocale),
		middleware.RateLimit(cfg.RateLimitPerMin, rateWindow),
	)

	r.Get("/v1/healthz", app.Health)

	r.Route("/api/donations", func(r chi.Router) {
		// Guests may donate; a presented token still has to be valid so
		// authenticated submissions get the email-match check.
		r.With(middleware.OptionalAuth(cfg.JWTSecret)).Post("/", app.DonationsCreate)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(cfg.JWTSecret))
			r.Get("/", app.DonationsList)
			r.Get("/case/{caseId}", app.DonationsByCase)
			r.Get("/user/{userId}", app.DonationsByUser)
		})
	})

	return r
}
