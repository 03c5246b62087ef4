package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts health, metrics and checkout routes. metrics may be nil.
// apiMiddleware wraps only the /v1 checkout routes.
func NewRouter(
	health *HealthHandler,
	checkout *CheckoutHandler,
	metrics http.Handler,
	logger *slog.Logger,
	apiMiddleware ...func(http.Handler) http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLog(logger))
	r.Use(chimw.Recoverer)

	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(apiMiddleware...)
		r.Post("/decisions", checkout.Decide)
		r.Post("/cards/rank", checkout.RankCards)
		r.Post("/approval", checkout.EstimateApproval)
		r.Post("/recommendations", checkout.Recommend)
	})
	return r
}

// requestLog logs each request once it completes.
func requestLog(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.String("request_id", chimw.GetReqID(r.Context())),
				slog.Duration("elapsed", time.Since(start)),
			)
		})
	}
}
