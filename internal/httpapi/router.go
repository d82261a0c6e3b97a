// Package httpapi собирает HTTP API: роутер, middleware и обработчики.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"propintel/internal/config"
	"propintel/internal/httpapi/addresshttp"
	"propintel/internal/httpapi/docs"
	"propintel/internal/httpapi/factualhttp"
	"propintel/internal/httpapi/ingestionhttp"
	"propintel/internal/httpapi/middleware"
	"propintel/internal/httpapi/respond"
	"propintel/internal/httpapi/schema"
	"propintel/internal/httpapi/valuationhttp"
	"propintel/internal/lib/jsonld"
	"propintel/internal/lib/metrics"
)

// HealthChecker проверяет доступность зависимостей (например, БД).
type HealthChecker func(ctx context.Context) error

// Deps — зависимости обработчиков.
type Deps struct {
	Ingestion    ingestionhttp.IngestionService
	Transactions ingestionhttp.TransactionLister
	Valuation    valuationhttp.ValuationService
	Factual      factualhttp.FactualService
	Metrics      *metrics.PipelineMetrics
	JSONLD       *jsonld.Generator
	Health       HealthChecker
}

// NewRouter создаёт роутер со всеми маршрутами API.
func NewRouter(log *slog.Logger, cfg *config.Config, validator *schema.Validator, deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(chimw.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", middleware.TraceHeader},
		ExposedHeaders: []string{middleware.TraceHeader},
		MaxAge:         300,
	}).Handler)
	r.Use(middleware.MaxBody(cfg.HTTP.MaxBodyBytes))
	if cfg.RateLimit.Enabled {
		r.Use(middleware.RateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, log))
	}

	r.Get("/healthz", healthHandler(log, deps.Health))
	r.Get("/swagger/doc.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(docs.SwaggerJSON)
	})
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Auth(cfg.Secret, cfg.DisableAuth, log))

		addresshttp.Register(api, log, validator)
		ingestionhttp.Register(api, log, validator, deps.Ingestion,
			ingestionhttp.WithTransactionLister(deps.Transactions),
			ingestionhttp.WithJSONLD(deps.JSONLD),
		)
		valuationhttp.Register(api, log, validator, deps.Valuation)
		factualhttp.Register(api, log, validator, deps.Factual, deps.JSONLD)

		api.Get("/metrics", func(w http.ResponseWriter, _ *http.Request) {
			respond.JSON(w, log, http.StatusOK, deps.Metrics.GetStats())
		})
	})

	return r
}

func healthHandler(log *slog.Logger, check HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				respond.Error(w, log, http.StatusServiceUnavailable, respond.CodeUnavailable, err.Error())
				return
			}
		}
		respond.JSON(w, log, http.StatusOK, map[string]string{"status": "ok"})
	}
}
