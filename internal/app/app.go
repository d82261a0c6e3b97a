package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	httpapp "propintel/internal/app/http"
	"propintel/internal/config"
	"propintel/internal/httpapi"
	"propintel/internal/httpapi/schema"
	"propintel/internal/lib/jsonld"
	"propintel/internal/lib/logger/sl"
	"propintel/internal/lib/metrics"
	minio "propintel/internal/lib/minio/core"
	"propintel/internal/repository/fingerprint_repository"
	"propintel/internal/repository/transaction_repository"
	"propintel/internal/services/factual"
	"propintel/internal/services/ingestion"
	"propintel/internal/services/valuation"
	"propintel/internal/storage/migrations"
)

type App struct {
	HTTPServer *httpapp.App
	Metrics    *metrics.PipelineMetrics
	pool       *pgxpool.Pool
}

// New собирает сервисы и HTTP API. pool и minioClient могут быть nil:
// тогда сервис работает без сохранения сделок и без архива батчей.
func New(log *slog.Logger, pool *pgxpool.Pool, minioClient minio.Client, cfg *config.Config) *App {
	pipelineMetrics := metrics.New(log)

	ingestionOpts := []ingestion.ServiceOption{}
	valuationOpts := []valuation.ServiceOption{}
	deps := httpapi.Deps{
		Metrics: pipelineMetrics,
		JSONLD:  jsonld.NewGenerator(fmt.Sprintf("http://localhost:%d/api/v1", cfg.HTTP.Port)),
	}

	if pool != nil {
		transactionRepository := transaction_repository.NewTransactionRepository(pool, log)
		fingerprintRepository := fingerprint_repository.NewFingerprintRepository(pool, log)

		ingestionOpts = append(ingestionOpts,
			ingestion.WithRepository(transactionRepository),
			ingestion.WithFingerprintStore(fingerprintRepository),
		)
		valuationOpts = append(valuationOpts, valuation.WithComparableSource(transactionRepository))
		deps.Transactions = transactionRepository
		deps.Health = pool.Ping
	}
	if minioClient != nil {
		ingestionOpts = append(ingestionOpts, ingestion.WithRawArchive(minioClient))
	}

	deps.Ingestion = ingestion.New(log, pipelineMetrics, cfg.Ingestion, ingestionOpts...)
	deps.Valuation = valuation.New(log, pipelineMetrics, cfg.Valuation, valuationOpts...)
	deps.Factual = factual.New(log, pipelineMetrics)

	log.Info("services initialized",
		slog.Bool("storage_enabled", pool != nil),
		slog.Bool("archive_enabled", minioClient != nil && cfg.Ingestion.ArchiveRawBatches),
		slog.Bool("cross_run_dedupe", pool != nil && cfg.Ingestion.CrossRunDedupe),
		slog.Bool("auth_disabled", cfg.DisableAuth),
	)

	router := httpapi.NewRouter(log, cfg, schema.MustNew(), deps)

	return &App{
		HTTPServer: httpapp.New(log, router, cfg.HTTP),
		Metrics:    pipelineMetrics,
		pool:       pool,
	}
}

// NewPool подключается к Postgres и, если настроено, применяет миграции.
func NewPool(ctx context.Context, log *slog.Logger, cfg *config.Config) (*pgxpool.Pool, error) {
	const op = "app.NewPool"

	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL is empty, running without storage")
		return nil, nil
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if cfg.MigrateOnStart {
		if err := migrations.Run(pool, migrations.Up, log); err != nil {
			pool.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	return pool, nil
}

// NewArchive подключает MinIO, если он включён в конфигурации.
func NewArchive(ctx context.Context, log *slog.Logger, cfg *config.Config) minio.Client {
	if !cfg.Minio.Enabled {
		return nil
	}
	client, err := minio.NewMinioClient(ctx, cfg.Minio, log)
	if err != nil {
		log.Error("minio is unavailable, raw batches will not be archived", sl.Err(err))
		return nil
	}
	return client
}

// Stop останавливает HTTP-сервер и закрывает пул соединений.
func (a *App) Stop(ctx context.Context) {
	a.HTTPServer.Stop(ctx)
	if a.pool != nil {
		a.pool.Close()
	}
}
