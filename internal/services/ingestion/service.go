package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"propintel/internal/config"
	"propintel/internal/domain"
	"propintel/internal/lib/logger/sl"
	"propintel/internal/lib/metrics"
)

// TransactionRepository сохраняет очищенные записи и сведения о прогонах.
type TransactionRepository interface {
	SaveRun(ctx context.Context, run domain.IngestionRun) error
	SaveCleaned(ctx context.Context, runID string, records []domain.CleanedTransactionRecord) error
}

// FingerprintStore — хранилище ключей дедупликации между прогонами.
type FingerprintStore interface {
	Has(ctx context.Context, key string) (bool, error)
	Add(ctx context.Context, keys ...string) error
}

// RawArchive складывает исходный батч в объектное хранилище.
type RawArchive interface {
	PutJSON(ctx context.Context, object string, v any) error
}

var (
	ErrEmptyBatch    = errors.New("empty batch")
	ErrBatchTooLarge = errors.New("batch exceeds configured size limit")
)

// Service — приём батчей: чистый пайплайн плюс сохранение, архив и дедупликация между прогонами.
type Service struct {
	log      *slog.Logger
	pipeline *Pipeline
	repo     TransactionRepository
	store    FingerprintStore
	archive  RawArchive
	metrics  *metrics.PipelineMetrics
	cfg      config.IngestionConfig
}

// ServiceOption — опция для конфигурации сервиса.
type ServiceOption func(*Service)

// WithRepository включает сохранение очищенных записей.
func WithRepository(repo TransactionRepository) ServiceOption {
	return func(s *Service) {
		s.repo = repo
	}
}

// WithFingerprintStore включает дедупликацию между прогонами.
func WithFingerprintStore(store FingerprintStore) ServiceOption {
	return func(s *Service) {
		s.store = store
	}
}

// WithRawArchive включает архивирование исходных батчей.
func WithRawArchive(archive RawArchive) ServiceOption {
	return func(s *Service) {
		s.archive = archive
	}
}

// WithPipeline подменяет пайплайн (например, с фиксированными часами в тестах).
func WithPipeline(p *Pipeline) ServiceOption {
	return func(s *Service) {
		s.pipeline = p
	}
}

func New(log *slog.Logger, m *metrics.PipelineMetrics, cfg config.IngestionConfig, opts ...ServiceOption) *Service {
	s := &Service{
		log:      log,
		pipeline: NewPipeline(),
		metrics:  m,
		cfg:      cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest обрабатывает батч и, если настроено, сохраняет результат.
// Ошибки отдельных строк не являются ошибкой вызова; ошибка возвращается только
// при отказе инфраструктуры (БД, хранилище ключей, архив).
func (s *Service) Ingest(ctx context.Context, rows []domain.RawTransactionRecord) (domain.IngestionRun, domain.IngestionResult, error) {
	const op = "ingestion.Service.Ingest"

	if len(rows) == 0 {
		return domain.IngestionRun{}, domain.IngestionResult{}, fmt.Errorf("%s: %w", op, ErrEmptyBatch)
	}
	if s.cfg.MaxBatchSize > 0 && len(rows) > s.cfg.MaxBatchSize {
		return domain.IngestionRun{}, domain.IngestionResult{}, fmt.Errorf("%s: %w", op, ErrBatchTooLarge)
	}

	run := domain.IngestionRun{ID: uuid.NewString(), StartedAt: time.Now().UTC()}
	log := s.log.With(slog.String("op", op), slog.String("run_id", run.ID), slog.Int("rows", len(rows)))
	timer := s.metrics.StartTimer(metrics.StageIngestion)

	log.Info("ingesting batch")

	result := s.pipeline.Run(rows)

	if s.store != nil && s.cfg.CrossRunDedupe {
		var err error
		result, run.CrossRunDuplicates, err = s.filterKnown(ctx, result)
		if err != nil {
			log.Error("failed to check fingerprints", sl.Err(err))
			timer.Stop(len(rows), 0, err)
			return domain.IngestionRun{}, domain.IngestionResult{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	run.Cleaned = len(result.Cleaned)
	run.Duplicates = len(result.Duplicates)
	run.Errors = len(result.Errors)

	if s.archive != nil && s.cfg.ArchiveRawBatches {
		object := fmt.Sprintf("ingestion/%s.json", run.ID)
		if err := s.archive.PutJSON(ctx, object, rows); err != nil {
			log.Error("failed to archive raw batch", sl.Err(err))
			timer.Stop(len(rows), run.Duplicates+run.Errors, err)
			return domain.IngestionRun{}, domain.IngestionResult{}, fmt.Errorf("%s: %w", op, err)
		}
		run.ArchiveObject = object
	}

	if err := s.persist(ctx, run, result); err != nil {
		log.Error("failed to persist ingestion run", sl.Err(err))
		timer.Stop(len(rows), run.Duplicates+run.Errors, err)
		return domain.IngestionRun{}, domain.IngestionResult{}, fmt.Errorf("%s: %w", op, err)
	}

	if s.store != nil && s.cfg.CrossRunDedupe {
		if err := s.registerFingerprints(ctx, result.Cleaned); err != nil {
			log.Error("failed to register fingerprints", sl.Err(err))
			timer.Stop(len(rows), run.Duplicates+run.Errors, err)
			return domain.IngestionRun{}, domain.IngestionResult{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	timer.Stop(len(rows), run.Duplicates+run.Errors, nil)
	log.Info("batch ingested",
		slog.Int("cleaned", run.Cleaned),
		slog.Int("duplicates", run.Duplicates),
		slog.Int("errors", run.Errors),
		slog.Int("cross_run_duplicates", run.CrossRunDuplicates),
	)

	return run, result, nil
}

// filterKnown переносит в дубликаты записи, ключи которых уже видели прошлые прогоны.
// Хранилище не изменяется: ключи регистрируются только после успешного сохранения.
func (s *Service) filterKnown(ctx context.Context, result domain.IngestionResult) (domain.IngestionResult, int, error) {
	fresh := make([]domain.CleanedTransactionRecord, 0, len(result.Cleaned))
	known := 0

	for _, rec := range result.Cleaned {
		seen, err := s.store.Has(ctx, rec.DedupeKey)
		if err != nil {
			return result, 0, err
		}
		if seen {
			result.Duplicates = append(result.Duplicates, rec)
			known++
			continue
		}
		fresh = append(fresh, rec)
	}

	result.Cleaned = fresh
	return result, known, nil
}

func (s *Service) registerFingerprints(ctx context.Context, cleaned []domain.CleanedTransactionRecord) error {
	if len(cleaned) == 0 {
		return nil
	}
	keys := lo.Map(cleaned, func(r domain.CleanedTransactionRecord, _ int) string { return r.DedupeKey })
	return s.store.Add(ctx, keys...)
}

func (s *Service) persist(ctx context.Context, run domain.IngestionRun, result domain.IngestionResult) error {
	if s.repo == nil {
		return nil
	}
	if err := s.repo.SaveRun(ctx, run); err != nil {
		return err
	}
	if len(result.Cleaned) == 0 {
		return nil
	}
	return s.repo.SaveCleaned(ctx, run.ID, result.Cleaned)
}
