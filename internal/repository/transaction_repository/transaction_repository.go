package transaction_repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"propintel/internal/domain"
	"propintel/internal/repository"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePrefix — шаблон LIKE "начинается с prefix" с экранированными метасимволами.
func likePrefix(prefix string) string {
	return likeEscaper.Replace(prefix) + "%"
}

type TransactionRepository struct {
	db  *pgxpool.Pool
	log *slog.Logger
}

func NewTransactionRepository(db *pgxpool.Pool, log *slog.Logger) *TransactionRepository {
	return &TransactionRepository{db: db, log: log}
}

// SaveRun — сохраняет метаданные прогона приёма.
func (r *TransactionRepository) SaveRun(ctx context.Context, run domain.IngestionRun) error {
	const op = "TransactionRepository.SaveRun"

	query := `
		INSERT INTO ingestion_runs (
			run_id, started_at, cleaned, duplicates, errors,
			cross_run_duplicates, archive_object
		)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))
	`

	_, err := r.db.Exec(ctx, query,
		run.ID,
		run.StartedAt,
		run.Cleaned,
		run.Duplicates,
		run.Errors,
		run.CrossRunDuplicates,
		run.ArchiveObject,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%s: %w", op, repository.ErrRunAlreadyExists)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// GetRun — получает прогон по ID.
func (r *TransactionRepository) GetRun(ctx context.Context, runID string) (domain.IngestionRun, error) {
	const op = "TransactionRepository.GetRun"

	query := `
		SELECT run_id::text, started_at, cleaned, duplicates, errors,
		       cross_run_duplicates, COALESCE(archive_object, '')
		FROM ingestion_runs
		WHERE run_id = $1
	`

	var run domain.IngestionRun
	err := r.db.QueryRow(ctx, query, runID).Scan(
		&run.ID,
		&run.StartedAt,
		&run.Cleaned,
		&run.Duplicates,
		&run.Errors,
		&run.CrossRunDuplicates,
		&run.ArchiveObject,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.IngestionRun{}, fmt.Errorf("%s: %w", op, repository.ErrRunNotFound)
		}
		return domain.IngestionRun{}, fmt.Errorf("%s: %w", op, err)
	}

	return run, nil
}

// SaveCleaned — пакетно сохраняет очищенные записи прогона.
// Запись с уже известной парой (source_id, source_record_id) пропускается.
func (r *TransactionRepository) SaveCleaned(ctx context.Context, runID string, records []domain.CleanedTransactionRecord) error {
	const op = "TransactionRepository.SaveCleaned"

	query := `
		INSERT INTO transactions (
			run_id, source_id, source_record_id, raw_address, city,
			transaction_date, price, area_sqm, floor, rooms, lat, lon,
			normalized_address, completeness_score, recency_score,
			source_reliability, confidence_score, dedupe_key, geo_cell
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, NULLIF($19, ''))
		ON CONFLICT (source_id, source_record_id) DO NOTHING
	`

	batch := &pgx.Batch{}
	for _, rec := range records {
		addr, err := json.Marshal(rec.NormalizedAddress)
		if err != nil {
			return fmt.Errorf("%s: marshal address: %w", op, err)
		}
		batch.Queue(query,
			runID,
			rec.SourceID,
			rec.SourceRecordID,
			rec.Address,
			rec.City,
			rec.TransactionDate,
			rec.Price,
			rec.AreaSqm,
			rec.Floor,
			rec.Rooms,
			rec.Lat,
			rec.Lon,
			addr,
			rec.CompletenessScore,
			rec.RecencyScore,
			rec.SourceReliability,
			rec.ConfidenceScore,
			rec.DedupeKey,
			rec.GeoCell,
		)
	}

	br := r.db.SendBatch(ctx, batch)
	defer br.Close()

	for range records {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	r.log.Debug("cleaned records saved", slog.String("run_id", runID), slog.Int("count", len(records)))
	return nil
}

// ListComparables — сделки, чья геоячейка начинается с prefix, от самых надёжных.
// limit <= 0 снимает ограничение.
func (r *TransactionRepository) ListComparables(ctx context.Context, geoCellPrefix string, limit int) ([]domain.CleanedTransactionRecord, error) {
	const op = "TransactionRepository.ListComparables"

	query := selectColumns + `
		WHERE geo_cell LIKE $1
		ORDER BY confidence_score DESC, transaction_id
		LIMIT NULLIF($2::bigint, 0)
	`

	rows, err := r.db.Query(ctx, query, likePrefix(geoCellPrefix), max(limit, 0))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return records, nil
}

// ListTransactions — постраничный список сохранённых сделок, новые первыми.
// Фильтр по городу применяется, если city не пуст.
func (r *TransactionRepository) ListTransactions(ctx context.Context, city string, pager *domain.Pager) (domain.PaginatedResult[domain.CleanedTransactionRecord], error) {
	const op = "TransactionRepository.ListTransactions"

	var total int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM transactions WHERE ($1 = '' OR city = $1)`, city,
	).Scan(&total)
	if err != nil {
		return domain.PaginatedResult[domain.CleanedTransactionRecord]{}, fmt.Errorf("%s: %w", op, err)
	}

	query := selectColumns + `
		WHERE ($1 = '' OR city = $1)
		ORDER BY transaction_id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, city, pager.Limit(), pager.Offset())
	if err != nil {
		return domain.PaginatedResult[domain.CleanedTransactionRecord]{}, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return domain.PaginatedResult[domain.CleanedTransactionRecord]{}, fmt.Errorf("%s: %w", op, err)
	}

	return domain.PaginatedResult[domain.CleanedTransactionRecord]{
		Items:      records,
		TotalCount: int32(total),
		HasMore:    pager.Offset()+int64(len(records)) < total,
	}, nil
}

const selectColumns = `
	SELECT
		source_id, source_record_id, raw_address, city,
		transaction_date, price, area_sqm, floor, rooms, lat, lon,
		normalized_address, completeness_score, recency_score,
		source_reliability, confidence_score, dedupe_key, COALESCE(geo_cell, '')
	FROM transactions
`

func scanRecords(rows pgx.Rows) ([]domain.CleanedTransactionRecord, error) {
	records := []domain.CleanedTransactionRecord{}
	for rows.Next() {
		var rec domain.CleanedTransactionRecord
		var price float64
		var addr []byte
		err := rows.Scan(
			&rec.SourceID,
			&rec.SourceRecordID,
			&rec.Address,
			&rec.City,
			&rec.TransactionDate,
			&price,
			&rec.AreaSqm,
			&rec.Floor,
			&rec.Rooms,
			&rec.Lat,
			&rec.Lon,
			&addr,
			&rec.CompletenessScore,
			&rec.RecencyScore,
			&rec.SourceReliability,
			&rec.ConfidenceScore,
			&rec.DedupeKey,
			&rec.GeoCell,
		)
		if err != nil {
			return nil, err
		}
		rec.Price = &price
		if err := json.Unmarshal(addr, &rec.NormalizedAddress); err != nil {
			return nil, fmt.Errorf("decode normalized address: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
