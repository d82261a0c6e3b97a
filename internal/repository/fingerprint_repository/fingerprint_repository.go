package fingerprint_repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/blake2b"
)

// FingerprintRepository хранит ключи дедупликации, принятые прошлыми прогонами.
// Ключи хранятся как blake2b-256 хеш, чтобы индекс не зависел от длины адреса.
type FingerprintRepository struct {
	db  *pgxpool.Pool
	log *slog.Logger
}

func NewFingerprintRepository(db *pgxpool.Pool, log *slog.Logger) *FingerprintRepository {
	return &FingerprintRepository{db: db, log: log}
}

// Has — проверяет, встречался ли ключ раньше.
func (r *FingerprintRepository) Has(ctx context.Context, key string) (bool, error) {
	const op = "FingerprintRepository.Has"

	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM dedupe_fingerprints WHERE key_hash = $1)`,
		HashKey(key),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return exists, nil
}

// Add — регистрирует ключи; уже известные ключи игнорируются.
func (r *FingerprintRepository) Add(ctx context.Context, keys ...string) error {
	const op = "FingerprintRepository.Add"

	if len(keys) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, key := range keys {
		batch.Queue(
			`INSERT INTO dedupe_fingerprints (key_hash) VALUES ($1) ON CONFLICT DO NOTHING`,
			HashKey(key),
		)
	}

	br := r.db.SendBatch(ctx, batch)
	defer br.Close()

	for range keys {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	r.log.Debug("fingerprints registered", slog.Int("count", len(keys)))
	return nil
}

// HashKey — blake2b-256 от ключа дедупликации.
func HashKey(key string) []byte {
	sum := blake2b.Sum256([]byte(key))
	return sum[:]
}
