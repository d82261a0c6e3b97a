//go:build integration

package fingerprint_repository

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propintel/internal/storage/migrations"
)

func TestFingerprintRepository_HasAdd(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL is not set")
	}

	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(os.Stdout, nil))
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()
	require.NoError(t, migrations.Run(pool, migrations.Up, log))

	repo := NewFingerprintRepository(pool, log)
	key := "תל אביב|ויצמן|12|" + uuid.NewString()

	seen, err := repo.Has(ctx, key)
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, repo.Add(ctx, key, key))
	require.NoError(t, repo.Add(ctx, key))

	seen, err = repo.Has(ctx, key)
	require.NoError(t, err)
	assert.True(t, seen)
}
