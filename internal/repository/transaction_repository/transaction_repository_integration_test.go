//go:build integration

package transaction_repository

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propintel/internal/domain"
	"propintel/internal/repository"
	"propintel/internal/storage/migrations"
)

func newTestRepository(t *testing.T) *TransactionRepository {
	t.Helper()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL is not set")
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, migrations.Run(pool, migrations.Up, log))

	return NewTransactionRepository(pool, log)
}

func record(source, id, geoCell string, confidence float64) domain.CleanedTransactionRecord {
	return domain.CleanedTransactionRecord{
		RawTransactionRecord: domain.RawTransactionRecord{
			SourceID:        source,
			SourceRecordID:  id,
			Address:         "ויצמן 12 תל אביב",
			City:            lo.ToPtr("תל אביב"),
			TransactionDate: "2024-03-01",
			Price:           lo.ToPtr(2_750_000.0),
			AreaSqm:         lo.ToPtr(100.0),
			Floor:           lo.ToPtr(5),
		},
		NormalizedAddress: domain.NormalizedAddress{Normalized: "תל אביב|ויצמן|12"},
		ConfidenceScore:   confidence,
		DedupeKey:         "תל אביב|ויצמן|12|תל אביב|||100",
		GeoCell:           geoCell,
	}
}

func TestTransactionRepository_RunLifecycle(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	run := domain.IngestionRun{ID: uuid.NewString(), StartedAt: time.Now().UTC().Truncate(time.Microsecond), Cleaned: 2}
	require.NoError(t, repo.SaveRun(ctx, run))

	err := repo.SaveRun(ctx, run)
	assert.ErrorIs(t, err, repository.ErrRunAlreadyExists)

	got, err := repo.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Cleaned)
	assert.True(t, run.StartedAt.Equal(got.StartedAt))

	_, err = repo.GetRun(ctx, uuid.NewString())
	assert.ErrorIs(t, err, repository.ErrRunNotFound)
}

func TestTransactionRepository_SaveAndListComparables(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	source := "it-" + uuid.NewString()
	cell := "zz" + uuid.NewString()[:5]
	run := domain.IngestionRun{ID: uuid.NewString(), StartedAt: time.Now().UTC()}
	require.NoError(t, repo.SaveRun(ctx, run))

	records := []domain.CleanedTransactionRecord{
		record(source, "1", cell+"a", 0.6),
		record(source, "2", cell+"b", 0.9),
		record(source, "3", "", 0.99),
	}
	require.NoError(t, repo.SaveCleaned(ctx, run.ID, records))
	// повторная запись той же пары source/record пропускается
	require.NoError(t, repo.SaveCleaned(ctx, run.ID, records[:1]))

	got, err := repo.ListComparables(ctx, cell, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2", got[0].SourceRecordID)
	assert.Equal(t, "1", got[1].SourceRecordID)
	assert.Equal(t, "תל אביב|ויצמן|12", got[0].NormalizedAddress.Normalized)
	require.NotNil(t, got[0].Floor)
	assert.Equal(t, 5, *got[0].Floor)
}

func TestTransactionRepository_ListComparables_Unlimited(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	source := "it-" + uuid.NewString()
	cell := "yy" + uuid.NewString()[:5]
	run := domain.IngestionRun{ID: uuid.NewString(), StartedAt: time.Now().UTC()}
	require.NoError(t, repo.SaveRun(ctx, run))
	require.NoError(t, repo.SaveCleaned(ctx, run.ID, []domain.CleanedTransactionRecord{
		record(source, "1", cell+"a", 0.6),
		record(source, "2", cell+"b", 0.9),
	}))

	got, err := repo.ListComparables(ctx, cell, 0)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	// метасимволы LIKE в префиксе не расширяют выборку
	got, err = repo.ListComparables(ctx, cell[:2]+"%", 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTransactionRepository_ListTransactions(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	city := "it-city-" + uuid.NewString()
	run := domain.IngestionRun{ID: uuid.NewString(), StartedAt: time.Now().UTC()}
	require.NoError(t, repo.SaveRun(ctx, run))

	records := make([]domain.CleanedTransactionRecord, 0, 3)
	for _, id := range []string{"1", "2", "3"} {
		rec := record("it-"+uuid.NewString(), id, "", 0.5)
		rec.City = lo.ToPtr(city)
		records = append(records, rec)
	}
	require.NoError(t, repo.SaveCleaned(ctx, run.ID, records))

	page, err := repo.ListTransactions(ctx, city, domain.NewPager(1, 2))
	require.NoError(t, err)
	assert.Equal(t, int32(3), page.TotalCount)
	assert.Len(t, page.Items, 2)
	assert.True(t, page.HasMore)

	last, err := repo.ListTransactions(ctx, city, domain.NewPager(2, 2))
	require.NoError(t, err)
	assert.Len(t, last.Items, 1)
	assert.False(t, last.HasMore)
}
