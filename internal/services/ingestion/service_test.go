package ingestion

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"propintel/internal/config"
	"propintel/internal/domain"
	"propintel/internal/lib/metrics"
)

// MockTransactionRepository — мок репозитория сделок (с testify)
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) SaveRun(ctx context.Context, run domain.IngestionRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockTransactionRepository) SaveCleaned(ctx context.Context, runID string, records []domain.CleanedTransactionRecord) error {
	args := m.Called(ctx, runID, records)
	return args.Error(0)
}

// memoryFingerprintStore — хранилище ключей в памяти
type memoryFingerprintStore struct {
	keys   map[string]struct{}
	hasErr error
}

func newMemoryStore(keys ...string) *memoryFingerprintStore {
	s := &memoryFingerprintStore{keys: map[string]struct{}{}}
	for _, k := range keys {
		s.keys[k] = struct{}{}
	}
	return s
}

func (s *memoryFingerprintStore) Has(_ context.Context, key string) (bool, error) {
	if s.hasErr != nil {
		return false, s.hasErr
	}
	_, ok := s.keys[key]
	return ok, nil
}

func (s *memoryFingerprintStore) Add(_ context.Context, keys ...string) error {
	for _, k := range keys {
		s.keys[k] = struct{}{}
	}
	return nil
}

// MockRawArchive — мок архива батчей (с testify)
type MockRawArchive struct {
	mock.Mock
}

func (m *MockRawArchive) PutJSON(ctx context.Context, object string, v any) error {
	args := m.Called(ctx, object, v)
	return args.Error(0)
}

func newTestService(cfg config.IngestionConfig, opts ...ServiceOption) (*Service, *metrics.PipelineMetrics) {
	log := slog.New(slog.NewTextHandler(os.Stdout, nil))
	m := metrics.New(log)
	opts = append([]ServiceOption{WithPipeline(newTestPipeline())}, opts...)
	return New(log, m, cfg, opts...), m
}

func TestService_Ingest_WithoutStorage(t *testing.T) {
	svc, m := newTestService(config.IngestionConfig{MaxBatchSize: 10})

	run, result, err := svc.Ingest(context.Background(), []domain.RawTransactionRecord{validRow("1"), validRow("2")})
	require.NoError(t, err)

	assert.NotEmpty(t, run.ID)
	assert.Equal(t, 1, run.Cleaned)
	assert.Equal(t, 1, run.Duplicates)
	assert.Equal(t, 2, result.Total())

	stats := m.GetStats()[metrics.StageIngestion]
	assert.Equal(t, int64(1), stats.CallsTotal)
	assert.Equal(t, int64(2), stats.ItemsTotal)
	assert.Equal(t, int64(1), stats.RejectedTotal)
}

func TestService_Ingest_BatchLimits(t *testing.T) {
	svc, _ := newTestService(config.IngestionConfig{MaxBatchSize: 1})

	_, _, err := svc.Ingest(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyBatch)

	_, _, err = svc.Ingest(context.Background(), []domain.RawTransactionRecord{validRow("1"), validRow("2")})
	assert.ErrorIs(t, err, ErrBatchTooLarge)
}

func TestService_Ingest_PersistsRunAndRecords(t *testing.T) {
	repo := new(MockTransactionRepository)
	repo.On("SaveRun", mock.Anything, mock.MatchedBy(func(run domain.IngestionRun) bool {
		return run.Cleaned == 1 && run.Errors == 1
	})).Return(nil).Once()
	repo.On("SaveCleaned", mock.Anything, mock.AnythingOfType("string"), mock.MatchedBy(func(recs []domain.CleanedTransactionRecord) bool {
		return len(recs) == 1 && recs[0].SourceRecordID == "1"
	})).Return(nil).Once()

	svc, _ := newTestService(config.IngestionConfig{}, WithRepository(repo))

	bad := validRow("2")
	bad.Price = nil
	run, _, err := svc.Ingest(context.Background(), []domain.RawTransactionRecord{validRow("1"), bad})
	require.NoError(t, err)
	assert.Equal(t, 1, run.Errors)

	repo.AssertExpectations(t)
}

func TestService_Ingest_RepositoryFailure(t *testing.T) {
	repo := new(MockTransactionRepository)
	repo.On("SaveRun", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	svc, m := newTestService(config.IngestionConfig{}, WithRepository(repo))

	_, _, err := svc.Ingest(context.Background(), []domain.RawTransactionRecord{validRow("1")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, int64(1), m.GetStats()[metrics.StageIngestion].ErrorsTotal)
	repo.AssertNotCalled(t, "SaveCleaned", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Ingest_CrossRunDedupe(t *testing.T) {
	known := Clean(validRow("1"), fixedNow).DedupeKey
	store := newMemoryStore(known)

	other := validRow("2")
	other.Address = "הרצל 10 חיפה"
	other.Lat, other.Lon = nil, nil

	svc, _ := newTestService(config.IngestionConfig{CrossRunDedupe: true}, WithFingerprintStore(store))

	run, result, err := svc.Ingest(context.Background(), []domain.RawTransactionRecord{validRow("1"), other})
	require.NoError(t, err)

	assert.Equal(t, 1, run.CrossRunDuplicates)
	require.Len(t, result.Cleaned, 1)
	assert.Equal(t, "2", result.Cleaned[0].SourceRecordID)
	assert.Len(t, result.Duplicates, 1)
	assert.Equal(t, 2, result.Total())

	// ключ новой записи зарегистрирован для следующих прогонов
	_, _, err = svc.Ingest(context.Background(), []domain.RawTransactionRecord{other})
	require.NoError(t, err)
	has, _ := store.Has(context.Background(), result.Cleaned[0].DedupeKey)
	assert.True(t, has)
}

func TestService_Ingest_CrossRunDedupeDisabled(t *testing.T) {
	store := newMemoryStore(Clean(validRow("1"), fixedNow).DedupeKey)
	svc, _ := newTestService(config.IngestionConfig{CrossRunDedupe: false}, WithFingerprintStore(store))

	run, _, err := svc.Ingest(context.Background(), []domain.RawTransactionRecord{validRow("1")})
	require.NoError(t, err)
	assert.Equal(t, 0, run.CrossRunDuplicates)
	assert.Equal(t, 1, run.Cleaned)
}

func TestService_Ingest_StoreFailure(t *testing.T) {
	store := newMemoryStore()
	store.hasErr = errors.New("store down")
	svc, _ := newTestService(config.IngestionConfig{CrossRunDedupe: true}, WithFingerprintStore(store))

	_, _, err := svc.Ingest(context.Background(), []domain.RawTransactionRecord{validRow("1")})
	assert.ErrorContains(t, err, "store down")
}

func TestService_Ingest_RetryAfterPersistFailure(t *testing.T) {
	store := newMemoryStore()
	rows := []domain.RawTransactionRecord{validRow("1")}
	key := Clean(validRow("1"), fixedNow).DedupeKey

	failing := new(MockTransactionRepository)
	failing.On("SaveRun", mock.Anything, mock.Anything).Return(errors.New("db down"))
	svc, _ := newTestService(config.IngestionConfig{CrossRunDedupe: true}, WithFingerprintStore(store), WithRepository(failing))

	_, _, err := svc.Ingest(context.Background(), rows)
	require.ErrorContains(t, err, "db down")

	has, _ := store.Has(context.Background(), key)
	assert.False(t, has, "ключ не должен регистрироваться при неудачном сохранении")

	repo := new(MockTransactionRepository)
	repo.On("SaveRun", mock.Anything, mock.Anything).Return(nil)
	repo.On("SaveCleaned", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	svc, _ = newTestService(config.IngestionConfig{CrossRunDedupe: true}, WithFingerprintStore(store), WithRepository(repo))

	run, result, err := svc.Ingest(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, 0, run.CrossRunDuplicates)
	require.Len(t, result.Cleaned, 1)
	assert.Equal(t, "1", result.Cleaned[0].SourceRecordID)
	repo.AssertExpectations(t)

	has, _ = store.Has(context.Background(), key)
	assert.True(t, has)
}

func TestService_Ingest_ArchivesRawBatch(t *testing.T) {
	rows := []domain.RawTransactionRecord{validRow("1")}

	archive := new(MockRawArchive)
	archive.On("PutJSON", mock.Anything, mock.MatchedBy(func(object string) bool {
		return strings.HasPrefix(object, "ingestion/") && strings.HasSuffix(object, ".json")
	}), rows).Return(nil).Once()

	svc, _ := newTestService(config.IngestionConfig{ArchiveRawBatches: true}, WithRawArchive(archive))

	run, _, err := svc.Ingest(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, "ingestion/"+run.ID+".json", run.ArchiveObject)
	archive.AssertExpectations(t)
}
