package metrics

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAndStats(t *testing.T) {
	m := New(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	m.Record(StageIngestion, 100*time.Microsecond, 10, 2, nil)
	m.Record(StageIngestion, 300*time.Microsecond, 5, 1, errors.New("db down"))

	stats := m.GetStats()
	require.Len(t, stats, len(Stages()))

	s := stats[StageIngestion]
	assert.Equal(t, int64(2), s.CallsTotal)
	assert.Equal(t, int64(1), s.ErrorsTotal)
	assert.Equal(t, 0.5, s.ErrorRate)
	assert.Equal(t, int64(15), s.ItemsTotal)
	assert.Equal(t, int64(3), s.RejectedTotal)
	assert.Equal(t, 200.0, s.AvgLatencyUs)
	assert.Equal(t, int64(300), s.LastLatencyUs)

	assert.Zero(t, stats[StageValuation].CallsTotal)
}

func TestReset(t *testing.T) {
	m := New(nil)
	m.Record(StageRanking, time.Millisecond, 3, 0, nil)

	m.Reset()

	assert.Zero(t, m.GetStats()[StageRanking].CallsTotal)
}

func TestNilMetrics(t *testing.T) {
	var m *PipelineMetrics

	assert.NotPanics(t, func() {
		m.Record(StageFactual, time.Millisecond, 1, 0, nil)
		m.StartTimer(StageFactual).Stop(1, 0, nil)
		m.Reset()
	})
	assert.Empty(t, m.GetStats())
}

func TestWrapWithMetrics(t *testing.T) {
	m := New(nil)
	boom := errors.New("boom")

	got, err := WrapWithMetrics(context.Background(), m, StageFactual, func(context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	_, err = WrapWithMetrics(context.Background(), m, StageFactual, func(context.Context) (int, error) {
		return 0, boom
	})
	assert.ErrorIs(t, err, boom)

	s := m.GetStats()[StageFactual]
	assert.Equal(t, int64(2), s.CallsTotal)
	assert.Equal(t, int64(1), s.ErrorsTotal)
}

func TestRecord_Concurrent(t *testing.T) {
	m := New(nil)

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Record(StageValuation, time.Microsecond, 1, 0, nil)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), m.GetStats()[StageValuation].CallsTotal)
}
