package metrics

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Stage — этап обработки, для которого собираются метрики.
type Stage string

const (
	StageIngestion Stage = "ingestion"
	StageRanking   Stage = "ranking"
	StageValuation Stage = "valuation"
	StageFactual   Stage = "factual"
)

// Stages возвращает все этапы в фиксированном порядке.
func Stages() []Stage {
	return []Stage{StageIngestion, StageRanking, StageValuation, StageFactual}
}

type stageCounters struct {
	callsTotal     int64
	errorsTotal    int64
	itemsTotal     int64
	rejectedTotal  int64
	latencyTotalUs int64
	lastLatencyUs  int64
}

// PipelineMetrics — счётчики вызовов по этапам. Создаётся в app и передаётся в сервисы,
// ядро расчётов о нём не знает.
type PipelineMetrics struct {
	log    *slog.Logger
	stages map[Stage]*stageCounters
}

// New создаёт набор метрик.
func New(log *slog.Logger) *PipelineMetrics {
	m := &PipelineMetrics{log: log, stages: make(map[Stage]*stageCounters, 4)}
	for _, s := range Stages() {
		m.stages[s] = &stageCounters{}
	}
	return m
}

// Record записывает вызов этапа: items — обработано элементов, rejected — отброшено
// (ошибки валидации, дубликаты, выбросы).
func (m *PipelineMetrics) Record(stage Stage, latency time.Duration, items, rejected int, err error) {
	if m == nil {
		return
	}
	c, ok := m.stages[stage]
	if !ok {
		return
	}
	latencyUs := latency.Microseconds()

	atomic.AddInt64(&c.callsTotal, 1)
	atomic.AddInt64(&c.itemsTotal, int64(items))
	atomic.AddInt64(&c.rejectedTotal, int64(rejected))
	atomic.AddInt64(&c.latencyTotalUs, latencyUs)
	atomic.StoreInt64(&c.lastLatencyUs, latencyUs)
	if err != nil {
		atomic.AddInt64(&c.errorsTotal, 1)
	}

	if m.log != nil {
		attrs := []any{
			slog.String("stage", string(stage)),
			slog.Int64("latency_us", latencyUs),
			slog.Int("items", items),
			slog.Int("rejected", rejected),
		}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
			m.log.Warn("pipeline stage failed", attrs...)
		} else {
			m.log.Debug("pipeline stage completed", attrs...)
		}
	}
}

// Timer помогает измерять время этапа.
type Timer struct {
	metrics   *PipelineMetrics
	stage     Stage
	startTime time.Time
}

// StartTimer начинает измерение времени этапа.
func (m *PipelineMetrics) StartTimer(stage Stage) *Timer {
	return &Timer{metrics: m, stage: stage, startTime: time.Now()}
}

// Stop останавливает таймер и записывает метрики.
func (t *Timer) Stop(items, rejected int, err error) {
	t.metrics.Record(t.stage, time.Since(t.startTime), items, rejected, err)
}

// StageStats — статистика по одному этапу.
type StageStats struct {
	CallsTotal    int64   `json:"calls_total"`
	ErrorsTotal   int64   `json:"errors_total"`
	ErrorRate     float64 `json:"error_rate"`
	ItemsTotal    int64   `json:"items_total"`
	RejectedTotal int64   `json:"rejected_total"`
	AvgLatencyUs  float64 `json:"avg_latency_us"`
	LastLatencyUs int64   `json:"last_latency_us"`
}

// GetStats возвращает текущую статистику по всем этапам.
func (m *PipelineMetrics) GetStats() map[Stage]StageStats {
	if m == nil {
		return map[Stage]StageStats{}
	}
	out := make(map[Stage]StageStats, len(m.stages))
	for stage, c := range m.stages {
		calls := atomic.LoadInt64(&c.callsTotal)
		errs := atomic.LoadInt64(&c.errorsTotal)
		var errorRate, avgLatency float64
		if calls > 0 {
			errorRate = float64(errs) / float64(calls)
			avgLatency = float64(atomic.LoadInt64(&c.latencyTotalUs)) / float64(calls)
		}
		out[stage] = StageStats{
			CallsTotal:    calls,
			ErrorsTotal:   errs,
			ErrorRate:     errorRate,
			ItemsTotal:    atomic.LoadInt64(&c.itemsTotal),
			RejectedTotal: atomic.LoadInt64(&c.rejectedTotal),
			AvgLatencyUs:  avgLatency,
			LastLatencyUs: atomic.LoadInt64(&c.lastLatencyUs),
		}
	}
	return out
}

// Reset сбрасывает все метрики.
func (m *PipelineMetrics) Reset() {
	if m == nil {
		return
	}
	for _, c := range m.stages {
		atomic.StoreInt64(&c.callsTotal, 0)
		atomic.StoreInt64(&c.errorsTotal, 0)
		atomic.StoreInt64(&c.itemsTotal, 0)
		atomic.StoreInt64(&c.rejectedTotal, 0)
		atomic.StoreInt64(&c.latencyTotalUs, 0)
		atomic.StoreInt64(&c.lastLatencyUs, 0)
	}
}

// WrapWithMetrics оборачивает функцию для автоматического сбора метрик.
func WrapWithMetrics[T any](
	ctx context.Context,
	m *PipelineMetrics,
	stage Stage,
	fn func(ctx context.Context) (T, error),
) (T, error) {
	timer := m.StartTimer(stage)
	result, err := fn(ctx)
	timer.Stop(0, 0, err)
	return result, err
}
