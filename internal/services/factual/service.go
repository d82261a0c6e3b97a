package factual

import (
	"context"
	"log/slog"

	"propintel/internal/domain"
	"propintel/internal/lib/metrics"
)

// Service — обёртка движка с логированием и метриками.
type Service struct {
	log     *slog.Logger
	engine  *Engine
	metrics *metrics.PipelineMetrics
}

func New(log *slog.Logger, m *metrics.PipelineMetrics, opts ...Option) *Service {
	return &Service{
		log:     log,
		engine:  NewEngine(opts...),
		metrics: m,
	}
}

// Build строит слой фактических данных.
func (s *Service) Build(ctx context.Context, input domain.FactualDataInput) domain.FactualDataResult {
	const op = "factual.Service.Build"

	result, _ := metrics.WrapWithMetrics(ctx, s.metrics, metrics.StageFactual, func(context.Context) (domain.FactualDataResult, error) {
		return s.engine.Build(input), nil
	})

	s.log.Debug("factual layer built",
		slog.String("op", op),
		slog.Int("transactions_used", len(result.TransactionsUsed)),
		slog.Int("outliers", len(result.OutliersDetected)),
		slog.Int("missing", len(result.MissingData)),
		slog.Int("score", result.DataReliabilityScore),
	)

	return result
}
