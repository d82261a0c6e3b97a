package valuation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"propintel/internal/config"
	"propintel/internal/domain"
	"propintel/internal/lib/metrics"
)

var (
	ErrPoolTooLarge   = errors.New("comparable pool exceeds configured size limit")
	ErrUnknownPreset  = errors.New("unknown weight preset")
	ErrInvalidGeoCell = errors.New("geo cell prefix contains non-geohash characters")
)

const geohashAlphabet = "0123456789bcdefghjkmnpqrstuvwxyz"

// ComparableSource подбирает кандидатов из сохранённых сделок по префиксу геоячейки.
// limit <= 0 означает без ограничения.
type ComparableSource interface {
	ListComparables(ctx context.Context, geoCellPrefix string, limit int) ([]domain.CleanedTransactionRecord, error)
}

// Service — подбор аналогов и расчёт диапазона стоимости.
type Service struct {
	log     *slog.Logger
	metrics *metrics.PipelineMetrics
	cfg     config.ValuationConfig
	source  ComparableSource
}

// ServiceOption — опция для конфигурации сервиса.
type ServiceOption func(*Service)

// WithComparableSource включает подбор аналогов из хранилища сделок.
func WithComparableSource(src ComparableSource) ServiceOption {
	return func(s *Service) {
		s.source = src
	}
}

func New(log *slog.Logger, m *metrics.PipelineMetrics, cfg config.ValuationConfig, opts ...ServiceOption) *Service {
	s := &Service{log: log, metrics: m, cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RankRequest — параметры ранжирования.
type RankRequest struct {
	Subject domain.SubjectFeatures
	Pool    []domain.ComparableCandidate
	TopK    int
	// PresetID — пресет весов; пусто — пресет из конфигурации
	PresetID string
	// Weights — явные веса, имеют приоритет над пресетом
	Weights *domain.ComparableWeights
}

// Rank ранжирует пул аналогов и возвращает topK лучших.
func (s *Service) Rank(ctx context.Context, req RankRequest) ([]domain.ScoredComparable, error) {
	const op = "valuation.Service.Rank"

	log := s.log.With(slog.String("op", op), slog.Int("pool", len(req.Pool)))
	timer := s.metrics.StartTimer(metrics.StageRanking)

	scorer, err := s.scorerFor(req)
	if err != nil {
		timer.Stop(len(req.Pool), 0, err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if s.cfg.MaxPoolSize > 0 && len(req.Pool) > s.cfg.MaxPoolSize {
		timer.Stop(len(req.Pool), 0, ErrPoolTooLarge)
		return nil, fmt.Errorf("%s: %w", op, ErrPoolTooLarge)
	}

	topK := req.TopK
	if topK <= 0 {
		topK = s.cfg.DefaultTopK
	}

	ranked := scorer.Rank(req.Subject, req.Pool, topK)
	timer.Stop(len(req.Pool), len(req.Pool)-len(ranked), nil)
	log.Debug("comparables ranked", slog.Int("top_k", topK), slog.Int("returned", len(ranked)))

	return ranked, nil
}

// Estimate ранжирует аналоги и строит по ним диапазон стоимости с уровнем уверенности.
func (s *Service) Estimate(ctx context.Context, req RankRequest) (domain.ValuationEstimate, error) {
	const op = "valuation.Service.Estimate"

	ranked, err := s.Rank(ctx, req)
	if err != nil {
		return domain.ValuationEstimate{}, fmt.Errorf("%s: %w", op, err)
	}

	timer := s.metrics.StartTimer(metrics.StageValuation)
	summary, spread := calculateRange(ranked)
	estimate := domain.ValuationEstimate{
		Summary:    summary,
		Ranked:     ranked,
		Spread:     spread,
		Confidence: Confidence(summary, spread),
	}
	timer.Stop(len(ranked), len(summary.OutlierIDs), nil)

	s.log.Info("valuation estimated",
		slog.String("op", op),
		slog.Int64("mid", summary.Mid),
		slog.Int("comparables_used", summary.ComparablesUsed),
		slog.Int("outliers", len(summary.OutlierIDs)),
		slog.String("confidence", estimate.Confidence.String()),
	)

	return estimate, nil
}

// CandidatesFromStore собирает пул кандидатов из сохранённых сделок той же геоячейки.
// Расстояние считается по координатам записи, если они есть.
func (s *Service) CandidatesFromStore(ctx context.Context, geoCellPrefix string, lat, lon float64, limit int) ([]domain.ComparableCandidate, error) {
	const op = "valuation.Service.CandidatesFromStore"

	if !validGeoCell(geoCellPrefix) {
		return nil, fmt.Errorf("%s: %w: %q", op, ErrInvalidGeoCell, geoCellPrefix)
	}
	if s.source == nil {
		return []domain.ComparableCandidate{}, nil
	}
	switch {
	case s.cfg.MaxPoolSize > 0 && (limit <= 0 || limit > s.cfg.MaxPoolSize):
		limit = s.cfg.MaxPoolSize
	case limit < 0:
		limit = 0
	}

	records, err := s.source.ListComparables(ctx, geoCellPrefix, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return CandidatesFromRecords(records, lat, lon), nil
}

func validGeoCell(cell string) bool {
	for _, r := range cell {
		if !strings.ContainsRune(geohashAlphabet, r) {
			return false
		}
	}
	return true
}

func (s *Service) scorerFor(req RankRequest) (*Scorer, error) {
	if req.Weights != nil {
		return NewScorer(*req.Weights), nil
	}
	id := req.PresetID
	if id == "" {
		id = s.cfg.DefaultPreset
	}
	if id == "" {
		return DefaultScorer(), nil
	}
	preset := domain.GetWeightPresetByID(id)
	if preset == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPreset, id)
	}
	return NewScorer(preset.Weights), nil
}
