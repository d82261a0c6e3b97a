package valuation

import (
	"math"
	"sort"

	"propintel/internal/domain"
	"propintel/internal/lib/mathx"
)

// Пороги линейного затухания схожести: при такой разнице схожесть по измерению равна 0.
const (
	MaxDistanceMeters = 3000.0
	MaxAreaDiffSqm    = 120.0
	MaxFloorDiff      = 15.0
	MaxRoomsDiff      = 5.0
	MaxAgeDiffYears   = 60.0
)

// Коэффициенты корректировки цены аналога.
const (
	FloorAdjustmentPerFloor = 0.004
	RoomsAdjustmentPerRoom  = 0.01
	// AreaAdjustmentPer100Sqm — корректировка на каждые 100 м² разницы
	AreaAdjustmentPer100Sqm = 0.02
	// MaxAdjustment — предел суммарной корректировки (±20%)
	MaxAdjustment = 0.20
)

// Scorer считает схожесть пары (объект, аналог) с заданными весами.
type Scorer struct {
	weights domain.ComparableWeights
}

// NewScorer создаёт скорер; веса нормализуются.
func NewScorer(weights domain.ComparableWeights) *Scorer {
	return &Scorer{weights: weights.Normalize()}
}

// DefaultScorer — скорер с весами по умолчанию (0.30/0.25/0.15/0.15/0.15).
func DefaultScorer() *Scorer {
	return NewScorer(domain.DefaultComparableWeights())
}

// Score вычисляет схожесть по измерениям, итоговую схожесть и скорректированную цену.
func (s *Scorer) Score(subject domain.SubjectFeatures, c domain.ComparableCandidate) domain.ScoredComparable {
	dims := domain.DimensionScores{
		Geo:   linearDecay(c.DistanceMeters, MaxDistanceMeters),
		Area:  linearDecay(subject.AreaSqm-c.Features.AreaSqm, MaxAreaDiffSqm),
		Floor: linearDecay(subject.FloorNum-c.Features.FloorNum, MaxFloorDiff),
		Rooms: linearDecay(subject.Rooms-c.Features.Rooms, MaxRoomsDiff),
		Age:   linearDecay(subject.BuildingAgeYears-c.Features.BuildingAgeYears, MaxAgeDiffYears),
	}

	w := s.weights
	var score float64
	if c.AgeUnknown {
		// вес возраста перераспределяется на остальные измерения
		dims.Age = 0
		if rest := 1 - w.Age; rest > 0 {
			score = mathx.Clamp01((w.Geo*dims.Geo + w.Area*dims.Area + w.Floor*dims.Floor + w.Rooms*dims.Rooms) / rest)
		}
	} else {
		score = mathx.Clamp01(w.Geo*dims.Geo + w.Area*dims.Area + w.Floor*dims.Floor + w.Rooms*dims.Rooms + w.Age*dims.Age)
	}

	adj := Adjustment(subject, c.Features)
	price := c.Price
	if !mathx.IsFinite(price) {
		price = 0
	}

	return domain.ScoredComparable{
		ID:            c.ID,
		Score:         score,
		Dimensions:    dims,
		Adjustment:    adj,
		RawPrice:      price,
		AdjustedPrice: mathx.Round(price * (1 + adj.Total)),
		PricePerArea:  PricePerArea(price, c.Features.AreaSqm),
	}
}

// Rank оценивает весь пул, сортирует по убыванию схожести и оставляет topK (минимум 1).
// При равной схожести сохраняется порядок входного пула.
func (s *Scorer) Rank(subject domain.SubjectFeatures, pool []domain.ComparableCandidate, topK int) []domain.ScoredComparable {
	scored := make([]domain.ScoredComparable, 0, len(pool))
	for _, c := range pool {
		scored = append(scored, s.Score(subject, c))
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if topK < 1 {
		topK = 1
	}
	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}

// ScoreComparable — схожесть пары с весами по умолчанию.
func ScoreComparable(subject domain.SubjectFeatures, c domain.ComparableCandidate) domain.ScoredComparable {
	return DefaultScorer().Score(subject, c)
}

// RankComparables ранжирует пул с весами по умолчанию.
func RankComparables(subject domain.SubjectFeatures, pool []domain.ComparableCandidate, topK int) []domain.ScoredComparable {
	return DefaultScorer().Rank(subject, pool, topK)
}

// Adjustment вычисляет корректировки цены аналога к параметрам объекта.
func Adjustment(subject, comp domain.SubjectFeatures) domain.PriceAdjustment {
	adj := domain.PriceAdjustment{
		Floor: FloorAdjustmentPerFloor * (subject.FloorNum - comp.FloorNum),
		Rooms: RoomsAdjustmentPerRoom * (subject.Rooms - comp.Rooms),
		Area:  AreaAdjustmentPer100Sqm * (subject.AreaSqm - comp.AreaSqm) / 100,
	}
	adj.Total = mathx.Clamp(adj.Floor+adj.Rooms+adj.Area, -MaxAdjustment, MaxAdjustment)
	return adj
}

// PricePerArea возвращает цену за м² или 0, если площадь не положительна.
func PricePerArea(price, area float64) float64 {
	if area <= 0 || !mathx.IsFinite(area) || !mathx.IsFinite(price) {
		return 0
	}
	return price / area
}

// linearDecay: 1 при нулевой разнице, линейно до 0 при |diff| >= limit.
func linearDecay(diff, limit float64) float64 {
	if !mathx.IsFinite(diff) {
		return 0
	}
	return mathx.Clamp01(1 - math.Abs(diff)/limit)
}
