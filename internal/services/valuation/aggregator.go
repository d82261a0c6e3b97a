package valuation

import (
	"math"

	"github.com/samber/lo"

	"propintel/internal/domain"
	"propintel/internal/lib/mathx"
)

const (
	// MinWeight — нижняя граница веса аналога во взвешенном среднем
	MinWeight = 0.0001
	// BaseSpread — базовая полуширина диапазона
	BaseSpread = 0.06
	MinSpread  = 0.08
	MaxSpread  = 0.18
)

// CalculateValuationRange строит диапазон стоимости по скорректированным ценам аналогов.
// Выбросы по цене за м² исключаются; если после отсева ничего не осталось, используются все аналоги.
func CalculateValuationRange(scored []domain.ScoredComparable) domain.ValuationSummary {
	summary, _ := calculateRange(scored)
	return summary
}

// calculateRange дополнительно возвращает полуширину диапазона (0 при пустом входе).
func calculateRange(scored []domain.ScoredComparable) (domain.ValuationSummary, float64) {
	if len(scored) == 0 {
		return domain.ValuationSummary{OutlierIDs: []string{}}, 0
	}

	part := FilterPriceOutliersByIQR(scored)
	used := part.Kept
	if len(used) == 0 {
		used = scored
	}

	var weightedSum, weightTotal float64
	prices := make([]float64, 0, len(used))
	for _, s := range used {
		w := math.Max(MinWeight, s.Score)
		if !mathx.IsFinite(w) {
			w = MinWeight
		}
		price := float64(s.AdjustedPrice)
		weightedSum += price * w
		weightTotal += w
		prices = append(prices, price)
	}

	mid := weightedSum / weightTotal
	dispersion := mathx.StdDev(prices) / math.Max(1, mid)
	spread := mathx.Clamp(BaseSpread+dispersion, MinSpread, MaxSpread)

	low := mathx.Round(mid * (1 - spread))
	m := mathx.Round(mid)
	high := mathx.Round(mid * (1 + spread))
	// после округления порядок может нарушиться на единицу
	if low > m {
		low = m
	}
	if high < m {
		high = m
	}

	return domain.ValuationSummary{
		Low:             low,
		Mid:             m,
		High:            high,
		ComparablesUsed: len(used),
		OutlierIDs:      lo.Map(part.Outliers, func(s domain.ScoredComparable, _ int) string { return s.ID }),
	}, spread
}

// Пороги уровня уверенности.
const (
	LowConfidenceBelow    = 3
	MediumConfidenceBelow = 5
	WideSpread            = 0.15
)

// Confidence оценивает надёжность диапазона по числу аналогов и его ширине.
func Confidence(summary domain.ValuationSummary, spread float64) domain.ConfidenceLevel {
	switch {
	case summary.ComparablesUsed == 0:
		return domain.ConfidenceInsufficient
	case summary.ComparablesUsed < LowConfidenceBelow:
		return domain.ConfidenceLow
	case summary.ComparablesUsed < MediumConfidenceBelow || spread >= WideSpread:
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceHigh
	}
}
