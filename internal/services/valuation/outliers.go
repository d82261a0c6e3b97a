package valuation

import (
	"sort"

	"propintel/internal/domain"
	"propintel/internal/lib/mathx"
)

const (
	// IQRMultiplier — множитель межквартильного размаха для границ выбросов
	IQRMultiplier = 1.5
	// MinSampleForIQR — минимум аналогов с ценой за м² для отсева выбросов
	MinSampleForIQR = 5
)

// OutlierPartition — разбиение аналогов на оставленные и выбросы.
type OutlierPartition struct {
	Kept     []domain.ScoredComparable `json:"kept"`
	Outliers []domain.ScoredComparable `json:"outliers"`
	// Lower/Upper — границы по цене за м² (0, если выборка мала)
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// FilterPriceOutliersByIQR отсеивает аналоги, у которых цена за м² выходит за
// [Q1−1.5·IQR, Q3+1.5·IQR]. При менее чем 5 ценах выбросов нет.
// Аналоги без цены за м² (площадь не указана) не оцениваются и остаются.
func FilterPriceOutliersByIQR(scored []domain.ScoredComparable) OutlierPartition {
	values := make([]float64, 0, len(scored))
	for _, s := range scored {
		if hasPricePerArea(s) {
			values = append(values, s.PricePerArea)
		}
	}

	part := OutlierPartition{
		Kept:     make([]domain.ScoredComparable, 0, len(scored)),
		Outliers: []domain.ScoredComparable{},
	}

	if len(values) < MinSampleForIQR {
		part.Kept = append(part.Kept, scored...)
		return part
	}

	sort.Float64s(values)
	q1 := mathx.Quantile(values, 0.25)
	q3 := mathx.Quantile(values, 0.75)
	iqr := q3 - q1
	part.Lower = q1 - IQRMultiplier*iqr
	part.Upper = q3 + IQRMultiplier*iqr

	for _, s := range scored {
		if hasPricePerArea(s) && (s.PricePerArea < part.Lower || s.PricePerArea > part.Upper) {
			part.Outliers = append(part.Outliers, s)
			continue
		}
		part.Kept = append(part.Kept, s)
	}
	return part
}

func hasPricePerArea(s domain.ScoredComparable) bool {
	return s.PricePerArea > 0 && mathx.IsFinite(s.PricePerArea)
}
