// Package mathx содержит числовые помощники, общие для скоринга и агрегации.
package mathx

import (
	"math"
	"sort"

	"golang.org/x/exp/constraints"
)

// Clamp ограничивает v диапазоном [lo, hi]. NaN превращается в lo.
func Clamp[T constraints.Float](v, lo, hi T) T {
	if v != v {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 ограничивает v диапазоном [0, 1].
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

// IsFinite сообщает, что v не NaN и не ±Inf.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Round округляет до ближайшего целого (половины — от нуля).
func Round(v float64) int64 {
	if !IsFinite(v) {
		return 0
	}
	return int64(math.Round(v))
}

// Quantile возвращает квантиль q отсортированной выборки с линейной интерполяцией
// между соседними порядковыми статистиками (позиция (n-1)*q).
func Quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	pos := float64(n-1) * Clamp01(q)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

// Median возвращает медиану выборки (входной срез не изменяется).
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return Quantile(sorted, 0.5)
}

// Mean возвращает среднее арифметическое.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev возвращает стандартное отклонение генеральной совокупности.
func StdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := Mean(values)
	var acc float64
	for _, v := range values {
		d := v - mean
		acc += d * d
	}
	return math.Sqrt(acc / float64(len(values)))
}
