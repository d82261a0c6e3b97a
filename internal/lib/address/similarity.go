package address

import (
	"github.com/agnivade/levenshtein"

	"propintel/internal/lib/mathx"
)

// Веса нечёткого сравнения адресов.
const (
	LevenshteinWeight = 0.6
	TrigramWeight     = 0.4
)

// FuzzyScore нормализует оба адреса и возвращает их схожесть (0-1):
// 0.6×(1 − нормированное расстояние Левенштейна) + 0.4×коэффициент Дайса по триграммам.
// Если хотя бы один адрес не разобран, возвращает 0.
func FuzzyScore(a, b string) float64 {
	na := Normalize(a).Normalized
	nb := Normalize(b).Normalized
	if na == "" || nb == "" {
		return 0
	}
	return mathx.Clamp01(LevenshteinWeight*(1-normalizedLevenshtein(na, nb)) + TrigramWeight*trigramDice(na, nb))
}

// normalizedLevenshtein — расстояние Левенштейна по рунам, делённое на длину большей строки.
func normalizedLevenshtein(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	longest := max(la, lb)
	if longest == 0 {
		return 0
	}
	return float64(levenshtein.ComputeDistance(a, b)) / float64(longest)
}

// trigramDice — коэффициент Дайса по мультимножествам триграмм рун.
// Строки короче трёх рун считаются одной "триграммой".
func trigramDice(a, b string) float64 {
	ta, tb := trigrams(a), trigrams(b)
	total := 0
	for _, c := range ta {
		total += c
	}
	for _, c := range tb {
		total += c
	}
	if total == 0 {
		return 0
	}
	shared := 0
	for g, ca := range ta {
		shared += min(ca, tb[g])
	}
	return 2 * float64(shared) / float64(total)
}

func trigrams(s string) map[string]int {
	runes := []rune(s)
	out := make(map[string]int)
	if len(runes) == 0 {
		return out
	}
	if len(runes) < 3 {
		out[s]++
		return out
	}
	for i := 0; i+3 <= len(runes); i++ {
		out[string(runes[i:i+3])]++
	}
	return out
}
