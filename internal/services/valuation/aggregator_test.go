package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"propintel/internal/domain"
)

func TestCalculateValuationRange_Empty(t *testing.T) {
	got := CalculateValuationRange(nil)

	assert.Equal(t, domain.ValuationSummary{OutlierIDs: []string{}}, got)
}

func TestCalculateValuationRange_SingleComparable(t *testing.T) {
	got := CalculateValuationRange([]domain.ScoredComparable{scored("a", 0.8, 2_000_000, 20_000)})

	assert.Equal(t, int64(2_000_000), got.Mid)
	// одна цена: разброс 0, полуширина = MinSpread
	assert.Equal(t, int64(1_840_000), got.Low)
	assert.Equal(t, int64(2_160_000), got.High)
	assert.Equal(t, 1, got.ComparablesUsed)
	assert.Empty(t, got.OutlierIDs)
}

func TestCalculateValuationRange_ExcludesOutlier(t *testing.T) {
	ranked := RankComparables(subject, scenarioPool(), 10)

	got := CalculateValuationRange(ranked)

	assert.Equal(t, []string{"x-outlier"}, got.OutlierIDs)
	assert.Equal(t, 5, got.ComparablesUsed)
	assert.InDelta(t, 2_685_838, got.Mid, 2)
	assert.InDelta(t, 2_326_598, got.Low, 2)
	assert.InDelta(t, 3_045_077, got.High, 2)
	assert.GreaterOrEqual(t, got.Mid, int64(2_400_000))
	assert.LessOrEqual(t, got.Mid, int64(3_000_000))
}

func TestCalculateValuationRange_Ordering(t *testing.T) {
	cases := map[string][]domain.ScoredComparable{
		"zero scores": {
			scored("a", 0, 1_000_000, 10_000),
			scored("b", 0, 1_500_000, 15_000),
		},
		"wide dispersion": {
			scored("a", 0.9, 500_000, 5_000),
			scored("b", 0.1, 5_000_000, 50_000),
		},
		"tiny prices": {
			scored("a", 0.5, 1, 0),
			scored("b", 0.5, 2, 0),
		},
	}

	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			got := CalculateValuationRange(in)
			assert.LessOrEqual(t, got.Low, got.Mid)
			assert.LessOrEqual(t, got.Mid, got.High)
			assert.Equal(t, len(in), got.ComparablesUsed)
		})
	}
}

func TestCalculateValuationRange_SpreadCapped(t *testing.T) {
	_, spread := calculateRange([]domain.ScoredComparable{
		scored("a", 0.9, 500_000, 0),
		scored("b", 0.9, 5_000_000, 0),
	})
	assert.Equal(t, MaxSpread, spread)
}

func TestConfidence(t *testing.T) {
	tests := []struct {
		name   string
		used   int
		spread float64
		want   domain.ConfidenceLevel
	}{
		{"none", 0, 0, domain.ConfidenceInsufficient},
		{"two", 2, 0.08, domain.ConfidenceLow},
		{"four", 4, 0.08, domain.ConfidenceMedium},
		{"five wide", 5, 0.16, domain.ConfidenceMedium},
		{"five narrow", 5, 0.10, domain.ConfidenceHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Confidence(domain.ValuationSummary{ComparablesUsed: tt.used}, tt.spread)
			if got != tt.want {
				t.Errorf("Confidence() = %v, want %v", got, tt.want)
			}
		})
	}
}
