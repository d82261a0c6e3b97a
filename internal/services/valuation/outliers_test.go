package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propintel/internal/domain"
)

func TestFilterPriceOutliersByIQR_SmallSampleKeepsAll(t *testing.T) {
	in := []domain.ScoredComparable{
		scored("a", 0.9, 1_000_000, 10_000),
		scored("b", 0.9, 1_000_000, 10_000),
		scored("c", 0.9, 1_000_000, 10_000),
		scored("d", 0.9, 50_000_000, 500_000),
	}

	part := FilterPriceOutliersByIQR(in)

	assert.Len(t, part.Kept, 4)
	assert.Empty(t, part.Outliers)
	assert.Zero(t, part.Lower)
	assert.Zero(t, part.Upper)
}

func TestFilterPriceOutliersByIQR_FlagsExtremePricePerArea(t *testing.T) {
	ranked := RankComparables(subject, scenarioPool(), 10)

	part := FilterPriceOutliersByIQR(ranked)

	require.Len(t, part.Outliers, 1)
	assert.Equal(t, "x-outlier", part.Outliers[0].ID)
	assert.Len(t, part.Kept, 5)
	assert.InDelta(t, 20_939.8, part.Lower, 1)
	assert.InDelta(t, 33_243.2, part.Upper, 1)
}

func TestFilterPriceOutliersByIQR_MissingAreaIsKept(t *testing.T) {
	in := []domain.ScoredComparable{
		scored("a", 0.9, 1_000_000, 10_000),
		scored("b", 0.9, 1_050_000, 10_500),
		scored("c", 0.9, 1_100_000, 11_000),
		scored("d", 0.9, 1_000_000, 10_000),
		scored("e", 0.9, 1_020_000, 10_200),
		scored("no-area", 0.9, 9_000_000, 0),
	}

	part := FilterPriceOutliersByIQR(in)

	assert.Empty(t, part.Outliers)
	assert.Len(t, part.Kept, 6)
}

func TestFilterPriceOutliersByIQR_PreservesOrder(t *testing.T) {
	in := []domain.ScoredComparable{
		scored("a", 0.9, 1_000_000, 10_000),
		scored("hi", 0.8, 9_000_000, 90_000),
		scored("b", 0.7, 1_050_000, 10_500),
		scored("c", 0.6, 1_100_000, 11_000),
		scored("d", 0.5, 1_000_000, 10_000),
		scored("e", 0.4, 1_020_000, 10_200),
	}

	part := FilterPriceOutliersByIQR(in)

	ids := make([]string, 0, len(part.Kept))
	for _, k := range part.Kept {
		ids = append(ids, k.ID)
	}
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, ids)
	require.Len(t, part.Outliers, 1)
	assert.Equal(t, "hi", part.Outliers[0].ID)
}
