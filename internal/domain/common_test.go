package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPager(t *testing.T) {
	var nilPager *Pager
	assert.Equal(t, int64(DefaultPageSize), nilPager.Limit())
	assert.Equal(t, int64(0), nilPager.Offset())

	p := NewPager(3, 25)
	assert.Equal(t, int64(25), p.Limit())
	assert.Equal(t, int64(50), p.Offset())

	assert.Equal(t, int64(MaxPageSize), NewPager(1, 5000).Limit())
	assert.Equal(t, int64(0), NewPager(0, 10).Offset())
	assert.Equal(t, int64(DefaultPageSize), NewPager(2, 0).Offset())
}

func TestNormalizePageSize(t *testing.T) {
	assert.Equal(t, int32(DefaultPageSize), NormalizePageSize(0))
	assert.Equal(t, int32(DefaultPageSize), NormalizePageSize(-5))
	assert.Equal(t, int32(40), NormalizePageSize(40))
	assert.Equal(t, int32(MaxPageSize), NormalizePageSize(MaxPageSize+1))
}

func TestComparableWeights_Normalize(t *testing.T) {
	w := ComparableWeights{Geo: 2, Area: 2, Floor: 2, Rooms: 2, Age: 2}.Normalize()
	assert.InDelta(t, 0.2, w.Geo, 1e-12)
	assert.InDelta(t, 1.0, w.Geo+w.Area+w.Floor+w.Rooms+w.Age, 1e-12)

	assert.Equal(t, DefaultComparableWeights(), ComparableWeights{}.Normalize())
}

func TestWeightPresets(t *testing.T) {
	for _, p := range GetWeightPresets() {
		w := p.Weights
		assert.InDelta(t, 1.0, w.Geo+w.Area+w.Floor+w.Rooms+w.Age, 1e-9, p.ID)
	}

	p := GetWeightPresetByID("location_first")
	if assert.NotNil(t, p) {
		assert.Greater(t, p.Weights.Geo, DefaultComparableWeights().Geo)
	}
	assert.Nil(t, GetWeightPresetByID("unknown"))
}
