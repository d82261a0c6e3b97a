package address

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFuzzyScore(t *testing.T) {
	t.Run("identical addresses", func(t *testing.T) {
		assert.InDelta(t, 1.0, FuzzyScore("הרצל 10 חיפה", "הרצל 10 חיפה"), 1e-9)
	})

	t.Run("abbreviation and alias resolve to the same key", func(t *testing.T) {
		assert.InDelta(t, 1.0, FuzzyScore("רח' ויצמן 12 תל אביב", "רחוב וייצמן 12 תל אביב"), 1e-9)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, 0.0, FuzzyScore("", "הרצל 10 חיפה"))
		assert.Equal(t, 0.0, FuzzyScore("הרצל 10 חיפה", ""))
	})

	t.Run("different house number is close but not equal", func(t *testing.T) {
		score := FuzzyScore("הרצל 10 חיפה", "הרצל 12 חיפה")
		assert.Greater(t, score, 0.7)
		assert.Less(t, score, 1.0)
	})

	t.Run("different city scores lower", func(t *testing.T) {
		near := FuzzyScore("הרצל 10 חיפה", "הרצל 12 חיפה")
		far := FuzzyScore("הרצל 10 חיפה", "רוטשילד 45 ירושלים")
		assert.Less(t, far, near)
		assert.GreaterOrEqual(t, far, 0.0)
	})

	t.Run("symmetric", func(t *testing.T) {
		a, b := "בן יהודה 5 תל אביב", "בן-יהודה 7 תל אביב"
		assert.InDelta(t, FuzzyScore(a, b), FuzzyScore(b, a), 1e-12)
	})
}

func TestTrigramDice(t *testing.T) {
	assert.Equal(t, 1.0, trigramDice("abcd", "abcd"))
	assert.Equal(t, 0.0, trigramDice("abc", "xyz"))
	assert.Equal(t, 0.0, trigramDice("", ""))
	// abc,bcd против abc,bce: одна общая триграмма из четырёх
	assert.InDelta(t, 0.5, trigramDice("abcd", "abce"), 1e-12)
	assert.Equal(t, 1.0, trigramDice("ab", "ab"))
}

func TestNormalizedLevenshtein(t *testing.T) {
	assert.Equal(t, 0.0, normalizedLevenshtein("", ""))
	assert.Equal(t, 0.0, normalizedLevenshtein("חיפה", "חיפה"))
	assert.InDelta(t, 0.25, normalizedLevenshtein("חיפה", "חיפא"), 1e-12)
	assert.Equal(t, 1.0, normalizedLevenshtein("abc", ""))
}
