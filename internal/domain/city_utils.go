package domain

import (
	"strings"
)

// KnownCities — канонические названия городов Израиля для автоматического определения.
var KnownCities = []string{
	"תל אביב", "ירושלים", "חיפה", "ראשון לציון", "פתח תקווה",
	"אשדוד", "נתניה", "באר שבע", "בני ברק", "חולון",
	"רמת גן", "אשקלון", "רחובות", "בת ים", "בית שמש",
	"כפר סבא", "הרצליה", "חדרה", "מודיעין", "נצרת",
	"לוד", "רמלה", "רעננה", "רהט", "הוד השרון",
	"גבעתיים", "קריית גת", "נהריה", "עפולה", "אילת",
	"רמת השרון", "ראש העין", "קריית אתא", "יבנה", "אור יהודה",
	"נס ציונה", "טבריה", "קריית מוצקין", "קריית ביאליק", "גבעת שמואל",
}

// cityAliases — варианты написания, приводимые к каноническому названию.
// Порядок важен: более длинные варианты проверяются раньше.
var cityAliases = []struct {
	Variant   string
	Canonical string
}{
	{"תל אביב יפו", "תל אביב"},
	{"תל-אביב-יפו", "תל אביב"},
	{"תל-אביב", "תל אביב"},
	{"פתח תקוה", "פתח תקווה"},
	{"מודיעין מכבים רעות", "מודיעין"},
	{"קרית גת", "קריית גת"},
	{"קרית אתא", "קריית אתא"},
	{"קרית מוצקין", "קריית מוצקין"},
	{"קרית ביאליק", "קריית ביאליק"},
	{"הרצלייה", "הרצליה"},
	// Латинские варианты
	{"tel aviv-yafo", "תל אביב"},
	{"tel aviv", "תל אביב"},
	{"jerusalem", "ירושלים"},
	{"haifa", "חיפה"},
	{"rishon lezion", "ראשון לציון"},
	{"petah tikva", "פתח תקווה"},
	{"ashdod", "אשדוד"},
	{"netanya", "נתניה"},
	{"beer sheva", "באר שבע"},
	{"ramat gan", "רמת גן"},
	{"herzliya", "הרצליה"},
}

// CityMatch — найденный в тексте город.
type CityMatch struct {
	// Canonical — каноническое название
	Canonical string
	// Matched — фрагмент текста, по которому найден город
	Matched string
}

// FindCityInText ищет первый известный город в тексте.
// Сначала проверяются варианты написания, затем канонический список.
// Возвращает nil, если город не найден.
func FindCityInText(text string) *CityMatch {
	if text == "" {
		return nil
	}
	lower := strings.ToLower(text)

	for _, alias := range cityAliases {
		if idx := indexWord(lower, alias.Variant); idx >= 0 {
			return &CityMatch{Canonical: alias.Canonical, Matched: text[idx : idx+len(alias.Variant)]}
		}
	}

	for _, city := range KnownCities {
		if idx := indexWord(lower, city); idx >= 0 {
			return &CityMatch{Canonical: city, Matched: text[idx : idx+len(city)]}
		}
	}

	return nil
}

// ExtractCityFromAddress пытается извлечь город из адреса.
// Возвращает nil, если город не удалось определить.
func ExtractCityFromAddress(address string) *string {
	m := FindCityInText(address)
	if m == nil {
		return nil
	}
	return &m.Canonical
}

// NormalizeCity приводит название города к единому виду.
func NormalizeCity(city string) string {
	city = strings.Join(strings.Fields(city), " ")
	lower := strings.ToLower(city)

	for _, alias := range cityAliases {
		if lower == alias.Variant {
			return alias.Canonical
		}
	}
	return city
}

// CitiesMatch проверяет, совпадают ли два города (с учётом нормализации).
func CitiesMatch(city1, city2 string) bool {
	if strings.TrimSpace(city1) == "" || strings.TrimSpace(city2) == "" {
		return false
	}
	return strings.EqualFold(NormalizeCity(city1), NormalizeCity(city2))
}

// indexWord ищет word в s как отдельное слово (границы — пробел, запятая или край строки).
func indexWord(s, word string) int {
	offset := 0
	for {
		idx := strings.Index(s[offset:], word)
		if idx < 0 {
			return -1
		}
		start := offset + idx
		end := start + len(word)
		if isBoundary(s, start-1) && isBoundary(s, end) {
			return start
		}
		offset = start + 1
	}
}

func isBoundary(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return true
	}
	switch s[i] {
	case ' ', ',', '-', '(', ')':
		return true
	}
	return false
}
