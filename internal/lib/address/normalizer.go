// Package address разбирает и нормализует израильские адреса на иврите.
// Все функции чистые: без состояния и без ввода-вывода.
package address

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"propintel/internal/domain"
)

// Веса уверенности разбора.
const (
	CityWeight        = 0.35
	StreetWeight      = 0.35
	HouseNumberWeight = 0.20
	// LengthBonus начисляется, если очищенный текст не короче MinCleanedLength рун
	LengthBonus      = 0.05
	MinCleanedLength = 10
	// WellFormedBonus начисляется, если в ключе заполнены город, улица и номер дома
	WellFormedBonus = 0.05
)

// abbreviations — упорядоченная таблица раскрытия сокращений.
// Варианты с гершаимом (״) и гершем (׳) идут рядом с ASCII-кавычками.
var abbreviations = []struct{ from, to string }{
	{`רח'`, "רחוב "},
	{`רח׳`, "רחוב "},
	{`שד'`, "שדרות "},
	{`שד׳`, "שדרות "},
	{`שכ'`, "שכונת "},
	{`שכ׳`, "שכונת "},
	{`סמ'`, "סמטת "},
	{`סמ׳`, "סמטת "},
	{`ת"א`, "תל אביב"},
	{`ת״א`, "תל אביב"},
	{`י-ם`, "ירושלים"},
	{`פ"ת`, "פתח תקווה"},
	{`פ״ת`, "פתח תקווה"},
	{`ר"ג`, "רמת גן"},
	{`ר״ג`, "רמת גן"},
	{`ב"ש`, "באר שבע"},
	{`ב״ש`, "באר שבע"},
	{`ראשל"צ`, "ראשון לציון"},
	{`ראשל״צ`, "ראשון לציון"},
	{`כ"ס`, "כפר סבא"},
	{`כ״ס`, "כפר סבא"},
}

// streetAliases — приведение вариантов написания улиц к каноническому.
var streetAliases = map[string]string{
	"וייצמן":         "ויצמן",
	"ויצמן חיים":     "ויצמן",
	"חיים ויצמן":     "ויצמן",
	"הרצל בנימין":    "הרצל",
	"בנימין זאב הרצל": "הרצל",
	"זאב זבוטינסקי":  "זבוטינסקי",
	"זבוטינסקי זאב":  "זבוטינסקי",
	"אבן-גבירול":     "אבן גבירול",
	"דיזינגוף":       "דיזנגוף",
	"בן-יהודה":       "בן יהודה",
	"אלנבי אדמונד":   "אלנבי",
}

// Границы слов задаются явно: \b в RE2 работает только для ASCII.
var (
	apartmentRe = regexp.MustCompile(`(?i)(?:^|[\s,])(?:דירה|דיר['׳]|ד['׳]|apt\.?|apartment)\s*(\d{1,4}[א-ת]?)`)
	entranceRe  = regexp.MustCompile(`(?i)(?:^|[\s,])(?:כניסה|כנ['׳]|entrance)\s*([א-ת]|\d{1,2})(?:$|[\s,])`)

	// subUnitRes — токены квартиры, этажа и подъезда, удаляемые из текста улицы.
	subUnitRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:^|[\s,])(?:דירה|דיר['׳]|ד['׳]|apt\.?|apartment)\s*\d{1,4}[א-ת]?`),
		regexp.MustCompile(`(?i)(?:^|[\s,])(?:קומה|קו['׳]|ק['׳]|floor)\s*-?\d{1,3}`),
		regexp.MustCompile(`(?i)(?:^|[\s,])(?:כניסה|כנ['׳]|entrance)\s*(?:[א-ת]|\d{1,2})(?:$|[\s,])`),
	}

	// houseSlashRe — запись "дом/квартира", например "12/4"
	houseSlashRe    = regexp.MustCompile(`(?:^|\s)(\d{1,5}[א-תa-zA-Z]?)/(\d{1,4})(?:$|[\s,])`)
	houseNumberRe   = regexp.MustCompile(`(?:^|\s)(\d{1,5}[א-תa-z]?)(?:$|\s)`)
	streetPrefixRe  = regexp.MustCompile(`^(?:רחוב|שדרות)\s+`)
	quoteReplacer   = strings.NewReplacer(`"`, "", `'`, "", "״", "", "׳", "", "“", "", "”", "", "‘", "", "’", "", ",", " ")
	lowerCaser      = cases.Lower(language.Und)
)

// Normalize разбирает адрес и возвращает его нормализованное представление.
// Никогда не паникует; неопределённые части остаются nil.
func Normalize(raw string) domain.NormalizedAddress {
	result := domain.NormalizedAddress{Raw: raw}

	// Шаг 1: убираем bidi-символы и раскрываем сокращения
	expanded := collapseSpaces(expandAbbreviations(stripBidi(norm.NFC.String(raw))))

	// Квартира и подъезд ищутся в тексте до удаления подъездных токенов
	result.Parts.Apartment = firstGroup(apartmentRe, expanded)
	result.Parts.Entrance = firstGroup(entranceRe, expanded)
	if m := houseSlashRe.FindStringSubmatch(expanded); m != nil && result.Parts.Apartment == nil {
		apartment := m[2]
		result.Parts.Apartment = &apartment
	}

	// Шаг 2: удаляем квартиру/этаж/подъезд
	stripped := houseSlashRe.ReplaceAllString(expanded, " ${1} ")
	for _, re := range subUnitRes {
		stripped = re.ReplaceAllString(stripped, " ")
	}

	// Шаг 3: кавычки, пробелы
	cleaned := collapseSpaces(quoteReplacer.Replace(stripped))
	result.Cleaned = cleaned

	// Шаг 4: разбор частей
	lower := lowerCaser.String(cleaned)
	remainder := lower

	if m := houseNumberRe.FindStringSubmatchIndex(remainder); m != nil {
		house := remainder[m[2]:m[3]]
		result.Parts.HouseNumber = &house
		remainder = remainder[:m[2]] + " " + remainder[m[3]:]
	}

	if city := domain.FindCityInText(remainder); city != nil {
		canonical := city.Canonical
		result.Parts.City = &canonical
		remainder = strings.Replace(remainder, city.Matched, " ", 1)
	}

	street := streetPrefixRe.ReplaceAllString(collapseSpaces(remainder), "")
	street = strings.Trim(street, " -")
	if street != "" {
		result.Parts.Street = &street
		// Шаг 5: канонизация улицы
		canonical := CanonicalStreet(street)
		result.CanonicalStreet = &canonical
	}

	result.Normalized = buildKey(result.Parts.City, result.CanonicalStreet, result.Parts.HouseNumber)
	result.Confidence = confidence(result)

	return result
}

// CanonicalStreet приводит название улицы к каноническому виду по таблице синонимов.
func CanonicalStreet(street string) string {
	street = collapseSpaces(street)
	if canonical, ok := streetAliases[street]; ok {
		return canonical
	}
	return street
}

func expandAbbreviations(s string) string {
	for _, a := range abbreviations {
		s = strings.ReplaceAll(s, a.from, a.to)
	}
	return s
}

// stripBidi удаляет управляющие символы направления письма (RLM, LRM, RLE и т.п.).
func stripBidi(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Bidi_Control, r) || r == '\u200b' || r == '\ufeff' {
			return -1
		}
		return r
	}, s)
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func firstGroup(re *regexp.Regexp, s string) *string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 || m[1] == "" {
		return nil
	}
	v := m[1]
	return &v
}

// buildKey собирает ключ "city|street|houseNumber". Пустая строка — если ничего не разобрано.
func buildKey(city, street, house *string) string {
	if city == nil && street == nil && house == nil {
		return ""
	}
	parts := []string{deref(city), deref(street), deref(house)}
	return lowerCaser.String(strings.Join(parts, "|"))
}

func confidence(a domain.NormalizedAddress) float64 {
	var score float64
	if a.Parts.City != nil {
		score += CityWeight
	}
	if a.Parts.Street != nil {
		score += StreetWeight
	}
	if a.Parts.HouseNumber != nil {
		score += HouseNumberWeight
	}
	if len([]rune(a.Cleaned)) >= MinCleanedLength {
		score += LengthBonus
	}
	if a.Parts.City != nil && a.Parts.Street != nil && a.Parts.HouseNumber != nil {
		score += WellFormedBonus
	}
	if score > 1 {
		return 1
	}
	return score
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
