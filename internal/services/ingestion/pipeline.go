package ingestion

import (
	"strings"
	"time"

	"propintel/internal/domain"
	"propintel/internal/lib/address"
	"propintel/internal/lib/fingerprint"
	"propintel/internal/lib/mathx"
)

// Веса полноты записи.
const (
	CompletenessBase   = 0.4
	CompletenessArea   = 0.2
	CompletenessFloor  = 0.1
	CompletenessRooms  = 0.1
	CompletenessCoords = 0.2
)

// RecencyHorizonMonths — через сколько месяцев сделка перестаёт считаться свежей.
const RecencyHorizonMonths = 48

// Надёжность источника по ключевым словам в идентификаторе источника.
const (
	SourceReliabilityOfficial = 0.95
	SourceReliabilityListing  = 0.65
	SourceReliabilityDefault  = 0.75
)

// Веса итоговой уверенности.
const (
	ConfidenceSourceWeight       = 0.35
	ConfidenceRecencyWeight      = 0.25
	ConfidenceAddressWeight      = 0.25
	ConfidenceCompletenessWeight = 0.15
	ConfidenceOutlierRiskWeight  = 0.10
)

// PlaceholderOutlierRisk — фиксированный риск выброса для каждой записи.
// Методика его расчёта по локальной дисперсии цен пока не определена.
const PlaceholderOutlierRisk = 0.5

// Причины отклонения строки.
const (
	ReasonMissingSource       = "missing source"
	ReasonMissingSourceRecord = "missing sourceRecordId"
	ReasonMissingAddress      = "missing address"
	ReasonMissingDate         = "missing transactionDate"
	ReasonMissingPrice        = "missing price"
	ReasonNonPositivePrice    = "price must be a finite number greater than 0"
)

var (
	officialSourceKeywords = []string{"tax", "gov", "official"}
	listingSourceKeywords  = []string{"listing", "marketplace"}
)

// Pipeline — однопроходная обработка батча сырых сделок.
// Множество ключей дедупликации живёт только в пределах одного вызова Run.
type Pipeline struct {
	now func() time.Time
}

// Option настраивает Pipeline.
type Option func(*Pipeline)

// WithClock задаёт источник текущего времени (для расчёта свежести).
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// NewPipeline создаёт пайплайн.
func NewPipeline(opts ...Option) *Pipeline {
	p := &Pipeline{now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run валидирует, оценивает и дедуплицирует батч. Никогда не паникует;
// ошибки отдельных строк попадают в Errors и не прерывают обработку.
func (p *Pipeline) Run(rows []domain.RawTransactionRecord) domain.IngestionResult {
	result := domain.IngestionResult{
		Cleaned:    make([]domain.CleanedTransactionRecord, 0, len(rows)),
		Duplicates: []domain.CleanedTransactionRecord{},
		Errors:     []domain.IngestionError{},
	}
	now := p.now()
	seen := make(map[string]struct{}, len(rows))

	for i, row := range rows {
		if reason := validate(row); reason != "" {
			result.Errors = append(result.Errors, domain.IngestionError{Index: i, Reason: reason})
			continue
		}

		rec := Clean(row, now)
		if _, dup := seen[rec.DedupeKey]; dup {
			result.Duplicates = append(result.Duplicates, rec)
			continue
		}
		seen[rec.DedupeKey] = struct{}{}
		result.Cleaned = append(result.Cleaned, rec)
	}

	return result
}

// RunIngestionPipeline обрабатывает батч относительно текущего времени.
func RunIngestionPipeline(rows []domain.RawTransactionRecord) domain.IngestionResult {
	return NewPipeline().Run(rows)
}

// Clean нормализует и оценивает одну валидную запись.
func Clean(row domain.RawTransactionRecord, now time.Time) domain.CleanedTransactionRecord {
	addr := address.Normalize(row.Address)

	city := row.City
	if city == nil || strings.TrimSpace(*city) == "" {
		city = addr.Parts.City
	}

	completeness := CompletenessScore(row)
	recency := RecencyScore(row.TransactionDate, now)
	source := SourceReliability(row.SourceID)

	return domain.CleanedTransactionRecord{
		RawTransactionRecord: row,
		NormalizedAddress:    addr,
		CompletenessScore:    completeness,
		RecencyScore:         recency,
		SourceReliability:    source,
		ConfidenceScore:      ConfidenceScore(source, recency, addr.Confidence, completeness, PlaceholderOutlierRisk),
		DedupeKey: fingerprint.Dedupe(fingerprint.Input{
			NormalizedAddress: addr.Normalized,
			City:              city,
			Lat:               row.Lat,
			Lon:               row.Lon,
			AreaSqm:           row.AreaSqm,
		}),
		GeoCell: fingerprint.GeoCell(row.Lat, row.Lon),
	}
}

func validate(row domain.RawTransactionRecord) string {
	switch {
	case strings.TrimSpace(row.SourceID) == "":
		return ReasonMissingSource
	case strings.TrimSpace(row.SourceRecordID) == "":
		return ReasonMissingSourceRecord
	case strings.TrimSpace(row.Address) == "":
		return ReasonMissingAddress
	case strings.TrimSpace(row.TransactionDate) == "":
		return ReasonMissingDate
	case row.Price == nil:
		return ReasonMissingPrice
	case !mathx.IsFinite(*row.Price) || *row.Price <= 0:
		return ReasonNonPositivePrice
	}
	return ""
}

// CompletenessScore — 0.4 базово плюс бонусы за площадь, этаж, комнаты и пару координат.
func CompletenessScore(row domain.RawTransactionRecord) float64 {
	score := CompletenessBase
	if isSet(row.AreaSqm) {
		score += CompletenessArea
	}
	if row.Floor != nil {
		score += CompletenessFloor
	}
	if isSet(row.Rooms) {
		score += CompletenessRooms
	}
	if isSet(row.Lat) && isSet(row.Lon) {
		score += CompletenessCoords
	}
	return mathx.Clamp01(score)
}

// RecencyScore — clamp(1 − месяцев_с_продажи/48, 0, 1). Некорректная дата даёт 0.
func RecencyScore(date string, now time.Time) float64 {
	sold, ok := ParseDate(date)
	if !ok {
		return 0
	}
	return mathx.Clamp01(1 - float64(MonthsBetween(sold, now))/RecencyHorizonMonths)
}

// MonthsBetween возвращает число полных календарных месяцев между from и to.
func MonthsBetween(from, to time.Time) int {
	months := (to.Year()-from.Year())*12 + int(to.Month()-from.Month())
	if to.Day() < from.Day() {
		months--
	}
	return months
}

// ParseDate разбирает дату в форматах ISO (дата или дата со временем).
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SourceReliability — фиксированная таблица надёжности по идентификатору источника.
func SourceReliability(source string) float64 {
	s := strings.ToLower(source)
	for _, kw := range officialSourceKeywords {
		if strings.Contains(s, kw) {
			return SourceReliabilityOfficial
		}
	}
	for _, kw := range listingSourceKeywords {
		if strings.Contains(s, kw) {
			return SourceReliabilityListing
		}
	}
	return SourceReliabilityDefault
}

// ConfidenceScore объединяет оценки записи в итоговую уверенность (0-1).
func ConfidenceScore(source, recency, addressConfidence, completeness, outlierRisk float64) float64 {
	return mathx.Clamp01(ConfidenceSourceWeight*source +
		ConfidenceRecencyWeight*recency +
		ConfidenceAddressWeight*addressConfidence +
		ConfidenceCompletenessWeight*completeness -
		ConfidenceOutlierRiskWeight*outlierRisk)
}

func isSet(v *float64) bool {
	return v != nil && mathx.IsFinite(*v)
}
