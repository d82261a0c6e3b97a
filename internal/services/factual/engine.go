// Package factual оценивает надёжность фактов об объекте, сделках и планах.
// Результат содержит только факты с источниками и никогда не содержит оценку стоимости.
package factual

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/samber/lo"

	"propintel/internal/domain"
	"propintel/internal/lib/mathx"
)

// Веса осей надёжности отдельного факта.
const (
	CompletenessWeight = 0.35
	CredibilityWeight  = 0.30
	RecencyWeight      = 0.20
	ConsistencyWeight  = 0.15
)

// Веса итоговой оценки.
const (
	PropertyShare     = 0.45
	TransactionsShare = 0.45
	FlagsShare        = 0.10
	// FlaggedScore / CleanScore — вклад блока флагов при наличии и отсутствии пропусков
	FlaggedScore = 50.0
	CleanScore   = 80.0
)

const (
	// OutlierDeviationPct — отклонение цены за м² от медианы, после которого сделка считается выбросом
	OutlierDeviationPct = 40.0
	// DefaultConsistency — согласованность факта, которому не с чем сравниваться
	DefaultConsistency = 80.0
	// MissingDateRecency — свежесть факта без даты обновления
	MissingDateRecency = 50.0
)

var credibilityScores = map[domain.CredibilityLevel]float64{
	domain.CredibilityOfficial:     100,
	domain.CredibilityRegistry:     100,
	domain.CredibilityGovernment:   95,
	domain.CredibilityMunicipality: 95,
	domain.CredibilityVendor:       75,
	domain.CredibilityUser:         50,
	domain.CredibilityUnspecified:  60,
}

type recencyBucket struct {
	maxDays int
	score   float64
}

var recencyBuckets = []recencyBucket{
	{maxDays: 90, score: 100},
	{maxDays: 180, score: 90},
	{maxDays: 365, score: 75},
	{maxDays: 730, score: 60},
}

// StaleRecency — свежесть факта старше последней корзины.
const StaleRecency = 40.0

// Флаги недостающих данных.
const (
	FlagNoProperty          = "No property record"
	FlagAddressIncomplete   = "Property address incomplete"
	FlagParcelMissing       = "Property parcel (gush/helka) missing"
	FlagAreaMissing         = "Property area missing"
	FlagNoTransactions      = "No transaction records"
	FlagNoComparablePrices  = "No transactions with price and area"
	FlagNoPlanning          = "No planning/zoning records"
	FlagUnattributedSources = "Some facts have no source attribution"
)

// Engine строит слой фактических данных. Состояния между вызовами не хранит.
type Engine struct {
	now func() time.Time
}

// Option — опция движка.
type Option func(*Engine)

// WithClock задаёт источник текущего времени для расчёта свежести.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// BuildFactualDataLayer строит сводку фактов с текущими часами.
func BuildFactualDataLayer(input domain.FactualDataInput) domain.FactualDataResult {
	return NewEngine().Build(input)
}

// Build оценивает каждый факт, отделяет сделки-выбросы и считает итоговую надёжность.
func (e *Engine) Build(input domain.FactualDataInput) domain.FactualDataResult {
	now := e.now()
	result := domain.FactualDataResult{
		TransactionsUsed: []domain.TransactionWithReliability{},
		OutliersDetected: []domain.TransactionWithReliability{},
		Planning:         []domain.PlanningWithReliability{},
		MissingData:      []string{},
	}

	var propertyReliability float64
	if p := input.Property; p != nil {
		breakdown := e.breakdown(propertyCompleteness(*p), p.Source, DefaultConsistency, now)
		result.Property = &domain.PropertySummary{Fact: *p, Reliability: breakdown}
		propertyReliability = breakdown.Reliability
	}

	median, hasMedian := medianPricePerArea(input.Transactions)
	for _, tx := range input.Transactions {
		consistency := DefaultConsistency
		var deviation *float64
		if ppa, ok := pricePerArea(tx); ok && hasMedian {
			dev := math.Abs(ppa-median) / median * 100
			deviation = &dev
			consistency = mathx.Clamp(100-dev, 0, 100)
		}

		item := domain.TransactionWithReliability{
			Fact:         tx,
			Reliability:  e.breakdown(transactionCompleteness(tx), tx.Source, consistency, now),
			DeviationPct: deviation,
		}
		if deviation != nil && *deviation > OutlierDeviationPct {
			result.OutliersDetected = append(result.OutliersDetected, item)
			continue
		}
		result.TransactionsUsed = append(result.TransactionsUsed, item)
	}

	for _, plan := range input.Planning {
		result.Planning = append(result.Planning, domain.PlanningWithReliability{
			Fact:        plan,
			Reliability: e.breakdown(planningCompleteness(plan), plan.Source, DefaultConsistency, now),
		})
	}

	result.MissingData = missingDataFlags(input, hasMedian)

	avgTx := mathx.Mean(lo.Map(result.TransactionsUsed, func(t domain.TransactionWithReliability, _ int) float64 {
		return t.Reliability.Reliability
	}))
	flagsScore := CleanScore
	if len(result.MissingData) > 0 {
		flagsScore = FlaggedScore
	}
	aggregate := propertyReliability*PropertyShare + avgTx*TransactionsShare + flagsScore*FlagsShare
	result.DataReliabilityScore = int(mathx.Round(mathx.Clamp(aggregate, 0, 100)))
	result.Note = buildNote(result)

	return result
}

func (e *Engine) breakdown(completeness float64, src *domain.SourceMeta, consistency float64, now time.Time) domain.ReliabilityBreakdown {
	b := domain.ReliabilityBreakdown{
		Completeness:      mathx.Clamp(completeness, 0, 100),
		SourceCredibility: SourceCredibility(src),
		Recency:           Recency(src, now),
		Consistency:       mathx.Clamp(consistency, 0, 100),
	}
	b.Reliability = mathx.Clamp(
		b.Completeness*CompletenessWeight+
			b.SourceCredibility*CredibilityWeight+
			b.Recency*RecencyWeight+
			b.Consistency*ConsistencyWeight,
		0, 100)
	return b
}

// SourceCredibility — доверие к источнику по его категории.
// Неизвестная категория оценивается как неуказанная.
func SourceCredibility(src *domain.SourceMeta) float64 {
	if src == nil {
		return credibilityScores[domain.CredibilityUnspecified]
	}
	level := domain.CredibilityLevel(strings.ToLower(strings.TrimSpace(string(src.Credibility))))
	if score, ok := credibilityScores[level]; ok {
		return score
	}
	return credibilityScores[domain.CredibilityUnspecified]
}

// Recency — свежесть по дате обновления источника.
func Recency(src *domain.SourceMeta, now time.Time) float64 {
	if src == nil || src.UpdatedAt == nil {
		return MissingDateRecency
	}
	days := int(now.Sub(*src.UpdatedAt).Hours() / 24)
	if days < 0 {
		days = 0
	}
	for _, b := range recencyBuckets {
		if days <= b.maxDays {
			return b.score
		}
	}
	return StaleRecency
}

func propertyCompleteness(p domain.PropertyFact) float64 {
	return checklist(
		strings.TrimSpace(p.Address) != "",
		nonEmpty(p.City),
		nonEmpty(p.Gush),
		nonEmpty(p.Helka),
		p.AreaSqm != nil,
		p.Rooms != nil,
		p.Floor != nil,
		p.BuildYear != nil,
		nonEmpty(p.PropertyType),
	)
}

func transactionCompleteness(t domain.TransactionFact) float64 {
	return checklist(
		strings.TrimSpace(t.Address) != "",
		t.TransactionDate != nil,
		t.Price != nil,
		t.AreaSqm != nil,
		t.Rooms != nil,
		t.Floor != nil,
	)
}

func planningCompleteness(p domain.PlanningFact) float64 {
	return checklist(
		strings.TrimSpace(p.PlanNumber) != "",
		nonEmpty(p.Status),
		nonEmpty(p.Description),
		p.ApprovedAt != nil,
	)
}

// checklist — доля заполненных полей, шкала 0-100.
func checklist(present ...bool) float64 {
	if len(present) == 0 {
		return 0
	}
	return float64(lo.Count(present, true)) / float64(len(present)) * 100
}

func nonEmpty(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

func pricePerArea(t domain.TransactionFact) (float64, bool) {
	if t.Price == nil || t.AreaSqm == nil {
		return 0, false
	}
	price, area := *t.Price, *t.AreaSqm
	if price <= 0 || area <= 0 || !mathx.IsFinite(price) || !mathx.IsFinite(area) {
		return 0, false
	}
	return price / area, true
}

func medianPricePerArea(txs []domain.TransactionFact) (float64, bool) {
	values := make([]float64, 0, len(txs))
	for _, t := range txs {
		if ppa, ok := pricePerArea(t); ok {
			values = append(values, ppa)
		}
	}
	if len(values) == 0 {
		return 0, false
	}
	median := mathx.Median(values)
	return median, median > 0
}

func missingDataFlags(input domain.FactualDataInput, hasPrices bool) []string {
	flags := []string{}

	if p := input.Property; p == nil {
		flags = append(flags, FlagNoProperty)
	} else {
		if strings.TrimSpace(p.Address) == "" || !nonEmpty(p.City) {
			flags = append(flags, FlagAddressIncomplete)
		}
		if !nonEmpty(p.Gush) || !nonEmpty(p.Helka) {
			flags = append(flags, FlagParcelMissing)
		}
		if p.AreaSqm == nil {
			flags = append(flags, FlagAreaMissing)
		}
	}

	if len(input.Transactions) == 0 {
		flags = append(flags, FlagNoTransactions)
	} else if !hasPrices {
		flags = append(flags, FlagNoComparablePrices)
	}

	if len(input.Planning) == 0 {
		flags = append(flags, FlagNoPlanning)
	}

	if hasUnattributed(input) {
		flags = append(flags, FlagUnattributedSources)
	}

	return flags
}

func hasUnattributed(input domain.FactualDataInput) bool {
	if input.Property != nil && input.Property.Source == nil {
		return true
	}
	if lo.ContainsBy(input.Transactions, func(t domain.TransactionFact) bool { return t.Source == nil }) {
		return true
	}
	return lo.ContainsBy(input.Planning, func(p domain.PlanningFact) bool { return p.Source == nil })
}

func buildNote(r domain.FactualDataResult) string {
	var b strings.Builder
	b.WriteString("Factual data only, no valuation opinion. ")
	fmt.Fprintf(&b, "%d transaction(s) used, %d flagged as outlier(s), %d planning record(s). ",
		len(r.TransactionsUsed), len(r.OutliersDetected), len(r.Planning))
	if len(r.MissingData) > 0 {
		fmt.Fprintf(&b, "Missing: %s.", strings.Join(r.MissingData, "; "))
	} else {
		b.WriteString("No missing data detected.")
	}
	return b.String()
}
