package domain

import "time"

// CredibilityLevel — категория источника факта.
type CredibilityLevel string

const (
	CredibilityUnspecified  CredibilityLevel = ""
	CredibilityOfficial     CredibilityLevel = "official"
	CredibilityRegistry     CredibilityLevel = "registry"
	CredibilityGovernment   CredibilityLevel = "government"
	CredibilityMunicipality CredibilityLevel = "municipality"
	CredibilityVendor       CredibilityLevel = "vendor"
	CredibilityUser         CredibilityLevel = "user"
)

func (c CredibilityLevel) String() string {
	return string(c)
}

// SourceMeta — происхождение факта.
type SourceMeta struct {
	Source      string           `json:"source"`
	Credibility CredibilityLevel `json:"credibility"`
	UpdatedAt   *time.Time       `json:"updatedAt,omitempty"`
}

// PropertyFact — сведения об объекте (адрес, гуш/хелка, площадь).
type PropertyFact struct {
	Address      string      `json:"address"`
	City         *string     `json:"city,omitempty"`
	Gush         *string     `json:"gush,omitempty"`
	Helka        *string     `json:"helka,omitempty"`
	AreaSqm      *float64    `json:"areaSqm,omitempty"`
	Rooms        *float64    `json:"rooms,omitempty"`
	Floor        *int        `json:"floor,omitempty"`
	BuildYear    *int        `json:"buildYear,omitempty"`
	PropertyType *string     `json:"propertyType,omitempty"`
	Source       *SourceMeta `json:"source,omitempty"`
}

// TransactionFact — зарегистрированная сделка. Price — факт сделки, а не оценка.
type TransactionFact struct {
	ID              string      `json:"id"`
	Address         string      `json:"address"`
	TransactionDate *time.Time  `json:"transactionDate,omitempty"`
	Price           *float64    `json:"price,omitempty"`
	AreaSqm         *float64    `json:"areaSqm,omitempty"`
	Rooms           *float64    `json:"rooms,omitempty"`
	Floor           *int        `json:"floor,omitempty"`
	Source          *SourceMeta `json:"source,omitempty"`
}

// PlanningFact — запись о градостроительном плане (ТАБА) или разрешении.
type PlanningFact struct {
	PlanNumber  string      `json:"planNumber"`
	Status      *string     `json:"status,omitempty"`
	Description *string     `json:"description,omitempty"`
	ApprovedAt  *time.Time  `json:"approvedAt,omitempty"`
	Source      *SourceMeta `json:"source,omitempty"`
}

// FactualDataInput — вход слоя фактических данных.
type FactualDataInput struct {
	Property     *PropertyFact     `json:"property,omitempty"`
	Transactions []TransactionFact `json:"transactions,omitempty"`
	Planning     []PlanningFact    `json:"planning,omitempty"`
}

// ReliabilityBreakdown — оценки по осям (0-100).
type ReliabilityBreakdown struct {
	Completeness      float64 `json:"completeness"`
	SourceCredibility float64 `json:"sourceCredibility"`
	Recency           float64 `json:"recency"`
	Consistency       float64 `json:"consistency"`
	Reliability       float64 `json:"reliability"`
}

// PropertySummary — объект с оценкой надёжности.
type PropertySummary struct {
	Fact        PropertyFact         `json:"fact"`
	Reliability ReliabilityBreakdown `json:"reliability"`
}

// TransactionWithReliability — сделка с оценкой надёжности.
type TransactionWithReliability struct {
	Fact        TransactionFact      `json:"fact"`
	Reliability ReliabilityBreakdown `json:"reliability"`
	// DeviationPct — отклонение цены за м² от медианы группы, в процентах
	DeviationPct *float64 `json:"deviationPct,omitempty"`
}

// PlanningWithReliability — план с оценкой надёжности.
type PlanningWithReliability struct {
	Fact        PlanningFact         `json:"fact"`
	Reliability ReliabilityBreakdown `json:"reliability"`
}

// FactualDataResult — сводка фактов с указанием надёжности.
// Никогда не содержит оценку стоимости: только факты с источниками.
type FactualDataResult struct {
	Property         *PropertySummary             `json:"property"`
	TransactionsUsed []TransactionWithReliability `json:"transactions_used"`
	OutliersDetected []TransactionWithReliability `json:"outliers_detected"`
	Planning         []PlanningWithReliability    `json:"planning"`
	MissingData      []string                     `json:"missing_data"`
	// DataReliabilityScore — агрегированная надёжность (0-100)
	DataReliabilityScore int    `json:"data_reliability_score"`
	Note                 string `json:"note"`
}
