package domain

// ValuationSummary — диапазон стоимости по аналогам. Инвариант: Low <= Mid <= High.
// ComparablesUsed == 0 означает "недостаточно данных", а не нулевую стоимость.
type ValuationSummary struct {
	Low             int64    `json:"low"`
	Mid             int64    `json:"mid"`
	High            int64    `json:"high"`
	ComparablesUsed int      `json:"comparablesUsed"`
	OutlierIDs      []string `json:"outlierIds"`
}

// ConfidenceLevel — качественная оценка надёжности диапазона.
type ConfidenceLevel string

const (
	ConfidenceInsufficient ConfidenceLevel = "insufficient"
	ConfidenceLow          ConfidenceLevel = "low"
	ConfidenceMedium       ConfidenceLevel = "medium"
	ConfidenceHigh         ConfidenceLevel = "high"
)

func (c ConfidenceLevel) String() string {
	return string(c)
}

// ValuationEstimate — диапазон вместе с аналогами, на которых он построен.
type ValuationEstimate struct {
	Summary    ValuationSummary   `json:"summary"`
	Ranked     []ScoredComparable `json:"ranked"`
	Spread     float64            `json:"spread"`
	Confidence ConfidenceLevel    `json:"confidence"`
}
