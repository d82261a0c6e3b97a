package domain

// SubjectFeatures — числовые признаки оцениваемого объекта (приходят из формы объекта).
type SubjectFeatures struct {
	AreaSqm          float64 `json:"areaSqm"`
	FloorNum         float64 `json:"floorNum"`
	Rooms            float64 `json:"rooms"`
	BuildingAgeYears float64 `json:"buildingAgeYears"`
}

// ComparableCandidate — проданный объект-аналог.
type ComparableCandidate struct {
	ID       string          `json:"id"`
	Price    float64         `json:"price"`
	Features SubjectFeatures `json:"features"`
	// DistanceMeters — расстояние до оцениваемого объекта
	DistanceMeters float64 `json:"distanceMeters"`
	// AgeUnknown — возраст здания неизвестен; измерение возраста не участвует в схожести
	AgeUnknown bool `json:"ageUnknown,omitempty"`
}

// DimensionScores — схожесть по каждому измерению (0-1).
type DimensionScores struct {
	Geo   float64 `json:"geo"`
	Area  float64 `json:"area"`
	Floor float64 `json:"floor"`
	Rooms float64 `json:"rooms"`
	Age   float64 `json:"age"`
}

// PriceAdjustment — корректировки цены аналога по категориям (доли, не проценты).
type PriceAdjustment struct {
	Floor float64 `json:"floor"`
	Rooms float64 `json:"rooms"`
	Area  float64 `json:"area"`
	// Total — сумма корректировок после ограничения ±MaxAdjustment
	Total float64 `json:"total"`
}

// ScoredComparable — аналог с итоговой схожестью и скорректированной ценой.
// Пересчитывается на каждый запрос оценки.
type ScoredComparable struct {
	ID            string          `json:"id"`
	Score         float64         `json:"score"`
	Dimensions    DimensionScores `json:"dimensions"`
	Adjustment    PriceAdjustment `json:"adjustment"`
	RawPrice      float64         `json:"rawPrice"`
	AdjustedPrice int64           `json:"adjustedPrice"`
	PricePerArea  float64         `json:"pricePerArea"`
}

// ComparableWeights — веса измерений схожести (сумма должна быть ~1.0).
type ComparableWeights struct {
	Geo   float64 `json:"geo"`   // default: 0.30
	Area  float64 `json:"area"`  // default: 0.25
	Floor float64 `json:"floor"` // default: 0.15
	Rooms float64 `json:"rooms"` // default: 0.15
	Age   float64 `json:"age"`   // default: 0.15
}

// DefaultComparableWeights возвращает веса по умолчанию.
func DefaultComparableWeights() ComparableWeights {
	return ComparableWeights{
		Geo:   0.30,
		Area:  0.25,
		Floor: 0.15,
		Rooms: 0.15,
		Age:   0.15,
	}
}

// Normalize нормализует веса чтобы сумма = 1.
func (w ComparableWeights) Normalize() ComparableWeights {
	total := w.Geo + w.Area + w.Floor + w.Rooms + w.Age
	if total <= 0 {
		return DefaultComparableWeights()
	}
	return ComparableWeights{
		Geo:   w.Geo / total,
		Area:  w.Area / total,
		Floor: w.Floor / total,
		Rooms: w.Rooms / total,
		Age:   w.Age / total,
	}
}

// WeightPreset — пресет весов.
type WeightPreset struct {
	ID          string
	Name        string
	Description string
	Weights     ComparableWeights
}

// GetWeightPresets возвращает предустановленные наборы весов.
func GetWeightPresets() []WeightPreset {
	return []WeightPreset{
		{ID: "default", Name: "Стандартный", Description: "Веса методики сравнительного подхода", Weights: DefaultComparableWeights()},
		{ID: "location_first", Name: "Локация важнее", Description: "Приоритет на близость", Weights: ComparableWeights{Geo: 0.45, Area: 0.20, Floor: 0.10, Rooms: 0.15, Age: 0.10}},
		{ID: "size_first", Name: "Площадь важнее", Description: "Приоритет на площадь и комнаты", Weights: ComparableWeights{Geo: 0.20, Area: 0.35, Floor: 0.10, Rooms: 0.25, Age: 0.10}},
	}
}

// GetWeightPresetByID возвращает пресет по ID.
func GetWeightPresetByID(id string) *WeightPreset {
	for _, p := range GetWeightPresets() {
		if p.ID == id {
			return &p
		}
	}
	return nil
}
