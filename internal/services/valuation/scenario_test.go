package valuation

import "propintel/internal/domain"

var subject = domain.SubjectFeatures{AreaSqm: 100, FloorNum: 5, Rooms: 4, BuildingAgeYears: 20}

func candidate(id string, price, area, floor, rooms, age, distance float64) domain.ComparableCandidate {
	return domain.ComparableCandidate{
		ID:    id,
		Price: price,
		Features: domain.SubjectFeatures{
			AreaSqm:          area,
			FloorNum:         floor,
			Rooms:            rooms,
			BuildingAgeYears: age,
		},
		DistanceMeters: distance,
	}
}

// scenarioPool — пять аналогов 2.4–3.0 млн и близкий аналог с ценой 5.9 млн.
func scenarioPool() []domain.ComparableCandidate {
	return []domain.ComparableCandidate{
		candidate("c1", 2_400_000, 95, 4, 4, 22, 600),
		candidate("c2", 2_550_000, 100, 6, 4, 18, 800),
		candidate("c3", 2_700_000, 105, 5, 4, 20, 500),
		candidate("c4", 2_850_000, 98, 3, 4, 25, 900),
		candidate("c5", 3_000_000, 110, 7, 5, 15, 1000),
		candidate("x-outlier", 5_900_000, 100, 5, 4, 20, 400),
	}
}

func scored(id string, score float64, adjusted int64, ppa float64) domain.ScoredComparable {
	return domain.ScoredComparable{ID: id, Score: score, AdjustedPrice: adjusted, RawPrice: float64(adjusted), PricePerArea: ppa}
}
