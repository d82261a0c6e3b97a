package valuation

import (
	"math"

	"github.com/samber/lo"

	"propintel/internal/domain"
)

const earthRadiusMeters = 6371000.0

// CandidatesFromRecords превращает сохранённые сделки в кандидатов-аналогов.
// Сделки без цены пропускаются. Без координат расстояние считается максимальным.
// Возраст здания в сделках не хранится, поэтому кандидаты помечаются AgeUnknown.
func CandidatesFromRecords(records []domain.CleanedTransactionRecord, lat, lon float64) []domain.ComparableCandidate {
	priced := lo.Filter(records, func(r domain.CleanedTransactionRecord, _ int) bool {
		return r.Price != nil && *r.Price > 0
	})

	return lo.Map(priced, func(r domain.CleanedTransactionRecord, _ int) domain.ComparableCandidate {
		c := domain.ComparableCandidate{
			ID:             r.SourceID + ":" + r.SourceRecordID,
			Price:          *r.Price,
			DistanceMeters: MaxDistanceMeters,
			AgeUnknown:     true,
			Features: domain.SubjectFeatures{
				AreaSqm: lo.FromPtr(r.AreaSqm),
				Rooms:   lo.FromPtr(r.Rooms),
			},
		}
		if r.Floor != nil {
			c.Features.FloorNum = float64(*r.Floor)
		}
		if r.Lat != nil && r.Lon != nil {
			c.DistanceMeters = HaversineMeters(lat, lon, *r.Lat, *r.Lon)
		}
		return c
	})
}

// HaversineMeters — расстояние по большому кругу между двумя точками.
func HaversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(a))
}
