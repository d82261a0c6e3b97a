package jsonld

import (
	"encoding/json"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propintel/internal/domain"
)

func TestTransactionJSONLD(t *testing.T) {
	g := NewGenerator("https://api.example.com/api/v1")
	rec := domain.CleanedTransactionRecord{
		RawTransactionRecord: domain.RawTransactionRecord{
			SourceID:        "gov tax",
			SourceRecordID:  "42",
			Address:         "ויצמן 12",
			TransactionDate: "2024-03-01",
			Price:           lo.ToPtr(2_750_000.0),
			AreaSqm:         lo.ToPtr(100.0),
			Rooms:           lo.ToPtr(4.0),
			Lat:             lo.ToPtr(32.0853),
			Lon:             lo.ToPtr(34.7818),
		},
		NormalizedAddress: domain.NormalizedAddress{
			Cleaned: "ויצמן 12 תל אביב",
			Parts:   domain.AddressParts{City: lo.ToPtr("תל אביב")},
		},
		ConfidenceScore: 0.8,
	}

	listing := g.TransactionJSONLD(rec)

	assert.Equal(t, "https://schema.org", listing.Context)
	assert.Equal(t, "RealEstateListing", listing.Type)
	assert.Equal(t, "https://api.example.com/api/v1/transactions/gov%20tax/42", listing.ID)
	assert.Equal(t, "ויצמן 12 תל אביב", listing.Name)
	require.NotNil(t, listing.Offers)
	assert.Equal(t, "ILS", listing.Offers.PriceCurrency)
	assert.Equal(t, "תל אביב", listing.Address.AddressLocality)
	assert.Equal(t, "MTK", listing.FloorSize.UnitCode)
	require.NotNil(t, listing.Geo)
	assert.Equal(t, 32.0853, listing.Geo.Latitude)
	require.Len(t, listing.AdditionalProperty, 3)
	for _, p := range listing.AdditionalProperty {
		assert.Equal(t, "PropertyValue", p.Type)
	}
}

func TestTransactionJSONLD_Minimal(t *testing.T) {
	g := NewGenerator("")
	listing := g.TransactionJSONLD(domain.CleanedTransactionRecord{
		RawTransactionRecord: domain.RawTransactionRecord{Address: "הרצל 1", City: lo.ToPtr("חיפה")},
	})

	assert.Equal(t, "הרצל 1", listing.Name)
	assert.Nil(t, listing.Offers)
	assert.Nil(t, listing.Geo)
	assert.Equal(t, "חיפה", listing.Address.AddressLocality)
}

func TestFactualJSONLD(t *testing.T) {
	g := NewGenerator("")

	assert.Nil(t, g.FactualJSONLD(domain.FactualDataResult{}))

	acc := g.FactualJSONLD(domain.FactualDataResult{
		Property: &domain.PropertySummary{Fact: domain.PropertyFact{
			Address: "הרצל 10",
			City:    lo.ToPtr("תל אביב"),
			Gush:    lo.ToPtr("6943"),
			AreaSqm: lo.ToPtr(95.0),
		}},
		Planning:             []domain.PlanningWithReliability{{Fact: domain.PlanningFact{PlanNumber: "תא/5000"}}},
		DataReliabilityScore: 71,
	})
	require.NotNil(t, acc)
	assert.Equal(t, "Accommodation", acc.Type)
	assert.Equal(t, "תל אביב", acc.Address.AddressLocality)

	names := lo.Map(acc.AdditionalProperty, func(p PropertyValue, _ int) string { return p.Name })
	assert.Equal(t, []string{"dataReliabilityScore", "transactionsUsed", "gush", "planNumber"}, names)

	data, err := Marshal(acc)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.NotContains(t, doc, "offers")
	assert.Equal(t, "https://schema.org", doc["@context"])
}
