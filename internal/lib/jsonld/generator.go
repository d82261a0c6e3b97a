package jsonld

import (
	"encoding/json"
	"fmt"
	"net/url"

	"propintel/internal/domain"
)

// Generator — генератор JSON-LD разметки (schema.org) для сделок и фактов об объекте.
type Generator struct {
	baseURL string
}

// NewGenerator создаёт новый генератор JSON-LD.
func NewGenerator(baseURL string) *Generator {
	return &Generator{baseURL: baseURL}
}

// RealEstateListing — JSON-LD структура для сделки (schema.org).
type RealEstateListing struct {
	Context    string `json:"@context"`
	Type       string `json:"@type"`
	ID         string `json:"@id,omitempty"`
	Name       string `json:"name"`
	DatePosted string `json:"datePosted,omitempty"`

	// Цена сделки
	Offers *Offer `json:"offers,omitempty"`

	// Местоположение
	Address *PostalAddress  `json:"address,omitempty"`
	Geo     *GeoCoordinates `json:"geo,omitempty"`

	// Характеристики объекта
	FloorSize     *QuantitativeValue `json:"floorSize,omitempty"`
	NumberOfRooms *float64           `json:"numberOfRooms,omitempty"`
	FloorLevel    *int               `json:"floorLevel,omitempty"`

	AdditionalProperty []PropertyValue `json:"additionalProperty,omitempty"`
}

// Offer — цена по schema.org.
type Offer struct {
	Type          string  `json:"@type"`
	Price         float64 `json:"price"`
	PriceCurrency string  `json:"priceCurrency"`
	Availability  string  `json:"availability,omitempty"`
}

// PostalAddress — почтовый адрес по schema.org.
type PostalAddress struct {
	Type            string `json:"@type"`
	StreetAddress   string `json:"streetAddress,omitempty"`
	AddressLocality string `json:"addressLocality,omitempty"` // Город
	AddressCountry  string `json:"addressCountry,omitempty"`
}

// GeoCoordinates — географические координаты.
type GeoCoordinates struct {
	Type      string  `json:"@type"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// QuantitativeValue — количественное значение.
type QuantitativeValue struct {
	Type     string  `json:"@type"`
	Value    float64 `json:"value"`
	UnitCode string  `json:"unitCode"` // MTK для м²
}

// PropertyValue — дополнительное свойство.
type PropertyValue struct {
	Type  string `json:"@type"`
	Name  string `json:"name"`
	Value any    `json:"value"`
}

const (
	schemaContext = "https://schema.org"
	currencyILS   = "ILS"
	countryIL     = "IL"
)

// TransactionJSONLD строит разметку для очищенной сделки.
func (g *Generator) TransactionJSONLD(rec domain.CleanedTransactionRecord) *RealEstateListing {
	id := fmt.Sprintf("%s/transactions/%s/%s", g.baseURL,
		url.PathEscape(rec.SourceID), url.PathEscape(rec.SourceRecordID))

	listing := &RealEstateListing{
		Context:    schemaContext,
		Type:       "RealEstateListing",
		ID:         id,
		Name:       rec.NormalizedAddress.Cleaned,
		DatePosted: rec.TransactionDate,
		Address:    g.address(rec.NormalizedAddress, rec.City),
		FloorLevel: rec.Floor,
	}
	if listing.Name == "" {
		listing.Name = rec.Address
	}

	if rec.Price != nil {
		listing.Offers = &Offer{
			Type:          "Offer",
			Price:         *rec.Price,
			PriceCurrency: currencyILS,
			Availability:  "https://schema.org/SoldOut",
		}
	}
	if rec.AreaSqm != nil {
		listing.FloorSize = squareMeters(*rec.AreaSqm)
	}
	if rec.Rooms != nil {
		listing.NumberOfRooms = rec.Rooms
	}
	if rec.Lat != nil && rec.Lon != nil {
		g.SetGeoCoordinates(listing, *rec.Lat, *rec.Lon)
	}

	g.AddAdditionalProperties(listing, []PropertyValue{
		{Name: "source", Value: rec.SourceID},
		{Name: "confidenceScore", Value: rec.ConfidenceScore},
		{Name: "completenessScore", Value: rec.CompletenessScore},
	})

	return listing
}

// Accommodation — JSON-LD для объекта из слоя фактических данных.
// Цена и оценка стоимости в разметку не попадают.
type Accommodation struct {
	Context            string             `json:"@context"`
	Type               string             `json:"@type"`
	Name               string             `json:"name"`
	Address            *PostalAddress     `json:"address,omitempty"`
	FloorSize          *QuantitativeValue `json:"floorSize,omitempty"`
	NumberOfRooms      *float64           `json:"numberOfRooms,omitempty"`
	FloorLevel         *int               `json:"floorLevel,omitempty"`
	YearBuilt          *int               `json:"yearBuilt,omitempty"`
	AdditionalProperty []PropertyValue    `json:"additionalProperty,omitempty"`
}

// FactualJSONLD строит разметку по сводке фактов. Без объекта возвращает nil.
func (g *Generator) FactualJSONLD(result domain.FactualDataResult) *Accommodation {
	if result.Property == nil {
		return nil
	}
	p := result.Property.Fact

	acc := &Accommodation{
		Context:       schemaContext,
		Type:          "Accommodation",
		Name:          p.Address,
		Address:       &PostalAddress{Type: "PostalAddress", StreetAddress: p.Address, AddressCountry: countryIL},
		NumberOfRooms: p.Rooms,
		FloorLevel:    p.Floor,
		YearBuilt:     p.BuildYear,
	}
	if p.City != nil {
		acc.Address.AddressLocality = *p.City
	}
	if p.AreaSqm != nil {
		acc.FloorSize = squareMeters(*p.AreaSqm)
	}

	props := []PropertyValue{
		{Type: "PropertyValue", Name: "dataReliabilityScore", Value: result.DataReliabilityScore},
		{Type: "PropertyValue", Name: "transactionsUsed", Value: len(result.TransactionsUsed)},
	}
	if p.Gush != nil {
		props = append(props, PropertyValue{Type: "PropertyValue", Name: "gush", Value: *p.Gush})
	}
	if p.Helka != nil {
		props = append(props, PropertyValue{Type: "PropertyValue", Name: "helka", Value: *p.Helka})
	}
	for _, plan := range result.Planning {
		props = append(props, PropertyValue{Type: "PropertyValue", Name: "planNumber", Value: plan.Fact.PlanNumber})
	}
	acc.AdditionalProperty = props

	return acc
}

// Marshal сериализует разметку с отступами.
func Marshal(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON-LD: %w", err)
	}
	return data, nil
}

// AddAdditionalProperties добавляет дополнительные свойства к листингу.
func (g *Generator) AddAdditionalProperties(listing *RealEstateListing, props []PropertyValue) {
	for _, p := range props {
		p.Type = "PropertyValue"
		listing.AdditionalProperty = append(listing.AdditionalProperty, p)
	}
}

// SetGeoCoordinates устанавливает географические координаты.
func (g *Generator) SetGeoCoordinates(listing *RealEstateListing, lat, lon float64) {
	listing.Geo = &GeoCoordinates{
		Type:      "GeoCoordinates",
		Latitude:  lat,
		Longitude: lon,
	}
}

func (g *Generator) address(addr domain.NormalizedAddress, rawCity *string) *PostalAddress {
	pa := &PostalAddress{Type: "PostalAddress", StreetAddress: addr.Cleaned, AddressCountry: countryIL}
	switch {
	case addr.Parts.City != nil:
		pa.AddressLocality = *addr.Parts.City
	case rawCity != nil:
		pa.AddressLocality = *rawCity
	}
	return pa
}

func squareMeters(v float64) *QuantitativeValue {
	return &QuantitativeValue{Type: "QuantitativeValue", Value: v, UnitCode: "MTK"}
}
