package domain

// AddressParts — разобранные части адреса. Поле равно nil, если его не удалось определить.
type AddressParts struct {
	City        *string `json:"city"`
	Street      *string `json:"street"`
	HouseNumber *string `json:"houseNumber"`
	Entrance    *string `json:"entrance"`
	Apartment   *string `json:"apartment"`
}

// NormalizedAddress — результат нормализации адреса.
// Пересчитывается по требованию и не хранится как источник истины.
type NormalizedAddress struct {
	Raw string `json:"raw"`
	// Cleaned — текст после раскрытия сокращений и удаления квартиры/этажа/подъезда
	Cleaned string `json:"cleaned"`
	// Normalized — ключ вида "city|street|houseNumber" в нижнем регистре
	Normalized      string       `json:"normalized"`
	Parts           AddressParts `json:"parts"`
	CanonicalStreet *string      `json:"canonicalStreet"`
	// Confidence — уверенность разбора (0-1)
	Confidence float64 `json:"confidence"`
}

// HasCity сообщает, определён ли город.
func (a NormalizedAddress) HasCity() bool {
	return a.Parts.City != nil && *a.Parts.City != ""
}
