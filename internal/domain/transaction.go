package domain

import "time"

// RawTransactionRecord — сырая запись о сделке из внешнего источника (госреестр, объявления, ручной ввод).
// После приёма не изменяется.
type RawTransactionRecord struct {
	SourceID       string  `json:"sourceId"`
	SourceRecordID string  `json:"sourceRecordId"`
	Address        string  `json:"address"`
	City           *string `json:"city,omitempty"`
	// TransactionDate — дата сделки в формате ISO (2024-03-01 или RFC3339)
	TransactionDate string   `json:"transactionDate"`
	Price           *float64 `json:"price"`
	AreaSqm         *float64 `json:"areaSqm,omitempty"`
	Floor           *int     `json:"floor,omitempty"`
	Rooms           *float64 `json:"rooms,omitempty"`
	Lat             *float64 `json:"lat,omitempty"`
	Lon             *float64 `json:"lon,omitempty"`
}

// CleanedTransactionRecord — запись, прошедшая валидацию, нормализацию и оценку.
type CleanedTransactionRecord struct {
	RawTransactionRecord
	NormalizedAddress NormalizedAddress `json:"normalizedAddress"`
	CompletenessScore float64           `json:"completenessScore"`
	RecencyScore      float64           `json:"recencyScore"`
	SourceReliability float64           `json:"sourceReliability"`
	ConfidenceScore   float64           `json:"confidenceScore"`
	DedupeKey         string            `json:"dedupeKey"`
	// GeoCell — geohash ячейки (пусто, если координат нет)
	GeoCell string `json:"geoCell,omitempty"`
}

// IngestionError — причина, по которой строка батча отклонена.
type IngestionError struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// IngestionResult — результат одного прогона пайплайна.
// len(Cleaned)+len(Duplicates)+len(Errors) == числу входных строк.
type IngestionResult struct {
	Cleaned    []CleanedTransactionRecord `json:"cleaned"`
	Duplicates []CleanedTransactionRecord `json:"duplicates"`
	Errors     []IngestionError           `json:"errors"`
}

// Total возвращает число обработанных строк.
func (r IngestionResult) Total() int {
	return len(r.Cleaned) + len(r.Duplicates) + len(r.Errors)
}

// IngestionRun — метаданные прогона, сохраняемые сервисом.
type IngestionRun struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"startedAt"`
	Cleaned    int       `json:"cleaned"`
	Duplicates int       `json:"duplicates"`
	Errors     int       `json:"errors"`
	// CrossRunDuplicates — сколько записей отсеяно по ключам прошлых прогонов
	CrossRunDuplicates int    `json:"crossRunDuplicates"`
	ArchiveObject      string `json:"archiveObject,omitempty"`
}
