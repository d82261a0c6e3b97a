// Package addresshttp — HTTP-обработчики нормализации адресов и ключей дедупликации.
package addresshttp

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"propintel/internal/domain"
	"propintel/internal/httpapi/respond"
	"propintel/internal/httpapi/schema"
	"propintel/internal/lib/address"
	"propintel/internal/lib/fingerprint"
)

type serverAPI struct {
	log       *slog.Logger
	validator *schema.Validator
}

// Register регистрирует обработчики в роутере.
func Register(r chi.Router, log *slog.Logger, v *schema.Validator) {
	s := &serverAPI{log: log.With(slog.String("component", "addresshttp")), validator: v}

	r.Post("/address/normalize", s.normalize)
	r.Post("/address/similarity", s.similarity)
	r.Post("/fingerprint", s.fingerprint)
}

type normalizeRequest struct {
	Address   string   `json:"address"`
	Addresses []string `json:"addresses"`
}

type normalizeResponse struct {
	Address   *domain.NormalizedAddress  `json:"address,omitempty"`
	Addresses []domain.NormalizedAddress `json:"addresses,omitempty"`
}

func (s *serverAPI) normalize(w http.ResponseWriter, r *http.Request) {
	var req normalizeRequest
	if !respond.Decode(w, r, s.log, s.validator, schema.AddressNormalize, &req) {
		return
	}

	var resp normalizeResponse
	if req.Address != "" {
		n := address.Normalize(req.Address)
		resp.Address = &n
	}
	if len(req.Addresses) > 0 {
		resp.Addresses = lo.Map(req.Addresses, func(a string, _ int) domain.NormalizedAddress {
			return address.Normalize(a)
		})
	}

	respond.JSON(w, s.log, http.StatusOK, resp)
}

type similarityRequest struct {
	A string `json:"a"`
	B string `json:"b"`
}

type similarityResponse struct {
	Score float64 `json:"score"`
}

func (s *serverAPI) similarity(w http.ResponseWriter, r *http.Request) {
	var req similarityRequest
	if !respond.Decode(w, r, s.log, s.validator, schema.AddressSimilarity, &req) {
		return
	}

	respond.JSON(w, s.log, http.StatusOK, similarityResponse{Score: address.FuzzyScore(req.A, req.B)})
}

type fingerprintRequest struct {
	NormalizedAddress string   `json:"normalizedAddress"`
	City              *string  `json:"city"`
	Lat               *float64 `json:"lat"`
	Lon               *float64 `json:"lon"`
	AreaSqm           *float64 `json:"areaSqm"`
}

type fingerprintResponse struct {
	Key     string `json:"key"`
	GeoCell string `json:"geoCell,omitempty"`
}

func (s *serverAPI) fingerprint(w http.ResponseWriter, r *http.Request) {
	var req fingerprintRequest
	if !respond.Decode(w, r, s.log, s.validator, schema.Fingerprint, &req) {
		return
	}

	key := fingerprint.Dedupe(fingerprint.Input{
		NormalizedAddress: req.NormalizedAddress,
		City:              req.City,
		Lat:               req.Lat,
		Lon:               req.Lon,
		AreaSqm:           req.AreaSqm,
	})

	respond.JSON(w, s.log, http.StatusOK, fingerprintResponse{
		Key:     key,
		GeoCell: fingerprint.GeoCell(req.Lat, req.Lon),
	})
}
