// Package valuationhttp — HTTP-обработчики подбора аналогов и расчёта диапазона стоимости.
package valuationhttp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"propintel/internal/domain"
	"propintel/internal/httpapi/respond"
	"propintel/internal/httpapi/schema"
	"propintel/internal/lib/logger/sl"
	"propintel/internal/services/valuation"
)

// ValuationService описывает подбор аналогов и оценку.
type ValuationService interface {
	Rank(ctx context.Context, req valuation.RankRequest) ([]domain.ScoredComparable, error)
	Estimate(ctx context.Context, req valuation.RankRequest) (domain.ValuationEstimate, error)
	CandidatesFromStore(ctx context.Context, geoCellPrefix string, lat, lon float64, limit int) ([]domain.ComparableCandidate, error)
}

type serverAPI struct {
	log       *slog.Logger
	validator *schema.Validator
	service   ValuationService
}

// Register регистрирует обработчики в роутере.
func Register(r chi.Router, log *slog.Logger, v *schema.Validator, svc ValuationService) {
	s := &serverAPI{
		log:       log.With(slog.String("component", "valuationhttp")),
		validator: v,
		service:   svc,
	}

	r.Post("/comparables/rank", s.rank)
	r.Post("/comparables/outliers", s.outliers)
	r.Post("/valuation/range", s.valuationRange)
	r.Post("/valuation/estimate", s.estimate)
	r.Get("/valuation/presets", s.presets)
}

type rankRequest struct {
	Subject domain.SubjectFeatures       `json:"subject"`
	Pool    []domain.ComparableCandidate `json:"pool"`
	TopK    int                          `json:"topK"`
	Preset  string                       `json:"preset"`
	Weights *domain.ComparableWeights    `json:"weights"`
	// GeoCell — префикс геоячейки для подбора аналогов из сохранённых сделок, если пул пуст
	GeoCell string  `json:"geoCell"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

func (req rankRequest) toDomain() valuation.RankRequest {
	return valuation.RankRequest{
		Subject:  req.Subject,
		Pool:     req.Pool,
		TopK:     req.TopK,
		PresetID: req.Preset,
		Weights:  req.Weights,
	}
}

type rankResponse struct {
	Ranked []domain.ScoredComparable `json:"ranked"`
}

func (s *serverAPI) rank(w http.ResponseWriter, r *http.Request) {
	var req rankRequest
	if !respond.Decode(w, r, s.log, s.validator, schema.ComparablesRank, &req) {
		return
	}

	ranked, err := s.service.Rank(r.Context(), req.toDomain())
	if err != nil {
		s.serviceError(w, err)
		return
	}

	respond.JSON(w, s.log, http.StatusOK, rankResponse{Ranked: ranked})
}

type scoredRequest struct {
	Scored []domain.ScoredComparable `json:"scored"`
}

func (s *serverAPI) outliers(w http.ResponseWriter, r *http.Request) {
	var req scoredRequest
	if !respond.Decode(w, r, s.log, s.validator, schema.ComparablesScored, &req) {
		return
	}

	respond.JSON(w, s.log, http.StatusOK, valuation.FilterPriceOutliersByIQR(req.Scored))
}

func (s *serverAPI) valuationRange(w http.ResponseWriter, r *http.Request) {
	var req scoredRequest
	if !respond.Decode(w, r, s.log, s.validator, schema.ComparablesScored, &req) {
		return
	}

	respond.JSON(w, s.log, http.StatusOK, valuation.CalculateValuationRange(req.Scored))
}

func (s *serverAPI) estimate(w http.ResponseWriter, r *http.Request) {
	var req rankRequest
	if !respond.Decode(w, r, s.log, s.validator, schema.ComparablesRank, &req) {
		return
	}

	if len(req.Pool) == 0 && req.GeoCell != "" {
		pool, err := s.service.CandidatesFromStore(r.Context(), req.GeoCell, req.Lat, req.Lon, 0)
		if errors.Is(err, valuation.ErrInvalidGeoCell) {
			respond.Error(w, s.log, http.StatusBadRequest, respond.CodeValidation, err.Error())
			return
		}
		if err != nil {
			s.log.Error("failed to load comparables", sl.Err(err))
			respond.Error(w, s.log, http.StatusInternalServerError, respond.CodeInternal, "failed to load comparables")
			return
		}
		req.Pool = pool
	}

	estimate, err := s.service.Estimate(r.Context(), req.toDomain())
	if err != nil {
		s.serviceError(w, err)
		return
	}

	respond.JSON(w, s.log, http.StatusOK, estimate)
}

type presetResponse struct {
	ID          string                   `json:"id"`
	Name        string                   `json:"name"`
	Description string                   `json:"description"`
	Weights     domain.ComparableWeights `json:"weights"`
}

func (s *serverAPI) presets(w http.ResponseWriter, _ *http.Request) {
	presets := domain.GetWeightPresets()
	resp := make([]presetResponse, 0, len(presets))
	for _, p := range presets {
		resp = append(resp, presetResponse{ID: p.ID, Name: p.Name, Description: p.Description, Weights: p.Weights})
	}
	respond.JSON(w, s.log, http.StatusOK, resp)
}

func (s *serverAPI) serviceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, valuation.ErrUnknownPreset), errors.Is(err, valuation.ErrPoolTooLarge):
		respond.Error(w, s.log, http.StatusBadRequest, respond.CodeValidation, err.Error())
	default:
		s.log.Error("valuation failed", sl.Err(err))
		respond.Error(w, s.log, http.StatusInternalServerError, respond.CodeInternal, "valuation failed")
	}
}
