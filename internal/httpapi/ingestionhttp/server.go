// Package ingestionhttp — HTTP-обработчики приёма батчей сделок.
package ingestionhttp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"propintel/internal/domain"
	"propintel/internal/httpapi/respond"
	"propintel/internal/httpapi/schema"
	"propintel/internal/lib/jsonld"
	"propintel/internal/lib/logger/sl"
	"propintel/internal/services/ingestion"
)

// IngestionService описывает приём батчей.
type IngestionService interface {
	Ingest(ctx context.Context, rows []domain.RawTransactionRecord) (domain.IngestionRun, domain.IngestionResult, error)
}

// TransactionLister отдаёт сохранённые сделки. Может отсутствовать, если БД не настроена.
type TransactionLister interface {
	ListTransactions(ctx context.Context, city string, pager *domain.Pager) (domain.PaginatedResult[domain.CleanedTransactionRecord], error)
}

type serverAPI struct {
	log       *slog.Logger
	validator *schema.Validator
	service   IngestionService
	lister    TransactionLister
	jsonld    *jsonld.Generator
}

// ServerOption — опция для конфигурации обработчиков.
type ServerOption func(*serverAPI)

// WithTransactionLister включает GET /transactions.
func WithTransactionLister(l TransactionLister) ServerOption {
	return func(s *serverAPI) {
		s.lister = l
	}
}

// WithJSONLD включает выдачу сделок в формате application/ld+json.
func WithJSONLD(g *jsonld.Generator) ServerOption {
	return func(s *serverAPI) {
		s.jsonld = g
	}
}

// Register регистрирует обработчики в роутере.
func Register(r chi.Router, log *slog.Logger, v *schema.Validator, svc IngestionService, opts ...ServerOption) {
	s := &serverAPI{
		log:       log.With(slog.String("component", "ingestionhttp")),
		validator: v,
		service:   svc,
	}
	for _, opt := range opts {
		opt(s)
	}

	r.Post("/ingestion/runs", s.run)
	r.Get("/transactions", s.list)
}

type runRequest struct {
	Rows []domain.RawTransactionRecord `json:"rows"`
}

type runResponse struct {
	Run    domain.IngestionRun    `json:"run"`
	Result domain.IngestionResult `json:"result"`
}

func (s *serverAPI) run(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if !respond.Decode(w, r, s.log, s.validator, schema.IngestionRun, &req) {
		return
	}

	run, result, err := s.service.Ingest(r.Context(), req.Rows)
	if err != nil {
		switch {
		case errors.Is(err, ingestion.ErrEmptyBatch), errors.Is(err, ingestion.ErrBatchTooLarge):
			respond.Error(w, s.log, http.StatusBadRequest, respond.CodeValidation, err.Error())
		default:
			s.log.Error("ingestion failed", sl.Err(err))
			respond.Error(w, s.log, http.StatusInternalServerError, respond.CodeInternal, "ingestion failed")
		}
		return
	}

	respond.JSON(w, s.log, http.StatusOK, runResponse{Run: run, Result: result})
}

func (s *serverAPI) list(w http.ResponseWriter, r *http.Request) {
	if s.lister == nil {
		respond.Error(w, s.log, http.StatusServiceUnavailable, respond.CodeUnavailable, "transaction storage is not configured")
		return
	}

	q := r.URL.Query()
	pager := domain.NewPager(queryInt32(q.Get("page")), domain.NormalizePageSize(queryInt32(q.Get("per_page"))))

	result, err := s.lister.ListTransactions(r.Context(), q.Get("city"), pager)
	if err != nil {
		s.log.Error("failed to list transactions", sl.Err(err))
		respond.Error(w, s.log, http.StatusInternalServerError, respond.CodeInternal, "failed to list transactions")
		return
	}

	if s.jsonld != nil && r.Header.Get("Accept") == "application/ld+json" {
		listings := make([]*jsonld.RealEstateListing, 0, len(result.Items))
		for _, rec := range result.Items {
			listings = append(listings, s.jsonld.TransactionJSONLD(rec))
		}
		data, err := jsonld.Marshal(listings)
		if err != nil {
			respond.Error(w, s.log, http.StatusInternalServerError, respond.CodeInternal, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/ld+json")
		_, _ = w.Write(data)
		return
	}

	respond.JSON(w, s.log, http.StatusOK, result)
}

// queryInt32 разбирает числовой параметр запроса. Значения вне диапазона int32
// прижимаются к границе, нечисловые дают 0.
func queryInt32(raw string) int32 {
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0
	}
	return int32(v)
}
