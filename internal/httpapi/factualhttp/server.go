// Package factualhttp — HTTP-обработчики слоя фактических данных.
package factualhttp

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"propintel/internal/domain"
	"propintel/internal/httpapi/respond"
	"propintel/internal/httpapi/schema"
	"propintel/internal/lib/jsonld"
)

// FactualService строит сводку фактов.
type FactualService interface {
	Build(ctx context.Context, input domain.FactualDataInput) domain.FactualDataResult
}

type serverAPI struct {
	log       *slog.Logger
	validator *schema.Validator
	service   FactualService
	jsonld    *jsonld.Generator
}

// Register регистрирует обработчики в роутере.
func Register(r chi.Router, log *slog.Logger, v *schema.Validator, svc FactualService, gen *jsonld.Generator) {
	s := &serverAPI{
		log:       log.With(slog.String("component", "factualhttp")),
		validator: v,
		service:   svc,
		jsonld:    gen,
	}

	r.Post("/facts", s.build)
	r.Post("/facts/jsonld", s.buildJSONLD)
}

func (s *serverAPI) build(w http.ResponseWriter, r *http.Request) {
	var input domain.FactualDataInput
	if !respond.Decode(w, r, s.log, s.validator, schema.Facts, &input) {
		return
	}

	respond.JSON(w, s.log, http.StatusOK, s.service.Build(r.Context(), input))
}

func (s *serverAPI) buildJSONLD(w http.ResponseWriter, r *http.Request) {
	var input domain.FactualDataInput
	if !respond.Decode(w, r, s.log, s.validator, schema.Facts, &input) {
		return
	}

	doc := s.jsonld.FactualJSONLD(s.service.Build(r.Context(), input))
	if doc == nil {
		respond.Error(w, s.log, http.StatusUnprocessableEntity, respond.CodeValidation, "property facts are required for JSON-LD export")
		return
	}

	data, err := jsonld.Marshal(doc)
	if err != nil {
		respond.Error(w, s.log, http.StatusInternalServerError, respond.CodeInternal, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/ld+json")
	_, _ = w.Write(data)
}
