package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/radarfeedback/feedback-backend-go/internal/domain/taxonomy"
	"github.com/radarfeedback/feedback-backend-go/internal/handler/http/response"
)

type TaxonomyHandler interface {
	ListPersonalityTraits(w http.ResponseWriter, r *http.Request)
	ListTalentCategories(w http.ResponseWriter, r *http.Request)
	GetTalentCategory(w http.ResponseWriter, r *http.Request)
}

type taxonomyHandlerImpl struct {
	taxonomyService taxonomy.TaxonomyService
}

func NewTaxonomyHandler(taxonomyService taxonomy.TaxonomyService) TaxonomyHandler {
	return &taxonomyHandlerImpl{taxonomyService: taxonomyService}
}

func (h *taxonomyHandlerImpl) ListPersonalityTraits(w http.ResponseWriter, r *http.Request) {
	traits, err := h.taxonomyService.ListTraits(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, traits)
}

func (h *taxonomyHandlerImpl) ListTalentCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.taxonomyService.ListTalentCategories(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, categories)
}

func (h *taxonomyHandlerImpl) GetTalentCategory(w http.ResponseWriter, r *http.Request) {
	category, err := h.taxonomyService.GetTalentCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, category)
}
