package rest

import (
	"context"
	"net/http"

	"healthops-dashboard/internal/domain"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) listServices(w http.ResponseWriter, r *http.Request) {
	h.listCatalog(w, r, "list services", h.reference.Services)
}

func (h *Handler) createService(w http.ResponseWriter, r *http.Request) {
	h.createCatalogItem(w, r, "create service", h.reference.CreateService)
}

func (h *Handler) deactivateService(w http.ResponseWriter, r *http.Request) {
	h.deactivateCatalogItem(w, r, "deactivate service", h.reference.DeactivateService)
}

func (h *Handler) listProviders(w http.ResponseWriter, r *http.Request) {
	h.listCatalog(w, r, "list providers", h.reference.Providers)
}

func (h *Handler) createProvider(w http.ResponseWriter, r *http.Request) {
	h.createCatalogItem(w, r, "create provider", h.reference.CreateProvider)
}

func (h *Handler) deactivateProvider(w http.ResponseWriter, r *http.Request) {
	h.deactivateCatalogItem(w, r, "deactivate provider", h.reference.DeactivateProvider)
}

func (h *Handler) listCatalog(w http.ResponseWriter, r *http.Request, op string, list func(context.Context) ([]domain.CatalogItem, error)) {
	if _, ok := h.actor(w, r); !ok {
		return
	}
	items, err := list(r.Context())
	if err != nil {
		h.writeError(w, r, op, err)
		return
	}
	if items == nil {
		items = []domain.CatalogItem{}
	}
	Success(w, "", items)
}

func (h *Handler) createCatalogItem(w http.ResponseWriter, r *http.Request, op string, create func(context.Context, domain.Actor, string) (domain.CatalogItem, error)) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var req CatalogRequest
	if err := decodeAndValidate(r, &req); err != nil {
		h.writeError(w, r, op, err)
		return
	}
	item, err := create(r.Context(), actor, req.Name)
	if err != nil {
		h.writeError(w, r, op, err)
		return
	}
	SuccessCreated(w, "", item)
}

func (h *Handler) deactivateCatalogItem(w http.ResponseWriter, r *http.Request, op string, deactivate func(context.Context, domain.Actor, string) error) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	if err := deactivate(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, op, err)
		return
	}
	Success(w, "", nil)
}
