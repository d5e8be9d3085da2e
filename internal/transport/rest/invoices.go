package rest

import (
	"net/http"

	"healthops-dashboard/internal/domain"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.actor(w, r); !ok {
		return
	}
	invoices, err := h.invoices.List(r.Context())
	if err != nil {
		h.writeError(w, r, "list invoices", err)
		return
	}
	if invoices == nil {
		invoices = []domain.Invoice{}
	}
	Success(w, "", invoices)
}

func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.actor(w, r); !ok {
		return
	}
	inv, err := h.invoices.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, "get invoice", err)
		return
	}
	Success(w, "", inv)
}

func (h *Handler) createInvoice(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var draft domain.Invoice
	if err := decodeJSON(r, &draft); err != nil {
		h.writeError(w, r, "create invoice", err)
		return
	}
	inv, err := h.invoices.Create(r.Context(), actor, draft)
	if err != nil {
		h.writeError(w, r, "create invoice", err)
		return
	}
	SuccessCreated(w, "Invoice saved", inv)
}

func (h *Handler) updateInvoice(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var draft domain.Invoice
	if err := decodeJSON(r, &draft); err != nil {
		h.writeError(w, r, "update invoice", err)
		return
	}
	inv, err := h.invoices.Update(r.Context(), actor, chi.URLParam(r, "id"), draft)
	if err != nil {
		h.writeError(w, r, "update invoice", err)
		return
	}
	Success(w, "Invoice updated", inv)
}

func (h *Handler) deleteInvoice(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	if err := h.invoices.Delete(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, "delete invoice", err)
		return
	}
	Success(w, "Invoice deleted", nil)
}
