package rest

import (
	"net/http"

	"healthops-dashboard/internal/domain"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) listEntries(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	entries, err := h.entries.List(r.Context(), actor)
	if err != nil {
		h.writeError(w, r, "list entries", err)
		return
	}
	if entries == nil {
		entries = []domain.ServiceEntry{}
	}
	Success(w, "", entries)
}

func (h *Handler) getEntry(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	e, err := h.entries.Get(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, "get entry", err)
		return
	}
	Success(w, "", e)
}

func (h *Handler) createEntry(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var draft domain.ServiceEntry
	if err := decodeJSON(r, &draft); err != nil {
		h.writeError(w, r, "create entry", err)
		return
	}
	e, err := h.entries.Create(r.Context(), actor, draft)
	if err != nil {
		h.writeError(w, r, "create entry", err)
		return
	}
	SuccessCreated(w, "Service entry saved", e)
}

func (h *Handler) updateEntry(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var draft domain.ServiceEntry
	if err := decodeJSON(r, &draft); err != nil {
		h.writeError(w, r, "update entry", err)
		return
	}
	e, err := h.entries.Update(r.Context(), actor, chi.URLParam(r, "id"), draft)
	if err != nil {
		h.writeError(w, r, "update entry", err)
		return
	}
	Success(w, "Service entry updated", e)
}

func (h *Handler) deleteEntry(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	if err := h.entries.Delete(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, "delete entry", err)
		return
	}
	Success(w, "Service entry deleted", nil)
}

func (h *Handler) setPaymentByUs(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var req PaymentByUsRequest
	if err := decodeAndValidate(r, &req); err != nil {
		h.writeError(w, r, "set payment by us", err)
		return
	}
	e, err := h.entries.SetPaymentByUs(r.Context(), actor, chi.URLParam(r, "id"), *req.Enabled, req.TotalAmount, req.WhomToPay)
	if err != nil {
		h.writeError(w, r, "set payment by us", err)
		return
	}
	Success(w, "", e)
}

func (h *Handler) addPayment(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var req PaymentRequest
	if err := decodeAndValidate(r, &req); err != nil {
		h.writeError(w, r, "add payment", err)
		return
	}
	e, p, err := h.entries.AddPayment(r.Context(), actor, chi.URLParam(r, "id"), req.ToDraft())
	if err != nil {
		h.writeError(w, r, "add payment", err)
		return
	}
	SuccessCreated(w, "Payment added", map[string]any{
		"entry":   e,
		"payment": p,
	})
}

func (h *Handler) removePayment(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	e, err := h.entries.RemovePayment(r.Context(), actor, chi.URLParam(r, "id"), chi.URLParam(r, "paymentID"))
	if err != nil {
		h.writeError(w, r, "remove payment", err)
		return
	}
	Success(w, "Payment removed", e)
}
