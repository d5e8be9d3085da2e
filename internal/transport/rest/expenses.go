package rest

import (
	"net/http"

	"healthops-dashboard/internal/domain"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) listExpenses(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	expenses, err := h.expenses.List(r.Context(), actor)
	if err != nil {
		h.writeError(w, r, "list expenses", err)
		return
	}
	if expenses == nil {
		expenses = []domain.OfficeExpense{}
	}
	Success(w, "", expenses)
}

func (h *Handler) searchExpenses(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var req ExpenseCriteriaRequest
	if err := decodeAndValidate(r, &req); err != nil {
		h.writeError(w, r, "search expenses", err)
		return
	}
	res, err := h.expenses.Search(r.Context(), actor, req.ToCriteria())
	if err != nil {
		h.writeError(w, r, "search expenses", err)
		return
	}
	if res.Expenses == nil {
		res.Expenses = []domain.OfficeExpense{}
	}
	Success(w, "", res)
}

func (h *Handler) createExpense(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var draft domain.OfficeExpense
	if err := decodeJSON(r, &draft); err != nil {
		h.writeError(w, r, "create expense", err)
		return
	}
	e, err := h.expenses.Create(r.Context(), actor, draft)
	if err != nil {
		h.writeError(w, r, "create expense", err)
		return
	}
	SuccessCreated(w, "Expense saved", e)
}

func (h *Handler) updateExpense(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var draft domain.OfficeExpense
	if err := decodeJSON(r, &draft); err != nil {
		h.writeError(w, r, "update expense", err)
		return
	}
	e, err := h.expenses.Update(r.Context(), actor, chi.URLParam(r, "id"), draft)
	if err != nil {
		h.writeError(w, r, "update expense", err)
		return
	}
	Success(w, "Expense updated", e)
}

func (h *Handler) deleteExpense(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	if err := h.expenses.Delete(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, "delete expense", err)
		return
	}
	Success(w, "Expense deleted", nil)
}
