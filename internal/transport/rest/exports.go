package rest

import (
	"net/http"
)

func (h *Handler) exportEntries(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req CriteriaRequest
	if err := decodeAndValidate(r, &req); err != nil {
		h.writeError(w, r, "export entries", err)
		return
	}

	exportID, err := h.exports.StartEntriesExport(r.Context(), actor, req.ToCriteria(h.dashboard.DateRange))
	if err != nil {
		h.writeError(w, r, "export entries", err)
		return
	}

	SuccessAccepted(w, "Export queued", map[string]any{
		"export_id": exportID,
	})
}

func (h *Handler) exportExpenses(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req ExpenseCriteriaRequest
	if err := decodeAndValidate(r, &req); err != nil {
		h.writeError(w, r, "export expenses", err)
		return
	}

	exportID, err := h.exports.StartExpensesExport(r.Context(), actor, req.ToCriteria())
	if err != nil {
		h.writeError(w, r, "export expenses", err)
		return
	}

	SuccessAccepted(w, "Export queued", map[string]any{
		"export_id": exportID,
	})
}

func (h *Handler) serveWebSocket(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	if h.ws == nil {
		ErrorNotFound(w, "websocket is not enabled")
		return
	}
	h.ws.HandleWebSocket(w, r, actor.UID)
}
