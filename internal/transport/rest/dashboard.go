package rest

import (
	"net/http"
)

func (h *Handler) getDashboard(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req CriteriaRequest
	if err := decodeAndValidate(r, &req); err != nil {
		h.writeError(w, r, "dashboard", err)
		return
	}

	res, err := h.dashboard.Dashboard(r.Context(), actor, req.ToCriteria(h.dashboard.DateRange))
	if err != nil {
		h.writeError(w, r, "dashboard", err)
		return
	}
	Success(w, "", res)
}

func (h *Handler) getDateRange(w http.ResponseWriter, r *http.Request) {
	rng := h.dashboard.DateRange(r.URL.Query().Get("preset"))
	Success(w, "", map[string]string{
		"startDate": rng.Start.Format("2006-01-02"),
		"endDate":   rng.End.Format("2006-01-02"),
	})
}
