package rest

import (
	"net/http"

	"healthops-dashboard/internal/domain"
)

func (h *Handler) listNavigators(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	users, err := h.users.Navigators(r.Context(), actor)
	if err != nil {
		h.writeError(w, r, "list navigators", err)
		return
	}
	if users == nil {
		users = []domain.User{}
	}
	Success(w, "", users)
}
