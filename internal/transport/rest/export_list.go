package rest

import (
	"context"
	"net/http"
	"strings"

	"healthops-dashboard/internal/service"

	"github.com/go-chi/chi/v5"
)

type ExportListService interface {
	GetExports(ctx context.Context, userID string) ([]service.ExportView, error)
	GetExport(ctx context.Context, exportID string, userID string) (service.ExportView, error)
}

func (h *Handler) listExports(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	exports, err := h.exportList.GetExports(r.Context(), actor.UID)
	if err != nil {
		h.writeError(w, r, "list exports", err)
		return
	}
	if exports == nil {
		exports = []service.ExportView{}
	}

	Success(w, "", exports)
}

func (h *Handler) getExport(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	exportIDParam := chi.URLParam(r, "export_id")
	if exportIDParam == "" {
		ErrorBadRequest(w, "export_id is required")
		return
	}
	exportID := exportIDParam
	if !strings.HasPrefix(exportID, "exports:") {
		exportID = "exports:" + exportID
	}

	export, err := h.exportList.GetExport(r.Context(), exportID, actor.UID)
	if err != nil {
		h.writeError(w, r, "get export", err)
		return
	}

	Success(w, "", export)
}
