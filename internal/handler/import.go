package handler

import (
	"log/slog"
	"net/http"

	"draftdeck/internal/httputil"
	"draftdeck/internal/service/importer"
)

// ImportHandler handles share-link import requests.
type ImportHandler struct {
	importer *importer.Importer
	logger   *slog.Logger
}

// NewImportHandler creates an import handler.
func NewImportHandler(imp *importer.Importer, logger *slog.Logger) *ImportHandler {
	return &ImportHandler{
		importer: imp,
		logger:   logger,
	}
}

// Import imports a shared conversation from a public share link.
// POST /api/import
// Returns 200 with the new conversation, or 409 with the conflict list
// when the source URL collides with earlier imports.
func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req importer.Request
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.importer.Import(r.Context(), req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}
