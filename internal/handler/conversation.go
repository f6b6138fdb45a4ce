package handler

import (
	"context"
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"draftdeck/internal/capabilities"
	"draftdeck/internal/domain"
	"draftdeck/internal/domain/models"
	"draftdeck/internal/httputil"
	"draftdeck/internal/service/chat"
	"draftdeck/internal/service/session"
)

// ConversationHandler exposes the per-conversation editor state machine
// over HTTP for the browser shell: aggregate state reads, chat sends,
// version navigation, diff toggling, reverts, and file staging.
type ConversationHandler struct {
	sessions *session.Manager
	registry *capabilities.Registry
	logger   *slog.Logger
}

// NewConversationHandler creates a conversation handler.
func NewConversationHandler(sessions *session.Manager, registry *capabilities.Registry, logger *slog.Logger) *ConversationHandler {
	return &ConversationHandler{
		sessions: sessions,
		registry: registry,
		logger:   logger,
	}
}

// conversationState is the aggregate snapshot the shell polls.
type conversationState struct {
	Chat           chat.State           `json:"chat"`
	Versions       session.DiffState    `json:"versions"`
	PendingFiles   []models.PendingFile `json:"pending_files"`
	ShowFileUpload bool                 `json:"show_file_upload"`
	Capabilities   models.Capabilities  `json:"capabilities"`
	Draft          *models.Draft        `json:"draft,omitempty"`
}

// GetState returns the aggregate editor state for a conversation.
// GET /api/conversations/{id}/state
func (h *ConversationHandler) GetState(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Get(r.Context(), r.PathValue("id"))

	chatState := s.Engine.State()
	httputil.RespondJSON(w, http.StatusOK, conversationState{
		Chat:           chatState,
		Versions:       s.DiffState(),
		PendingFiles:   s.Staging.PendingFiles(),
		ShowFileUpload: s.Staging.ShowFileUpload(),
		Capabilities:   s.Staging.EffectiveCapabilities(models.Capabilities{}, chatState.Messages),
		Draft:          s.Draft(),
	})
}

// sendRequest is the chat send payload.
type sendRequest struct {
	Message string `json:"message"`
}

// SendMessage starts a chat send. The stream drains in the background;
// the shell polls state for streaming content. Responds 202 once the send
// is accepted, 409 when one is already in flight.
// POST /api/conversations/{id}/chat
func (h *ConversationHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Get(r.Context(), r.PathValue("id"))

	var req sendRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if s.Engine.State().IsStreaming {
		handleError(w, domain.ErrSendInFlight)
		return
	}

	// The drain outlives this request: detach from the request's
	// cancellation but keep its values (user identity, bearer token).
	ctx := context.WithoutCancel(r.Context())
	go func() {
		if err := s.Engine.SendMessage(ctx, req.Message); err != nil {
			// Already reflected in the engine's error state for the shell
			h.logger.Debug("send settled with error", "error", err)
		}
	}()

	w.WriteHeader(http.StatusAccepted)
}

// PreviousVersion steps the diff comparison one version back.
// POST /api/conversations/{id}/versions/previous
func (h *ConversationHandler) PreviousVersion(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Get(r.Context(), r.PathValue("id"))
	s.Navigator.HandlePreviousVersion(s.Draft())
	httputil.RespondJSON(w, http.StatusOK, s.DiffState())
}

// NextVersion steps the diff comparison one version forward.
// POST /api/conversations/{id}/versions/next
func (h *ConversationHandler) NextVersion(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Get(r.Context(), r.PathValue("id"))
	s.Navigator.HandleNextVersion(s.Draft())
	httputil.RespondJSON(w, http.StatusOK, s.DiffState())
}

// diffRequest toggles the diff view.
type diffRequest struct {
	Show bool `json:"show"`
}

// SetDiffs toggles the diff view on or off.
// PUT /api/conversations/{id}/diffs
func (h *ConversationHandler) SetDiffs(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Get(r.Context(), r.PathValue("id"))

	var req diffRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.Navigator.SetShowDiffs(req.Show)
	httputil.RespondJSON(w, http.StatusOK, s.DiffState())
}

// RevertVersion reverts the draft to an older version.
// POST /api/conversations/{id}/versions/{versionId}/revert
func (h *ConversationHandler) RevertVersion(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Get(r.Context(), r.PathValue("id"))

	versionID := r.PathValue("versionId")
	if versionID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "version ID is required")
		return
	}

	if err := s.Revert(r.Context(), versionID); err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, s.DiffState())
}

// UpdateDraft saves a manual edit of the draft content. The backend
// appends a new version; the response is the refreshed version-pane
// state, anchored on the edit.
// PATCH /api/conversations/{id}/draft
func (h *ConversationHandler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Get(r.Context(), r.PathValue("id"))

	var version models.DraftVersion
	if err := httputil.ParseJSON(w, r, &version); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if version.Title == "" {
		httputil.RespondError(w, http.StatusBadRequest, "title is required")
		return
	}
	version.IsManualEdit = true

	if _, err := s.SaveDraft(r.Context(), &version); err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, s.DiffState())
}

// LaunchResearchRun dispatches downstream processing for the draft.
// POST /api/conversations/{id}/research-run
func (h *ConversationHandler) LaunchResearchRun(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Get(r.Context(), r.PathValue("id"))

	if err := s.LaunchResearchRun(r.Context()); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// stageFilesRequest registers uploaded file metadata with staging.
type stageFilesRequest struct {
	Files []models.PendingFile `json:"files"`
}

// Validate checks the staged files.
func (r stageFilesRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Files, validation.Required),
	)
}

// StageFiles adds uploaded files to the next message's staging area.
// POST /api/conversations/{id}/files
func (h *ConversationHandler) StageFiles(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Get(r.Context(), r.PathValue("id"))

	var req stageFilesRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.Staging.HandleFilesUploaded(req.Files)
	httputil.RespondJSON(w, http.StatusOK, s.Staging.PendingFiles())
}

// UnstageFile removes a staged file by storage key.
// DELETE /api/conversations/{id}/files/{storageKey}
func (h *ConversationHandler) UnstageFile(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Get(r.Context(), r.PathValue("id"))

	storageKey := r.PathValue("storageKey")
	if storageKey == "" {
		httputil.RespondError(w, http.StatusBadRequest, "storage key is required")
		return
	}

	s.Staging.RemovePendingFile(storageKey)
	httputil.RespondJSON(w, http.StatusOK, s.Staging.PendingFiles())
}

// modelRequest selects the model for subsequent sends.
type modelRequest struct {
	Model    string `json:"model"`
	Provider string `json:"provider"`
}

// Validate checks the model selection against the capability registry.
func (r modelRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Model, validation.Required),
		validation.Field(&r.Provider, validation.Required),
	)
}

// SelectModel sets the model/provider pair for the conversation.
// PUT /api/conversations/{id}/model
func (h *ConversationHandler) SelectModel(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Get(r.Context(), r.PathValue("id"))

	var req modelRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.registry.GetModelCapabilities(req.Provider, req.Model); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.Engine.SetModel(req.Model, req.Provider)
	w.WriteHeader(http.StatusNoContent)
}

// ListModels returns the provider's models that can handle the
// conversation's content (vision for images, native PDF input for PDFs).
// GET /api/conversations/{id}/models?provider=anthropic
func (h *ConversationHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Get(r.Context(), r.PathValue("id"))

	provider := r.URL.Query().Get("provider")
	if provider == "" {
		httputil.RespondError(w, http.StatusBadRequest, "provider query parameter is required")
		return
	}

	required := s.Staging.EffectiveCapabilities(models.Capabilities{}, s.Engine.State().Messages)
	viable, err := h.registry.ViableModels(provider, required)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"provider": provider,
		"models":   viable,
	})
}
