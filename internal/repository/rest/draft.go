package rest

import (
	"context"
	"fmt"
	"net/url"

	"draftdeck/internal/domain/models"
	"draftdeck/internal/domain/repositories"
)

// DraftRepository implements repositories.DraftRepository over the
// backend's REST API.
type DraftRepository struct {
	*Client
}

// NewDraftRepository creates a REST-backed draft repository.
func NewDraftRepository(client *Client) repositories.DraftRepository {
	return &DraftRepository{Client: client}
}

// versionsEnvelope is the backend's version-list body: {"versions": [...]}.
type versionsEnvelope struct {
	Versions []models.DraftVersion `json:"versions"`
}

// GetDraft retrieves the canonical draft for a conversation.
func (r *DraftRepository) GetDraft(ctx context.Context, conversationID string) (*models.Draft, error) {
	var draft models.Draft
	path := fmt.Sprintf("/conversations/%s/draft", url.PathEscape(conversationID))
	if err := r.doJSON(ctx, "GET", path, nil, &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

// UpdateDraft saves a manual edit. The backend appends a new version and
// returns the updated draft.
func (r *DraftRepository) UpdateDraft(ctx context.Context, conversationID string, version *models.DraftVersion) (*models.Draft, error) {
	var draft models.Draft
	path := fmt.Sprintf("/conversations/%s/draft", url.PathEscape(conversationID))
	if err := r.doJSON(ctx, "PATCH", path, version, &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

// ListVersions retrieves the full version list, unpaginated. Order is
// preserved exactly as the backend returns it.
func (r *DraftRepository) ListVersions(ctx context.Context, conversationID string) ([]models.DraftVersion, error) {
	var envelope versionsEnvelope
	path := fmt.Sprintf("/conversations/%s/draft/versions", url.PathEscape(conversationID))
	if err := r.doJSON(ctx, "GET", path, nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Versions, nil
}

// ActivateVersion reverts the draft to an older version (append-only on
// the backend) and returns the updated draft.
func (r *DraftRepository) ActivateVersion(ctx context.Context, conversationID, versionID string) (*models.Draft, error) {
	var draft models.Draft
	path := fmt.Sprintf("/conversations/%s/draft/versions/%s/activate",
		url.PathEscape(conversationID), url.PathEscape(versionID))
	if err := r.doJSON(ctx, "POST", path, nil, &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

// LaunchResearchRun dispatches downstream processing for the draft.
func (r *DraftRepository) LaunchResearchRun(ctx context.Context, conversationID string) error {
	path := fmt.Sprintf("/conversations/%s/draft/research-run", url.PathEscape(conversationID))
	return r.doJSON(ctx, "POST", path, nil, nil)
}
