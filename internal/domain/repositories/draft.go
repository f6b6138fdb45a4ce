package repositories

import (
	"context"

	"draftdeck/internal/domain/models"
)

// DraftRepository defines the draft operations the gateway consumes from
// the remote backend. Implementations are thin REST wrappers; the version
// list is always returned whole and is never mutated locally.
type DraftRepository interface {
	// GetDraft retrieves the canonical draft for a conversation
	GetDraft(ctx context.Context, conversationID string) (*models.Draft, error)

	// UpdateDraft saves a manual edit; the backend creates a new version
	UpdateDraft(ctx context.Context, conversationID string, version *models.DraftVersion) (*models.Draft, error)

	// ListVersions retrieves the full, unpaginated version list
	ListVersions(ctx context.Context, conversationID string) ([]models.DraftVersion, error)

	// ActivateVersion reverts to an older version. Revert is append-only:
	// the backend creates a new version duplicating the old content and
	// returns the updated draft.
	ActivateVersion(ctx context.Context, conversationID, versionID string) (*models.Draft, error)

	// LaunchResearchRun dispatches downstream processing for the draft.
	// Fire-and-forget from the gateway's perspective.
	LaunchResearchRun(ctx context.Context, conversationID string) error
}
