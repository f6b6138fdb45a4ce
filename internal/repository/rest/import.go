package rest

import (
	"context"

	"draftdeck/internal/domain/repositories"
)

// ImportRepository implements repositories.ImportRepository over the
// backend's REST API.
type ImportRepository struct {
	*Client
}

// NewImportRepository creates a REST-backed import repository.
func NewImportRepository(client *Client) repositories.ImportRepository {
	return &ImportRepository{Client: client}
}

// ImportConversation submits a shared conversation for import. A 409 from
// the backend surfaces as *domain.ImportConflictError with the colliding
// conversations attached (see decodeError).
func (r *ImportRepository) ImportConversation(ctx context.Context, req *repositories.ImportRequest) (*repositories.ImportResult, error) {
	var result repositories.ImportResult
	if err := r.doJSON(ctx, "POST", "/conversations/import", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
