package rest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"draftdeck/internal/domain"
	"draftdeck/internal/domain/models"
)

// errorEnvelope is the backend's error body: {"error": "..."}. Import
// conflicts additionally carry the colliding conversations.
type errorEnvelope struct {
	Error     string                `json:"error"`
	Conflicts []models.ConflictItem `json:"conflicts,omitempty"`
}

// decodeError maps a non-2xx backend response to a domain error. The body
// is read with a small cap; an unreadable or non-JSON body falls back to a
// status-derived message.
func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var envelope errorEnvelope
	message := fmt.Sprintf("backend returned %s", resp.Status)
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != "" {
		message = envelope.Error
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return &domain.NotFoundError{Message: message}
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return &domain.ValidationError{Message: message}
	case http.StatusUnauthorized:
		return &domain.UnauthorizedError{Message: message}
	case http.StatusForbidden:
		return &domain.ForbiddenError{Message: message}
	case http.StatusConflict:
		return &domain.ImportConflictError{Message: message, Conflicts: envelope.Conflicts}
	case http.StatusLocked:
		return fmt.Errorf("%w: %s", domain.ErrConversationLocked, message)
	default:
		return fmt.Errorf("%s", message)
	}
}
