package repositories

import (
	"context"
	"io"

	"draftdeck/internal/domain/models"
)

// SendMessageRequest is the payload for opening a chat stream.
type SendMessageRequest struct {
	Message       string   `json:"message"`
	Model         string   `json:"llm_model"`
	Provider      string   `json:"llm_provider"`
	AttachmentIDs []string `json:"attachment_ids,omitempty"`
}

// ChatRepository defines the conversation operations the gateway consumes
// from the remote backend.
type ChatRepository interface {
	// GetMessages retrieves the full transcript for a conversation
	GetMessages(ctx context.Context, conversationID string) ([]models.ChatMessage, error)

	// StreamMessage opens the chat stream for a new user message. The
	// returned body is a sequence of newline-delimited JSON StreamEvent
	// objects; the caller owns closing it.
	StreamMessage(ctx context.Context, conversationID string, req *SendMessageRequest) (io.ReadCloser, error)
}

// ImportRequest is the payload for importing a shared conversation.
type ImportRequest struct {
	SourceURL  string `json:"source_url"`
	Provider   string `json:"provider"` // "chatgpt", "claude", "grok", "branchprompt"
	Transcript string `json:"transcript,omitempty"` // markdown, extracted gateway-side
	Overwrite  bool   `json:"overwrite,omitempty"`  // resolve a URL conflict by replacing
}

// ImportResult is the backend's answer to an import request.
type ImportResult struct {
	ConversationID string                `json:"conversation_id,omitempty"`
	Conflicts      []models.ConflictItem `json:"conflicts,omitempty"`
}

// ImportRepository defines the import operations of the remote backend.
type ImportRepository interface {
	// ImportConversation submits a shared conversation. A URL collision is
	// reported as a *domain.ImportConflictError carrying the conflicts.
	ImportConversation(ctx context.Context, req *ImportRequest) (*ImportResult, error)
}
