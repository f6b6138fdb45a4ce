package rest

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"draftdeck/internal/domain/models"
	"draftdeck/internal/domain/repositories"
)

// ChatRepository implements repositories.ChatRepository over the backend's
// REST API.
type ChatRepository struct {
	*Client
}

// NewChatRepository creates a REST-backed chat repository.
func NewChatRepository(client *Client) repositories.ChatRepository {
	return &ChatRepository{Client: client}
}

// messagesEnvelope is the backend's transcript body: {"chat_messages": [...]}.
type messagesEnvelope struct {
	ChatMessages []models.ChatMessage `json:"chat_messages"`
}

// GetMessages retrieves the full transcript for a conversation. Order is
// preserved as given; messages are never re-sorted.
func (r *ChatRepository) GetMessages(ctx context.Context, conversationID string) ([]models.ChatMessage, error) {
	var envelope messagesEnvelope
	path := fmt.Sprintf("/conversations/%s/chat", url.PathEscape(conversationID))
	if err := r.doJSON(ctx, "GET", path, nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.ChatMessages, nil
}

// StreamMessage opens the chat stream for a new user message and returns
// the raw body. The backend labels the response text/event-stream but the
// payload is newline-delimited JSON, so no SSE parsing happens here - the
// chat engine owns the line framing.
func (r *ChatRepository) StreamMessage(ctx context.Context, conversationID string, req *repositories.SendMessageRequest) (io.ReadCloser, error) {
	path := fmt.Sprintf("/conversations/%s/chat/stream", url.PathEscape(conversationID))
	httpReq, err := r.newRequest(ctx, "POST", path, req)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := r.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("open chat stream: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}

	if resp.Body == nil {
		return nil, fmt.Errorf("chat stream response has no body")
	}

	return resp.Body, nil
}
