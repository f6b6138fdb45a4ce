package chat

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"draftdeck/internal/domain"
	"draftdeck/internal/domain/models"
	"draftdeck/internal/domain/repositories"
	"draftdeck/internal/httputil"
)

// sendTimeout is the hard ceiling on one send operation, including the
// full stream drain. The only cancellation trigger modeled - there is no
// user-facing cancel.
const sendTimeout = 5 * time.Minute

// Callbacks are the hooks the engine fires toward its owner. All optional.
type Callbacks struct {
	// OnDraftUpdated receives the canonical draft after the stream signaled
	// a draft update. The streamed text is never the source of truth for
	// the draft - only this refetched document is.
	OnDraftUpdated func(ctx context.Context, draft *models.Draft)

	// OnLocked fires when the backend freezes the conversation.
	OnLocked func()

	// OnStreamEnded fires on every settle, success or failure, after
	// transient state is cleared. The shell uses it to refocus the input.
	OnStreamEnded func()
}

// Engine is the per-conversation chat streaming state machine. One send at
// a time: a new send is rejected while one is in flight (advisory boolean
// guard, per the concurrency model - not a fair queue).
type Engine struct {
	mu        sync.Mutex
	chats     repositories.ChatRepository
	drafts    repositories.DraftRepository
	staging   *Staging
	logger    *slog.Logger
	callbacks Callbacks

	conversationID string
	model          string
	provider       string

	sending          bool
	locked           bool
	messages         []models.ChatMessage
	streamingContent string
	statusMessage    string
	lastError        string
}

// NewEngine creates a chat engine bound to one conversation.
func NewEngine(
	chats repositories.ChatRepository,
	drafts repositories.DraftRepository,
	staging *Staging,
	conversationID string,
	callbacks Callbacks,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		chats:          chats,
		drafts:         drafts,
		staging:        staging,
		logger:         logger,
		callbacks:      callbacks,
		conversationID: conversationID,
	}
}

// SetModel selects the model/provider pair for subsequent sends.
func (e *Engine) SetModel(model, provider string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.model = model
	e.provider = provider
}

// LoadMessages replaces the transcript from the backend.
func (e *Engine) LoadMessages(ctx context.Context) error {
	messages, err := e.chats.GetMessages(ctx, e.conversationID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.messages = messages
	return nil
}

// State is the chat snapshot handed to the shell.
type State struct {
	IsStreaming      bool                 `json:"is_streaming"`
	StreamingContent string               `json:"streaming_content"`
	StatusMessage    string               `json:"status_message"`
	Error            string               `json:"error,omitempty"`
	Locked           bool                 `json:"locked"`
	Messages         []models.ChatMessage `json:"messages"`
}

// State returns the current chat state. Messages are copied; the internal
// slice is never shared.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	messages := make([]models.ChatMessage, len(e.messages))
	copy(messages, e.messages)
	return State{
		IsStreaming:      e.sending,
		StreamingContent: e.streamingContent,
		StatusMessage:    e.statusMessage,
		Error:            e.lastError,
		Locked:           e.locked,
		Messages:         messages,
	}
}

// SendMessage runs one full send operation: optimistic append, stream
// open, incremental drain, and settle. Blocks until settled; the gateway
// handler calls it from a goroutine.
//
// Preconditions: a blank message with no staged attachments is a silent
// no-op; a send already in flight returns ErrSendInFlight; a missing model
// selection surfaces a user-visible error.
func (e *Engine) SendMessage(ctx context.Context, rawText string) error {
	text := strings.TrimSpace(rawText)

	e.mu.Lock()
	if text == "" && len(e.staging.PendingFiles()) == 0 {
		e.mu.Unlock()
		return nil
	}
	if e.sending {
		e.mu.Unlock()
		return domain.ErrSendInFlight
	}
	if e.locked {
		e.mu.Unlock()
		return domain.ErrConversationLocked
	}
	if err := e.validateSelection(); err != nil {
		e.lastError = "Select a model before sending."
		e.mu.Unlock()
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	// Snapshot and clear staging so uploads that finish mid-stream cannot
	// leak into this send.
	files := e.staging.Consume()
	optimistic := e.buildUserMessage(ctx, rawText, files)
	e.messages = append(e.messages, optimistic)

	e.sending = true
	e.lastError = ""
	e.statusMessage = ""
	e.streamingContent = ""
	model, provider := e.model, e.provider
	e.mu.Unlock()

	// The timeout covers the stream drain AND the settle fetches (draft
	// refetch after draft_updated), so cancel only after settling.
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	result := e.runStream(ctx, text, model, provider, files)
	e.settle(ctx, result, files)
	return result.err
}

// streamResult carries the outcome of one stream drain.
type streamResult struct {
	content      string
	draftUpdated bool
	locked       bool
	err          error
}

// runStream opens the backend stream and drains it line by line.
func (e *Engine) runStream(ctx context.Context, text, model, provider string, files []models.PendingFile) streamResult {
	attachmentIDs := make([]string, 0, len(files))
	for _, f := range files {
		attachmentIDs = append(attachmentIDs, f.ID)
	}

	body, err := e.chats.StreamMessage(ctx, e.conversationID, &repositories.SendMessageRequest{
		Message:       text,
		Model:         model,
		Provider:      provider,
		AttachmentIDs: attachmentIDs,
	})
	if err != nil {
		return streamResult{err: err}
	}
	defer body.Close()

	return e.drainStream(body)
}

// drainStream consumes newline-delimited JSON events until the transport
// reports completion. Partial lines are buffered across reads by the
// bufio reader, so a chunk boundary splitting a JSON object mid-line is
// harmless; a trailing line without a newline terminator is never parsed.
func (e *Engine) drainStream(body io.Reader) streamResult {
	var result streamResult
	var accumulated strings.Builder
	reader := bufio.NewReader(body)
	logicalDone := false

	for {
		line, err := reader.ReadString('\n')
		complete := err == nil

		if complete && !logicalDone {
			stop, eventErr := e.handleLine(strings.TrimSuffix(line, "\n"), &accumulated, &result)
			if eventErr != nil {
				result.err = eventErr
				return result
			}
			if stop {
				// "done" is a logical marker from the application, not a
				// transport EOF - keep draining until the transport ends.
				logicalDone = true
			}
		}

		if err != nil {
			if !errors.Is(err, io.EOF) {
				result.err = fmt.Errorf("read chat stream: %w", err)
				return result
			}
			break
		}
	}

	result.content = accumulated.String()
	return result
}

// handleLine parses and dispatches one complete stream line. Returns
// stop=true on the logical done marker. A malformed line is logged and
// skipped; it never aborts the stream.
func (e *Engine) handleLine(line string, accumulated *strings.Builder, result *streamResult) (stop bool, err error) {
	if strings.TrimSpace(line) == "" {
		return false, nil
	}

	var event models.StreamEvent
	if unmarshalErr := json.Unmarshal([]byte(line), &event); unmarshalErr != nil {
		e.logger.Warn("skipping malformed stream line",
			"conversation_id", e.conversationID,
			"error", unmarshalErr,
		)
		return false, nil
	}

	switch event.Type {
	case models.StreamEventStatus:
		code := event.TextData()
		message, known := models.StatusMessages[code]
		if !known {
			// Forward-compatible: unknown codes clear the indicator
			// instead of leaking backend internals into the UI.
			e.logger.Warn("unknown status code in stream", "code", code)
			message = ""
		}
		e.mu.Lock()
		e.statusMessage = message
		e.mu.Unlock()

	case models.StreamEventContent:
		fragment := event.TextData()
		accumulated.WriteString(fragment)
		e.mu.Lock()
		e.streamingContent = accumulated.String()
		e.mu.Unlock()

	case models.StreamEventDraftUpdated:
		result.draftUpdated = true

	case models.StreamEventLocked:
		result.locked = true

	case models.StreamEventError:
		return false, fmt.Errorf("%s", event.TextData())

	case models.StreamEventDone:
		return true, nil

	default:
		e.logger.Warn("unknown stream event type", "type", event.Type)
	}

	return false, nil
}

// settle finishes a send on either path: commit + draft refetch on
// success, rollback + restore on failure; transient state always cleared
// and the stream-ended callback always fired.
func (e *Engine) settle(ctx context.Context, result streamResult, files []models.PendingFile) {
	if result.err != nil {
		e.mu.Lock()
		// Roll back exactly the optimistic user message (the last append)
		if len(e.messages) > 0 {
			e.messages = e.messages[:len(e.messages)-1]
		}
		e.lastError = userFacingError(result.err)
		e.mu.Unlock()

		e.staging.Restore(files)
		e.logger.Error("chat send failed",
			"conversation_id", e.conversationID,
			"error", result.err,
		)
	} else {
		e.commitAssistantMessage(result.content)

		if result.locked {
			e.mu.Lock()
			e.locked = true
			e.mu.Unlock()
			if e.callbacks.OnLocked != nil {
				e.callbacks.OnLocked()
			}
		}

		if result.draftUpdated {
			e.refetchDraft(ctx)
		}
	}

	e.mu.Lock()
	e.sending = false
	e.statusMessage = ""
	e.streamingContent = ""
	e.mu.Unlock()

	if e.callbacks.OnStreamEnded != nil {
		e.callbacks.OnStreamEnded()
	}
}

// commitAssistantMessage materializes the accumulated stream content as a
// committed assistant message. Empty content is never committed, and an
// identical trailing assistant message (defensive against double
// materialization) is skipped.
func (e *Engine) commitAssistantMessage(content string) {
	if content == "" {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if n := len(e.messages); n > 0 {
		last := e.messages[n-1]
		if last.Role == models.RoleAssistant && last.Content == content {
			return
		}
	}

	e.messages = append(e.messages, models.ChatMessage{
		ID:             uuid.New().String(),
		Role:           models.RoleAssistant,
		Content:        content,
		SequenceNumber: e.nextSequenceLocked(),
		CreatedAt:      time.Now(),
	})
}

// refetchDraft fetches the canonical draft after a draft_updated signal
// and hands it to the owner. The stream timeout context may already be
// near its deadline; this is a separate short fetch on the same context
// chain so auth is preserved.
func (e *Engine) refetchDraft(ctx context.Context) {
	draft, err := e.drafts.GetDraft(ctx, e.conversationID)
	if err != nil {
		e.logger.Error("failed to fetch draft after update signal",
			"conversation_id", e.conversationID,
			"error", err,
		)
		return
	}
	if e.callbacks.OnDraftUpdated != nil {
		e.callbacks.OnDraftUpdated(ctx, draft)
	}
}

// buildUserMessage constructs the optimistic user message from the raw
// text and the consumed staging snapshot.
func (e *Engine) buildUserMessage(ctx context.Context, rawText string, files []models.PendingFile) models.ChatMessage {
	attachments := make([]models.Attachment, 0, len(files))
	now := time.Now()
	for _, f := range files {
		attachments = append(attachments, models.Attachment{
			ID:         f.ID,
			Filename:   f.Filename,
			FileSize:   f.FileSize,
			FileType:   f.FileType,
			StorageKey: f.StorageKey,
			CreatedAt:  now,
		})
	}

	userID, userName, userEmail := httputil.UserFromContext(ctx)
	return models.ChatMessage{
		ID:             uuid.New().String(),
		Role:           models.RoleUser,
		Content:        rawText,
		SequenceNumber: e.nextSequenceLocked(),
		Attachments:    attachments,
		SentByUserID:   userID,
		SentByUserName: userName,
		SentByEmail:    userEmail,
		CreatedAt:      now,
	}
}

// nextSequenceLocked picks the next render-stability sequence number.
// Caller holds e.mu.
func (e *Engine) nextSequenceLocked() int {
	if n := len(e.messages); n > 0 {
		return e.messages[n-1].SequenceNumber + 1
	}
	return 1
}

func (e *Engine) validateSelection() error {
	return validation.Errors{
		"model":    validation.Validate(e.model, validation.Required),
		"provider": validation.Validate(e.provider, validation.Required),
	}.Filter()
}

// userFacingError maps an internal failure to the string the shell shows.
// Application-signaled errors pass through verbatim; transport failures
// get a generic message.
func userFacingError(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "The request timed out. Please try again."
	case errors.Is(err, domain.ErrConversationLocked):
		return "This conversation is locked."
	default:
		return err.Error()
	}
}
