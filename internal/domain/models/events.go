package models

import "encoding/json"

// Stream event type constants. The chat stream is a sequence of
// newline-delimited JSON objects {"type": ..., "data": ...}. Despite the
// backend declaring text/event-stream, this is NOT SSE framing - there are
// no "event:"/"data:" prefixes, and each line is a standalone JSON object.
const (
	StreamEventStatus       = "status"              // data: status code string
	StreamEventContent      = "content"             // data: text fragment
	StreamEventDraftUpdated = "draft_updated"       // data: ignored; refetch the canonical draft
	StreamEventLocked       = "conversation_locked" // data: ignored; conversation is frozen
	StreamEventError        = "error"               // data: server-supplied error message
	StreamEventDone         = "done"                // data: ignored; logical end-of-stream marker
)

// StreamEvent is one frame of the chat stream.
type StreamEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// TextData decodes the event payload as a JSON string. Falls back to the
// raw bytes for servers that send bare (unquoted) text.
func (e *StreamEvent) TextData() string {
	var s string
	if err := json.Unmarshal(e.Data, &s); err != nil {
		return string(e.Data)
	}
	return s
}

// StatusMessages is the closed set of status codes the backend may emit,
// mapped to the display strings the shell renders. Unknown codes are
// logged and clear the indicator rather than being shown verbatim.
var StatusMessages = map[string]string{
	"thinking":            "Thinking...",
	"reading_attachments": "Reading attachments...",
	"searching":           "Searching related work...",
	"updating_draft":      "Updating the draft...",
	"finalizing":          "Finalizing response...",
}
