package models

import (
	"strings"
	"time"
)

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is a single message in a conversation transcript.
// Array order is authoritative for rendering; SequenceNumber exists only
// for render-key stability and is never used to sort.
type ChatMessage struct {
	ID             string       `json:"id"`
	Role           string       `json:"role"` // "user" or "assistant"
	Content        string       `json:"content"`
	SequenceNumber int          `json:"sequence_number"`
	Attachments    []Attachment `json:"attachments,omitempty"`
	SentByUserID   string       `json:"sent_by_user_id,omitempty"`
	SentByUserName string       `json:"sent_by_user_name,omitempty"`
	SentByEmail    string       `json:"sent_by_user_email,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
}

// Attachment is file metadata attached to a committed chat message.
type Attachment struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	FileSize   int64     `json:"file_size"`
	FileType   string    `json:"file_type"` // MIME type
	StorageKey string    `json:"storage_key"`
	CreatedAt  time.Time `json:"created_at"`
}

// PendingFile is a file staged for the next outgoing message. Purely
// transient gateway-side state: added on upload success, consumed at send
// time, restored only when the send fails.
type PendingFile struct {
	ID         string `json:"id"`
	Filename   string `json:"filename"`
	FileSize   int64  `json:"file_size"`
	FileType   string `json:"file_type"`
	StorageKey string `json:"storage_key"`
}

// Capabilities are the derived content-capability flags for a conversation.
// They gate which model choices are viable in the shell; they are a display
// hint, not a security boundary.
type Capabilities struct {
	HasImages bool `json:"has_images"`
	HasPDFs   bool `json:"has_pdfs"`
}

// IsImageType reports whether a MIME type is an image type.
func IsImageType(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/")
}

// IsPDFType reports whether a MIME type is a PDF.
func IsPDFType(mimeType string) bool {
	return mimeType == "application/pdf"
}
