package chat

import (
	"sync"

	"draftdeck/internal/domain/models"
)

// Staging tracks files selected for the next outgoing message. Purely
// transient state: populated on upload success, drained at send time,
// restored only when the send fails.
type Staging struct {
	mu             sync.Mutex
	pendingFiles   []models.PendingFile
	showFileUpload bool
}

// NewStaging creates an empty staging area.
func NewStaging() *Staging {
	return &Staging{}
}

// HandleFilesUploaded appends newly uploaded files. Append-only; order is
// upload order.
func (s *Staging) HandleFilesUploaded(files []models.PendingFile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingFiles = append(s.pendingFiles, files...)
}

// RemovePendingFile removes the staged file with the given storage key.
func (s *Staging) RemovePendingFile(storageKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.pendingFiles[:0]
	for _, f := range s.pendingFiles {
		if f.StorageKey != storageKey {
			kept = append(kept, f)
		}
	}
	s.pendingFiles = kept
}

// ClearPendingFiles drops all staged files.
func (s *Staging) ClearPendingFiles() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingFiles = nil
}

// Consume atomically returns and clears the staged list, and closes the
// upload panel. Called by the engine at send time so uploads that finish
// mid-stream cannot leak into the in-flight send.
func (s *Staging) Consume() []models.PendingFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	files := s.pendingFiles
	s.pendingFiles = nil
	s.showFileUpload = false
	return files
}

// Restore puts a consumed snapshot back at the front of the staged list
// (ahead of anything uploaded while the failed send was in flight), so the
// user can retry without re-selecting files.
func (s *Staging) Restore(snapshot []models.PendingFile) {
	if len(snapshot) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingFiles = append(append([]models.PendingFile{}, snapshot...), s.pendingFiles...)
}

// PendingFiles returns a copy of the staged list.
func (s *Staging) PendingFiles() []models.PendingFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.PendingFile, len(s.pendingFiles))
	copy(out, s.pendingFiles)
	return out
}

// SetShowFileUpload toggles the upload panel flag.
func (s *Staging) SetShowFileUpload(show bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.showFileUpload = show
}

// ShowFileUpload reports whether the upload panel is open.
func (s *Staging) ShowFileUpload() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.showFileUpload
}

// EffectiveCapabilities derives the conversation's content-capability
// flags: an OR across the backend-supplied conversation flags, the staged
// files, and every attachment already in the transcript. A display/gating
// hint for model selection, nothing more.
func (s *Staging) EffectiveCapabilities(conversation models.Capabilities, history []models.ChatMessage) models.Capabilities {
	caps := conversation

	s.mu.Lock()
	for _, f := range s.pendingFiles {
		caps.HasImages = caps.HasImages || models.IsImageType(f.FileType)
		caps.HasPDFs = caps.HasPDFs || models.IsPDFType(f.FileType)
	}
	s.mu.Unlock()

	for _, msg := range history {
		for _, att := range msg.Attachments {
			caps.HasImages = caps.HasImages || models.IsImageType(att.FileType)
			caps.HasPDFs = caps.HasPDFs || models.IsPDFType(att.FileType)
		}
	}
	return caps
}
