package cache

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"draftdeck/internal/domain/models"
)

// Snapshot is the last-known state of one conversation's draft, persisted
// locally so the shell can render immediately on reopen while the fresh
// fetch is still in flight. Never authoritative: always replaced by the
// next successful backend fetch.
type Snapshot struct {
	ConversationID string `badgerhold:"key"`
	Draft          *models.Draft
	Versions       []models.DraftVersion
	SavedAt        time.Time
}

// Store is the local snapshot cache backed by badger.
type Store struct {
	db     *badgerhold.Store
	logger *slog.Logger
}

// Open opens (or creates) the snapshot cache at dir.
func Open(dir string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = dir
	options.ValueDir = dir
	options.Logger = nil // quiet badger's own logger; slog covers us

	db, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("open snapshot cache: %w", err)
	}

	logger.Debug("snapshot cache opened", "dir", dir)
	return &Store{db: db, logger: logger}, nil
}

// Save upserts the snapshot for a conversation. Failures are logged, not
// returned: caching is best-effort and never blocks the UI path.
func (s *Store) Save(conversationID string, draft *models.Draft, versions []models.DraftVersion) {
	snapshot := Snapshot{
		ConversationID: conversationID,
		Draft:          draft,
		Versions:       versions,
		SavedAt:        time.Now(),
	}
	if err := s.db.Upsert(conversationID, &snapshot); err != nil {
		s.logger.Error("failed to save snapshot",
			"conversation_id", conversationID,
			"error", err,
		)
	}
}

// Load returns the cached snapshot for a conversation, or nil when none
// exists.
func (s *Store) Load(conversationID string) *Snapshot {
	var snapshot Snapshot
	if err := s.db.Get(conversationID, &snapshot); err != nil {
		if !errors.Is(err, badgerhold.ErrNotFound) {
			s.logger.Error("failed to load snapshot",
				"conversation_id", conversationID,
				"error", err,
			)
		}
		return nil
	}
	return &snapshot
}

// Delete removes a conversation's snapshot. Missing entries are fine.
func (s *Store) Delete(conversationID string) {
	if err := s.db.Delete(conversationID, &Snapshot{}); err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
		s.logger.Error("failed to delete snapshot",
			"conversation_id", conversationID,
			"error", err,
		)
	}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
