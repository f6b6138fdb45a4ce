package session

import (
	"context"
	"log/slog"
	"sync"

	"draftdeck/internal/cache"
	"draftdeck/internal/domain/repositories"
	"draftdeck/internal/service/poll"
)

// Manager hands out one Session per conversation, creating it on first
// use. Sessions are long-lived: they hold the streaming state machine and
// animation timers, so tearing one down between requests would lose the
// in-flight send state the whole design hinges on.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	chats     repositories.ChatRepository
	drafts    repositories.DraftRepository
	poller    *poll.Poller
	snapshots *cache.Store
	logger    *slog.Logger

	defaultModel    string
	defaultProvider string
}

// NewManager creates a session manager. New sessions start on the default
// model/provider pair until the shell selects another.
func NewManager(
	chats repositories.ChatRepository,
	drafts repositories.DraftRepository,
	poller *poll.Poller,
	snapshots *cache.Store,
	defaultModel, defaultProvider string,
	logger *slog.Logger,
) *Manager {
	return &Manager{
		sessions:        make(map[string]*Session),
		chats:           chats,
		drafts:          drafts,
		poller:          poller,
		snapshots:       snapshots,
		logger:          logger,
		defaultModel:    defaultModel,
		defaultProvider: defaultProvider,
	}
}

// Get returns the session for a conversation, opening it on first access.
func (m *Manager) Get(ctx context.Context, conversationID string) *Session {
	m.mu.Lock()
	if s, ok := m.sessions[conversationID]; ok {
		m.mu.Unlock()
		return s
	}

	s := New(conversationID, m.chats, m.drafts, m.poller, m.snapshots, m.logger)
	s.Engine.SetModel(m.defaultModel, m.defaultProvider)
	m.sessions[conversationID] = s
	m.mu.Unlock()

	s.Open(ctx)
	return s
}

// Close shuts down every open session.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		s.Close()
		delete(m.sessions, id)
	}
}
