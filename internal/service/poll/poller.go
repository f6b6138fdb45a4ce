package poll

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"draftdeck/internal/domain/models"
	"draftdeck/internal/domain/repositories"
)

// Poller watches a draft while the backend is still generating it and
// pushes the finished document to the caller. Fixed interval, no backoff,
// no jitter; the loop self-cancels when the generating condition clears.
//
// Each conversation gets a generation token: starting a new session for a
// conversation invalidates any previous one, so results from a stale loop
// are discarded instead of clobbering fresher state.
type Poller struct {
	mu       sync.Mutex
	drafts   repositories.DraftRepository
	logger   *slog.Logger
	interval time.Duration

	generations map[string]int // conversation id -> current token
}

// NewPoller creates a poller over the draft repository.
func NewPoller(drafts repositories.DraftRepository, interval time.Duration, logger *slog.Logger) *Poller {
	return &Poller{
		drafts:      drafts,
		logger:      logger,
		interval:    interval,
		generations: make(map[string]int),
	}
}

// Session is one cancellable polling run.
type Session struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Stop cancels the session and waits for its loop to exit.
func (s *Session) Stop() {
	s.cancel()
	<-s.done
}

// Watch starts polling the conversation's draft until it stops reporting
// the generating state, then invokes onReady with the finished draft and
// exits. Fetch errors are logged and end the loop silently - freshness is
// best-effort, never critical-path.
func (p *Poller) Watch(ctx context.Context, conversationID string, onReady func(*models.Draft)) *Session {
	p.mu.Lock()
	p.generations[conversationID]++
	token := p.generations[conversationID]
	p.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	session := &Session{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(session.done)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				draft, err := p.drafts.GetDraft(ctx, conversationID)
				if err != nil {
					p.logger.Error("generation poll failed, stopping",
						"conversation_id", conversationID,
						"error", err,
					)
					return
				}

				if p.superseded(conversationID, token) {
					return
				}
				if draft.IsGenerating() {
					continue
				}

				onReady(draft)
				return
			}
		}
	}()

	return session
}

func (p *Poller) superseded(conversationID string, token int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.generations[conversationID] != token
}
