package session

import (
	"context"
	"log/slog"
	"sync"

	"draftdeck/internal/cache"
	"draftdeck/internal/domain/models"
	"draftdeck/internal/domain/repositories"
	"draftdeck/internal/service/chat"
	"draftdeck/internal/service/diffview"
	"draftdeck/internal/service/history"
	"draftdeck/internal/service/poll"
)

// Session composes the state machines for one open conversation: the chat
// engine, the version navigator, the animation controller, file staging,
// and the generation poller. It owns the draft snapshot and is the glue
// that turns "a chat turn updated the draft" into "the diff view shows
// what changed".
type Session struct {
	mu             sync.Mutex
	conversationID string
	draft          *models.Draft

	Engine    *chat.Engine
	Navigator *history.Navigator
	Animator  *history.Animator
	Staging   *chat.Staging

	drafts    repositories.DraftRepository
	poller    *poll.Poller
	pollRun   *poll.Session
	snapshots *cache.Store
	logger    *slog.Logger
}

// New creates and wires a session for a conversation.
func New(
	conversationID string,
	chats repositories.ChatRepository,
	drafts repositories.DraftRepository,
	poller *poll.Poller,
	snapshots *cache.Store,
	logger *slog.Logger,
) *Session {
	s := &Session{
		conversationID: conversationID,
		drafts:         drafts,
		poller:         poller,
		snapshots:      snapshots,
		logger:         logger,
	}

	s.Staging = chat.NewStaging()
	s.Navigator = history.NewNavigator(drafts, conversationID, logger)
	s.Animator = history.NewAnimator(s.Navigator, s.setDraft, logger)

	s.Engine = chat.NewEngine(chats, drafts, s.Staging, conversationID, chat.Callbacks{
		OnDraftUpdated: s.handleDraftUpdated,
		OnLocked: func() {
			logger.Info("conversation locked", "conversation_id", conversationID)
		},
	}, logger)

	// Warm from the local snapshot so the shell has something to render
	// before the first network round-trip completes.
	if snapshots != nil {
		if snap := snapshots.Load(conversationID); snap != nil {
			s.draft = snap.Draft
		}
	}

	return s
}

// Open fetches the initial transcript and draft, and starts the
// generation poller when the draft is still being generated. Fetch
// failures are logged; the session stays usable with whatever loaded.
func (s *Session) Open(ctx context.Context) {
	if err := s.Engine.LoadMessages(ctx); err != nil {
		s.logger.Error("failed to load transcript",
			"conversation_id", s.conversationID,
			"error", err,
		)
	}

	draft, err := s.drafts.GetDraft(ctx, s.conversationID)
	if err != nil {
		s.logger.Error("failed to load draft",
			"conversation_id", s.conversationID,
			"error", err,
		)
	} else {
		s.setDraft(draft)
		if draft.IsGenerating() {
			s.watchGeneration(ctx)
		}
	}

	s.Navigator.LoadVersions(ctx)
	s.persistSnapshot()
}

// Close stops background work for the session.
func (s *Session) Close() {
	s.mu.Lock()
	run := s.pollRun
	s.pollRun = nil
	s.mu.Unlock()
	if run != nil {
		run.Stop()
	}
	s.Animator.Stop()
}

// Draft returns the current draft snapshot.
func (s *Session) Draft() *models.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Revert activates an older version. The backend appends a duplicate
// version and returns the updated draft, which flows through the same
// external-update path a chat-produced version does - so the diff view
// anchors on the delta the revert produced.
func (s *Session) Revert(ctx context.Context, versionID string) error {
	previous := s.Draft()
	draft, err := s.drafts.ActivateVersion(ctx, s.conversationID, versionID)
	if err != nil {
		return err
	}
	s.Animator.HandleExternalUpdate(ctx, draft, previous)
	s.persistSnapshot()
	return nil
}

// SaveDraft persists a manual edit. The backend appends a new version
// and returns the updated draft, which flows through the external-update
// path so the diff view anchors on what the edit changed.
func (s *Session) SaveDraft(ctx context.Context, version *models.DraftVersion) (*models.Draft, error) {
	previous := s.Draft()
	draft, err := s.drafts.UpdateDraft(ctx, s.conversationID, version)
	if err != nil {
		return nil, err
	}
	s.Animator.HandleExternalUpdate(ctx, draft, previous)
	s.persistSnapshot()
	return draft, nil
}

// LaunchResearchRun dispatches downstream processing for the draft.
// Fire-and-forget: the backend owns the run's lifecycle.
func (s *Session) LaunchResearchRun(ctx context.Context) error {
	return s.drafts.LaunchResearchRun(ctx, s.conversationID)
}

// DiffState is the version-pane snapshot for the shell: navigation state
// plus the rendered diff for the current comparison pair.
type DiffState struct {
	history.State
	Diff                *diffview.VersionDiff `json:"diff,omitempty"`
	UpdateAnimation     bool                  `json:"update_animation"`
	NewVersionAnimation bool                  `json:"new_version_animation"`
	Generating          bool                  `json:"generating"`
}

// DiffState derives the current version-pane state.
func (s *Session) DiffState() DiffState {
	draft := s.Draft()
	nav := s.Navigator.State(draft)
	update, newVersion := s.Animator.Flags()

	state := DiffState{
		State:               nav,
		UpdateAnimation:     update,
		NewVersionAnimation: newVersion,
		Generating:          draft.IsGenerating(),
	}
	if nav.ShowDiffs {
		state.Diff = diffview.CompareVersions(nav.ComparisonVersion, nav.NextVersion)
	}
	return state
}

// handleDraftUpdated is the engine callback for the draft_updated stream
// signal, funneling the refetched draft into the animation controller.
func (s *Session) handleDraftUpdated(ctx context.Context, draft *models.Draft) {
	previous := s.Draft()
	s.Animator.HandleExternalUpdate(ctx, draft, previous)
	s.persistSnapshot()
}

// setDraft replaces the draft snapshot. Handed to the animator as its
// document sink.
func (s *Session) setDraft(draft *models.Draft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = draft
}

// watchGeneration polls until the backend finishes generating the draft,
// then routes the finished document through the external-update path.
func (s *Session) watchGeneration(ctx context.Context) {
	s.mu.Lock()
	if s.pollRun != nil {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	// The poll loop outlives the request that started it: detach from the
	// request's cancellation but keep its values. The callback reuses the
	// same context so the version reload still carries the bearer token.
	ctx = context.WithoutCancel(ctx)
	run := s.poller.Watch(ctx, s.conversationID, func(draft *models.Draft) {
		previous := s.Draft()
		s.Animator.HandleExternalUpdate(ctx, draft, previous)
		s.persistSnapshot()
		s.mu.Lock()
		s.pollRun = nil
		s.mu.Unlock()
	})

	s.mu.Lock()
	s.pollRun = run
	s.mu.Unlock()
}

// persistSnapshot writes the current draft + version list to the local
// cache. Best-effort.
func (s *Session) persistSnapshot() {
	if s.snapshots == nil {
		return
	}
	draft := s.Draft()
	if draft == nil {
		return
	}
	nav := s.Navigator.State(draft)
	s.snapshots.Save(s.conversationID, draft, nav.AllVersions)
}
