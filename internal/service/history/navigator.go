package history

import (
	"context"
	"log/slog"
	"sync"

	"draftdeck/internal/domain/models"
	"draftdeck/internal/domain/repositories"
)

// Navigator holds the diff-view state for one conversation's draft:
// whether diffs are shown, the cached version list, and the selected
// comparison anchor. The version list is owned here as a cache - it is
// replaced wholesale from the backend, never mutated in place.
type Navigator struct {
	mu     sync.Mutex
	drafts repositories.DraftRepository
	logger *slog.Logger

	conversationID string
	showDiffs      bool
	allVersions    []models.DraftVersion
	selected       *int // selected comparison version number, nil = default to active-1
}

// NewNavigator creates a navigator bound to a conversation.
func NewNavigator(drafts repositories.DraftRepository, conversationID string, logger *slog.Logger) *Navigator {
	return &Navigator{
		drafts:         drafts,
		logger:         logger,
		conversationID: conversationID,
		showDiffs:      true,
	}
}

// Rebind switches the navigator to a different conversation. The
// comparison selection resets unconditionally; the stale version list is
// dropped and must be reloaded.
func (n *Navigator) Rebind(conversationID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if conversationID == n.conversationID {
		return
	}
	n.conversationID = conversationID
	n.selected = nil
	n.allVersions = nil
}

// LoadVersions refreshes the cached version list from the backend. Safe to
// call repeatedly: the list is replaced wholesale. A fetch failure is
// logged and otherwise swallowed - the view keeps the stale (possibly
// empty) list rather than surfacing an error. This is a deliberate UX
// decision, not an oversight.
func (n *Navigator) LoadVersions(ctx context.Context) {
	n.mu.Lock()
	conversationID := n.conversationID
	n.mu.Unlock()

	versions, err := n.drafts.ListVersions(ctx, conversationID)
	if err != nil {
		n.logger.Error("failed to load draft versions",
			"conversation_id", conversationID,
			"error", err,
		)
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.conversationID != conversationID {
		// Rebound while the fetch was in flight; discard the stale result
		return
	}
	n.allVersions = versions
}

// SetShowDiffs toggles the diff view. Turning diffs off resets the
// comparison selection, so re-enabling them returns to the default
// "compare against previous" pair.
func (n *Navigator) SetShowDiffs(show bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.showDiffs && !show {
		n.selected = nil
	}
	n.showDiffs = show
}

// SetComparisonAnchor pins the comparison to a specific version number.
// Used by the animation controller to anchor the diff at the version that
// was active before an external update.
func (n *Navigator) SetComparisonAnchor(versionNumber int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	v := versionNumber
	n.selected = &v
}

// HandlePreviousVersion moves the comparison one version back. No-op when
// already at the oldest pair.
func (n *Navigator) HandlePreviousVersion(draft *models.Draft) {
	n.mu.Lock()
	defer n.mu.Unlock()
	comparison := ComparisonVersion(draft, n.allVersions, n.selected)
	if candidate := PreviousVersionNumber(comparison, draft); candidate != nil {
		n.selected = candidate
	}
}

// HandleNextVersion moves the comparison one version forward. No-op when
// the next pair would reach past the active version.
func (n *Navigator) HandleNextVersion(draft *models.Draft) {
	n.mu.Lock()
	defer n.mu.Unlock()
	comparison := ComparisonVersion(draft, n.allVersions, n.selected)
	if candidate := NextVersionNumber(comparison, draft); candidate != nil {
		n.selected = candidate
	}
}

// State is the derived diff-view state handed to the shell.
type State struct {
	ShowDiffs           bool                  `json:"show_diffs"`
	AllVersions         []models.DraftVersion `json:"all_versions"`
	ComparisonVersion   *models.DraftVersion  `json:"comparison_version,omitempty"`
	NextVersion         *models.DraftVersion  `json:"next_version,omitempty"`
	CanNavigatePrevious bool                  `json:"can_navigate_previous"`
	CanNavigateNext     bool                  `json:"can_navigate_next"`
}

// State derives the current navigation state against a draft snapshot.
// Recomputed on every call; nothing here is cached besides the version
// list itself.
func (n *Navigator) State(draft *models.Draft) State {
	n.mu.Lock()
	defer n.mu.Unlock()

	comparison := ComparisonVersion(draft, n.allVersions, n.selected)
	return State{
		ShowDiffs:           n.showDiffs,
		AllVersions:         n.allVersions,
		ComparisonVersion:   comparison,
		NextVersion:         NextVersion(comparison, n.allVersions),
		CanNavigatePrevious: CanNavigateToPrevious(comparison),
		CanNavigateNext:     CanNavigateToNext(comparison, draft),
	}
}
