package history

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"draftdeck/internal/domain/models"
)

// pulseWindow is how long each animation flag stays raised. Re-triggering
// while active restarts the window rather than toggling.
const pulseWindow = 2000 * time.Millisecond

// Animator reacts to externally pushed draft updates (a chat turn that
// rewrote the draft, a manual revert) by pulsing the shell's highlight
// flags and steering the navigator so the diff view opens on exactly the
// delta that was just produced.
type Animator struct {
	mu        sync.Mutex
	navigator *Navigator
	setDraft  func(*models.Draft) // replaces the owner's draft snapshot
	logger    *slog.Logger

	updateActive     bool
	newVersionActive bool
	updateTimer      *time.Timer
	newVersionTimer  *time.Timer

	lastApplied *models.Draft // reference identity guard for repeated pushes
}

// NewAnimator creates an animation controller. setDraft is how the owner
// (the session) lets the animator replace its draft snapshot.
func NewAnimator(navigator *Navigator, setDraft func(*models.Draft), logger *slog.Logger) *Animator {
	return &Animator{
		navigator: navigator,
		setDraft:  setDraft,
		logger:    logger,
	}
}

// TriggerUpdateAnimation pulses the draft-updated highlight.
func (a *Animator) TriggerUpdateAnimation() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pulseUpdateLocked()
}

// HandleExternalUpdate applies an externally pushed draft. Unconditionally
// pulses the update highlight; when the version number advanced it also
// anchors the diff at the previously active version, forces the diff view
// open, and pulses the new-version highlight. The version list is reloaded
// before returning so the diff renders against fresh data.
//
// Idempotent for repeated pushes of the same draft reference, and a no-op
// for nil.
func (a *Animator) HandleExternalUpdate(ctx context.Context, newDraft, previousDraft *models.Draft) {
	if newDraft == nil {
		return
	}

	a.mu.Lock()
	if newDraft == a.lastApplied {
		a.mu.Unlock()
		return
	}
	a.lastApplied = newDraft

	a.setDraft(newDraft)
	a.pulseUpdateLocked()

	prevNumber := previousDraft.ActiveVersionNumber()
	newNumber := newDraft.ActiveVersionNumber()
	versionCreated := IsNewVersionCreated(prevNumber, newNumber)
	a.mu.Unlock()

	if versionCreated {
		// Anchor the diff at the old active version so the view shows
		// exactly what this update changed, and auto-reveal it.
		a.navigator.SetComparisonAnchor(*prevNumber)
		a.navigator.SetShowDiffs(true)

		a.mu.Lock()
		a.pulseNewVersionLocked()
		a.mu.Unlock()

		a.logger.Info("new draft version detected",
			"previous_version", *prevNumber,
			"new_version", *newNumber,
		)
	}

	// Always reload so the list includes the version that just arrived.
	a.navigator.LoadVersions(ctx)
}

// Flags returns the current animation flags.
func (a *Animator) Flags() (updateAnimation, newVersionAnimation bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.updateActive, a.newVersionActive
}

// Stop cancels any running pulse timers.
func (a *Animator) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.updateTimer != nil {
		a.updateTimer.Stop()
		a.updateTimer = nil
	}
	if a.newVersionTimer != nil {
		a.newVersionTimer.Stop()
		a.newVersionTimer = nil
	}
	a.updateActive = false
	a.newVersionActive = false
}

func (a *Animator) pulseUpdateLocked() {
	a.updateActive = true
	if a.updateTimer != nil {
		a.updateTimer.Stop()
	}
	a.updateTimer = time.AfterFunc(pulseWindow, func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		a.updateActive = false
	})
}

func (a *Animator) pulseNewVersionLocked() {
	a.newVersionActive = true
	if a.newVersionTimer != nil {
		a.newVersionTimer.Stop()
	}
	a.newVersionTimer = time.AfterFunc(pulseWindow, func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		a.newVersionActive = false
	})
}
