package history

import (
	"context"
	"testing"

	"draftdeck/internal/domain/models"
)

func TestHandleExternalUpdateNewVersion(t *testing.T) {
	versions := makeVersions(6)
	repo := &fakeDraftRepo{versions: versions}
	nav := NewNavigator(repo, "c1", testLogger())

	var applied *models.Draft
	anim := NewAnimator(nav, func(d *models.Draft) { applied = d }, testLogger())
	defer anim.Stop()

	previous := draftWithActive(versions[:5], 5)
	updated := draftWithActive(versions, 6)

	// User had diffs hidden; a new version forces them open
	nav.SetShowDiffs(false)
	before := repo.listCallCount()

	anim.HandleExternalUpdate(context.Background(), updated, previous)

	if applied != updated {
		t.Fatal("draft snapshot was not replaced")
	}
	if got := repo.listCallCount() - before; got != 1 {
		t.Errorf("expected exactly one version reload, got %d", got)
	}

	state := nav.State(updated)
	if !state.ShowDiffs {
		t.Error("diff view should be forced open on a new version")
	}
	if state.ComparisonVersion == nil || state.ComparisonVersion.VersionNumber != 5 {
		t.Fatalf("expected comparison anchored at 5, got %v", state.ComparisonVersion)
	}
	if state.NextVersion == nil || state.NextVersion.VersionNumber != 6 {
		t.Fatalf("expected next version 6, got %v", state.NextVersion)
	}

	update, newVersion := anim.Flags()
	if !update || !newVersion {
		t.Errorf("expected both pulses active, got update=%v newVersion=%v", update, newVersion)
	}
}

func TestHandleExternalUpdateSameVersion(t *testing.T) {
	versions := makeVersions(5)
	repo := &fakeDraftRepo{versions: versions}
	nav := NewNavigator(repo, "c1", testLogger())

	anim := NewAnimator(nav, func(*models.Draft) {}, testLogger())
	defer anim.Stop()

	previous := draftWithActive(versions, 5)
	// Same active number, fresh pointer: content refresh without a new version
	refreshed := draftWithActive(versions, 5)

	anim.HandleExternalUpdate(context.Background(), refreshed, previous)

	update, newVersion := anim.Flags()
	if !update {
		t.Error("update pulse should fire on every applied push")
	}
	if newVersion {
		t.Error("new-version pulse must not fire when the number did not advance")
	}
}

func TestHandleExternalUpdateIdempotentAndNilSafe(t *testing.T) {
	versions := makeVersions(6)
	repo := &fakeDraftRepo{versions: versions}
	nav := NewNavigator(repo, "c1", testLogger())

	applies := 0
	anim := NewAnimator(nav, func(*models.Draft) { applies++ }, testLogger())
	defer anim.Stop()

	previous := draftWithActive(versions[:5], 5)
	updated := draftWithActive(versions, 6)

	anim.HandleExternalUpdate(context.Background(), nil, previous)
	if applies != 0 {
		t.Fatal("nil push must be a no-op")
	}

	anim.HandleExternalUpdate(context.Background(), updated, previous)
	anim.HandleExternalUpdate(context.Background(), updated, previous)
	if applies != 1 {
		t.Errorf("repeated push of the same draft reference applied %d times, want 1", applies)
	}
	if got := repo.listCallCount(); got != 1 {
		t.Errorf("repeated push reloaded versions %d times, want 1", got)
	}
}
