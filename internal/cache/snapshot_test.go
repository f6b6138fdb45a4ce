package cache

import (
	"log/slog"
	"testing"

	"draftdeck/internal/domain/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir(), slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("failed to open snapshot cache: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSnapshotRoundTrip(t *testing.T) {
	store := openTestStore(t)

	draft := &models.Draft{
		ID:             "d1",
		ConversationID: "c1",
		ActiveVersion:  &models.DraftVersion{VersionID: "v3", VersionNumber: 3, Title: "Third pass"},
	}
	versions := []models.DraftVersion{
		{VersionID: "v1", VersionNumber: 1, Title: "First"},
		{VersionID: "v2", VersionNumber: 2, Title: "Second"},
		{VersionID: "v3", VersionNumber: 3, Title: "Third pass"},
	}

	store.Save("c1", draft, versions)

	snap := store.Load("c1")
	if snap == nil {
		t.Fatal("expected a snapshot")
	}
	if snap.Draft == nil || snap.Draft.ID != "d1" {
		t.Errorf("draft did not round-trip: %+v", snap.Draft)
	}
	if len(snap.Versions) != 3 {
		t.Errorf("expected 3 versions, got %d", len(snap.Versions))
	}
	if snap.SavedAt.IsZero() {
		t.Error("SavedAt must be stamped")
	}
}

func TestSnapshotLoadMissing(t *testing.T) {
	store := openTestStore(t)
	if snap := store.Load("nope"); snap != nil {
		t.Errorf("expected nil for missing snapshot, got %+v", snap)
	}
}

func TestSnapshotSaveOverwrites(t *testing.T) {
	store := openTestStore(t)

	store.Save("c1", &models.Draft{ID: "d1"}, nil)
	store.Save("c1", &models.Draft{ID: "d1", ConversationID: "c1"}, []models.DraftVersion{{VersionNumber: 1}})

	snap := store.Load("c1")
	if snap == nil || snap.Draft.ConversationID != "c1" || len(snap.Versions) != 1 {
		t.Errorf("second save did not replace the first: %+v", snap)
	}
}

func TestSnapshotDelete(t *testing.T) {
	store := openTestStore(t)

	store.Save("c1", &models.Draft{ID: "d1"}, nil)
	store.Delete("c1")
	if store.Load("c1") != nil {
		t.Error("snapshot survived delete")
	}

	// Deleting a missing entry is fine
	store.Delete("c1")
}
