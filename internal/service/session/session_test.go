package session

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"draftdeck/internal/domain/models"
	"draftdeck/internal/domain/repositories"
	"draftdeck/internal/httputil"
	"draftdeck/internal/service/poll"
)

type fakeDraftRepo struct {
	mu       sync.Mutex
	draft    *models.Draft
	versions []models.DraftVersion
	// activated records ActivateVersion calls and swaps in activatedDraft
	activated      []string
	activatedDraft *models.Draft
	// updated records UpdateDraft calls and swaps in updatedDraft
	updated      []*models.DraftVersion
	updatedDraft *models.Draft
	// listTokens records the bearer token seen by each ListVersions call;
	// versionsLoaded, when set, signals each call
	listTokens     []string
	versionsLoaded chan struct{}
}

func (f *fakeDraftRepo) GetDraft(ctx context.Context, conversationID string) (*models.Draft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft, nil
}

func (f *fakeDraftRepo) UpdateDraft(ctx context.Context, conversationID string, version *models.DraftVersion) (*models.Draft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, version)
	f.draft = f.updatedDraft
	return f.updatedDraft, nil
}

func (f *fakeDraftRepo) ListVersions(ctx context.Context, conversationID string) ([]models.DraftVersion, error) {
	f.mu.Lock()
	f.listTokens = append(f.listTokens, httputil.BearerToken(ctx))
	versions := f.versions
	f.mu.Unlock()
	if f.versionsLoaded != nil {
		f.versionsLoaded <- struct{}{}
	}
	return versions, nil
}

func (f *fakeDraftRepo) ActivateVersion(ctx context.Context, conversationID, versionID string) (*models.Draft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activated = append(f.activated, versionID)
	f.draft = f.activatedDraft
	return f.activatedDraft, nil
}

func (f *fakeDraftRepo) LaunchResearchRun(ctx context.Context, conversationID string) error {
	return nil
}

type fakeChatRepo struct{}

func (f *fakeChatRepo) GetMessages(ctx context.Context, conversationID string) ([]models.ChatMessage, error) {
	return nil, nil
}

func (f *fakeChatRepo) StreamMessage(ctx context.Context, conversationID string, req *repositories.SendMessageRequest) (io.ReadCloser, error) {
	return nil, io.EOF
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func makeVersions(count int) []models.DraftVersion {
	versions := make([]models.DraftVersion, count)
	for i := range versions {
		versions[i] = models.DraftVersion{
			VersionID:     string(rune('a' + i)),
			VersionNumber: i + 1,
			Title:         "v" + string(rune('0'+i+1)),
		}
	}
	return versions
}

func newTestSession(t *testing.T, repo *fakeDraftRepo) *Session {
	t.Helper()
	poller := poll.NewPoller(repo, time.Minute, testLogger())
	s := New("c1", &fakeChatRepo{}, repo, poller, nil, testLogger())
	t.Cleanup(s.Close)
	return s
}

func TestOpenLoadsDraftAndVersions(t *testing.T) {
	versions := makeVersions(3)
	repo := &fakeDraftRepo{
		draft:    &models.Draft{ID: "d1", ConversationID: "c1", ActiveVersion: &versions[2]},
		versions: versions,
	}
	s := newTestSession(t, repo)
	s.Open(context.Background())

	if s.Draft() == nil || s.Draft().ID != "d1" {
		t.Fatal("draft not loaded")
	}
	state := s.DiffState()
	if len(state.AllVersions) != 3 {
		t.Errorf("expected 3 versions, got %d", len(state.AllVersions))
	}
	if state.ComparisonVersion == nil || state.ComparisonVersion.VersionNumber != 2 {
		t.Errorf("expected default comparison at 2, got %v", state.ComparisonVersion)
	}
	if state.Diff == nil {
		t.Error("expected a rendered diff for the default pair")
	}
}

func TestRevertRoutesThroughAnimation(t *testing.T) {
	versions := makeVersions(4)
	repo := &fakeDraftRepo{
		draft:    &models.Draft{ID: "d1", ConversationID: "c1", ActiveVersion: &versions[3]},
		versions: versions,
	}
	s := newTestSession(t, repo)
	s.Open(context.Background())

	// Backend appends version 5 duplicating the reverted content
	reverted := makeVersions(5)
	repo.mu.Lock()
	repo.activatedDraft = &models.Draft{ID: "d1", ConversationID: "c1", ActiveVersion: &reverted[4]}
	repo.versions = reverted
	repo.mu.Unlock()

	if err := s.Revert(context.Background(), "b"); err != nil {
		t.Fatalf("revert failed: %v", err)
	}

	repo.mu.Lock()
	activated := append([]string(nil), repo.activated...)
	repo.mu.Unlock()
	if len(activated) != 1 || activated[0] != "b" {
		t.Fatalf("expected ActivateVersion(b), got %v", activated)
	}

	if s.Draft().ActiveVersion.VersionNumber != 5 {
		t.Errorf("draft snapshot not replaced, active = %d", s.Draft().ActiveVersion.VersionNumber)
	}

	state := s.DiffState()
	// The diff anchors at the previously active version (4) against the
	// revert-created version (5)
	if state.ComparisonVersion == nil || state.ComparisonVersion.VersionNumber != 4 {
		t.Fatalf("expected comparison anchored at 4, got %v", state.ComparisonVersion)
	}
	if state.NextVersion == nil || state.NextVersion.VersionNumber != 5 {
		t.Fatalf("expected next version 5, got %v", state.NextVersion)
	}
	if !state.ShowDiffs {
		t.Error("revert must force the diff view open")
	}
	if !state.UpdateAnimation || !state.NewVersionAnimation {
		t.Error("revert must pulse both animation flags")
	}
}

func TestSaveDraftRoutesThroughAnimation(t *testing.T) {
	versions := makeVersions(3)
	repo := &fakeDraftRepo{
		draft:    &models.Draft{ID: "d1", ConversationID: "c1", ActiveVersion: &versions[2]},
		versions: versions,
	}
	s := newTestSession(t, repo)
	s.Open(context.Background())

	// Backend appends version 4 with the edited content
	edited := makeVersions(4)
	repo.mu.Lock()
	repo.updatedDraft = &models.Draft{ID: "d1", ConversationID: "c1", ActiveVersion: &edited[3]}
	repo.versions = edited
	repo.mu.Unlock()

	draft, err := s.SaveDraft(context.Background(), &models.DraftVersion{
		Title:        "Edited title",
		Description:  "edited body",
		IsManualEdit: true,
	})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if draft.ActiveVersion.VersionNumber != 4 {
		t.Errorf("expected the appended version to become active, got %d", draft.ActiveVersion.VersionNumber)
	}

	repo.mu.Lock()
	updated := append([]*models.DraftVersion(nil), repo.updated...)
	repo.mu.Unlock()
	if len(updated) != 1 || updated[0].Title != "Edited title" {
		t.Fatalf("expected one UpdateDraft call with the edit, got %v", updated)
	}

	state := s.DiffState()
	if state.ComparisonVersion == nil || state.ComparisonVersion.VersionNumber != 3 {
		t.Fatalf("expected comparison anchored at 3, got %v", state.ComparisonVersion)
	}
	if state.NextVersion == nil || state.NextVersion.VersionNumber != 4 {
		t.Fatalf("expected next version 4, got %v", state.NextVersion)
	}
	if !state.ShowDiffs || !state.UpdateAnimation || !state.NewVersionAnimation {
		t.Error("manual edit must open the diff view and pulse both flags")
	}
}

func TestGenerationPollerKeepsAuthContext(t *testing.T) {
	generating := makeVersions(1)
	generating[0].Title = models.GeneratingTitle
	repo := &fakeDraftRepo{
		draft:          &models.Draft{ID: "d1", ConversationID: "c1", ActiveVersion: &generating[0]},
		versions:       generating,
		versionsLoaded: make(chan struct{}, 8),
	}

	poller := poll.NewPoller(repo, 5*time.Millisecond, testLogger())
	s := New("c1", &fakeChatRepo{}, repo, poller, nil, testLogger())
	t.Cleanup(s.Close)

	ctx := httputil.WithBearerToken(context.Background(), "session-token")
	s.Open(ctx)

	// Open's own version load
	waitForVersionLoad(t, repo.versionsLoaded)

	// Backend finishes generating version 2
	finished := makeVersions(2)
	repo.mu.Lock()
	repo.draft = &models.Draft{ID: "d1", ConversationID: "c1", ActiveVersion: &finished[1]}
	repo.versions = finished
	repo.mu.Unlock()

	// The poller delivers the finished draft and reloads the version list
	waitForVersionLoad(t, repo.versionsLoaded)

	repo.mu.Lock()
	tokens := append([]string(nil), repo.listTokens...)
	repo.mu.Unlock()
	if len(tokens) < 2 {
		t.Fatalf("expected at least two version loads, got %d", len(tokens))
	}
	// The reload triggered by the poller must still carry the bearer token
	// from the request that opened the session.
	if got := tokens[len(tokens)-1]; got != "session-token" {
		t.Fatalf("poller version reload lost the bearer token, got %q", got)
	}

	if s.Draft().ActiveVersion.VersionNumber != 2 {
		t.Errorf("finished draft not applied, active = %d", s.Draft().ActiveVersion.VersionNumber)
	}
}

func waitForVersionLoad(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a version list load")
	}
}
