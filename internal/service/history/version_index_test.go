package history

import (
	"testing"

	"draftdeck/internal/domain/models"
)

func makeVersions(count int) []models.DraftVersion {
	versions := make([]models.DraftVersion, count)
	for i := range versions {
		versions[i] = models.DraftVersion{
			VersionID:     string(rune('a' + i)),
			VersionNumber: i + 1,
		}
	}
	return versions
}

func draftWithActive(versions []models.DraftVersion, active int) *models.Draft {
	v := FindVersionByNumber(versions, active)
	return &models.Draft{ID: "d1", ConversationID: "c1", ActiveVersion: v}
}

func intPtr(n int) *int { return &n }

func TestComparisonVersion(t *testing.T) {
	versions := makeVersions(5)

	tests := []struct {
		name     string
		draft    *models.Draft
		versions []models.DraftVersion
		selected *int
		want     *int // expected version number, nil for no comparison
	}{
		{
			name:     "defaults to active minus one",
			draft:    draftWithActive(versions, 5),
			versions: versions,
			want:     intPtr(4),
		},
		{
			name:     "explicit selection wins",
			draft:    draftWithActive(versions, 5),
			versions: versions,
			selected: intPtr(2),
			want:     intPtr(2),
		},
		{
			name:     "selection of missing version yields nil",
			draft:    draftWithActive(versions, 5),
			versions: versions,
			selected: intPtr(99),
			want:     nil,
		},
		{
			name:     "nil draft yields nil",
			draft:    nil,
			versions: versions,
			want:     nil,
		},
		{
			name:     "no active version yields nil",
			draft:    &models.Draft{ID: "d1"},
			versions: versions,
			want:     nil,
		},
		{
			name:     "single version yields nil",
			draft:    draftWithActive(versions[:1], 1),
			versions: versions[:1],
			want:     nil,
		},
		{
			name:     "empty list yields nil",
			draft:    draftWithActive(versions, 5),
			versions: nil,
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComparisonVersion(tt.draft, tt.versions, tt.selected)
			if tt.want == nil {
				if got != nil {
					t.Errorf("expected nil comparison, got version %d", got.VersionNumber)
				}
				return
			}
			if got == nil {
				t.Fatalf("expected version %d, got nil", *tt.want)
			}
			if got.VersionNumber != *tt.want {
				t.Errorf("expected version %d, got %d", *tt.want, got.VersionNumber)
			}
		})
	}
}

func TestNextVersion(t *testing.T) {
	versions := makeVersions(5)

	tests := []struct {
		name       string
		comparison *models.DraftVersion
		want       *int
	}{
		{
			name:       "next is comparison plus one",
			comparison: FindVersionByNumber(versions, 2),
			want:       intPtr(3),
		},
		{
			name:       "top of list has no next",
			comparison: FindVersionByNumber(versions, 5),
			want:       nil,
		},
		{
			name:       "nil comparison has no next",
			comparison: nil,
			want:       nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextVersion(tt.comparison, versions)
			if tt.want == nil {
				if got != nil {
					t.Errorf("expected nil, got version %d", got.VersionNumber)
				}
				return
			}
			if got == nil || got.VersionNumber != *tt.want {
				t.Errorf("expected version %d, got %v", *tt.want, got)
			}
		})
	}
}

func TestNavigationBounds(t *testing.T) {
	versions := makeVersions(6)
	draft := draftWithActive(versions, 6)

	tests := []struct {
		name         string
		comparison   int
		wantPrevious bool
		wantNext     bool
	}{
		{name: "middle pair navigates both ways", comparison: 3, wantPrevious: true, wantNext: true},
		{name: "oldest pair cannot go back", comparison: 1, wantPrevious: false, wantNext: true},
		{name: "newest pair cannot go forward", comparison: 5, wantPrevious: true, wantNext: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comparison := FindVersionByNumber(versions, tt.comparison)
			if got := CanNavigateToPrevious(comparison); got != tt.wantPrevious {
				t.Errorf("CanNavigateToPrevious = %v, want %v", got, tt.wantPrevious)
			}
			if got := CanNavigateToNext(comparison, draft); got != tt.wantNext {
				t.Errorf("CanNavigateToNext = %v, want %v", got, tt.wantNext)
			}
		})
	}
}

func TestOffsetClampedToActiveCeiling(t *testing.T) {
	versions := makeVersions(6)
	draft := draftWithActive(versions, 6)

	// Forward from the newest allowed pair must not reach the active version
	atCeiling := FindVersionByNumber(versions, 5)
	if got := NextVersionNumber(atCeiling, draft); got != nil {
		t.Errorf("expected nil beyond ceiling, got %d", *got)
	}

	// Backward from the oldest pair must not reach zero
	atFloor := FindVersionByNumber(versions, 1)
	if got := PreviousVersionNumber(atFloor, draft); got != nil {
		t.Errorf("expected nil below floor, got %d", *got)
	}

	// A legal step lands exactly one off
	middle := FindVersionByNumber(versions, 3)
	if got := NextVersionNumber(middle, draft); got == nil || *got != 4 {
		t.Errorf("expected 4, got %v", got)
	}
	if got := PreviousVersionNumber(middle, draft); got == nil || *got != 2 {
		t.Errorf("expected 2, got %v", got)
	}
}

func TestIsNewVersionCreated(t *testing.T) {
	tests := []struct {
		name string
		prev *int
		next *int
		want bool
	}{
		{name: "strictly greater is a new version", prev: intPtr(5), next: intPtr(6), want: true},
		{name: "equal is not", prev: intPtr(5), next: intPtr(5), want: false},
		{name: "lower is not", prev: intPtr(5), next: intPtr(4), want: false},
		{name: "unknown previous is not", prev: nil, next: intPtr(6), want: false},
		{name: "unknown next is not", prev: intPtr(5), next: nil, want: false},
		{name: "both unknown is not", prev: nil, next: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNewVersionCreated(tt.prev, tt.next); got != tt.want {
				t.Errorf("IsNewVersionCreated(%v, %v) = %v, want %v", tt.prev, tt.next, got, tt.want)
			}
		})
	}
}
