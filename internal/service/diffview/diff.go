package diffview

import (
	"github.com/sergi/go-diff/diffmatchpatch"

	"draftdeck/internal/domain/models"
)

// SpanKind tags a diff span for rendering.
type SpanKind string

const (
	SpanKept    SpanKind = "kept"
	SpanRemoved SpanKind = "removed"
	SpanAdded   SpanKind = "added"
)

// Span is one render unit of a field diff. Concatenating kept+removed
// spans in order reconstructs the old text exactly; kept+added
// reconstructs the new text exactly.
type Span struct {
	Kind SpanKind `json:"kind"`
	Text string   `json:"text"`
}

// VersionDiff is the render model for one version pair: a single-line
// title diff and a long-form body diff.
type VersionDiff struct {
	Title []Span `json:"title"`
	Body  []Span `json:"body"`
}

// Diff computes the span sequence between two texts. Semantic cleanup
// coalesces character-level noise into word/phrase runs, which is the
// granularity the shell styles. Deterministic for a given input pair.
func Diff(oldText, newText string) []Span {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(oldText, newText, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	spans := make([]Span, 0, len(diffs))
	for _, d := range diffs {
		if d.Text == "" {
			continue
		}
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			spans = append(spans, Span{Kind: SpanKept, Text: d.Text})
		case diffmatchpatch.DiffDelete:
			spans = append(spans, Span{Kind: SpanRemoved, Text: d.Text})
		case diffmatchpatch.DiffInsert:
			spans = append(spans, Span{Kind: SpanAdded, Text: d.Text})
		}
	}
	return spans
}

// CanCompareVersions reports whether a pair of versions forms a valid
// old→new comparison: both present, strictly increasing version number.
func CanCompareVersions(a, b *models.DraftVersion) bool {
	return a != nil && b != nil && a.VersionNumber < b.VersionNumber
}

// CompareVersions produces the render model for an old→new version pair.
// Returns nil when the pair is not comparable.
func CompareVersions(oldVersion, newVersion *models.DraftVersion) *VersionDiff {
	if !CanCompareVersions(oldVersion, newVersion) {
		return nil
	}
	return &VersionDiff{
		Title: Diff(oldVersion.Title, newVersion.Title),
		Body:  Diff(oldVersion.BodyText(), newVersion.BodyText()),
	}
}
