package models

import (
	"strings"
	"time"
)

// GeneratingTitle is the sentinel title the backend assigns to version 1
// while AI generation is still in progress. The backend does not expose a
// real status field for drafts, so "generating" is detected by matching
// this title on version 1. Do not change without coordinating with the
// backend team.
const GeneratingTitle = "Generating..."

// Draft is an idea/project draft document. Each conversation owns exactly
// one draft; the active version is denormalized onto the draft for
// convenience.
type Draft struct {
	ID             string        `json:"id"`
	ConversationID string        `json:"conversation_id"`
	ActiveVersion  *DraftVersion `json:"active_version,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// IsGenerating reports whether the draft is still being generated.
// Matches the backend's sentinel convention: version 1 titled "Generating...".
func (d *Draft) IsGenerating() bool {
	if d == nil || d.ActiveVersion == nil {
		return false
	}
	return d.ActiveVersion.VersionNumber == 1 && d.ActiveVersion.Title == GeneratingTitle
}

// ActiveVersionNumber returns the active version number, or nil if the
// draft has no active version.
func (d *Draft) ActiveVersionNumber() *int {
	if d == nil || d.ActiveVersion == nil {
		return nil
	}
	n := d.ActiveVersion.VersionNumber
	return &n
}

// DraftVersion is one immutable snapshot of a draft. Versions are
// append-only: AI generation, manual edits, and reverts all create a new
// version with the next contiguous version number.
type DraftVersion struct {
	VersionID     string    `json:"version_id"`
	VersionNumber int       `json:"version_number"` // 1-based, contiguous per draft
	Title         string    `json:"title"`
	IsManualEdit  bool      `json:"is_manual_edit"`
	CreatedAt     time.Time `json:"created_at"`

	// Structured idea fields. The simpler project-draft variant carries a
	// single markdown Description instead.
	Hypothesis      string   `json:"hypothesis,omitempty"`
	RelatedWork     string   `json:"related_work,omitempty"`
	Abstract        string   `json:"abstract,omitempty"`
	Experiments     []string `json:"experiments,omitempty"`
	ExpectedOutcome string   `json:"expected_outcome,omitempty"`
	RiskFactors     []string `json:"risk_factors,omitempty"`
	Description     string   `json:"description,omitempty"`
}

// BodyText assembles the long-form body used by the diff engine. The
// project-draft variant stores everything in Description; the idea variant
// concatenates its structured sections in a fixed order so diffs are
// deterministic.
func (v *DraftVersion) BodyText() string {
	if v == nil {
		return ""
	}
	if v.Description != "" {
		return v.Description
	}

	var b strings.Builder
	appendSection(&b, "Hypothesis", v.Hypothesis)
	appendSection(&b, "Related Work", v.RelatedWork)
	appendSection(&b, "Abstract", v.Abstract)
	appendList(&b, "Experiments", v.Experiments)
	appendSection(&b, "Expected Outcome", v.ExpectedOutcome)
	appendList(&b, "Risk Factors", v.RiskFactors)
	return b.String()
}

func appendSection(b *strings.Builder, heading, body string) {
	if body == "" {
		return
	}
	if b.Len() > 0 {
		b.WriteString("\n\n")
	}
	b.WriteString("## " + heading + "\n\n" + body)
}

func appendList(b *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	if b.Len() > 0 {
		b.WriteString("\n\n")
	}
	b.WriteString("## " + heading + "\n")
	for _, item := range items {
		b.WriteString("\n- " + item)
	}
}

// ConflictItem is a previously imported conversation that collides with an
// import request on source URL. Fully backend-owned; the gateway only
// relays it so the user can pick a resolution.
type ConflictItem struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updated_at"`
	URL       string    `json:"url"`
}
