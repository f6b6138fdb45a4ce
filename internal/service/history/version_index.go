package history

import "draftdeck/internal/domain/models"

// Pure lookups over an ordered version list. Lists are small (tens of
// versions), so everything is a linear scan.

// FindVersionByNumber returns the version with the given number, or nil.
func FindVersionByNumber(versions []models.DraftVersion, n int) *models.DraftVersion {
	for i := range versions {
		if versions[i].VersionNumber == n {
			return &versions[i]
		}
	}
	return nil
}

// ComparisonVersion resolves the "from" side of the diff view. With no
// explicit selection it defaults to the version immediately preceding the
// active one - the baseline "what changed to produce the current version"
// diff. Returns nil when there is nothing to compare.
func ComparisonVersion(draft *models.Draft, versions []models.DraftVersion, selected *int) *models.DraftVersion {
	if draft == nil || draft.ActiveVersion == nil || len(versions) < 2 {
		return nil
	}
	if selected != nil {
		return FindVersionByNumber(versions, *selected)
	}
	return FindVersionByNumber(versions, draft.ActiveVersion.VersionNumber-1)
}

// NextVersion resolves the "to" side of the diff: always the version
// immediately after the comparison point, never anything else. This is not
// necessarily the active version - it is what makes forward navigation
// through history land on consecutive pairs.
func NextVersion(comparison *models.DraftVersion, versions []models.DraftVersion) *models.DraftVersion {
	if comparison == nil {
		return nil
	}
	return FindVersionByNumber(versions, comparison.VersionNumber+1)
}

// CanNavigateToPrevious reports whether an older comparison pair exists.
func CanNavigateToPrevious(comparison *models.DraftVersion) bool {
	return comparison != nil && comparison.VersionNumber > 1
}

// CanNavigateToNext reports whether a newer comparison pair exists. The
// active version is the ceiling: navigating next never produces a pair
// newer than (active-1, active).
func CanNavigateToNext(comparison *models.DraftVersion, draft *models.Draft) bool {
	if comparison == nil || draft == nil || draft.ActiveVersion == nil {
		return false
	}
	return comparison.VersionNumber < draft.ActiveVersion.VersionNumber-1
}

// PreviousVersionNumber returns comparison-1 clamped to
// [1, active-1], or nil outside that range.
func PreviousVersionNumber(comparison *models.DraftVersion, draft *models.Draft) *int {
	return offsetVersionNumber(comparison, draft, -1)
}

// NextVersionNumber returns comparison+1 clamped to [1, active-1], or nil
// outside that range.
func NextVersionNumber(comparison *models.DraftVersion, draft *models.Draft) *int {
	return offsetVersionNumber(comparison, draft, +1)
}

func offsetVersionNumber(comparison *models.DraftVersion, draft *models.Draft, offset int) *int {
	if comparison == nil || draft == nil || draft.ActiveVersion == nil {
		return nil
	}
	candidate := comparison.VersionNumber + offset
	if candidate < 1 || candidate > draft.ActiveVersion.VersionNumber-1 {
		return nil
	}
	return &candidate
}

// IsNewVersionCreated reports whether a version-number transition looks
// like a freshly created version. A heuristic signal, not a causality
// proof: both numbers must be known and the new one strictly greater.
func IsNewVersionCreated(prev, next *int) bool {
	return prev != nil && next != nil && *next > *prev
}
