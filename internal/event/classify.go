package event

import "strings"

// Classifier thresholds. Cards shorter than these are navigation chrome or
// half-hydrated tiles, not carnival listings.
const (
	minTitleLength   = 5
	minContentLength = 50
)

// excludedWord filters out Touch football events, which share the MySideline
// directory with Masters rugby league but are never relevant here.
const excludedWord = "touch"

// IsRelevant reports whether an extracted event is a Masters carnival worth
// keeping. It is the sole keep/drop gate at ingestion: the title must carry
// minimum length, the card must have substantive content, and neither the
// titles nor the contact URLs may mention Touch football.
func IsRelevant(e *Event) bool {
	if e == nil {
		return false
	}
	if len(e.Title) < minTitleLength {
		return false
	}
	if len(e.RawContent) < minContentLength {
		return false
	}

	for _, field := range []string{e.Title, e.Subtitle, e.RawContent, e.Website, e.Facebook, e.RegistrationURL} {
		if containsExcluded(field) {
			return false
		}
	}
	return true
}

func containsExcluded(s string) bool {
	return strings.Contains(strings.ToLower(s), excludedWord)
}
