package event

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// TitleResult is the outcome of parsing a raw card title: the title with any
// embedded date stripped, and the date itself when one was found.
type TitleResult struct {
	Title string
	Date  time.Time // zero when the title carried no recognizable date
}

// Date sub-expressions shared by the title patterns below.
const (
	reDayMonth = `\d{1,2}\s+[A-Za-z]+\s+\d{4}`       // 15 September 2026
	reNumeric  = `\d{1,2}[/-]\d{1,2}[/-]\d{4}`       // 15/09/2026, 15-09-2026
	reMonthDay = `[A-Za-z]+\s+\d{1,2},?\s+\d{4}`     // September 15, 2026
	reYear     = `20\d{2}`
)

// titlePatterns are tried in order; the first match that parses to a valid
// calendar date wins and its span is stripped from the title. Ordinal
// suffixes are removed before matching, so "(15th September 2026)" arrives
// here as "(15 September 2026)".
var titlePatterns = []*regexp.Regexp{
	// Dates in parentheses: named month day-first, numeric, month-first.
	regexp.MustCompile(`\(\s*(` + reDayMonth + `)\s*\)`),
	regexp.MustCompile(`\(\s*(` + reNumeric + `)\s*\)`),
	regexp.MustCompile(`\(\s*(` + reMonthDay + `)\s*\)`),
	// The same forms after a "- " or "| " separator.
	regexp.MustCompile(`(?:^|\s)[-|]\s+(` + reDayMonth + `|` + reNumeric + `|` + reMonthDay + `)\s*$`),
	// The same forms at the end of the title.
	regexp.MustCompile(`\b(` + reDayMonth + `|` + reNumeric + `|` + reMonthDay + `)\s*$`),
	// Year only, parenthesized or after a separator.
	regexp.MustCompile(`\(\s*(` + reYear + `)\s*\)`),
	regexp.MustCompile(`(?:^|\s)[-|]\s+(` + reYear + `)\s*$`),
}

var (
	ordinalPattern = regexp.MustCompile(`(?i)(\d{1,2})(?:st|nd|rd|th)\b`)
	yearOnly       = regexp.MustCompile(`^20\d{2}$`)
	emptyParens    = regexp.MustCompile(`\(\s*\)`)
)

// ParseTitle strips an embedded date from a raw card title.
//
// The returned title has collapsed whitespace and no leading or trailing
// separators; re-applying ParseTitle to its own output is a no-op. The date
// is zero when no pattern matched; callers must not substitute "today".
func ParseTitle(raw string) TitleResult {
	title := stripOrdinals(strings.TrimSpace(raw))

	for _, pattern := range titlePatterns {
		loc := pattern.FindStringSubmatchIndex(title)
		if loc == nil {
			continue
		}

		text := title[loc[2]:loc[3]]
		date := parseMatchedDate(text)
		if date.IsZero() {
			// Matched the shape but not a real date (e.g. month 13);
			// fall through to the next pattern.
			continue
		}

		cleaned := cleanTitle(title[:loc[0]] + " " + title[loc[1]:])
		return TitleResult{Title: cleaned, Date: date}
	}

	return TitleResult{Title: cleanTitle(title)}
}

// parseMatchedDate parses the captured date text. A bare year maps to the
// first of January: titles like "Country Championships (2026)" carry no finer
// grain than the year.
func parseMatchedDate(text string) time.Time {
	if yearOnly.MatchString(text) {
		year, err := strconv.Atoi(text)
		if err != nil {
			return time.Time{}
		}
		return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	return ParseDate(text)
}

// stripOrdinals removes day ordinal suffixes (1st, 2nd, 3rd, 4th...).
// Only digits followed by a suffix are touched, so month and venue names
// survive intact.
func stripOrdinals(s string) string {
	return ordinalPattern.ReplaceAllString(s, "$1")
}

// cleanTitle collapses internal whitespace and drops the artefacts left
// behind by stripping a date: empty parentheses and dangling separators.
func cleanTitle(s string) string {
	s = emptyParens.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), " ")
	s = strings.Trim(s, " -|")
	return strings.TrimSpace(s)
}
