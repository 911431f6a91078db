package event

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseTitle(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantTitle string
		wantDate  time.Time
	}{
		{
			name:      "numeric date in parentheses",
			raw:       "NSW Masters Rugby League Carnival (15/09/2099)",
			wantTitle: "NSW Masters Rugby League Carnival",
			wantDate:  date(2099, time.September, 15),
		},
		{
			name:      "ordinal month in parentheses",
			raw:       "Gold Coast Masters Carnival (15th September 2026)",
			wantTitle: "Gold Coast Masters Carnival",
			wantDate:  date(2026, time.September, 15),
		},
		{
			name:      "dashed numeric date in parentheses",
			raw:       "Brisbane Masters (15-09-2026)",
			wantTitle: "Brisbane Masters",
			wantDate:  date(2026, time.September, 15),
		},
		{
			name:      "month-first date in parentheses",
			raw:       "Country Carnival (September 15, 2026)",
			wantTitle: "Country Carnival",
			wantDate:  date(2026, time.September, 15),
		},
		{
			name:      "date after dash separator",
			raw:       "Newcastle Masters - 3 May 2026",
			wantTitle: "Newcastle Masters",
			wantDate:  date(2026, time.May, 3),
		},
		{
			name:      "date after pipe separator",
			raw:       "Cairns Carnival | 12/10/2026",
			wantTitle: "Cairns Carnival",
			wantDate:  date(2026, time.October, 12),
		},
		{
			name:      "bare date at end of title",
			raw:       "Perth Masters Carnival 21 June 2026",
			wantTitle: "Perth Masters Carnival",
			wantDate:  date(2026, time.June, 21),
		},
		{
			name:      "year only in parentheses",
			raw:       "Country Championships (2026)",
			wantTitle: "Country Championships",
			wantDate:  date(2026, time.January, 1),
		},
		{
			name:      "no date present",
			raw:       "Toowoomba Masters Carnival",
			wantTitle: "Toowoomba Masters Carnival",
		},
		{
			name:      "invalid month falls through",
			raw:       "Sydney Carnival (15/13/2026)",
			wantTitle: "Sydney Carnival (15/13/2026)",
		},
		{
			name:      "whitespace collapsed",
			raw:       "  Wagga   Masters   (1st  March  2027) ",
			wantTitle: "Wagga Masters",
			wantDate:  date(2027, time.March, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTitle(tt.raw)
			if got.Title != tt.wantTitle {
				t.Errorf("ParseTitle(%q).Title = %q, expected %q", tt.raw, got.Title, tt.wantTitle)
			}
			if !got.Date.Equal(tt.wantDate) {
				t.Errorf("ParseTitle(%q).Date = %v, expected %v", tt.raw, got.Date, tt.wantDate)
			}
		})
	}
}

// Re-applying the parser to its own cleaned output must be a no-op:
// downstream matching depends on a stable title.
func TestParseTitleIdempotent(t *testing.T) {
	titles := []string{
		"NSW Masters Rugby League Carnival (15/09/2099)",
		"Newcastle Masters - 3 May 2026",
		"Country Championships (2026)",
		"Toowoomba Masters Carnival",
	}

	for _, raw := range titles {
		first := ParseTitle(raw)
		second := ParseTitle(first.Title)
		if second.Title != first.Title {
			t.Errorf("ParseTitle not idempotent for %q: %q != %q", raw, second.Title, first.Title)
		}
		if !second.Date.IsZero() {
			t.Errorf("ParseTitle(%q) found a date in an already-cleaned title", first.Title)
		}
	}
}

func TestStripOrdinals(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"1st March 2026", "1 March 2026"},
		{"2nd, 3rd and 4th", "2, 3 and 4"},
		{"25th Anniversary", "25 Anniversary"},
		{"Northstars Carnival", "Northstars Carnival"}, // "rs" is not a suffix on a digit
	}

	for _, tt := range tests {
		if got := stripOrdinals(tt.in); got != tt.expected {
			t.Errorf("stripOrdinals(%q) = %q, expected %q", tt.in, got, tt.expected)
		}
	}
}
