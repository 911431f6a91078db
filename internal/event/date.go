package event

import (
	"strings"
	"time"
)

// dateLayouts are tried in order by ParseDate. Go's time.Parse rejects
// impossible dates (month 13, 31 February), which gives us the round-trip
// guarantee for free.
var dateLayouts = []string{
	"2/1/2006",
	"02/01/2006",
	"2-1-2006",
	"02-01-2006",
	"2 January 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"Jan 2 2006",
}

// fallbackLayouts are a last resort for date strings that arrive in a
// machine format rather than a human one.
var fallbackLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	"2006/01/02",
}

// ParseDate attempts to parse a date string into a calendar date at UTC
// midnight. Returns the zero time if parsing fails, never a default "today".
//
// Supported forms: "15/09/2026", "15-09-2026", "15 September 2026",
// "September 15, 2026" (with or without the comma, full or abbreviated
// month names).
func ParseDate(text string) time.Time {
	text = strings.TrimSpace(stripOrdinals(text))
	if text == "" {
		return time.Time{}
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return StartOfDay(t)
		}
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return StartOfDay(t)
		}
	}

	return time.Time{}
}
