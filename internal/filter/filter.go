// Package filter narrows carnival listings for the CLI.
//
// A filter combines independent criteria: date range, states, title
// substrings, weekend-only, and registration-open. An empty filter matches
// every carnival. States accept either form ("NSW" or "New South Wales").
//
// Example:
//
//	f := filter.New()
//	f.States = []string{"NSW", "QLD"}
//	f.WeekendsOnly = true
//	upcoming := f.Apply(carnivals, time.Now())
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/oldmanfooty/carnival-sync/internal/event"
	"github.com/oldmanfooty/carnival-sync/internal/store"
)

// Filter is a set of carnival matching criteria. Zero criteria match all.
type Filter struct {
	// Date range, inclusive on both ends.
	DateFrom *time.Time `json:"date_from,omitempty"`
	DateTo   *time.Time `json:"date_to,omitempty"`

	// States accepted in abbreviation or full-name form.
	States []string `json:"states,omitempty"`

	// Title substrings, case-insensitive; any one matching suffices.
	Titles []string `json:"titles,omitempty"`

	// WeekendsOnly keeps Saturday and Sunday carnivals.
	WeekendsOnly bool `json:"weekends_only,omitempty"`

	// UpcomingOnly keeps carnivals dated today or later.
	UpcomingOnly bool `json:"upcoming_only,omitempty"`

	// OpenOnly keeps carnivals whose registration is open.
	OpenOnly bool `json:"open_only,omitempty"`
}

// New creates an empty filter that matches every carnival.
func New() *Filter {
	return &Filter{
		States: []string{},
		Titles: []string{},
	}
}

// IsEmpty reports whether the filter has any active criteria.
func (f *Filter) IsEmpty() bool {
	return f.DateFrom == nil &&
		f.DateTo == nil &&
		len(f.States) == 0 &&
		len(f.Titles) == 0 &&
		!f.WeekendsOnly &&
		!f.UpcomingOnly &&
		!f.OpenOnly
}

// Matches reports whether a carnival passes every active criterion. The
// reference time only matters for UpcomingOnly.
func (f *Filter) Matches(c *store.Carnival, now time.Time) bool {
	if f.IsEmpty() {
		return true
	}

	if f.DateFrom != nil && c.Date.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && c.Date.After(*f.DateTo) {
		return false
	}

	if f.WeekendsOnly {
		wd := c.Date.Weekday()
		if wd != time.Saturday && wd != time.Sunday {
			return false
		}
	}

	if f.UpcomingOnly && c.Date.Before(event.StartOfDay(now)) {
		return false
	}

	if f.OpenOnly && !c.RegistrationOpen {
		return false
	}

	if len(f.States) > 0 && !matchesState(c.State, f.States) {
		return false
	}

	if len(f.Titles) > 0 && !matchesTitle(c.Title, f.Titles) {
		return false
	}

	return true
}

// matchesState compares in abbreviation space so "NSW" and
// "New South Wales" are interchangeable on both sides.
func matchesState(state string, wanted []string) bool {
	abbr := event.StateAbbreviation(state)
	for _, w := range wanted {
		if strings.EqualFold(abbr, event.StateAbbreviation(w)) {
			return true
		}
	}
	return false
}

func matchesTitle(title string, wanted []string) bool {
	lower := strings.ToLower(title)
	for _, w := range wanted {
		if strings.Contains(lower, strings.ToLower(w)) {
			return true
		}
	}
	return false
}

// Apply returns the carnivals matching the filter. An empty filter returns
// the input unchanged.
func (f *Filter) Apply(carnivals []*store.Carnival, now time.Time) []*store.Carnival {
	if f.IsEmpty() {
		return carnivals
	}

	var matched []*store.Carnival
	for _, c := range carnivals {
		if f.Matches(c, now) {
			matched = append(matched, c)
		}
	}
	return matched
}

// String returns a human-readable description of the active criteria, or
// "No active filters" for an empty filter.
func (f *Filter) String() string {
	if f.IsEmpty() {
		return "No active filters"
	}

	var parts []string
	if f.DateFrom != nil {
		parts = append(parts, fmt.Sprintf("From: %s", f.DateFrom.Format("Jan 2, 2006")))
	}
	if f.DateTo != nil {
		parts = append(parts, fmt.Sprintf("To: %s", f.DateTo.Format("Jan 2, 2006")))
	}
	if len(f.States) > 0 {
		parts = append(parts, fmt.Sprintf("States: %s", strings.Join(f.States, ", ")))
	}
	if len(f.Titles) > 0 {
		parts = append(parts, fmt.Sprintf("Titles: %s", strings.Join(f.Titles, ", ")))
	}
	if f.WeekendsOnly {
		parts = append(parts, "Weekends only")
	}
	if f.UpcomingOnly {
		parts = append(parts, "Upcoming only")
	}
	if f.OpenOnly {
		parts = append(parts, "Registration open")
	}
	return strings.Join(parts, " | ")
}
