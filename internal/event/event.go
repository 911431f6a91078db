package event

import (
	"strings"
	"time"
)

// Source tag recorded on every event produced by the scraper.
const Source = "mysideline"

// Event represents a single carnival extracted from a MySideline search card.
// It is transient: the reconciler turns it into a persisted carnival row.
type Event struct {
	Title           string    `json:"title"`      // cleaned title, dates stripped
	RawTitle        string    `json:"raw_title"`  // title exactly as shown on the card
	Subtitle        string    `json:"subtitle,omitempty"`
	Date            time.Time `json:"date"`       // calendar date at UTC midnight
	State           string    `json:"state,omitempty"` // full state name, e.g. "New South Wales"
	Address         string    `json:"address,omitempty"`
	MapURL          string    `json:"map_url,omitempty"`
	Description     string    `json:"description,omitempty"`
	OrganiserName   string    `json:"organiser_name,omitempty"`
	OrganiserEmail  string    `json:"organiser_email,omitempty"`
	OrganiserPhone  string    `json:"organiser_phone,omitempty"`
	Website         string    `json:"website,omitempty"`
	Facebook        string    `json:"facebook,omitempty"`
	EventType       string    `json:"event_type,omitempty"`
	IconURL         string    `json:"icon_url,omitempty"`
	RegistrationURL string    `json:"registration_url,omitempty"`
	Source          string    `json:"source"`
	ScrapedAt       time.Time `json:"scraped_at"`
	RawContent      string    `json:"-"` // full card text, kept for diagnostics only
}

// Valid reports whether the event carries the minimum the reconciler needs:
// a non-empty title and a parseable calendar date.
func (e *Event) Valid() bool {
	return e != nil && strings.TrimSpace(e.Title) != "" && !e.Date.IsZero()
}

// DaysUntil returns the whole days between now and the event date.
// Negative values mean the event is in the past.
func (e *Event) DaysUntil(now time.Time) int {
	today := StartOfDay(now)
	return int(e.Date.Sub(today).Hours() / 24)
}

// IsPast reports whether the event date has passed. An event dated today is
// considered past: the pipeline never updates same-day carnivals.
func (e *Event) IsPast(now time.Time) bool {
	if e.Date.IsZero() {
		return false
	}
	return !e.Date.After(StartOfDay(now))
}

// StartOfDay truncates t to UTC midnight.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
