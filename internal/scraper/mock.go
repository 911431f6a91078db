package scraper

import (
	"fmt"
	"strings"
	"time"

	"github.com/oldmanfooty/carnival-sync/internal/event"
)

// mockStates maps each mocked state to its city, in generation order.
var mockStates = []struct {
	abbr string
	city string
}{
	{"NSW", "Sydney"},
	{"QLD", "Brisbane"},
	{"VIC", "Melbourne"},
}

// MockEvents returns a deterministic set of synthetic carnival events
// relative to now: two per state, roughly two and four months out, always
// on the 15th so runs on different days of the month agree.
func MockEvents(now time.Time) []*event.Event {
	scraped := now.UTC()
	events := make([]*event.Event, 0, len(mockStates)*2)

	for _, st := range mockStates {
		for n, monthsAhead := range []int{2, 4} {
			base := now.AddDate(0, monthsAhead, 0)
			date := time.Date(base.Year(), base.Month(), 15, 0, 0, 0, 0, time.UTC)

			title := fmt.Sprintf("%s Masters Carnival %s", st.city, date.Format("January 2006"))
			evt := &event.Event{
				Title:           title,
				RawTitle:        fmt.Sprintf("%s - %s", title, date.Format("2 January 2006")),
				Date:            date,
				State:           event.StateName(st.abbr),
				Address:         fmt.Sprintf("%s Sports Complex, %s", st.city, st.abbr),
				Description:     fmt.Sprintf("Annual masters rugby league carnival hosted in %s.", st.city),
				OrganiserName:   fmt.Sprintf("%s Masters Committee", st.city),
				OrganiserEmail:  fmt.Sprintf("events@%smasters.example.au", strings.ToLower(st.city)),
				EventType:       "Carnival",
				RegistrationURL: fmt.Sprintf("https://profile.mysideline.com.au/register/mock-%s-%d", strings.ToLower(st.abbr), n+1),
				Source:          event.Source,
				ScrapedAt:       scraped,
			}
			evt.RawContent = evt.RawTitle + " " + evt.Address + " " + evt.Description
			events = append(events, evt)
		}
	}
	return events
}
