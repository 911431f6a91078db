package calendar

import (
	"strings"
	"testing"
	"time"

	"github.com/oldmanfooty/carnival-sync/internal/store"
)

func testCarnival() *store.Carnival {
	return &store.Carnival{
		ID:               42,
		Title:            "Northern Masters Carnival",
		Date:             time.Date(2026, 6, 14, 0, 0, 0, 0, time.UTC),
		State:            "New South Wales",
		Address:          "Newcastle Sportsground, Broadmeadow NSW",
		OrganiserName:    "Dave Riley",
		RegistrationLink: "https://profile.mysideline.com.au/register/123",
	}
}

func TestGenerateICS(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ics := GenerateICS(testCarnival(), now)

	wantLines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"UID:carnival-42@oldmanfooty.au",
		"DTSTAMP:20260301T120000Z",
		"DTSTART;VALUE=DATE:20260614",
		"DTEND;VALUE=DATE:20260615",
		"SUMMARY:Northern Masters Carnival",
		"LOCATION:Newcastle Sportsground\\, Broadmeadow NSW",
		"URL:https://profile.mysideline.com.au/register/123",
		"END:VEVENT",
		"END:VCALENDAR",
	}
	for _, want := range wantLines {
		if !strings.Contains(ics, want+"\r\n") {
			t.Errorf("ICS missing line %q", want)
		}
	}
}

func TestGenerateICSEscapesSpecialCharacters(t *testing.T) {
	c := testCarnival()
	c.Title = "Nines; Carnival, \\Finals"

	ics := GenerateICS(c, time.Now())
	if !strings.Contains(ics, `SUMMARY:Nines\; Carnival\, \\Finals`) {
		t.Errorf("special characters not escaped: %s", ics)
	}
}

func TestGenerateICSOmitsEmptyFields(t *testing.T) {
	c := &store.Carnival{
		ID:    7,
		Title: "Bare Carnival",
		Date:  time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	}

	ics := GenerateICS(c, time.Now())
	for _, unwanted := range []string{"LOCATION:", "URL:", "DESCRIPTION:"} {
		if strings.Contains(ics, unwanted) {
			t.Errorf("ICS should omit %q for an empty field", unwanted)
		}
	}
}

func TestGenerateCalendarMultipleEvents(t *testing.T) {
	carnivals := []*store.Carnival{
		testCarnival(),
		{ID: 43, Title: "Southern Masters", Date: time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC)},
	}

	ics := GenerateCalendar(carnivals, time.Now())
	if got := strings.Count(ics, "BEGIN:VEVENT"); got != 2 {
		t.Errorf("calendar holds %d events, want 2", got)
	}
	if got := strings.Count(ics, "BEGIN:VCALENDAR"); got != 1 {
		t.Errorf("calendar has %d headers, want 1", got)
	}
}
