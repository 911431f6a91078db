// Package calendar renders carnivals as iCalendar documents for export.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/oldmanfooty/carnival-sync/internal/store"
)

// prodID identifies this generator in exported calendars.
const prodID = "-//Old Man Footy//carnival-sync//EN"

// GenerateICS renders one carnival as a single-event iCalendar document.
// Carnivals are all-day events: DTSTART is the carnival date and DTEND the
// following day, per RFC 5545's exclusive end convention.
func GenerateICS(c *store.Carnival, now time.Time) string {
	var ics strings.Builder
	writeCalendarHeader(&ics)
	writeEvent(&ics, c, now)
	ics.WriteString("END:VCALENDAR\r\n")
	return ics.String()
}

// GenerateCalendar renders many carnivals into one iCalendar document.
func GenerateCalendar(carnivals []*store.Carnival, now time.Time) string {
	var ics strings.Builder
	writeCalendarHeader(&ics)
	for _, c := range carnivals {
		writeEvent(&ics, c, now)
	}
	ics.WriteString("END:VCALENDAR\r\n")
	return ics.String()
}

func writeCalendarHeader(ics *strings.Builder) {
	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	fmt.Fprintf(ics, "PRODID:%s\r\n", prodID)
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")
}

func writeEvent(ics *strings.Builder, c *store.Carnival, now time.Time) {
	ics.WriteString("BEGIN:VEVENT\r\n")

	fmt.Fprintf(ics, "UID:carnival-%d@oldmanfooty.au\r\n", c.ID)
	fmt.Fprintf(ics, "DTSTAMP:%s\r\n", now.UTC().Format("20060102T150405Z"))

	fmt.Fprintf(ics, "DTSTART;VALUE=DATE:%s\r\n", c.Date.Format("20060102"))
	fmt.Fprintf(ics, "DTEND;VALUE=DATE:%s\r\n", c.Date.AddDate(0, 0, 1).Format("20060102"))

	fmt.Fprintf(ics, "SUMMARY:%s\r\n", escapeICS(c.Title))

	if desc := eventDescription(c); desc != "" {
		fmt.Fprintf(ics, "DESCRIPTION:%s\r\n", escapeICS(desc))
	}
	if c.Address != "" {
		fmt.Fprintf(ics, "LOCATION:%s\r\n", escapeICS(c.Address))
	}
	if c.RegistrationLink != "" {
		fmt.Fprintf(ics, "URL:%s\r\n", c.RegistrationLink)
	}

	ics.WriteString("STATUS:CONFIRMED\r\n")
	ics.WriteString("TRANSP:TRANSPARENT\r\n")
	ics.WriteString("END:VEVENT\r\n")
}

func eventDescription(c *store.Carnival) string {
	var lines []string
	if c.State != "" {
		lines = append(lines, fmt.Sprintf("State: %s", c.State))
	}
	if c.OrganiserName != "" {
		lines = append(lines, fmt.Sprintf("Organiser: %s", c.OrganiserName))
	}
	if c.OrganiserEmail != "" {
		lines = append(lines, fmt.Sprintf("Email: %s", c.OrganiserEmail))
	}
	if c.RegistrationLink != "" {
		lines = append(lines, fmt.Sprintf("Register: %s", c.RegistrationLink))
	}
	return strings.Join(lines, "\n")
}

// escapeICS escapes text per RFC 5545.
func escapeICS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
