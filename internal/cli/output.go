package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/oldmanfooty/carnival-sync/internal/calendar"
	"github.com/oldmanfooty/carnival-sync/internal/event"
	"github.com/oldmanfooty/carnival-sync/internal/store"
	syncsvc "github.com/oldmanfooty/carnival-sync/internal/sync"
)

// timeNow is swapped in tests.
var timeNow = time.Now

// OutputFormat specifies how command results are rendered.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

func (f OutputFormat) valid() bool {
	return f == FormatText || f == FormatJSON
}

// writeSyncResult renders the outcome of one sync invocation.
func writeSyncResult(w io.Writer, result *syncsvc.Result, format OutputFormat) error {
	if !format.valid() {
		return fmt.Errorf("unknown format: %s", format)
	}
	if format == FormatJSON {
		return writeJSON(w, result)
	}

	if result.Skipped {
		fmt.Fprintln(w, "Sync skipped (disabled or already running).")
		return nil
	}
	fmt.Fprintf(w, "Sync %s complete.\n", result.RunID)
	fmt.Fprintf(w, "  Processed:   %d\n", result.Processed)
	fmt.Fprintf(w, "  Created:     %d\n", result.Created)
	fmt.Fprintf(w, "  Updated:     %d\n", result.Updated)
	fmt.Fprintf(w, "  Deactivated: %d\n", result.Deactivated)
	if result.Errors > 0 {
		fmt.Fprintf(w, "  Errors:      %d\n", result.Errors)
	}
	return nil
}

// statusOutput is the JSON shape of the status command.
type statusOutput struct {
	Enabled       bool             `json:"enabled"`
	Running       bool             `json:"running"`
	Subcomponents map[string]bool  `json:"subcomponents"`
	Runs          []*store.SyncRun `json:"runs"`
}

// writeStatus renders pipeline status plus recent runs.
func writeStatus(w io.Writer, status *syncsvc.Status, runs []*store.SyncRun, format OutputFormat) error {
	if !format.valid() {
		return fmt.Errorf("unknown format: %s", format)
	}
	if format == FormatJSON {
		return writeJSON(w, statusOutput{
			Enabled:       status.Enabled,
			Running:       status.Running,
			Subcomponents: status.Subcomponents,
			Runs:          runs,
		})
	}

	fmt.Fprintf(w, "Sync enabled: %v\n", status.Enabled)
	fmt.Fprintf(w, "Run in progress: %v\n", status.Running)
	for name, enabled := range status.Subcomponents {
		fmt.Fprintf(w, "  %s: %v\n", name, enabled)
	}

	if len(runs) == 0 {
		fmt.Fprintln(w, "\nNo sync runs recorded.")
		return nil
	}
	fmt.Fprintf(w, "\nRecent runs:\n")
	for _, run := range runs {
		line := fmt.Sprintf("  %s  %-9s %-7s processed=%d created=%d updated=%d",
			run.StartedAt.Format("2006-01-02 15:04"),
			run.Type, run.Status,
			run.EventsProcessed, run.EventsCreated, run.EventsUpdated)
		if run.Error != "" {
			line += "  error: " + run.Error
		}
		fmt.Fprintln(w, line)
	}
	return nil
}

// writeCarnivals renders a carnival listing.
func writeCarnivals(w io.Writer, carnivals []*store.Carnival, format OutputFormat, verbose bool) error {
	if !format.valid() {
		return fmt.Errorf("unknown format: %s", format)
	}
	if format == FormatJSON {
		return writeJSON(w, carnivals)
	}

	if len(carnivals) == 0 {
		fmt.Fprintln(w, "No carnivals found.")
		return nil
	}

	for _, c := range carnivals {
		state := event.StateAbbreviation(c.State)
		if state == "" {
			state = "---"
		}
		marker := " "
		if c.ManuallyEntered {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %s  %-4s %s\n", marker, c.Date.Format("2006-01-02"), state, c.Title)
		if verbose {
			if c.Address != "" {
				fmt.Fprintf(w, "    Address: %s\n", c.Address)
			}
			if c.OrganiserName != "" {
				fmt.Fprintf(w, "    Organiser: %s\n", c.OrganiserName)
			}
			if c.RegistrationLink != "" {
				fmt.Fprintf(w, "    Register: %s\n", c.RegistrationLink)
			}
			if c.LastSyncAt != nil {
				fmt.Fprintf(w, "    Last sync: %s\n", c.LastSyncAt.Format(time.RFC3339))
			}
		}
	}
	fmt.Fprintf(w, "\nTotal: %d carnivals (* = manually entered)\n", len(carnivals))
	return nil
}

// writeCalendarExport renders carnivals as iCalendar, to stdout or a file.
func writeCalendarExport(carnivals []*store.Carnival, path string) error {
	ics := calendar.GenerateCalendar(carnivals, timeNow())
	if path == "" {
		_, err := fmt.Print(ics)
		return err
	}
	if err := os.WriteFile(path, []byte(ics), 0o644); err != nil {
		return fmt.Errorf("writing calendar file: %w", err)
	}
	fmt.Printf("Wrote %d carnivals to %s\n", len(carnivals), path)
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
