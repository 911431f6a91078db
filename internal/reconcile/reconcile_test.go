package reconcile

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/oldmanfooty/carnival-sync/internal/event"
	"github.com/oldmanfooty/carnival-sync/internal/store"
)

// fakeStore is an in-memory CarnivalStore implementing the same filter
// semantics as the SQLite store.
type fakeStore struct {
	carnivals []*store.Carnival
	nextID    int64
	updates   map[int64][]map[string]interface{}
	findErr   error
	writeErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 1, updates: make(map[int64][]map[string]interface{})}
}

func (f *fakeStore) FindCarnival(_ context.Context, filter store.CarnivalFilter) (*store.Carnival, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	if filter.Empty() {
		return nil, nil
	}
	for _, c := range f.carnivals {
		if filter.MySidelineTitle != nil && c.MySidelineTitle != *filter.MySidelineTitle {
			continue
		}
		if filter.Date != nil && !c.Date.Equal(*filter.Date) {
			continue
		}
		if filter.Address != nil && c.Address != *filter.Address {
			continue
		}
		if filter.ManuallyEntered != nil && c.ManuallyEntered != *filter.ManuallyEntered {
			continue
		}
		return c, nil
	}
	return nil, nil
}

func (f *fakeStore) CreateCarnival(_ context.Context, c *store.Carnival) (*store.Carnival, error) {
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	c.ID = f.nextID
	f.nextID++
	f.carnivals = append(f.carnivals, c)
	return c, nil
}

func (f *fakeStore) UpdateCarnival(_ context.Context, id int64, updates map[string]interface{}) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.updates[id] = append(f.updates[id], updates)
	return nil
}

func fixedReconciler(fs *fakeStore, now time.Time) *Reconciler {
	r := NewReconciler(fs)
	r.now = func() time.Time { return now }
	return r
}

func midnight(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestApplyCreatesNewCarnival(t *testing.T) {
	fs := newFakeStore()
	now := time.Date(2026, time.June, 10, 12, 0, 0, 0, time.UTC)
	r := fixedReconciler(fs, now)
	lastSync := now

	evt := &event.Event{
		Title:           "NSW Masters Rugby League Carnival",
		Date:            midnight(2099, time.September, 15),
		State:           "New South Wales",
		Address:         "Sydney Sports Complex, NSW",
		RegistrationURL: "https://profile.mysideline.com.au/register/123",
	}

	action, err := r.Apply(context.Background(), evt, lastSync)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if action != ActionCreated {
		t.Fatalf("expected created, got %s", action)
	}

	created := fs.carnivals[0]
	if created.ManuallyEntered {
		t.Error("pipeline rows must not be manually entered")
	}
	if created.MySidelineTitle != evt.Title {
		t.Errorf("expected mysideline title %q, got %q", evt.Title, created.MySidelineTitle)
	}
	if !created.RegistrationOpen {
		t.Error("event far in the future should open registration")
	}
	if created.LastSyncAt == nil || !created.LastSyncAt.Equal(lastSync) {
		t.Errorf("expected last sync %v, got %v", lastSync, created.LastSyncAt)
	}
	if !created.Active {
		t.Error("new carnivals start active")
	}
}

func TestApplyRegistrationOpenBoundary(t *testing.T) {
	// Exactly seven days out is not "more than seven days": registration
	// stays closed at the boundary.
	now := midnight(2026, time.June, 10)

	tests := []struct {
		name     string
		date     time.Time
		expected bool
	}{
		{"eight days out", midnight(2026, time.June, 18), true},
		{"exactly seven days out", midnight(2026, time.June, 17), false},
		{"two days out", midnight(2026, time.June, 12), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := newFakeStore()
			r := fixedReconciler(fs, now)

			evt := &event.Event{Title: "Boundary Carnival", Date: tt.date}
			if _, err := r.Apply(context.Background(), evt, now); err != nil {
				t.Fatalf("Apply failed: %v", err)
			}
			if got := fs.carnivals[0].RegistrationOpen; got != tt.expected {
				t.Errorf("RegistrationOpen = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestApplyFillsOnlyEmptyFields(t *testing.T) {
	fs := newFakeStore()
	now := time.Date(2026, time.June, 10, 12, 0, 0, 0, time.UTC)
	r := fixedReconciler(fs, now)

	existing := &store.Carnival{
		ID:              1,
		Title:           "Brisbane Masters",
		MySidelineTitle: "Brisbane Masters",
		Date:            midnight(2099, time.September, 15),
		Address:         "Existing Stadium",
		Active:          true,
	}
	fs.carnivals = append(fs.carnivals, existing)
	fs.nextID = 2

	evt := &event.Event{
		Title:          "Brisbane Masters",
		Date:           midnight(2099, time.September, 15),
		Address:        "New Venue",
		OrganiserEmail: "m@x.au",
	}

	action, err := r.Apply(context.Background(), evt, now)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if action != ActionUpdated {
		t.Fatalf("expected updated, got %s", action)
	}

	applied := fs.updates[1][0]
	if _, ok := applied["address"]; ok {
		t.Error("non-empty address must not be overwritten")
	}
	if applied["organiser_email"] != "m@x.au" {
		t.Errorf("expected organiser email filled, got %v", applied["organiser_email"])
	}
	if _, ok := applied["last_sync_at"]; !ok {
		t.Error("last_sync_at must always be written")
	}
}

func TestApplySkipsPastEvents(t *testing.T) {
	fs := newFakeStore()
	now := time.Date(2026, time.June, 10, 12, 0, 0, 0, time.UTC)
	r := fixedReconciler(fs, now)

	existing := &store.Carnival{
		ID:              1,
		MySidelineTitle: "Old Carnival",
		Date:            midnight(2000, time.January, 1),
		Active:          true,
	}
	fs.carnivals = append(fs.carnivals, existing)

	tests := []struct {
		name string
		date time.Time
	}{
		{"long past", midnight(2000, time.January, 1)},
		{"today counts as past", midnight(2026, time.June, 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evt := &event.Event{Title: "Old Carnival", Date: tt.date}
			action, err := r.Apply(context.Background(), evt, now)
			if err != nil {
				t.Fatalf("Apply failed: %v", err)
			}
			if action != ActionSkipped {
				t.Errorf("expected skipped, got %s", action)
			}
			if len(fs.updates[1]) != 0 {
				t.Error("skipped events must not write anything")
			}
		})
	}
}

func TestApplySkipsInactiveMatches(t *testing.T) {
	fs := newFakeStore()
	now := time.Date(2026, time.June, 10, 12, 0, 0, 0, time.UTC)
	r := fixedReconciler(fs, now)

	fs.carnivals = append(fs.carnivals, &store.Carnival{
		ID:              1,
		MySidelineTitle: "Deactivated Carnival",
		Date:            midnight(2099, time.September, 15),
		Active:          false,
	})

	evt := &event.Event{Title: "Deactivated Carnival", Date: midnight(2099, time.September, 15)}
	action, err := r.Apply(context.Background(), evt, now)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if action != ActionSkipped {
		t.Errorf("expected skipped for inactive match, got %s", action)
	}
	if len(fs.updates[1]) != 0 {
		t.Error("inactive matches must never receive updates")
	}
}

func TestApplyPropagatesWriteErrors(t *testing.T) {
	fs := newFakeStore()
	fs.writeErr = errors.New("disk full")
	r := fixedReconciler(fs, time.Date(2026, time.June, 10, 12, 0, 0, 0, time.UTC))

	evt := &event.Event{Title: "Doomed Carnival", Date: midnight(2099, time.May, 1)}
	if _, err := r.Apply(context.Background(), evt, time.Now()); err == nil {
		t.Error("expected write error to propagate")
	}
}

func TestBuildUpdates(t *testing.T) {
	lastSync := time.Date(2026, time.June, 10, 3, 0, 0, 0, time.UTC)

	existing := &store.Carnival{
		State:          "Queensland",
		Address:        "",
		OrganiserName:  "  ", // blank counts as empty
		OrganiserEmail: "kept@example.org",
	}
	evt := &event.Event{
		State:          "New South Wales",
		Address:        "New Venue, NSW",
		OrganiserName:  "Sam Organiser",
		OrganiserEmail: "new@example.org",
	}

	updates := BuildUpdates(existing, evt, lastSync)

	if _, ok := updates["state"]; ok {
		t.Error("non-empty state must not be overwritten")
	}
	if updates["address"] != "New Venue, NSW" {
		t.Errorf("expected address filled, got %v", updates["address"])
	}
	if updates["organiser_name"] != "Sam Organiser" {
		t.Errorf("expected blank organiser name filled, got %v", updates["organiser_name"])
	}
	if _, ok := updates["organiser_email"]; ok {
		t.Error("non-empty organiser email must not be overwritten")
	}
	if updates["last_sync_at"] != lastSync {
		t.Errorf("expected last_sync_at %v, got %v", lastSync, updates["last_sync_at"])
	}
}

func TestBuildUpdatesLastSyncOnly(t *testing.T) {
	existing := &store.Carnival{
		State:            "Queensland",
		Address:          "Full Address",
		OrganiserName:    "Name",
		OrganiserEmail:   "mail@example.org",
		OrganiserPhone:   "07 5555 5555",
		RegistrationLink: "https://example.org/reg",
	}
	evt := &event.Event{
		State:   "Queensland",
		Address: "Somewhere Else",
	}

	updates := BuildUpdates(existing, evt, time.Now())
	if len(updates) != 1 {
		t.Errorf("expected only last_sync_at, got %v", updates)
	}
}

func TestMatcherPrimaryBeforeSecondary(t *testing.T) {
	fs := newFakeStore()
	m := NewMatcher(fs)

	titleMatch := &store.Carnival{ID: 1, MySidelineTitle: "Cairns Masters", Date: midnight(2099, time.May, 1)}
	fs.carnivals = append(fs.carnivals, titleMatch)

	evt := &event.Event{
		Title:   "Cairns Masters",
		Date:    midnight(2099, time.June, 1), // differs from the stored date
		Address: "Different Address",
	}

	match, err := m.Find(context.Background(), evt)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if match == nil || match.ID != 1 {
		t.Errorf("primary title match should win, got %+v", match)
	}
}

func TestMatcherIgnoresManualRows(t *testing.T) {
	fs := newFakeStore()
	m := NewMatcher(fs)

	fs.carnivals = append(fs.carnivals, &store.Carnival{
		ID:              1,
		MySidelineTitle: "Manual Carnival",
		ManuallyEntered: true,
	})

	match, err := m.Find(context.Background(), &event.Event{Title: "Manual Carnival"})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if match != nil {
		t.Errorf("manual rows must not match by title, got %+v", match)
	}
}

func TestMatcherEmptyEventNeverMatches(t *testing.T) {
	fs := newFakeStore()
	fs.carnivals = append(fs.carnivals, &store.Carnival{ID: 1, MySidelineTitle: "Anything"})
	m := NewMatcher(fs)

	match, err := m.Find(context.Background(), &event.Event{})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if match != nil {
		t.Errorf("an event with no filterable fields must not match, got %+v", match)
	}
}

func TestMatcherErrorsWrapped(t *testing.T) {
	fs := newFakeStore()
	fs.findErr = errors.New("database locked")
	m := NewMatcher(fs)

	_, err := m.Find(context.Background(), &event.Event{Title: "Any Carnival"})
	if err == nil || !strings.Contains(err.Error(), "database locked") {
		t.Errorf("expected wrapped store error, got %v", err)
	}
}
