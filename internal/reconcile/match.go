package reconcile

import (
	"context"
	"fmt"

	"github.com/oldmanfooty/carnival-sync/internal/event"
	"github.com/oldmanfooty/carnival-sync/internal/store"
)

// CarnivalStore is the slice of the carnival store the reconciler needs.
type CarnivalStore interface {
	FindCarnival(ctx context.Context, filter store.CarnivalFilter) (*store.Carnival, error)
	CreateCarnival(ctx context.Context, c *store.Carnival) (*store.Carnival, error)
	UpdateCarnival(ctx context.Context, id int64, updates map[string]interface{}) error
}

// Matcher locates the stored carnival corresponding to an extracted event.
type Matcher struct {
	carnivals CarnivalStore
}

// NewMatcher creates a matcher over the given store.
func NewMatcher(carnivals CarnivalStore) *Matcher {
	return &Matcher{carnivals: carnivals}
}

// Find returns the carnival matching the event, or nil when none exists.
//
// The primary lookup is by title among pipeline-created rows: titles change
// less often upstream than dates or addresses do. The secondary lookup ANDs
// together whichever of title, date, and address the event carries, catching
// re-titled events. A filter that would contain nothing but the
// manually-entered flag is never issued.
func (m *Matcher) Find(ctx context.Context, evt *event.Event) (*store.Carnival, error) {
	notManual := false

	if evt.Title != "" {
		primary := store.CarnivalFilter{
			MySidelineTitle: &evt.Title,
			ManuallyEntered: &notManual,
		}
		match, err := m.carnivals.FindCarnival(ctx, primary)
		if err != nil {
			return nil, fmt.Errorf("primary carnival lookup: %w", err)
		}
		if match != nil {
			return match, nil
		}
	}

	secondary := store.CarnivalFilter{ManuallyEntered: &notManual}
	if evt.Title != "" {
		secondary.MySidelineTitle = &evt.Title
	}
	if !evt.Date.IsZero() {
		date := evt.Date
		secondary.Date = &date
	}
	if evt.Address != "" {
		secondary.Address = &evt.Address
	}
	if secondary.Empty() {
		return nil, nil
	}

	match, err := m.carnivals.FindCarnival(ctx, secondary)
	if err != nil {
		return nil, fmt.Errorf("secondary carnival lookup: %w", err)
	}
	return match, nil
}
