package reconcile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/oldmanfooty/carnival-sync/internal/event"
	"github.com/oldmanfooty/carnival-sync/internal/logger"
	"github.com/oldmanfooty/carnival-sync/internal/store"
)

// Action describes what the reconciler did with one event.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionSkipped Action = "skipped"
)

// registrationLeadTime is how far out an event must be for a newly created
// carnival to open registration immediately.
const registrationLeadTime = 7 * 24 * time.Hour

// Reconciler applies extracted events to the carnival store.
type Reconciler struct {
	carnivals CarnivalStore
	matcher   *Matcher
	now       func() time.Time
}

// NewReconciler creates a reconciler over the given store.
func NewReconciler(carnivals CarnivalStore) *Reconciler {
	return &Reconciler{
		carnivals: carnivals,
		matcher:   NewMatcher(carnivals),
		now:       time.Now,
	}
}

// Apply reconciles one extracted event, returning the action taken.
//
// Matched events dated today or earlier, and matches that have been
// deactivated, are skipped untouched. Otherwise only empty fields on the
// match are filled from the event; last_sync_at is stamped on every
// non-skipped match even when nothing else changed. Unmatched events create
// a new pipeline-owned carnival.
func (r *Reconciler) Apply(ctx context.Context, evt *event.Event, lastSync time.Time) (Action, error) {
	match, err := r.matcher.Find(ctx, evt)
	if err != nil {
		return ActionSkipped, fmt.Errorf("matching event %q: %w", evt.Title, err)
	}

	now := r.now()

	if match != nil {
		if evt.IsPast(now) || !match.Active {
			logger.Debug("Skipping carnival update", logger.Fields{
				"title":  evt.Title,
				"past":   evt.IsPast(now),
				"active": match.Active,
			})
			return ActionSkipped, nil
		}

		updates := BuildUpdates(match, evt, lastSync)
		if err := r.carnivals.UpdateCarnival(ctx, match.ID, updates); err != nil {
			return ActionSkipped, fmt.Errorf("updating carnival %d: %w", match.ID, err)
		}
		return ActionUpdated, nil
	}

	carnival := &store.Carnival{
		Title:            evt.Title,
		MySidelineTitle:  evt.Title,
		Date:             evt.Date,
		State:            evt.State,
		Address:          evt.Address,
		OrganiserName:    evt.OrganiserName,
		OrganiserEmail:   evt.OrganiserEmail,
		OrganiserPhone:   evt.OrganiserPhone,
		RegistrationLink: evt.RegistrationURL,
		RegistrationOpen: evt.Date.After(now.Add(registrationLeadTime)),
		ManuallyEntered:  false,
		LastSyncAt:       &lastSync,
		Active:           true,
	}
	if _, err := r.carnivals.CreateCarnival(ctx, carnival); err != nil {
		return ActionSkipped, fmt.Errorf("creating carnival %q: %w", evt.Title, err)
	}
	return ActionCreated, nil
}

// BuildUpdates computes the partial update for a matched carnival: a column
// is included only when the stored value is empty and the extracted value is
// not. last_sync_at is always included; it may be the only entry.
//
// Pure function; the fill-empty-only rule lives here and nowhere else.
func BuildUpdates(existing *store.Carnival, evt *event.Event, lastSync time.Time) map[string]interface{} {
	updates := map[string]interface{}{
		"last_sync_at": lastSync,
	}

	fill := func(column, existingValue, extractedValue string) {
		if isEmpty(existingValue) && !isEmpty(extractedValue) {
			updates[column] = extractedValue
		}
	}

	fill("state", existing.State, evt.State)
	fill("address", existing.Address, evt.Address)
	fill("organiser_name", existing.OrganiserName, evt.OrganiserName)
	fill("organiser_email", existing.OrganiserEmail, evt.OrganiserEmail)
	fill("organiser_phone", existing.OrganiserPhone, evt.OrganiserPhone)
	fill("registration_link", existing.RegistrationLink, evt.RegistrationURL)

	return updates
}

// isEmpty treats null, undefined, and "" upstream values alike: all arrive
// here as an empty or blank string.
func isEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}
