package store

import "time"

// Carnival is the persisted representation of a Masters carnival. It is the
// only entity the pipeline writes.
//
// MySidelineTitle holds the title exactly as first seen on MySideline and is
// the canonical match key for pipeline-created rows. Rows later claimed by a
// human (ManuallyEntered flipped true through the admin path) keep receiving
// fill-empty-only updates, so human edits survive every sync.
type Carnival struct {
	ID                   int64
	Title                string
	MySidelineTitle      string
	Date                 time.Time // calendar date at UTC midnight
	State                string
	VenueName            string
	Address              string
	Latitude             *float64
	Longitude            *float64
	Suburb               string
	Postcode             string
	Country              string
	OrganiserName        string
	OrganiserEmail       string
	OrganiserPhone       string
	RegistrationLink     string
	RegistrationOpen     bool
	RegistrationDeadline *time.Time
	ManuallyEntered      bool
	LastSyncAt           *time.Time
	Active               bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// RunStatus is the lifecycle of a sync run. A run transitions from started
// to ok or failed exactly once; rows are never deleted.
type RunStatus string

const (
	RunStarted RunStatus = "started"
	RunOK      RunStatus = "ok"
	RunFailed  RunStatus = "failed"
)

// RunTypeScheduled and friends label what triggered a run.
const (
	RunTypeScheduled = "scheduled"
	RunTypeManual    = "manual"
	RunTypeInitial   = "initial"
)

// SyncRun records one pipeline execution.
type SyncRun struct {
	ID              int64
	RunID           string // correlation UUID carried through logs
	Type            string
	Status          RunStatus
	StartedAt       time.Time
	CompletedAt     *time.Time
	EventsProcessed int
	EventsCreated   int
	EventsUpdated   int
	Error           string
	Metadata        map[string]interface{}
}

// RunCounts aggregates the outcome of a run for CompleteRun.
type RunCounts struct {
	Processed int
	Created   int
	Updated   int
}
