package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// CarnivalFilter is an equality filter for FindCarnival. Nil fields are not
// part of the filter.
type CarnivalFilter struct {
	MySidelineTitle *string
	Date            *time.Time
	Address         *string
	ManuallyEntered *bool
}

// Empty reports whether the filter carries no criteria beyond the
// manually-entered flag. Such a filter must never match anything.
func (f CarnivalFilter) Empty() bool {
	return f.MySidelineTitle == nil && f.Date == nil && f.Address == nil
}

const carnivalColumns = `id, title, mysideline_title, date, state, venue_name, address,
	latitude, longitude, suburb, postcode, country,
	organiser_name, organiser_email, organiser_phone,
	registration_link, registration_open, registration_deadline,
	manually_entered, last_sync_at, active, created_at, updated_at`

// updatableColumns whitelists the columns UpdateCarnival may touch.
var updatableColumns = map[string]bool{
	"title":                 true,
	"mysideline_title":      true,
	"date":                  true,
	"state":                 true,
	"venue_name":            true,
	"address":               true,
	"latitude":              true,
	"longitude":             true,
	"suburb":                true,
	"postcode":              true,
	"country":               true,
	"organiser_name":        true,
	"organiser_email":       true,
	"organiser_phone":       true,
	"registration_link":     true,
	"registration_open":     true,
	"registration_deadline": true,
	"manually_entered":      true,
	"last_sync_at":          true,
	"active":                true,
}

// FindCarnival returns at most one carnival matching every present filter
// field, or (nil, nil) when nothing matches. An empty filter never matches.
func (s *Store) FindCarnival(ctx context.Context, filter CarnivalFilter) (*Carnival, error) {
	if filter.Empty() {
		return nil, nil
	}

	clauses := make([]string, 0, 4)
	args := make([]interface{}, 0, 4)

	if filter.MySidelineTitle != nil {
		clauses = append(clauses, "mysideline_title = ?")
		args = append(args, *filter.MySidelineTitle)
	}
	if filter.Date != nil {
		clauses = append(clauses, "date = ?")
		args = append(args, encodeDate(*filter.Date))
	}
	if filter.Address != nil {
		clauses = append(clauses, "address = ?")
		args = append(args, *filter.Address)
	}
	if filter.ManuallyEntered != nil {
		clauses = append(clauses, "manually_entered = ?")
		args = append(args, boolToInt(*filter.ManuallyEntered))
	}

	query := fmt.Sprintf("SELECT %s FROM carnivals WHERE %s ORDER BY id LIMIT 1",
		carnivalColumns, strings.Join(clauses, " AND "))

	carnival, err := scanCarnival(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding carnival: %w", err)
	}
	return carnival, nil
}

// FindLastSynced returns the carnival with the most recent last_sync_at,
// or (nil, nil) when no carnival has ever been synced. The orchestrator's
// initial-run gate keys off this.
func (s *Store) FindLastSynced(ctx context.Context) (*Carnival, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM carnivals WHERE last_sync_at IS NOT NULL ORDER BY last_sync_at DESC LIMIT 1",
		carnivalColumns)

	carnival, err := scanCarnival(s.db.QueryRowContext(ctx, query))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding last-synced carnival: %w", err)
	}
	return carnival, nil
}

// CreateCarnival inserts a carnival and returns the persisted row with its
// id. CreatedAt/UpdatedAt are stamped here.
func (s *Store) CreateCarnival(ctx context.Context, c *Carnival) (*Carnival, error) {
	now := time.Now().UTC()
	if c.Country == "" {
		c.Country = "Australia"
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO carnivals (
			title, mysideline_title, date, state, venue_name, address,
			latitude, longitude, suburb, postcode, country,
			organiser_name, organiser_email, organiser_phone,
			registration_link, registration_open, registration_deadline,
			manually_entered, last_sync_at, active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Title,
		c.MySidelineTitle,
		encodeDate(c.Date),
		c.State,
		c.VenueName,
		c.Address,
		c.Latitude,
		c.Longitude,
		c.Suburb,
		c.Postcode,
		c.Country,
		c.OrganiserName,
		c.OrganiserEmail,
		c.OrganiserPhone,
		c.RegistrationLink,
		boolToInt(c.RegistrationOpen),
		nullableDate(c.RegistrationDeadline),
		boolToInt(c.ManuallyEntered),
		nullableTime(c.LastSyncAt),
		boolToInt(c.Active),
		encodeTime(now),
		encodeTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting carnival: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading insert id: %w", err)
	}

	return s.GetCarnival(ctx, id)
}

// GetCarnival fetches a carnival by id.
func (s *Store) GetCarnival(ctx context.Context, id int64) (*Carnival, error) {
	query := fmt.Sprintf("SELECT %s FROM carnivals WHERE id = ?", carnivalColumns)
	carnival, err := scanCarnival(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("fetching carnival %d: %w", id, err)
	}
	return carnival, nil
}

// UpdateCarnival applies a partial update. Keys are column names; values may
// be strings, numbers, bools, or time.Time (encoded per column). Unknown
// columns are rejected.
func (s *Store) UpdateCarnival(ctx context.Context, id int64, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}

	assignments := make([]string, 0, len(updates)+1)
	args := make([]interface{}, 0, len(updates)+2)

	for column, value := range updates {
		if !updatableColumns[column] {
			return fmt.Errorf("updating carnival %d: unknown column %q", id, column)
		}
		assignments = append(assignments, column+" = ?")
		args = append(args, encodeValue(column, value))
	}

	assignments = append(assignments, "updated_at = ?")
	args = append(args, encodeTime(time.Now().UTC()))
	args = append(args, id)

	query := "UPDATE carnivals SET " + strings.Join(assignments, ", ") + " WHERE id = ?"
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("updating carnival %d: %w", id, err)
	}
	return nil
}

// DeactivatePastCarnivals flags carnivals dated before today as inactive.
// Both manual and pipeline rows are covered. Returns the number of rows
// deactivated.
func (s *Store) DeactivatePastCarnivals(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE carnivals SET active = 0, updated_at = ? WHERE date < ? AND active = 1",
		encodeTime(now.UTC()),
		encodeDate(now),
	)
	if err != nil {
		return 0, fmt.Errorf("deactivating past carnivals: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deactivated carnivals: %w", err)
	}
	return count, nil
}

// ListOptions narrows ListCarnivals output.
type ListOptions struct {
	State        string // full state name; empty means all states
	UpcomingOnly bool
	ActiveOnly   bool
	Limit        int
}

// ListCarnivals returns carnivals ordered by date ascending.
func (s *Store) ListCarnivals(ctx context.Context, opts ListOptions) ([]*Carnival, error) {
	clauses := []string{"1=1"}
	args := make([]interface{}, 0, 3)

	if opts.State != "" {
		clauses = append(clauses, "state = ?")
		args = append(args, opts.State)
	}
	if opts.UpcomingOnly {
		clauses = append(clauses, "date >= ?")
		args = append(args, encodeDate(time.Now()))
	}
	if opts.ActiveOnly {
		clauses = append(clauses, "active = 1")
	}

	query := fmt.Sprintf("SELECT %s FROM carnivals WHERE %s ORDER BY date, id",
		carnivalColumns, strings.Join(clauses, " AND "))
	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing carnivals: %w", err)
	}
	defer rows.Close()

	carnivals := make([]*Carnival, 0)
	for rows.Next() {
		carnival, err := scanCarnival(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning carnival row: %w", err)
		}
		carnivals = append(carnivals, carnival)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating carnival rows: %w", err)
	}
	return carnivals, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCarnival(row rowScanner) (*Carnival, error) {
	var (
		c                   Carnival
		dateText            string
		latitude, longitude sql.NullFloat64
		deadline, lastSync  sql.NullString
		regOpen, manual     int
		active              int
		createdAt, updated  string
	)

	err := row.Scan(
		&c.ID, &c.Title, &c.MySidelineTitle, &dateText, &c.State, &c.VenueName, &c.Address,
		&latitude, &longitude, &c.Suburb, &c.Postcode, &c.Country,
		&c.OrganiserName, &c.OrganiserEmail, &c.OrganiserPhone,
		&c.RegistrationLink, &regOpen, &deadline,
		&manual, &lastSync, &active, &createdAt, &updated,
	)
	if err != nil {
		return nil, err
	}

	if c.Date, err = decodeDate(dateText); err != nil {
		return nil, err
	}
	if latitude.Valid {
		c.Latitude = &latitude.Float64
	}
	if longitude.Valid {
		c.Longitude = &longitude.Float64
	}
	if deadline.Valid {
		t, err := decodeDate(deadline.String)
		if err != nil {
			return nil, err
		}
		c.RegistrationDeadline = &t
	}
	if lastSync.Valid {
		t, err := decodeTime(lastSync.String)
		if err != nil {
			return nil, err
		}
		c.LastSyncAt = &t
	}
	c.RegistrationOpen = regOpen != 0
	c.ManuallyEntered = manual != 0
	c.Active = active != 0
	if c.CreatedAt, err = decodeTime(createdAt); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = decodeTime(updated); err != nil {
		return nil, err
	}

	return &c, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// encodeValue converts an update value to its column encoding. time.Time
// values go to YYYY-MM-DD for date columns and RFC3339Nano otherwise; bools
// become integers.
func encodeValue(column string, value interface{}) interface{} {
	switch v := value.(type) {
	case time.Time:
		if column == "date" || column == "registration_deadline" {
			return encodeDate(v)
		}
		return encodeTime(v)
	case bool:
		return boolToInt(v)
	default:
		return v
	}
}
