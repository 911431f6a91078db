package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StartRun appends a sync run in the started state and returns it.
func (s *Store) StartRun(ctx context.Context, runType string) (*SyncRun, error) {
	now := time.Now().UTC()
	runID := uuid.NewString()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sync_runs (run_id, type, status, started_at) VALUES (?, ?, ?, ?)`,
		runID, runType, string(RunStarted), encodeTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting sync run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading sync run id: %w", err)
	}

	return &SyncRun{
		ID:        id,
		RunID:     runID,
		Type:      runType,
		Status:    RunStarted,
		StartedAt: now,
	}, nil
}

// CompleteRun transitions a run from started to ok or failed. The transition
// happens at most once: a completed run is never touched again.
func (s *Store) CompleteRun(ctx context.Context, id int64, status RunStatus, counts RunCounts, errMsg string, metadata map[string]interface{}) error {
	if status != RunOK && status != RunFailed {
		return fmt.Errorf("completing sync run %d: invalid terminal status %q", id, status)
	}

	var metadataJSON interface{}
	if len(metadata) > 0 {
		data, err := json.Marshal(metadata)
		if err != nil {
			return fmt.Errorf("encoding sync run metadata: %w", err)
		}
		metadataJSON = string(data)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE sync_runs
		 SET status = ?, completed_at = ?, events_processed = ?, events_created = ?,
		     events_updated = ?, error = ?, metadata = ?
		 WHERE id = ? AND status = ?`,
		string(status),
		encodeTime(time.Now().UTC()),
		counts.Processed,
		counts.Created,
		counts.Updated,
		nullableString(errMsg),
		metadataJSON,
		id,
		string(RunStarted),
	)
	if err != nil {
		return fmt.Errorf("completing sync run %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("counting completed sync runs: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("completing sync run %d: run is not in started state", id)
	}
	return nil
}

// LatestRuns returns the most recent sync runs, newest first.
func (s *Store) LatestRuns(ctx context.Context, limit int) ([]*SyncRun, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, type, status, started_at, completed_at,
		        events_processed, events_created, events_updated, error, metadata
		 FROM sync_runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing sync runs: %w", err)
	}
	defer rows.Close()

	runs := make([]*SyncRun, 0, limit)
	for rows.Next() {
		run, err := scanSyncRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning sync run row: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sync run rows: %w", err)
	}
	return runs, nil
}

// CountRunning returns the number of runs still in the started state.
func (s *Store) CountRunning(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sync_runs WHERE status = ?", string(RunStarted),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting running sync runs: %w", err)
	}
	return count, nil
}

func scanSyncRun(row rowScanner) (*SyncRun, error) {
	var (
		run          SyncRun
		status       string
		startedAt    string
		completedAt  sql.NullString
		errMsg       sql.NullString
		metadataText sql.NullString
	)

	err := row.Scan(
		&run.ID, &run.RunID, &run.Type, &status, &startedAt, &completedAt,
		&run.EventsProcessed, &run.EventsCreated, &run.EventsUpdated, &errMsg, &metadataText,
	)
	if err != nil {
		return nil, err
	}

	run.Status = RunStatus(status)
	if run.StartedAt, err = decodeTime(startedAt); err != nil {
		return nil, err
	}
	if completedAt.Valid {
		t, err := decodeTime(completedAt.String)
		if err != nil {
			return nil, err
		}
		run.CompletedAt = &t
	}
	if errMsg.Valid {
		run.Error = errMsg.String
	}
	if metadataText.Valid && metadataText.String != "" {
		if err := json.Unmarshal([]byte(metadataText.String), &run.Metadata); err != nil {
			return nil, fmt.Errorf("decoding sync run metadata: %w", err)
		}
	}

	return &run, nil
}

// ErrNoRuns is returned by LatestRun when the journal is empty.
var ErrNoRuns = errors.New("no sync runs recorded")

// LatestRun returns the most recent sync run.
func (s *Store) LatestRun(ctx context.Context) (*SyncRun, error) {
	runs, err := s.LatestRuns(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, ErrNoRuns
	}
	return runs[0], nil
}
