package sync

import (
	"context"
	"errors"
	"fmt"
	stdsync "sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/oldmanfooty/carnival-sync/internal/config"
	"github.com/oldmanfooty/carnival-sync/internal/event"
	"github.com/oldmanfooty/carnival-sync/internal/logger"
	"github.com/oldmanfooty/carnival-sync/internal/reconcile"
	"github.com/oldmanfooty/carnival-sync/internal/store"
)

// initialSyncWindow is how stale the store may be before startup triggers a
// catch-up run.
const initialSyncWindow = 24 * time.Hour

// readinessInterval spaces the store readiness probes at startup; the
// retry count comes from configuration.
const readinessInterval = 3 * time.Second

// EventScraper produces the extracted events for one run.
type EventScraper interface {
	ScrapeEvents(ctx context.Context) ([]*event.Event, error)
}

// SyncStore is the slice of the store the orchestrator needs.
type SyncStore interface {
	Ping(ctx context.Context) error
	FindLastSynced(ctx context.Context) (*store.Carnival, error)
	DeactivatePastCarnivals(ctx context.Context, now time.Time) (int64, error)
	StartRun(ctx context.Context, runType string) (*store.SyncRun, error)
	CompleteRun(ctx context.Context, id int64, status store.RunStatus, counts store.RunCounts, errMsg string, metadata map[string]interface{}) error
	LatestRun(ctx context.Context) (*store.SyncRun, error)
}

// Applier reconciles one extracted event into the store.
type Applier interface {
	Apply(ctx context.Context, evt *event.Event, lastSync time.Time) (reconcile.Action, error)
}

// Result summarizes one sync invocation.
type Result struct {
	RunID       string `json:"run_id,omitempty"`
	Skipped     bool   `json:"skipped,omitempty"` // another run was in flight, or sync is disabled
	Processed   int    `json:"processed"`
	Created     int    `json:"created"`
	Updated     int    `json:"updated"`
	Deactivated int64  `json:"deactivated"`
	Errors      int    `json:"errors"`
}

// Status is a point-in-time snapshot of the orchestrator.
type Status struct {
	Enabled       bool
	Running       bool
	LastRun       *store.SyncRun
	Subcomponents map[string]bool
}

// Service coordinates scrape, reconcile, hygiene, and journalling for a run.
type Service struct {
	cfg           *config.Config
	scraper       EventScraper
	store         SyncStore
	reconciler    Applier
	now           func() time.Time
	probeInterval time.Duration

	mu      stdsync.Mutex
	running bool
}

// NewService wires an orchestrator over the given scraper and store.
func NewService(cfg *config.Config, scraper EventScraper, st SyncStore, reconciler Applier) *Service {
	return &Service{
		cfg:           cfg,
		scraper:       scraper,
		store:         st,
		reconciler:    reconciler,
		now:           time.Now,
		probeInterval: readinessInterval,
	}
}

// Sync executes one full pipeline run. With sync disabled, or while another
// run is in flight, it returns a skipped result immediately.
func (s *Service) Sync(ctx context.Context, runType string) (*Result, error) {
	if !s.cfg.SyncEnabled {
		logger.Info("Sync disabled, skipping run", logger.Fields{"type": runType})
		return &Result{Skipped: true}, nil
	}

	if !s.tryAcquire() {
		logger.Info("Sync already in progress, skipping run", logger.Fields{"type": runType})
		return &Result{Skipped: true}, nil
	}
	defer s.release()

	run, err := s.store.StartRun(ctx, runType)
	if err != nil {
		return nil, fmt.Errorf("starting sync run: %w", err)
	}

	logger.Info("Sync run started", logger.Fields{
		"run_id": run.RunID,
		"type":   runType,
	})

	result, runErr := s.execute(ctx, run)
	result.RunID = run.RunID

	counts := store.RunCounts{
		Processed: result.Processed,
		Created:   result.Created,
		Updated:   result.Updated,
	}
	metadata := map[string]interface{}{
		"deactivated": result.Deactivated,
		"errors":      result.Errors,
	}

	status := store.RunOK
	errMsg := ""
	if runErr != nil {
		status = store.RunFailed
		errMsg = runErr.Error()
	}
	if err := s.store.CompleteRun(ctx, run.ID, status, counts, errMsg, metadata); err != nil {
		logger.Error("Failed to journal sync run completion", logger.Fields{
			"run_id": run.RunID,
		}, err)
	}

	if runErr != nil {
		logger.IncrCounter("sync.runs.failed")
		return result, fmt.Errorf("sync run %s: %w", run.RunID, runErr)
	}

	logger.IncrCounter("sync.runs.ok")
	logger.Info("Sync run complete", logger.Fields{
		"run_id":      run.RunID,
		"processed":   result.Processed,
		"created":     result.Created,
		"updated":     result.Updated,
		"deactivated": result.Deactivated,
		"errors":      result.Errors,
	})
	return result, nil
}

// execute performs the body of a run: hygiene, scrape, reconcile. A panic
// anywhere inside is converted to a run failure so the journal and the
// single-flight guard are both released.
func (s *Service) execute(ctx context.Context, run *store.SyncRun) (result *Result, err error) {
	result = &Result{}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sync panicked: %v", r)
		}
	}()

	started := time.Now()
	defer func() { logger.RecordTiming("sync.run", time.Since(started)) }()

	deactivated, err := s.store.DeactivatePastCarnivals(ctx, s.now())
	if err != nil {
		return result, fmt.Errorf("deactivating past carnivals: %w", err)
	}
	result.Deactivated = deactivated
	if deactivated > 0 {
		logger.Info("Deactivated past carnivals", logger.Fields{"count": deactivated})
	}

	events, err := s.scraper.ScrapeEvents(ctx)
	if err != nil {
		return result, fmt.Errorf("scraping events: %w", err)
	}

	lastSync := s.now().UTC()
	for _, evt := range events {
		if !evt.Valid() {
			logger.Warn("Dropping invalid extracted event", logger.Fields{
				"title": evt.RawTitle,
			})
			result.Errors++
			continue
		}
		result.Processed++

		action, err := s.reconciler.Apply(ctx, evt, lastSync)
		if err != nil {
			// One bad event must not sink the run.
			logger.Error("Failed to reconcile event", logger.Fields{
				"run_id": run.RunID,
				"title":  evt.Title,
			}, err)
			result.Errors++
			continue
		}
		switch action {
		case reconcile.ActionCreated:
			result.Created++
		case reconcile.ActionUpdated:
			result.Updated++
		}
	}

	return result, nil
}

// CheckAndRunInitialSync probes store readiness and fires a catch-up run
// when the store has never been synced, or not within the last day. It is
// called once at daemon startup.
func (s *Service) CheckAndRunInitialSync(ctx context.Context) error {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(s.probeInterval), uint64(s.cfg.RetryAttempts)),
		ctx,
	)
	if err := backoff.Retry(func() error { return s.store.Ping(ctx) }, policy); err != nil {
		return fmt.Errorf("waiting for store readiness: %w", err)
	}

	last, err := s.store.FindLastSynced(ctx)
	if err != nil {
		return fmt.Errorf("checking last sync: %w", err)
	}
	if last != nil && last.LastSyncAt != nil && s.now().Sub(*last.LastSyncAt) < initialSyncWindow {
		logger.Info("Store recently synced, skipping initial run", logger.Fields{
			"last_sync_at": last.LastSyncAt.Format(time.RFC3339),
		})
		return nil
	}

	logger.Info("Store stale or empty, running initial sync", nil)
	if _, err := s.Sync(ctx, store.RunTypeInitial); err != nil {
		return fmt.Errorf("initial sync: %w", err)
	}
	return nil
}

// Status reports whether a run is in flight and what the last run did.
func (s *Service) Status(ctx context.Context) (*Status, error) {
	st := &Status{
		Enabled: s.cfg.SyncEnabled,
		Running: s.isRunning(),
		Subcomponents: map[string]bool{
			"sync":     s.cfg.SyncEnabled,
			"scraping": s.cfg.ScrapingEnabled,
			"mock":     s.cfg.UseMock,
		},
	}

	last, err := s.store.LatestRun(ctx)
	if err != nil && !errors.Is(err, store.ErrNoRuns) {
		return nil, fmt.Errorf("reading latest sync run: %w", err)
	}
	st.LastRun = last
	return st, nil
}

func (s *Service) tryAcquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	return true
}

func (s *Service) release() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

func (s *Service) isRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
