// Package sync orchestrates the ingestion pipeline: it runs the hygiene
// pass, scrapes MySideline, reconciles the extracted events into the
// carnival store, and journals every run.
//
// At most one sync runs at a time. A second trigger while a run is in
// flight returns immediately with a skipped result rather than queueing.
// Scheduling is a daily cron trigger plus an initial-run gate that fires a
// catch-up sync on startup when the store has not been synced in the last
// day.
package sync
