// Package store persists carnivals and sync runs in SQLite.
//
// The store backs the two collaborator contracts the pipeline relies on:
// a carnival store with equality-filter lookup, create, partial update, and
// a past-carnival hygiene pass; and an append-only sync-run journal where
// each pipeline execution records exactly one row.
//
// Two schema-level guarantees matter to the pipeline: every non-manual
// carnival carries a non-empty mysideline_title (CHECK constraint), and that
// title is unique among non-manual rows (partial unique index). Calendar
// dates persist as YYYY-MM-DD text; timestamps as RFC3339Nano UTC.
package store
