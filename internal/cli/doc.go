// Package cli implements the carnival-sync command line interface: one-off
// syncs, the scheduling daemon, pipeline status, and carnival listing and
// calendar export.
package cli
