// Package store persists analysis results to SQLite so that past runs
// can be listed and re-read without re-running the analysis.
//
// The schema is three tables: runs (settings snapshot, probabilities,
// timings, warnings), cut_sets (per-run minimal cut sets in rank order),
// and importance (per-run, per-event factors). The store is a write-once
// archive; runs are never updated in place.
package store
