// Package sqlite provides SQLite-backed persistence for pipeline run
// history. The schema is managed through embedded migrations applied
// on open.
package sqlite
