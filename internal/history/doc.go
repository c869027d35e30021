// Package history journals render runs in SQLite.
//
// Store implements render.Recorder: Begin records a run as it starts and
// Finish upserts its outcome, so runs that fail validation before starting
// still leave a row. The schema is embedded and versioned; writes retry when
// SQLite reports the database as busy.
package history
