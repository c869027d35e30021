package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"splicer/internal/render"
)

// Store persists render runs backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const runColumns = "id, output_path, profile, state, error_kind, error_message, groups_count, segments_count, duration_ms, started_at, finished_at"

// ErrNotFound is returned by Get for unknown run IDs.
var ErrNotFound = errors.New("render run not found")

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := range busyRetryAttempts {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}

// Open initializes or connects to the history database at path.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("history database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Begin records a run entering the rendering state.
func (s *Store) Begin(ctx context.Context, run render.Run) error {
	return s.upsert(ctx, run)
}

// Finish records a run's outcome, inserting it when Begin never ran.
func (s *Store) Finish(ctx context.Context, run render.Run) error {
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now()
	}
	return s.upsert(ctx, run)
}

func (s *Store) upsert(ctx context.Context, run render.Run) error {
	if strings.TrimSpace(run.ID) == "" {
		return errors.New("render run id is required")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	_, err := s.execWithRetry(ctx, `INSERT INTO render_runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			output_path = excluded.output_path,
			profile = excluded.profile,
			state = excluded.state,
			error_kind = excluded.error_kind,
			error_message = excluded.error_message,
			groups_count = excluded.groups_count,
			segments_count = excluded.segments_count,
			duration_ms = excluded.duration_ms,
			finished_at = excluded.finished_at`,
		run.ID,
		run.OutputPath,
		run.Profile,
		run.State.String(),
		nullableString(run.ErrorKind),
		nullableString(run.Error),
		run.Groups,
		run.Segments,
		run.Duration.Milliseconds(),
		formatTime(run.StartedAt),
		nullableTime(run.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("record render run %s: %w", run.ID, err)
	}
	return nil
}

// Get returns a run by ID.
func (s *Store) Get(ctx context.Context, id string) (render.Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM render_runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return render.Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return run, err
}

// List returns the most recent runs, newest first. limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]render.Run, error) {
	query := `SELECT ` + runColumns + ` FROM render_runs ORDER BY started_at DESC, id`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list render runs: %w", err)
	}
	defer rows.Close()

	var runs []render.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Stats returns a count of runs grouped by state.
func (s *Store) Stats(ctx context.Context) (map[render.State]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT state, COUNT(1) FROM render_runs GROUP BY state`)
	if err != nil {
		return nil, fmt.Errorf("history stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[render.State]int)
	for rows.Next() {
		var raw string
		var count int
		if err := rows.Scan(&raw, &count); err != nil {
			return nil, err
		}
		state, err := render.ParseState(raw)
		if err != nil {
			return nil, err
		}
		stats[state] = count
	}
	return stats, rows.Err()
}

// Prune deletes finished runs that started before cutoff and reports how many
// were removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.execWithRetry(ctx,
		`DELETE FROM render_runs WHERE started_at < ? AND state IN (?, ?)`,
		formatTime(cutoff), render.StateCompleted.String(), render.StateFailed.String(),
	)
	if err != nil {
		return 0, fmt.Errorf("prune render runs: %w", err)
	}
	return res.RowsAffected()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (render.Run, error) {
	var (
		run         render.Run
		stateRaw    string
		errorKind   sql.NullString
		errorMsg    sql.NullString
		durationMS  int64
		startedRaw  string
		finishedRaw sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&run.OutputPath,
		&run.Profile,
		&stateRaw,
		&errorKind,
		&errorMsg,
		&run.Groups,
		&run.Segments,
		&durationMS,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return render.Run{}, err
	}
	state, err := render.ParseState(stateRaw)
	if err != nil {
		return render.Run{}, err
	}
	run.State = state
	run.ErrorKind = errorKind.String
	run.Error = errorMsg.String
	run.Duration = time.Duration(durationMS) * time.Millisecond
	run.StartedAt = parseTime(startedRaw)
	if finishedRaw.Valid {
		run.FinishedAt = parseTime(finishedRaw.String)
	}
	return run, nil
}

func nullableString(value string) sql.NullString {
	value = strings.TrimSpace(value)
	return sql.NullString{String: value, Valid: value != ""}
}

func nullableTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(t), Valid: true}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

var _ render.Recorder = (*Store)(nil)
