package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"spoolcheck/internal/checks"
	"spoolcheck/internal/config"
)

// DefaultLimit is used by Recent when the caller passes a non-positive limit.
const DefaultLimit = 20

// Store manages session history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database under the state dir.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.HistoryPath())
}

// OpenPath opens the database at path, creating the schema on first use.
func OpenPath(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
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

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Record stores a finished session. Recording the same session ID twice
// replaces the earlier row.
func (s *Store) Record(ctx context.Context, filename string, outcome checks.SessionOutcome) error {
	if strings.TrimSpace(outcome.SessionID) == "" {
		return fmt.Errorf("record session: missing session id")
	}
	messages, err := json.Marshal(nonNilStrings(outcome.Messages()))
	if err != nil {
		return fmt.Errorf("marshal messages: %w", err)
	}
	results := outcome.Results
	if results == nil {
		results = []checks.CheckResult{}
	}
	resultsJSON, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}

	_, err = s.db.ExecContext(
		ctx,
		`INSERT OR REPLACE INTO sessions (
            session_id, filename, action, failure, messages_json, results_json,
            started_at_ms, finished_at_ms
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		outcome.SessionID,
		nullableString(filename),
		string(outcome.Action),
		nullableString(outcome.Failure),
		string(messages),
		string(resultsJSON),
		outcome.StartedAt.UnixMilli(),
		outcome.FinishedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// Recent returns up to limit sessions, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, session_id, filename, action, failure, messages_json, results_json,
            started_at_ms, finished_at_ms
        FROM sessions ORDER BY finished_at_ms DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Prune deletes sessions that finished before cutoff and reports how many
// rows were removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE finished_at_ms < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("prune sessions: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune rows affected: %w", err)
	}
	return removed, nil
}

// Count returns the number of stored sessions.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM sessions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return count, nil
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var (
		entry        Entry
		filename     sql.NullString
		failure      sql.NullString
		action       string
		messagesJSON string
		resultsJSON  string
		startedMS    int64
		finishedMS   int64
	)
	if err := rows.Scan(&entry.ID, &entry.SessionID, &filename, &action, &failure,
		&messagesJSON, &resultsJSON, &startedMS, &finishedMS); err != nil {
		return Entry{}, fmt.Errorf("scan session: %w", err)
	}
	entry.Filename = filename.String
	entry.Failure = failure.String
	entry.Action = checks.Action(action)
	entry.StartedAt = time.UnixMilli(startedMS).UTC()
	entry.FinishedAt = time.UnixMilli(finishedMS).UTC()
	if err := json.Unmarshal([]byte(messagesJSON), &entry.Messages); err != nil {
		return Entry{}, fmt.Errorf("decode messages for %s: %w", entry.SessionID, err)
	}
	if err := json.Unmarshal([]byte(resultsJSON), &entry.Results); err != nil {
		return Entry{}, fmt.Errorf("decode results for %s: %w", entry.SessionID, err)
	}
	return entry, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
