/*
Package sqlite provides a SQLite-backed implementation of grid.SessionStore.

PURPOSE:
  Holds the tables of an upload while the user looks at them, edits
  costs and downloads them. By default the database lives in memory
  (":memory:"), so sessions die with the process.

KEY TABLES:
  sessions:    One row per upload (variant, file name, range, warnings)
  result_rows: The completed grid, one row per (session, date, sku)

INDEXES:
  - PRIMARY KEY(session_id, sale_date, sku): at most one row per grid cell
  - idx_sessions_expires_at: expiry purge

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. The pool is capped to one
  connection because each connection to ":memory:" is its own database.

USAGE:
  store, err := sqlite.New(":memory:")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - grid/store.go: Interface definition
  - grid/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/sales-grid/grid"
)

// timeLayout is fixed-width so that stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store implements grid.SessionStore using SQLite.
type Store struct {
	db  *sql.DB
	mu  sync.RWMutex
	now func() time.Time
}

var _ grid.SessionStore = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db, now: time.Now}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		variant TEXT NOT NULL,
		file_name TEXT,
		range_start TEXT NOT NULL,
		range_end TEXT NOT NULL,
		skus_json TEXT NOT NULL,
		warnings_json TEXT NOT NULL,
		edited BOOLEAN DEFAULT FALSE,
		created_at TEXT NOT NULL,
		expires_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_expires_at
		ON sessions(expires_at);

	-- One row per grid cell
	CREATE TABLE IF NOT EXISTS result_rows (
		session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		sale_date TEXT NOT NULL,
		sku TEXT NOT NULL,
		quantity TEXT NOT NULL,
		cost TEXT NOT NULL,
		filled BOOLEAN DEFAULT FALSE,
		PRIMARY KEY (session_id, sale_date, sku)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SESSION STORE (grid.SessionStore interface)
// =============================================================================

// SaveSession inserts or replaces a session and its result rows atomically.
func (s *Store) SaveSession(ctx context.Context, sess grid.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	skusJSON, err := json.Marshal(sess.SKUs)
	if err != nil {
		return fmt.Errorf("failed to encode skus: %w", err)
	}
	warningsJSON, err := json.Marshal(sess.Warnings)
	if err != nil {
		return fmt.Errorf("failed to encode warnings: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM result_rows WHERE session_id = ?", sess.ID); err != nil {
		return fmt.Errorf("failed to clear result rows: %w", err)
	}

	query := `
		INSERT INTO sessions
		(id, variant, file_name, range_start, range_end, skus_json, warnings_json, edited, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			variant = excluded.variant,
			file_name = excluded.file_name,
			range_start = excluded.range_start,
			range_end = excluded.range_end,
			skus_json = excluded.skus_json,
			warnings_json = excluded.warnings_json,
			edited = excluded.edited,
			expires_at = excluded.expires_at
	`
	_, err = tx.ExecContext(ctx, query,
		sess.ID,
		sess.Variant,
		nullString(sess.FileName),
		sess.Range.Start.String(),
		sess.Range.End.String(),
		string(skusJSON),
		string(warningsJSON),
		sess.Edited,
		sess.CreatedAt.UTC().Format(timeLayout),
		nullTime(sess.ExpiresAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO result_rows (session_id, sale_date, sku, quantity, cost, filled)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare result insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range sess.Result {
		if _, err := stmt.ExecContext(ctx,
			sess.ID, r.Date.String(), r.SKU, r.Quantity.String(), r.Cost.String(), r.Filled,
		); err != nil {
			return fmt.Errorf("failed to save result row %s/%s: %w", r.Date, r.SKU, err)
		}
	}

	return tx.Commit()
}

// GetSession retrieves a session with its result rows ordered by date, SKU.
func (s *Store) GetSession(ctx context.Context, id string) (*grid.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sess grid.Session
	var fileName, expiresAt sql.NullString
	var rangeStart, rangeEnd, skusJSON, warningsJSON, createdAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, variant, file_name, range_start, range_end, skus_json, warnings_json, edited, created_at, expires_at
		FROM sessions WHERE id = ?`,
		id,
	).Scan(&sess.ID, &sess.Variant, &fileName, &rangeStart, &rangeEnd, &skusJSON, &warningsJSON, &sess.Edited, &createdAt, &expiresAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, grid.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	sess.FileName = fileName.String
	if sess.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("corrupt created_at %q: %w", createdAt, err)
	}
	if expiresAt.Valid {
		if sess.ExpiresAt, err = time.Parse(timeLayout, expiresAt.String); err != nil {
			return nil, fmt.Errorf("corrupt expires_at %q: %w", expiresAt.String, err)
		}
	}
	if sess.Expired(s.now()) {
		return nil, grid.ErrSessionNotFound
	}

	if sess.Range.Start, err = grid.ParseDate(grid.DateLayout, rangeStart); err != nil {
		return nil, fmt.Errorf("corrupt range_start %q: %w", rangeStart, err)
	}
	if sess.Range.End, err = grid.ParseDate(grid.DateLayout, rangeEnd); err != nil {
		return nil, fmt.Errorf("corrupt range_end %q: %w", rangeEnd, err)
	}
	if err := json.Unmarshal([]byte(skusJSON), &sess.SKUs); err != nil {
		return nil, fmt.Errorf("corrupt skus_json: %w", err)
	}
	if err := json.Unmarshal([]byte(warningsJSON), &sess.Warnings); err != nil {
		return nil, fmt.Errorf("corrupt warnings_json: %w", err)
	}

	sess.Result, err = s.queryResultRows(ctx, id)
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *Store) queryResultRows(ctx context.Context, sessionID string) ([]grid.ResultRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sale_date, sku, quantity, cost, filled
		FROM result_rows WHERE session_id = ?
		ORDER BY sale_date, sku`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load result rows: %w", err)
	}
	defer rows.Close()

	var result []grid.ResultRow
	for rows.Next() {
		r, err := scanResultRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func scanResultRow(rows *sql.Rows) (grid.ResultRow, error) {
	var r grid.ResultRow
	var date, quantity, cost string
	if err := rows.Scan(&date, &r.SKU, &quantity, &cost, &r.Filled); err != nil {
		return r, err
	}

	var err error
	if r.Date, err = grid.ParseDate(grid.DateLayout, date); err != nil {
		return r, fmt.Errorf("corrupt sale_date %q: %w", date, err)
	}
	if r.Quantity, err = decimal.NewFromString(quantity); err != nil {
		return r, fmt.Errorf("corrupt quantity %q: %w", quantity, err)
	}
	if r.Cost, err = decimal.NewFromString(cost); err != nil {
		return r, fmt.Errorf("corrupt cost %q: %w", cost, err)
	}
	return r, nil
}

// DeleteSession removes a session and its rows.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
	return err
}

// PurgeExpired drops sessions whose expiry is at or before now.
func (s *Store) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM sessions WHERE expires_at IS NOT NULL AND expires_at <= ?",
		now.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// CountSessions returns how many sessions are stored, expired ones included.
func (s *Store) CountSessions(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sessions").Scan(&n)
	return n, err
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(timeLayout), Valid: true}
}
