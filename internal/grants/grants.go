// Package grants persists the approval requests the console files, so
// operators can audit who asked for access to what, and why.
package grants

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"
)

// Grant is one recorded approval request.
type Grant struct {
	ID        int64
	Subject   string
	Approver  string
	Reason    string
	Keepalive bool
	CreatedAt time.Time
}

// Store is a SQLite-backed grant log.
type Store struct {
	db *sql.DB
}

// Open opens (and migrates) the grant log at path. Use ":memory:" for an
// ephemeral store.
func Open(ctx context.Context, path string) (*Store, error) {
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// WAL enables one writer + many readers; busy_timeout avoids
	// "database is locked" flakiness under concurrent handlers.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS grants (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		subject TEXT NOT NULL,
		approver TEXT NOT NULL,
		reason TEXT NOT NULL,
		keepalive INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record appends a grant and returns its id.
func (s *Store) Record(ctx context.Context, g Grant) (int64, error) {
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO grants (subject, approver, reason, keepalive, created_at) VALUES (?, ?, ?, ?, ?)`,
		g.Subject, g.Approver, g.Reason, boolToInt(g.Keepalive), g.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// BySubject returns the grants recorded for a subject, newest first.
func (s *Store) BySubject(ctx context.Context, subject string) ([]Grant, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, subject, approver, reason, keepalive, created_at
		 FROM grants WHERE subject = ? ORDER BY id DESC`, subject)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGrants(rows)
}

// Recent returns the most recent n grants across all subjects.
func (s *Store) Recent(ctx context.Context, n int) ([]Grant, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, subject, approver, reason, keepalive, created_at
		 FROM grants ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGrants(rows)
}

func scanGrants(rows *sql.Rows) ([]Grant, error) {
	var out []Grant
	for rows.Next() {
		var g Grant
		var keepalive int
		var created string
		if err := rows.Scan(&g.ID, &g.Subject, &g.Approver, &g.Reason, &keepalive, &created); err != nil {
			return nil, err
		}
		g.Keepalive = keepalive != 0
		if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
			g.CreatedAt = t
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
