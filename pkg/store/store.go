// Package store persists review decisions and resume progress in SQLite.
//
// The commit engine itself never touches storage; it receives decisions as
// an ordered list and talks back through a narrow interface. This package is
// the production implementation of that collaborator.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"framekeep/pkg/decision"
)

// ErrNoProgress indicates no progress record exists for a folder.
var ErrNoProgress = errors.New("no progress recorded for folder")

// timeLayout is fixed-width so stored timestamps order correctly under the
// lexicographic ORDER BY in Decisions.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Progress is the resume anchor for a folder: the last classified file
// (under its committed name and its pre-commit name) and how many keeps
// have been confirmed.
type Progress struct {
	AnchorName     string
	AnchorOriginal string
	KeepCount      int
	UpdatedAt      time.Time
}

// Store manages decision and progress persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the database at path and applies the
// schema. Parent directories are created as needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure database directory: %w", err)
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
	if err := store.applySchema(context.Background()); err != nil {
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

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) applySchema(ctx context.Context) error {
	schema := `
CREATE TABLE IF NOT EXISTS decisions (
    folder     TEXT NOT NULL,
    filename   TEXT NOT NULL,
    decision   TEXT NOT NULL,
    decided_at TEXT NOT NULL,
    PRIMARY KEY (folder, filename)
);
CREATE INDEX IF NOT EXISTS idx_decisions_folder ON decisions(folder);

CREATE TABLE IF NOT EXISTS progress (
    folder          TEXT PRIMARY KEY,
    anchor_name     TEXT NOT NULL DEFAULT '',
    anchor_original TEXT NOT NULL DEFAULT '',
    keep_count      INTEGER NOT NULL DEFAULT 0,
    updated_at      TEXT NOT NULL
);`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	return nil
}

// RecordDecision stores or replaces the decision for a file. Recording
// decision.Cleared removes any standing record.
func (s *Store) RecordDecision(ctx context.Context, folder, filename string, d decision.Decision) error {
	if d == decision.Cleared {
		_, err := s.db.ExecContext(ctx,
			`DELETE FROM decisions WHERE folder = ? AND filename = ?`, folder, filename)
		if err != nil {
			return fmt.Errorf("clear decision: %w", err)
		}
		return nil
	}

	now := time.Now().UTC().Format(timeLayout)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO decisions (folder, filename, decision, decided_at)
         VALUES (?, ?, ?, ?)
         ON CONFLICT(folder, filename)
         DO UPDATE SET decision = excluded.decision, decided_at = excluded.decided_at`,
		folder, filename, d.String(), now)
	if err != nil {
		return fmt.Errorf("record decision: %w", err)
	}

	return nil
}

// Decisions returns all standing decisions for a folder, ordered by
// decision time and then filename. This ordering drives counter assignment
// for decided keeps.
func (s *Store) Decisions(ctx context.Context, folder string) ([]decision.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT filename, decision, decided_at FROM decisions
         WHERE folder = ? ORDER BY decided_at, filename`, folder)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer rows.Close()

	var records []decision.Record
	for rows.Next() {
		var filename, decided, decidedAt string
		if err := rows.Scan(&filename, &decided, &decidedAt); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}

		d, err := decision.Parse(decided)
		if err != nil {
			return nil, fmt.Errorf("decision for %s: %w", filename, err)
		}

		at, err := time.Parse(timeLayout, decidedAt)
		if err != nil {
			return nil, fmt.Errorf("decided_at for %s: %w", filename, err)
		}

		records = append(records, decision.Record{Filename: filename, Decision: d, DecidedAt: at})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate decisions: %w", err)
	}

	return records, nil
}

// ClearDecisions removes every decision for a folder. Called only after a
// fully successful commit.
func (s *Store) ClearDecisions(ctx context.Context, folder string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM decisions WHERE folder = ?`, folder); err != nil {
		return fmt.Errorf("clear decisions: %w", err)
	}

	return nil
}

// Progress returns the resume record for a folder, or ErrNoProgress.
func (s *Store) Progress(ctx context.Context, folder string) (Progress, error) {
	var p Progress
	var updatedAt string

	err := s.db.QueryRowContext(ctx,
		`SELECT anchor_name, anchor_original, keep_count, updated_at
         FROM progress WHERE folder = ?`, folder).
		Scan(&p.AnchorName, &p.AnchorOriginal, &p.KeepCount, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Progress{}, fmt.Errorf("%w: %s", ErrNoProgress, folder)
	}
	if err != nil {
		return Progress{}, fmt.Errorf("query progress: %w", err)
	}

	if at, parseErr := time.Parse(timeLayout, updatedAt); parseErr == nil {
		p.UpdatedAt = at
	}

	return p, nil
}

// SaveProgress stores or replaces the resume record for a folder.
func (s *Store) SaveProgress(ctx context.Context, folder string, p Progress) error {
	now := time.Now().UTC().Format(timeLayout)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO progress (folder, anchor_name, anchor_original, keep_count, updated_at)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(folder)
         DO UPDATE SET anchor_name = excluded.anchor_name,
                       anchor_original = excluded.anchor_original,
                       keep_count = excluded.keep_count,
                       updated_at = excluded.updated_at`,
		folder, p.AnchorName, p.AnchorOriginal, p.KeepCount, now)
	if err != nil {
		return fmt.Errorf("save progress: %w", err)
	}

	return nil
}

// ClearProgress removes the resume record for a folder.
func (s *Store) ClearProgress(ctx context.Context, folder string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM progress WHERE folder = ?`, folder); err != nil {
		return fmt.Errorf("clear progress: %w", err)
	}

	return nil
}
