// Package archive persists analysis reports in a SQLite file so runs can be
// listed and compared later.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// timeLayout is fixed-width so that text order is time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned when no run has the requested ID.
var ErrNotFound = errors.New("run not found")

// Run is one archived report.
type Run struct {
	ID        string
	Kind      string // "spectrum", "search", "orbits", "walk" or "all"
	CreatedAt time.Time
	Payload   json.RawMessage
}

// Decode unmarshals the payload into v.
func (r Run) Decode(v any) error {
	if err := json.Unmarshal(r.Payload, v); err != nil {
		return fmt.Errorf("decode run %s: %w", r.ID, err)
	}
	return nil
}

// Store is a SQLite-backed report archive.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates or opens the archive at path. ":memory:" gives a private
// in-memory archive.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	// One connection keeps ":memory:" a single database and serialises writes.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate archive: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		created_at TEXT NOT NULL,
		payload TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_kind ON runs(kind);
	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores report under a fresh run ID.
func (s *Store) Save(ctx context.Context, kind string, report any) (Run, error) {
	payload, err := json.Marshal(report)
	if err != nil {
		return Run{}, fmt.Errorf("encode %s report: %w", kind, err)
	}
	run := Run{
		ID:        uuid.NewString(),
		Kind:      kind,
		CreatedAt: s.now().UTC(),
		Payload:   payload,
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, kind, created_at, payload) VALUES (?, ?, ?, ?)`,
		run.ID, run.Kind, run.CreatedAt.Format(timeLayout), string(payload))
	if err != nil {
		return Run{}, fmt.Errorf("save %s run: %w", kind, err)
	}
	return run, nil
}

// Get loads one run.
func (s *Store) Get(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, kind, created_at, payload FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return run, err
}

// List returns runs newest first. An empty kind matches every kind; a
// non-positive limit returns everything.
func (s *Store) List(ctx context.Context, kind string, limit int) ([]Run, error) {
	query := `SELECT id, kind, created_at, payload FROM runs`
	var args []any
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, kind)
	}
	query += ` ORDER BY created_at DESC, rowid DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		run     Run
		created string
		payload string
	)
	if err := sc.Scan(&run.ID, &run.Kind, &created, &payload); err != nil {
		return Run{}, err
	}
	t, err := time.Parse(timeLayout, created)
	if err != nil {
		return Run{}, fmt.Errorf("run %s: bad timestamp %q: %w", run.ID, created, err)
	}
	run.CreatedAt = t
	run.Payload = json.RawMessage(payload)
	return run, nil
}
