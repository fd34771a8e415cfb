package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"codeberg.org/snonux/treetranslate/internal/batch"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	started_at  INTEGER NOT NULL,
	finished_at INTEGER NOT NULL,
	input_root  TEXT NOT NULL,
	output_root TEXT NOT NULL,
	language    TEXT NOT NULL,
	provider    TEXT NOT NULL,
	total       INTEGER NOT NULL,
	succeeded   INTEGER NOT NULL,
	failed      INTEGER NOT NULL,
	cancelled   INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS run_files (
	run_id   TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	rel_path TEXT NOT NULL,
	status   TEXT NOT NULL,
	attempts INTEGER NOT NULL,
	error    TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (run_id, position)
);`

// Meta describes the run context a Summary does not carry
type Meta struct {
	InputRoot  string
	OutputRoot string
	Language   string
	Provider   string
}

// Run is one recorded batch run
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Meta
	Total     int
	Succeeded int
	Failed    int
	Cancelled bool
}

// FileRecord is one file of a recorded run
type FileRecord struct {
	RelPath  string
	Status   string
	Attempts int
	Error    string
}

// Store persists run summaries
type Store struct {
	db *sql.DB
}

// DefaultPath returns ~/.local/state/treetranslate/history.db
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "treetranslate", "history.db")
}

// Open opens or creates the database at path
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// One connection keeps :memory: databases alive across calls
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores a finished run and its per-file outcomes
func (s *Store) Record(ctx context.Context, summary batch.Summary, meta Meta) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, finished_at, input_root, output_root, language, provider, total, succeeded, failed, cancelled)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		summary.RunID, summary.StartedAt.UnixMilli(), summary.FinishedAt.UnixMilli(),
		meta.InputRoot, meta.OutputRoot, meta.Language, meta.Provider,
		summary.TotalFiles, summary.Succeeded, summary.Failed, boolToInt(summary.Cancelled))
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_files (run_id, position, rel_path, status, attempts, error) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare file insert: %w", err)
	}
	defer stmt.Close()

	for i, o := range summary.Outcomes {
		errText := ""
		if o.Err != nil {
			errText = o.Err.Error()
		}
		if _, err := stmt.ExecContext(ctx, summary.RunID, i, filepath.ToSlash(o.Task.RelPath), o.Status.String(), o.Attempts, errText); err != nil {
			return fmt.Errorf("failed to record file %s: %w", o.Task.RelPath, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// List returns the most recent runs, newest first
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, input_root, output_root, language, provider, total, succeeded, failed, cancelled
		 FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started, finished int64
		var cancelled int
		if err := rows.Scan(&r.ID, &started, &finished, &r.InputRoot, &r.OutputRoot, &r.Language, &r.Provider,
			&r.Total, &r.Succeeded, &r.Failed, &cancelled); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.StartedAt = time.UnixMilli(started)
		r.FinishedAt = time.UnixMilli(finished)
		r.Cancelled = cancelled != 0
		runs = append(runs, r)
	}

	return runs, rows.Err()
}

// Files returns the per-file outcomes of a run in processing order
func (s *Store) Files(ctx context.Context, runID string) ([]FileRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT rel_path, status, attempts, error FROM run_files WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list run files: %w", err)
	}
	defer rows.Close()

	var files []FileRecord
	for rows.Next() {
		var f FileRecord
		if err := rows.Scan(&f.RelPath, &f.Status, &f.Attempts, &f.Error); err != nil {
			return nil, fmt.Errorf("failed to scan run file: %w", err)
		}
		files = append(files, f)
	}

	return files, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
