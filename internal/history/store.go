// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps a SQLite ledger of generation runs so that past
// outcomes can be listed with `vega history`.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/vega/pkg/types"
)

// DefaultListLimit is the number of runs List returns when limit <= 0.
const DefaultListLimit = 20

// timeLayout is fixed width so started_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrClosed is returned by operations on a closed Store.
var ErrClosed = errors.New("history store is closed")

// Run is one recorded generation run.
type Run struct {
	ID         string        `json:"id" yaml:"id"`
	Document   string        `json:"document" yaml:"document"`
	Provider   string        `json:"provider" yaml:"provider"`
	Model      string        `json:"model" yaml:"model"`
	Outcome    types.Outcome `json:"outcome" yaml:"outcome"`
	Attempts   int           `json:"attempts" yaml:"attempts"`
	Reason     string        `json:"reason,omitempty" yaml:"reason,omitempty"`
	OutputPath string        `json:"output_path,omitempty" yaml:"output_path,omitempty"`
	Suites     int           `json:"suites" yaml:"suites"`
	Cases      int           `json:"cases" yaml:"cases"`
	StartedAt  time.Time     `json:"started_at" yaml:"started_at"`
	Duration   time.Duration `json:"duration" yaml:"duration"`
}

// Store manages the run history database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the history database at path, creating the
// parent directory and schema if they do not exist.
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			document TEXT NOT NULL,
			provider TEXT NOT NULL,
			model TEXT,
			outcome TEXT NOT NULL,
			attempts INTEGER NOT NULL,
			reason TEXT,
			output_path TEXT,
			suites INTEGER,
			cases INTEGER,
			started_at TEXT NOT NULL,
			duration_ms INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record inserts run. An empty ID is replaced by a new UUID and a zero
// StartedAt by the current time; the stored run is returned.
func (s *Store) Record(ctx context.Context, run Run) (Run, error) {
	if s.db == nil {
		return run, ErrClosed
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	run.StartedAt = run.StartedAt.UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, document, provider, model, outcome, attempts, reason,
			output_path, suites, cases, started_at, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Document, run.Provider, run.Model, string(run.Outcome), run.Attempts,
		run.Reason, run.OutputPath, run.Suites, run.Cases,
		run.StartedAt.Format(timeLayout), run.Duration.Milliseconds(),
	)
	if err != nil {
		return run, fmt.Errorf("inserting run %s: %w", run.ID, err)
	}
	return run, nil
}

// List returns up to limit runs, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, document, provider, model, outcome, attempts, reason,
			output_path, suites, cases, started_at, duration_ms
		 FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r          Run
			outcome    string
			model      sql.NullString
			reason     sql.NullString
			outputPath sql.NullString
			suites     sql.NullInt64
			cases      sql.NullInt64
			startedAt  string
			durationMS sql.NullInt64
		)
		if err := rows.Scan(&r.ID, &r.Document, &r.Provider, &model, &outcome, &r.Attempts,
			&reason, &outputPath, &suites, &cases, &startedAt, &durationMS); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}

		r.Outcome = types.Outcome(outcome)
		r.Model = model.String
		r.Reason = reason.String
		r.OutputPath = outputPath.String
		r.Suites = int(suites.Int64)
		r.Cases = int(cases.Int64)
		r.Duration = time.Duration(durationMS.Int64) * time.Millisecond
		if t, err := time.Parse(timeLayout, startedAt); err == nil {
			r.StartedAt = t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
