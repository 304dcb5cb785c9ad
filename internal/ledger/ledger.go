// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger records stage runs in a SQLite database so the status of
// every person across the three stages can be inspected after the fact.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/pdiddy/profile-engine/pkg/types"
)

// Recorder is implemented by anything that can track stage runs. Stages
// accept a Recorder so tests and callers without a database can pass Nop.
type Recorder interface {
	Begin(ctx context.Context, person string, stage types.Stage) (*types.StageRun, error)
	Finish(ctx context.Context, run *types.StageRun, status types.RunStatus, output, detail string) error
}

// Nop is a Recorder that records nothing.
type Nop struct{}

func (Nop) Begin(_ context.Context, person string, stage types.Stage) (*types.StageRun, error) {
	return &types.StageRun{Person: person, Stage: stage, Status: types.RunStarted, StartedAt: now()}, nil
}

func (Nop) Finish(_ context.Context, run *types.StageRun, status types.RunStatus, output, detail string) error {
	run.Status, run.OutputPath, run.Detail, run.FinishedAt = status, output, detail, now()
	return nil
}

func now() time.Time { return time.Now().UTC() }

// Ledger is the SQLite-backed Recorder.
type Ledger struct {
	db *sql.DB
}

var _ Recorder = (*Ledger)(nil)

// Open opens or creates the ledger database at path, creating the parent
// directory and schema as needed.
func Open(path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating ledger directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}

	l := &Ledger{db: db}
	if err := l.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return l, nil
}

// Close releases the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			person TEXT NOT NULL,
			stage TEXT NOT NULL,
			status TEXT NOT NULL,
			output_path TEXT,
			detail TEXT,
			started_at TEXT NOT NULL,
			finished_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_person_stage ON runs(person, stage)`,
	}
	for _, stmt := range statements {
		if _, err := l.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Begin inserts a started run for person and stage.
func (l *Ledger) Begin(ctx context.Context, person string, stage types.Stage) (*types.StageRun, error) {
	run := &types.StageRun{
		ID:        uuid.NewString(),
		Person:    person,
		Stage:     stage,
		Status:    types.RunStarted,
		StartedAt: now(),
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO runs (id, person, stage, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Person, string(run.Stage), string(run.Status), run.StartedAt.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("recording run start: %w", err)
	}
	return run, nil
}

// Finish marks run as completed with status.
func (l *Ledger) Finish(ctx context.Context, run *types.StageRun, status types.RunStatus, output, detail string) error {
	run.Status = status
	run.OutputPath = output
	run.Detail = detail
	run.FinishedAt = now()

	res, err := l.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, output_path = ?, detail = ?, finished_at = ? WHERE id = ?`,
		string(run.Status), run.OutputPath, run.Detail, run.FinishedAt.Format(time.RFC3339Nano), run.ID)
	if err != nil {
		return fmt.Errorf("recording run finish: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s not found", run.ID)
	}
	return nil
}

// Latest returns the most recent run for every person and stage, ordered by
// person and then pipeline stage order.
func (l *Ledger) Latest(ctx context.Context) ([]types.StageRun, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT r.id, r.person, r.stage, r.status, r.output_path, r.detail, r.started_at, r.finished_at
		FROM runs r
		JOIN (SELECT person, stage, MAX(seq) AS seq FROM runs GROUP BY person, stage) last
		  ON r.seq = last.seq
		ORDER BY r.person,
		  CASE r.stage WHEN 'extract' THEN 0 WHEN 'process' THEN 1 WHEN 'portrait' THEN 2 ELSE 3 END`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []types.StageRun
	for rows.Next() {
		var (
			r              types.StageRun
			stage, status  string
			output, detail sql.NullString
			started        string
			finished       sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Person, &stage, &status, &output, &detail, &started, &finished); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.Stage = types.Stage(stage)
		r.Status = types.RunStatus(status)
		r.OutputPath = output.String
		r.Detail = detail.String
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		if finished.Valid {
			r.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished.String)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Start begins a run on rec. A ledger failure never fails the stage: it is
// logged and Start returns nil, which Complete ignores.
func Start(ctx context.Context, rec Recorder, person string, stage types.Stage, logger *zap.Logger) *types.StageRun {
	run, err := rec.Begin(ctx, person, stage)
	if err != nil {
		logger.Warn("ledger unavailable", zap.String("person", person), zap.String("stage", string(stage)), zap.Error(err))
		return nil
	}
	return run
}

// Complete finishes a run returned by Start.
func Complete(ctx context.Context, rec Recorder, run *types.StageRun, status types.RunStatus, output, detail string, logger *zap.Logger) {
	if run == nil {
		return
	}
	if err := rec.Finish(ctx, run, status, output, detail); err != nil {
		logger.Warn("recording run", zap.String("person", run.Person), zap.Error(err))
	}
}
