//-------------------------------------------------------------------------
//
// pgEdge Business Finder
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const createRunsTableSQL = `
CREATE TABLE IF NOT EXISTS bizfinder_import_runs (
    run_id      UUID NOT NULL,
    step        TEXT NOT NULL,
    source      TEXT NOT NULL DEFAULT '',
    records_read    BIGINT NOT NULL DEFAULT 0,
    records_written BIGINT NOT NULL DEFAULT 0,
    records_unchanged BIGINT NOT NULL DEFAULT 0,
    records_skipped BIGINT NOT NULL DEFAULT 0,
    records_failed  BIGINT NOT NULL DEFAULT 0,
    error       TEXT NOT NULL DEFAULT '',
    started_at  TIMESTAMPTZ NOT NULL,
    finished_at TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (run_id, step)
)`

// Run tables created before records_unchanged existed folded it into
// records_written.
const addUnchangedColumnSQL = `
ALTER TABLE bizfinder_import_runs
    ADD COLUMN IF NOT EXISTS records_unchanged BIGINT NOT NULL DEFAULT 0`

// StepRecord is one completed pipeline step.
type StepRecord struct {
	Step       string
	Source     string
	Read       int64
	Written    int64
	Unchanged  int64
	Skipped    int64
	Failed     int64
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

// RunLog appends step results for one load invocation.
type RunLog struct {
	db DB
	id uuid.UUID
}

// NewRunLog creates the run table if needed and allocates a run id.
func NewRunLog(ctx context.Context, db DB) (*RunLog, error) {
	if _, err := db.Exec(ctx, createRunsTableSQL); err != nil {
		return nil, fmt.Errorf("failed to create import run table: %w", err)
	}
	if _, err := db.Exec(ctx, addUnchangedColumnSQL); err != nil {
		return nil, fmt.Errorf("failed to upgrade import run table: %w", err)
	}
	return &RunLog{db: db, id: uuid.New()}, nil
}

// ID returns the run id.
func (r *RunLog) ID() uuid.UUID {
	return r.id
}

// Record stores one step result.
func (r *RunLog) Record(ctx context.Context, s StepRecord) error {
	errText := ""
	if s.Err != nil {
		errText = s.Err.Error()
	}
	_, err := r.db.Exec(ctx, `
        INSERT INTO bizfinder_import_runs
            (run_id, step, source, records_read, records_written, records_unchanged,
             records_skipped, records_failed, error, started_at, finished_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        ON CONFLICT (run_id, step) DO UPDATE SET
            records_read = EXCLUDED.records_read,
            records_written = EXCLUDED.records_written,
            records_unchanged = EXCLUDED.records_unchanged,
            records_skipped = EXCLUDED.records_skipped,
            records_failed = EXCLUDED.records_failed,
            error = EXCLUDED.error, finished_at = EXCLUDED.finished_at
    `, r.id.String(), s.Step, s.Source, s.Read, s.Written, s.Unchanged,
		s.Skipped, s.Failed, errText, s.StartedAt, s.FinishedAt)
	if err != nil {
		return fmt.Errorf("failed to record step %s: %w", s.Step, err)
	}
	return nil
}

// DropRuns drops the import run table.
func DropRuns(ctx context.Context, db DB) error {
	_, err := db.Exec(ctx, "DROP TABLE IF EXISTS bizfinder_import_runs")
	return err
}

// LastRun returns the step records of the most recent run.
func LastRun(ctx context.Context, db DB) ([]StepRecord, error) {
	rows, err := db.Query(ctx, `
        SELECT step, source, records_read, records_written, records_unchanged,
               records_skipped, records_failed, error, started_at, finished_at
        FROM bizfinder_import_runs
        WHERE run_id = (
            SELECT run_id FROM bizfinder_import_runs
            ORDER BY started_at DESC LIMIT 1
        )
        ORDER BY started_at
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StepRecord
	for rows.Next() {
		var s StepRecord
		var errText string
		if err := rows.Scan(&s.Step, &s.Source, &s.Read, &s.Written, &s.Unchanged,
			&s.Skipped, &s.Failed, &errText, &s.StartedAt, &s.FinishedAt); err != nil {
			return nil, err
		}
		if errText != "" {
			s.Err = errors.New(errText)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
