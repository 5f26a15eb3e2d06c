//-------------------------------------------------------------------------
//
// pgEdge Business Finder
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package loader writes parsed records to PostgreSQL with per-entity
// conflict policies and drives the sequential import pipeline.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pgEdge/pgedge-bizfinder/internal/logging"
	"github.com/pgEdge/pgedge-bizfinder/internal/records"
)

// ErrTooManyErrors is returned when a file's error ratio exceeds
// Options.MaxErrorRatio. Nothing from that file is committed.
var ErrTooManyErrors = errors.New("too many errors")

// DB is satisfied by *pgxpool.Pool and *pgx.Conn.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Options controls error handling during an import.
type Options struct {
	// Strict aborts a file on its first malformed line.
	Strict bool

	// MaxErrorRatio rolls back a file whose ErrorRatio exceeds it.
	// Zero disables the check.
	MaxErrorRatio float64

	// ProgressInterval is how often to log progress, in records.
	ProgressInterval int64
}

// DefaultOptions returns skip-and-count options.
func DefaultOptions() Options {
	return Options{ProgressInterval: 10000}
}

// Stats summarizes one import step.
type Stats struct {
	Step   string
	Source string

	// Read counts source records (lines or demographic rows).
	Read int64

	// Written counts statements that changed a row; Unchanged counts
	// statements that hit a DO NOTHING conflict.
	Written   int64
	Unchanged int64

	// Skipped counts malformed records; Failed counts statements that
	// were rolled back.
	Skipped int64
	Failed  int64

	StartedAt  time.Time
	FinishedAt time.Time
}

// ErrorRatio is (Skipped+Failed) over everything attempted.
func (s Stats) ErrorRatio() float64 {
	attempted := s.Written + s.Unchanged + s.Skipped + s.Failed
	if attempted == 0 {
		return 0
	}
	return float64(s.Skipped+s.Failed) / float64(attempted)
}

// Duration is the wall time of the step.
func (s Stats) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

// statement is one parameterized upsert.
type statement struct {
	sql  string
	args []any
	key  string
}

// source yields groups of statements, one group per source record.
type source interface {
	next() (line int, stmts []statement, ok bool, err error)
	err() error
}

// Importer writes records through a DB handle.
type Importer struct {
	db   DB
	opts Options
	now  func() time.Time
}

// NewImporter creates an importer.
func NewImporter(db DB, opts Options) *Importer {
	if opts.ProgressInterval < 1 {
		opts.ProgressInterval = DefaultOptions().ProgressInterval
	}
	return &Importer{db: db, opts: opts, now: time.Now}
}

// WithClock overrides the clock used for business_age.
func (im *Importer) WithClock(now func() time.Time) *Importer {
	im.now = now
	return im
}

// ImportBusinesses loads a business NDJSON stream.
func (im *Importer) ImportBusinesses(ctx context.Context, name string, r io.Reader) (Stats, error) {
	now := im.now()
	return im.write(ctx, StepBusinesses, name, newLineSource(r, func(line []byte) ([]statement, error) {
		b, err := records.ParseBusiness(line, now)
		if err != nil {
			return nil, err
		}
		return []statement{businessStatement(b)}, nil
	}))
}

// ImportCheckIns loads a check-in NDJSON stream.
func (im *Importer) ImportCheckIns(ctx context.Context, name string, r io.Reader) (Stats, error) {
	return im.write(ctx, StepCheckIns, name, newLineSource(r, func(line []byte) ([]statement, error) {
		rows, err := records.ParseCheckIns(line)
		if err != nil {
			return nil, err
		}
		stmts := make([]statement, len(rows))
		for i, c := range rows {
			stmts[i] = checkInStatement(c)
		}
		return stmts, nil
	}))
}

// ImportReviews loads a review NDJSON stream.
func (im *Importer) ImportReviews(ctx context.Context, name string, r io.Reader) (Stats, error) {
	return im.write(ctx, StepReviews, name, newLineSource(r, func(line []byte) ([]statement, error) {
		rv, err := records.ParseReview(line)
		if err != nil {
			return nil, err
		}
		return []statement{reviewStatement(rv)}, nil
	}))
}

// ImportUsers loads a user NDJSON stream.
func (im *Importer) ImportUsers(ctx context.Context, name string, r io.Reader) (Stats, error) {
	return im.write(ctx, StepUsers, name, newLineSource(r, func(line []byte) ([]statement, error) {
		u, err := records.ParseUser(line)
		if err != nil {
			return nil, err
		}
		return []statement{userStatement(u)}, nil
	}))
}

// ImportDemographics upserts merged ZIP demographics.
func (im *Importer) ImportDemographics(ctx context.Context, name string, zips []records.ZipDemographic) (Stats, error) {
	return im.write(ctx, StepDemographics, name, &sliceSource{zips: zips})
}

// write runs one step inside a single transaction. Each statement gets its
// own savepoint so a failing row is rolled back alone.
func (im *Importer) write(ctx context.Context, step, name string, src source) (Stats, error) {
	stats := Stats{Step: step, Source: name, StartedAt: time.Now()}
	log := logging.Step(step)
	progress := NewProgressReporter(step, im.opts.ProgressInterval)

	tx, err := im.db.Begin(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		// No-op once committed.
		_ = tx.Rollback(context.WithoutCancel(ctx))
	}()

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		line, stmts, ok, perr := src.next()
		if !ok {
			break
		}
		stats.Read++

		if perr != nil {
			if im.opts.Strict {
				return stats, fmt.Errorf("%s line %d: %w", name, line, perr)
			}
			stats.Skipped++
			log.Warn().Int("line", line).Err(perr).Msg("Skipping malformed record")
			continue
		}

		for _, st := range stmts {
			changed, err := execSavepoint(ctx, tx, st)
			if err != nil {
				if ctx.Err() != nil {
					return stats, ctx.Err()
				}
				stats.Failed++
				log.Warn().Int("line", line).Str("key", st.key).Err(err).Msg("Failed to write record")
				continue
			}
			if changed {
				stats.Written++
			} else {
				stats.Unchanged++
			}
		}
		progress.Update(stats.Read)
	}

	if err := src.err(); err != nil {
		return stats, fmt.Errorf("failed to read %s: %w", name, err)
	}

	if im.opts.MaxErrorRatio > 0 && stats.ErrorRatio() > im.opts.MaxErrorRatio {
		return stats, fmt.Errorf("%w: %s error ratio %.3f exceeds %.3f, rolled back",
			ErrTooManyErrors, name, stats.ErrorRatio(), im.opts.MaxErrorRatio)
	}

	if err := tx.Commit(ctx); err != nil {
		return stats, fmt.Errorf("failed to commit %s: %w", step, err)
	}
	stats.FinishedAt = time.Now()
	progress.Done(stats)
	return stats, nil
}

func execSavepoint(ctx context.Context, tx pgx.Tx, st statement) (bool, error) {
	sp, err := tx.Begin(ctx)
	if err != nil {
		return false, err
	}
	tag, err := sp.Exec(ctx, st.sql, st.args...)
	if err != nil {
		_ = sp.Rollback(ctx)
		return false, err
	}
	if err := sp.Commit(ctx); err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

type lineSource struct {
	lr     *records.LineReader
	decode func([]byte) ([]statement, error)
}

func newLineSource(r io.Reader, decode func([]byte) ([]statement, error)) *lineSource {
	return &lineSource{lr: records.NewLineReader(r), decode: decode}
}

func (s *lineSource) next() (int, []statement, bool, error) {
	b, ok := s.lr.Next()
	if !ok {
		return 0, nil, false, nil
	}
	stmts, err := s.decode(b)
	return s.lr.Line(), stmts, true, err
}

func (s *lineSource) err() error {
	return s.lr.Err()
}

type sliceSource struct {
	zips []records.ZipDemographic
	i    int
}

func (s *sliceSource) next() (int, []statement, bool, error) {
	if s.i >= len(s.zips) {
		return 0, nil, false, nil
	}
	z := s.zips[s.i]
	s.i++
	return s.i, []statement{zipStatement(z)}, true, nil
}

func (s *sliceSource) err() error {
	return nil
}
