//-------------------------------------------------------------------------
//
// pgEdge Business Finder
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package loader

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pgEdge/pgedge-bizfinder/internal/census"
	"github.com/pgEdge/pgedge-bizfinder/internal/db"
	"github.com/pgEdge/pgedge-bizfinder/internal/logging"
)

// Files names the four NDJSON inputs. Empty paths are skipped.
type Files struct {
	Business string
	CheckIn  string
	User     string
	Review   string
}

// Recorder persists step results; *db.RunLog satisfies it.
type Recorder interface {
	Record(ctx context.Context, s db.StepRecord) error
}

// Pipeline runs the import steps in dependency order: demographics,
// businesses, check-ins, users, reviews.
type Pipeline struct {
	importer *Importer
	files    Files

	fetcher    *census.Fetcher
	population census.Source
	income     census.Source

	recorder Recorder
}

// NewPipeline creates a pipeline over importer. Census demographics are
// skipped unless WithCensus is called.
func NewPipeline(importer *Importer, files Files) *Pipeline {
	return &Pipeline{importer: importer, files: files}
}

// WithCensus enables the demographics step.
func (p *Pipeline) WithCensus(f *census.Fetcher, population, income census.Source) *Pipeline {
	p.fetcher = f
	p.population = population
	p.income = income
	return p
}

// WithRecorder stores each step result through r.
func (p *Pipeline) WithRecorder(r Recorder) *Pipeline {
	p.recorder = r
	return p
}

type fileStep struct {
	name string
	path string
	run  func(ctx context.Context, name string, r io.Reader) (Stats, error)
}

// Run executes every configured step. The first failing step stops the
// run; steps already committed stay committed.
func (p *Pipeline) Run(ctx context.Context) ([]Stats, error) {
	var results []Stats

	if p.fetcher != nil {
		started := time.Now()
		zips := p.fetcher.Demographics(ctx, p.population, p.income)
		stats, err := p.importer.ImportDemographics(ctx, "census", zips)
		stats.StartedAt = started
		results = append(results, stats)
		if err := p.record(ctx, stats, err); err != nil {
			return results, err
		}
	} else {
		logging.Info().Str("step", StepDemographics).Msg("Skipping census demographics")
	}

	steps := []fileStep{
		{StepBusinesses, p.files.Business, p.importer.ImportBusinesses},
		{StepCheckIns, p.files.CheckIn, p.importer.ImportCheckIns},
		{StepUsers, p.files.User, p.importer.ImportUsers},
		{StepReviews, p.files.Review, p.importer.ImportReviews},
	}

	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		if s.path == "" {
			logging.Info().Str("step", s.name).Msg("No input file, skipping")
			continue
		}
		stats, err := p.runFile(ctx, s)
		results = append(results, stats)
		if err := p.record(ctx, stats, err); err != nil {
			return results, err
		}
	}

	return results, nil
}

func (p *Pipeline) runFile(ctx context.Context, s fileStep) (Stats, error) {
	started := time.Now()
	f, err := os.Open(s.path)
	if err != nil {
		return Stats{Step: s.name, Source: s.path, StartedAt: started},
			fmt.Errorf("failed to open %s input: %w", s.name, err)
	}
	defer f.Close()

	logging.Info().Str("step", s.name).Str("file", s.path).Msg("Importing")
	return s.run(ctx, s.path, f)
}

// record logs and stores one step result and returns stepErr wrapped.
func (p *Pipeline) record(ctx context.Context, stats Stats, stepErr error) error {
	if stats.FinishedAt.IsZero() {
		stats.FinishedAt = time.Now()
	}
	if p.recorder != nil {
		rec := db.StepRecord{
			Step:       stats.Step,
			Source:     stats.Source,
			Read:       stats.Read,
			Written:    stats.Written,
			Unchanged:  stats.Unchanged,
			Skipped:    stats.Skipped,
			Failed:     stats.Failed,
			Err:        stepErr,
			StartedAt:  stats.StartedAt,
			FinishedAt: stats.FinishedAt,
		}
		if err := p.recorder.Record(context.WithoutCancel(ctx), rec); err != nil {
			logging.Warn().Err(err).Str("step", stats.Step).Msg("Failed to record step")
		}
	}
	if stepErr != nil {
		return fmt.Errorf("%s step failed: %w", stats.Step, stepErr)
	}
	return nil
}
