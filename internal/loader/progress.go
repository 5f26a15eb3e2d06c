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
	"time"

	"github.com/pgEdge/pgedge-bizfinder/internal/logging"
)

// ProgressReporter logs streaming import progress. Input sizes are not
// known up front, so it reports throughput instead of a percentage.
type ProgressReporter struct {
	step             string
	current          int64
	progressInterval int64
	started          time.Time
}

// NewProgressReporter creates a new progress reporter.
func NewProgressReporter(step string, interval int64) *ProgressReporter {
	if interval < 1 {
		interval = 1
	}
	return &ProgressReporter{
		step:             step,
		progressInterval: interval,
		started:          time.Now(),
	}
}

// Update records the running total and logs when an interval is crossed.
func (p *ProgressReporter) Update(total int64) {
	old := p.current
	p.current = total

	if p.current/p.progressInterval > old/p.progressInterval {
		logging.Info().
			Str("step", p.step).
			Int64("records", p.current).
			Float64("per_sec", p.rate()).
			Msg("Importing")
	}
}

// Done logs completion.
func (p *ProgressReporter) Done(s Stats) {
	logging.Info().
		Str("step", p.step).
		Str("source", s.Source).
		Int64("read", s.Read).
		Int64("written", s.Written).
		Int64("unchanged", s.Unchanged).
		Int64("skipped", s.Skipped).
		Int64("failed", s.Failed).
		Dur("elapsed", s.Duration()).
		Msg("Step complete")
}

func (p *ProgressReporter) rate() float64 {
	secs := time.Since(p.started).Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(p.current) / secs
}
