//-------------------------------------------------------------------------
//
// pgEdge Business Finder
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-bizfinder/internal/census"
	"github.com/pgEdge/pgedge-bizfinder/internal/db"
	"github.com/pgEdge/pgedge-bizfinder/internal/loader"
	"github.com/pgEdge/pgedge-bizfinder/internal/logging"
)

var (
	loadBusinessFile     string
	loadCheckinFile      string
	loadUserFile         string
	loadReviewFile       string
	loadSkipCensus       bool
	loadStrict           bool
	loadMaxErrorRatio    float64
	loadProgressInterval int64
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Import census demographics and NDJSON datasets",
	Long: `Import data into an initialized database. Steps run in order:
census demographics, businesses, check-ins, users, reviews. Steps without an
input file are skipped. Each file is committed as one batch; a row that fails
to insert is rolled back on its own and the file continues.

Malformed lines are skipped and counted unless --strict is given, in which
case the first malformed line aborts that file.

Example:
  pgedge-bizfinder load --business business.json --checkin checkin.json \
      --user user.json --review review.json
  pgedge-bizfinder load --business business.json --skip-census --strict`,
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().StringVar(&loadBusinessFile, "business", "",
		"business NDJSON file")
	loadCmd.Flags().StringVar(&loadCheckinFile, "checkin", "",
		"check-in NDJSON file")
	loadCmd.Flags().StringVar(&loadUserFile, "user", "",
		"user NDJSON file")
	loadCmd.Flags().StringVar(&loadReviewFile, "review", "",
		"review NDJSON file")
	loadCmd.Flags().BoolVar(&loadSkipCensus, "skip-census", false,
		"do not fetch census demographics")
	loadCmd.Flags().BoolVar(&loadStrict, "strict", false,
		"abort a file on its first malformed line")
	loadCmd.Flags().Float64Var(&loadMaxErrorRatio, "max-error-ratio", 0,
		"roll back a file whose error ratio exceeds this (0 = disabled)")
	loadCmd.Flags().Int64Var(&loadProgressInterval, "progress-interval", 0,
		"log progress every N records")
}

func runLoad(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if loadBusinessFile != "" {
		cfg.Load.BusinessFile = loadBusinessFile
	}
	if loadCheckinFile != "" {
		cfg.Load.CheckinFile = loadCheckinFile
	}
	if loadUserFile != "" {
		cfg.Load.UserFile = loadUserFile
	}
	if loadReviewFile != "" {
		cfg.Load.ReviewFile = loadReviewFile
	}
	if loadSkipCensus {
		cfg.Load.SkipCensus = true
	}
	if loadStrict {
		cfg.Load.Strict = true
	}
	if loadMaxErrorRatio > 0 {
		cfg.Load.MaxErrorRatio = loadMaxErrorRatio
	}
	if loadProgressInterval > 0 {
		cfg.Load.ProgressInterval = loadProgressInterval
	}

	// Validate configuration
	if err := cfg.ValidateLoad(); err != nil {
		return err
	}

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case sig := <-sigChan:
			logging.Info().
				Str("signal", sig.String()).
				Msg("Received shutdown signal, stopping after the current record")
			cancel()
		case <-ctx.Done():
		}
	}()

	pool, err := connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	runs, err := db.NewRunLog(ctx, pool)
	if err != nil {
		return err
	}

	importer := loader.NewImporter(pool, loader.Options{
		Strict:           cfg.Load.Strict,
		MaxErrorRatio:    cfg.Load.MaxErrorRatio,
		ProgressInterval: cfg.Load.ProgressInterval,
	})

	pipeline := loader.NewPipeline(importer, loader.Files{
		Business: cfg.Load.BusinessFile,
		CheckIn:  cfg.Load.CheckinFile,
		User:     cfg.Load.UserFile,
		Review:   cfg.Load.ReviewFile,
	}).WithRecorder(runs)

	if !cfg.Load.SkipCensus {
		pipeline.WithCensus(
			census.NewFetcher(cfg.CensusTimeout(), cfg.Census.APIKey),
			census.NewSource(cfg.Census.PopulationURL),
			census.NewSource(cfg.Census.IncomeURL),
		)
	}

	logging.Info().
		Str("run_id", runs.ID().String()).
		Bool("census", !cfg.Load.SkipCensus).
		Bool("strict", cfg.Load.Strict).
		Msg("Starting load")

	stats, err := pipeline.Run(ctx)
	printLoadSummary(cmd.OutOrStdout(), stats)
	if err != nil {
		if ctx.Err() != nil {
			logging.Info().Msg("Load interrupted; committed steps are kept")
		}
		return err
	}

	logging.Info().Str("run_id", runs.ID().String()).Msg("Load complete")
	return nil
}

func printLoadSummary(w io.Writer, stats []loader.Stats) {
	if len(stats) == 0 {
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STEP\tREAD\tWRITTEN\tUNCHANGED\tSKIPPED\tFAILED\tELAPSED")
	for _, s := range stats {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%s\n",
			s.Step, s.Read, s.Written, s.Unchanged, s.Skipped, s.Failed,
			s.Duration().Round(time.Millisecond))
	}
	_ = tw.Flush()
}
