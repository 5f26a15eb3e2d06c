//-------------------------------------------------------------------------
//
// pgEdge Business Finder
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package cli

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-bizfinder/internal/db"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show schema metadata and the most recent load",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}

		ctx := context.Background()
		pool, err := connect(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		metadata, err := db.GetAllMetadata(ctx, pool)
		if err != nil {
			return fmt.Errorf("failed to read metadata: %w", err)
		}
		for _, k := range slices.Sorted(maps.Keys(metadata)) {
			cmd.Printf("%-16s %s\n", k+":", metadata[k])
		}

		// The run table only exists after the first load.
		steps, err := db.LastRun(ctx, pool)
		if err != nil || len(steps) == 0 {
			cmd.Println("\nNo loads recorded")
			return nil
		}

		cmd.Println("\nLast load:")
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "STEP\tSOURCE\tREAD\tWRITTEN\tUNCHANGED\tSKIPPED\tFAILED\tSTARTED\tERROR")
		for _, s := range steps {
			errText := ""
			if s.Err != nil {
				errText = s.Err.Error()
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%d\t%s\t%s\n",
				s.Step, s.Source, s.Read, s.Written, s.Unchanged, s.Skipped, s.Failed,
				s.StartedAt.Local().Format(time.DateTime), errText)
		}
		return tw.Flush()
	},
}
