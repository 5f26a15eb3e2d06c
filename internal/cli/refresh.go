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

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-bizfinder/internal/loader"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Recompute review ratings",
	Long: `Recompute businesses.review_rating (average review stars) from the
loaded reviews table. load stores the rating as 0 and never does this on its
own. num_checkins keeps the total carried by the business records.`,
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

		res, err := loader.Refresh(ctx, pool)
		if err != nil {
			return err
		}
		cmd.Printf("Updated %d review ratings\n", res.Ratings)
		return nil
	},
}
