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
	"io"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-bizfinder/internal/finder"
)

var queryFormat string

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Run a business finder query",
	Long: `Run one of the read queries behind the business finder and print the
result as a table, CSV or JSON.

Example:
  pgedge-bizfinder query states
  pgedge-bizfinder query categories 10001
  pgedge-bizfinder query by-category 10001 Bars --format json`,
}

func init() {
	queryCmd.PersistentFlags().StringVar(&queryFormat, "format", "",
		"output format: table, csv, json")

	queryCmd.AddCommand(
		valuesQuery("states", "List states with businesses", "state", 0,
			func(ctx context.Context, f *finder.Finder, a []string) ([]string, error) {
				return f.States(ctx)
			}),
		valuesQuery("cities <state>", "List cities of a state", "city", 1,
			func(ctx context.Context, f *finder.Finder, a []string) ([]string, error) {
				return f.Cities(ctx, a[0])
			}),
		valuesQuery("zips <city> <state>", "List ZIP codes of a city", "zip_code", 2,
			func(ctx context.Context, f *finder.Finder, a []string) ([]string, error) {
				return f.ZipCodes(ctx, a[0], a[1])
			}),
		valuesQuery("categories <zip>", "List categories found in a ZIP code", "category", 1,
			func(ctx context.Context, f *finder.Finder, a []string) ([]string, error) {
				return f.Categories(ctx, a[0])
			}),
		rowsQuery("businesses <city> <state>", "List businesses of a city", 2,
			func(ctx context.Context, f *finder.Finder, a []string) ([]finder.Business, error) {
				return f.BusinessesInCity(ctx, a[0], a[1])
			}),
		rowsQuery("by-category <zip> <category>", "List businesses of a ZIP code matching a category", 2,
			func(ctx context.Context, f *finder.Finder, a []string) ([]finder.BusinessDetail, error) {
				return f.BusinessesByCategory(ctx, a[0], a[1])
			}),
		rowsQuery("top-reviewed <zip> <category>", "Top 5 businesses by review count", 2,
			func(ctx context.Context, f *finder.Finder, a []string) ([]finder.Reviewed, error) {
				return f.TopReviewed(ctx, a[0], a[1])
			}),
		rowsQuery("top-checkins <zip> <category>", "Top 5 businesses by check-ins", 2,
			func(ctx context.Context, f *finder.Finder, a []string) ([]finder.CheckedIn, error) {
				return f.TopCheckedIn(ctx, a[0], a[1])
			}),
		rowsQuery("zip-stats <zip>", "Business count, population and income of a ZIP code", 1,
			func(ctx context.Context, f *finder.Finder, a []string) ([]finder.ZipStat, error) {
				return f.ZipStats(ctx, a[0])
			}),
		rowsQuery("category-counts <zip>", "Number of businesses per category in a ZIP code", 1,
			func(ctx context.Context, f *finder.Finder, a []string) ([]finder.CategoryCount, error) {
				return f.CategoryCounts(ctx, a[0])
			}),
	)
}

// withFinder validates query configuration, connects and runs fn.
func withFinder(cmd *cobra.Command, fn func(ctx context.Context, f *finder.Finder, w io.Writer) error) error {
	if queryFormat != "" {
		cfg.Query.Format = queryFormat
	}
	if err := cfg.ValidateQuery(); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	pool, err := connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	return fn(ctx, finder.New(pool), cmd.OutOrStdout())
}

func valuesQuery(use, short, column string, nargs int,
	run func(context.Context, *finder.Finder, []string) ([]string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withFinder(cmd, func(ctx context.Context, f *finder.Finder, w io.Writer) error {
				vs, err := run(ctx, f, args)
				if err != nil {
					return err
				}
				return renderValues(w, cfg.Query.Format, column, vs)
			})
		},
	}
}

func rowsQuery[T any](use, short string, nargs int,
	run func(context.Context, *finder.Finder, []string) ([]T, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withFinder(cmd, func(ctx context.Context, f *finder.Finder, w io.Writer) error {
				rows, err := run(ctx, f, args)
				if err != nil {
					return err
				}
				return render(w, cfg.Query.Format, rows)
			})
		},
	}
}
