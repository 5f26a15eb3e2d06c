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
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-bizfinder/internal/datagen"
)

var (
	sampleDir        string
	sampleBusinesses int
	sampleUsers      int
	sampleMaxReviews int
	sampleSeed       uint64
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Write a synthetic sample dataset",
	Long: `Write business.json, checkin.json, user.json and review.json with
fake but internally consistent records: every review and check-in refers to
a generated business, and every review author is a generated user.

Example:
  pgedge-bizfinder sample --dir ./sample --businesses 200 --seed 42
  pgedge-bizfinder load --business sample/business.json --checkin sample/checkin.json \
      --user sample/user.json --review sample/review.json --skip-census`,
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := datagen.NewGenerator(datagen.SampleConfig{
			Businesses: sampleBusinesses,
			Users:      sampleUsers,
			MaxReviews: sampleMaxReviews,
			Seed:       sampleSeed,
		}).Generate(sampleDir)
		if err != nil {
			return err
		}
		cmd.Println(files.Business)
		cmd.Println(files.CheckIn)
		cmd.Println(files.User)
		cmd.Println(files.Review)
		return nil
	},
}

func init() {
	d := datagen.DefaultSampleConfig()
	sampleCmd.Flags().StringVar(&sampleDir, "dir", "sample",
		"output directory")
	sampleCmd.Flags().IntVar(&sampleBusinesses, "businesses", d.Businesses,
		"number of businesses")
	sampleCmd.Flags().IntVar(&sampleUsers, "users", d.Users,
		"number of users")
	sampleCmd.Flags().IntVar(&sampleMaxReviews, "max-reviews", d.MaxReviews,
		"maximum reviews per business")
	sampleCmd.Flags().Uint64Var(&sampleSeed, "seed", 0,
		"random seed for reproducible output (0 = random)")
}
