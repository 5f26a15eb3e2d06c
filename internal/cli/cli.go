//-------------------------------------------------------------------------
//
// pgEdge Business Finder
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package cli implements the command-line interface for pgedge-bizfinder.
package cli

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-bizfinder/internal/config"
	"github.com/pgEdge/pgedge-bizfinder/internal/db"
	"github.com/pgEdge/pgedge-bizfinder/internal/logging"
	"github.com/pgEdge/pgedge-bizfinder/pkg/version"
)

var (
	// Global flags
	cfgFile    string
	envFile    string
	connection string
	logLevel   string

	// Global config
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "pgedge-bizfinder",
		Short: "Load Yelp-style business data into PostgreSQL and query it",
		Long: `pgedge-bizfinder loads newline-delimited JSON datasets of businesses,
check-ins, users and reviews, together with US Census ZIP code demographics,
into PostgreSQL. Re-running a load is safe: every table has a fixed conflict
policy, so existing rows are kept or refreshed rather than duplicated.

The query commands expose the read side used by business finder front ends:
state, city and ZIP code drill-down, category listings, top-5 rankings and
per-ZIP statistics.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./pgedge-bizfinder.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "",
		"dotenv file with BIZFINDER_* variables (default: ./.env if present)")
	rootCmd.PersistentFlags().StringVar(&connection, "connection", "",
		"PostgreSQL connection string")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(sampleCmd)
	rootCmd.AddCommand(statusCmd)
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile, envFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	if connection != "" {
		cfg.Connection = connection
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	// Reinitialize logger with config
	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogFormat != "json",
	})

	return nil
}

// connect opens the pool and checks the schema was created by init.
func connect(ctx context.Context) (*pgxpool.Pool, error) {
	pool, err := db.Connect(ctx, cfg.Connection, cfg.DB.MaxConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.RequireInitialized(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Info())
	},
}
