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

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-bizfinder/internal/db"
	"github.com/pgEdge/pgedge-bizfinder/internal/logging"
	"github.com/pgEdge/pgedge-bizfinder/internal/schema"
)

var initDropExisting bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the business finder schema",
	Long: `Create the businesses, checkins, reviews, users and zipcodes tables
and record the schema version. Running init on an initialized database is a
no-op unless --drop-existing is given, which drops all tables (and their
data) first.

Example:
  pgedge-bizfinder init --connection "postgres://..."`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initDropExisting, "drop-existing", false,
		"drop existing tables before initialization")
}

func runInit(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if initDropExisting {
		cfg.Init.DropExisting = true
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Connect to database
	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Connection, cfg.DB.MaxConns)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	// Drop existing schema if requested
	if cfg.Init.DropExisting {
		logging.Warn().Msg("Dropping existing schema")
		if err := schema.Drop(ctx, pool); err != nil {
			return fmt.Errorf("failed to drop schema: %w", err)
		}
		if err := db.DropMetadata(ctx, pool); err != nil {
			logging.Debug().Err(err).Msg("No metadata table to drop")
		}
		if err := db.DropRuns(ctx, pool); err != nil {
			logging.Debug().Err(err).Msg("No import run table to drop")
		}
	}

	// Create schema
	logging.Info().Msg("Creating schema")
	if err := schema.Create(ctx, pool); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	// Save metadata
	if err := db.SaveMetadata(ctx, pool); err != nil {
		return fmt.Errorf("failed to save metadata: %w", err)
	}

	logging.Info().
		Strs("tables", schema.Tables).
		Msg("Database initialization complete")

	return nil
}
