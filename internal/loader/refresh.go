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

	"github.com/pgEdge/pgedge-bizfinder/internal/logging"
)

const refreshRatingSQL = `
UPDATE businesses b
SET review_rating = r.rating
FROM (
    SELECT business_id, ROUND(AVG(stars)::numeric, 2) AS rating
    FROM reviews
    GROUP BY business_id
) r
WHERE r.business_id = b.business_id
  AND b.review_rating IS DISTINCT FROM r.rating`

// RefreshResult counts the businesses updated by Refresh.
type RefreshResult struct {
	Ratings int64
}

// Refresh recomputes review_rating from the loaded reviews. Load inserts
// the rating as 0 and never calls it. num_checkins is the dataset's own
// total and is left alone.
func Refresh(ctx context.Context, db DB) (RefreshResult, error) {
	var res RefreshResult

	tx, err := db.Begin(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(context.WithoutCancel(ctx))
	}()

	tag, err := tx.Exec(ctx, refreshRatingSQL)
	if err != nil {
		return res, fmt.Errorf("failed to refresh review ratings: %w", err)
	}
	res.Ratings = tag.RowsAffected()

	if err := tx.Commit(ctx); err != nil {
		return res, fmt.Errorf("failed to commit refresh: %w", err)
	}

	logging.Info().
		Int64("ratings", res.Ratings).
		Msg("Refreshed review ratings")
	return res, nil
}
