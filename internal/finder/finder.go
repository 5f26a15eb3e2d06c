//-------------------------------------------------------------------------
//
// pgEdge Business Finder
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package finder implements the read queries behind the business finder's
// state → city → zip → category drill-down.
package finder

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// TopN is the row limit of the top-reviewed and top-checked-in lists.
const TopN = 5

// Querier is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Finder runs parameterized read queries. All methods return an empty
// slice, not an error, when nothing matches.
type Finder struct {
	db Querier
}

// New creates a Finder.
func New(db Querier) *Finder {
	return &Finder{db: db}
}

// Business is one row of BusinessesInCity.
type Business struct {
	Name  string `csv:"name" json:"name"`
	City  string `csv:"city" json:"city"`
	State string `csv:"state" json:"state"`
}

// BusinessDetail is one row of BusinessesByCategory.
type BusinessDetail struct {
	Name         string  `csv:"name" json:"name"`
	City         string  `csv:"city" json:"city"`
	State        string  `csv:"state" json:"state"`
	Stars        float64 `csv:"stars" json:"stars"`
	ReviewCount  int     `csv:"review_count" json:"review_count"`
	ReviewRating float64 `csv:"review_rating" json:"review_rating"`
	NumCheckins  int     `csv:"num_checkins" json:"num_checkins"`
	IsOpen       bool    `csv:"is_open" json:"is_open"`
	Hours        Hours   `csv:"hours" json:"hours"`
}

// Hours maps a weekday to its opening range.
type Hours map[string]string

// MarshalCSV renders the hours as one compact JSON object with sorted days.
func (h Hours) MarshalCSV() ([]byte, error) {
	if len(h) == 0 {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]string(h))
}

// Reviewed is one row of TopReviewed.
type Reviewed struct {
	Name        string  `csv:"name" json:"name"`
	Stars       float64 `csv:"stars" json:"stars"`
	ReviewCount int     `csv:"review_count" json:"review_count"`
}

// CheckedIn is one row of TopCheckedIn.
type CheckedIn struct {
	Name        string `csv:"name" json:"name"`
	ReviewCount int    `csv:"review_count" json:"review_count"`
	NumCheckins int    `csv:"num_checkins" json:"num_checkins"`
}

// ZipStat summarizes one ZIP code.
type ZipStat struct {
	ZipCode       string  `csv:"zip_code" json:"zip_code"`
	BusinessCount int     `csv:"business_count" json:"business_count"`
	Population    int     `csv:"population" json:"population"`
	AvgIncome     float64 `csv:"avg_income" json:"avg_income"`
}

// CategoryCount is one bar of the category histogram.
type CategoryCount struct {
	Category string `csv:"category" json:"category"`
	Count    int    `csv:"count" json:"count"`
}

// categoriesOf expands the categories column into one row per category.
const categoriesOf = `unnest(string_to_array(categories, ', '))`

// States lists the distinct states with at least one business.
func (f *Finder) States(ctx context.Context) ([]string, error) {
	return f.column(ctx, `
        SELECT DISTINCT state FROM businesses
        ORDER BY state`)
}

// Cities lists the distinct cities of a state.
func (f *Finder) Cities(ctx context.Context, state string) ([]string, error) {
	return f.column(ctx, `
        SELECT DISTINCT city FROM businesses
        WHERE state = $1
        ORDER BY city`, state)
}

// ZipCodes lists the distinct postal codes of a city.
func (f *Finder) ZipCodes(ctx context.Context, city, state string) ([]string, error) {
	return f.column(ctx, `
        SELECT DISTINCT postal_code FROM businesses
        WHERE city = $1 AND state = $2
        ORDER BY postal_code`, city, state)
}

// Categories lists the distinct individual categories found in a ZIP code.
func (f *Finder) Categories(ctx context.Context, zip string) ([]string, error) {
	return f.column(ctx, `
        SELECT DISTINCT category FROM (
            SELECT `+categoriesOf+` AS category
            FROM businesses
            WHERE postal_code = $1
        ) c
        WHERE category <> ''
        ORDER BY category`, zip)
}

// BusinessesInCity lists every business of a city.
func (f *Finder) BusinessesInCity(ctx context.Context, city, state string) ([]Business, error) {
	rows, err := f.db.Query(ctx, `
        SELECT name, city, state FROM businesses
        WHERE city = $1 AND state = $2
        ORDER BY name`, city, state)
	if err != nil {
		return nil, fmt.Errorf("failed to query businesses: %w", err)
	}
	return collect(rows, pgx.RowToStructByPos[Business])
}

// BusinessesByCategory lists the businesses of a ZIP code whose categories
// contain category as a substring.
func (f *Finder) BusinessesByCategory(ctx context.Context, zip, category string) ([]BusinessDetail, error) {
	rows, err := f.db.Query(ctx, `
        SELECT name, city, state, stars::float8, review_count, review_rating,
               num_checkins, is_open, hours
        FROM businesses
        WHERE postal_code = $1 AND strpos(categories, $2) > 0
        ORDER BY name`, zip, category)
	if err != nil {
		return nil, fmt.Errorf("failed to query businesses: %w", err)
	}
	return collect(rows, func(row pgx.CollectableRow) (BusinessDetail, error) {
		var d BusinessDetail
		var hours []byte
		if err := row.Scan(&d.Name, &d.City, &d.State, &d.Stars, &d.ReviewCount,
			&d.ReviewRating, &d.NumCheckins, &d.IsOpen, &hours); err != nil {
			return d, err
		}
		var err error
		d.Hours, err = decodeHours(hours)
		return d, err
	})
}

// TopReviewed returns the most reviewed businesses of a ZIP code and
// category.
func (f *Finder) TopReviewed(ctx context.Context, zip, category string) ([]Reviewed, error) {
	rows, err := f.db.Query(ctx, `
        SELECT name, stars::float8, review_count
        FROM businesses
        WHERE postal_code = $1 AND strpos(categories, $2) > 0
        ORDER BY review_count DESC, name
        LIMIT $3`, zip, category, TopN)
	if err != nil {
		return nil, fmt.Errorf("failed to query top reviewed: %w", err)
	}
	return collect(rows, pgx.RowToStructByPos[Reviewed])
}

// TopCheckedIn returns the most checked-in businesses of a ZIP code and
// category.
func (f *Finder) TopCheckedIn(ctx context.Context, zip, category string) ([]CheckedIn, error) {
	rows, err := f.db.Query(ctx, `
        SELECT name, review_count, num_checkins
        FROM businesses
        WHERE postal_code = $1 AND strpos(categories, $2) > 0
        ORDER BY num_checkins DESC, name
        LIMIT $3`, zip, category, TopN)
	if err != nil {
		return nil, fmt.Errorf("failed to query top checked in: %w", err)
	}
	return collect(rows, pgx.RowToStructByPos[CheckedIn])
}

// ZipStats returns the business count and demographics of a ZIP code.
// A ZIP code without census data reports zero population and income.
func (f *Finder) ZipStats(ctx context.Context, zip string) ([]ZipStat, error) {
	rows, err := f.db.Query(ctx, `
        SELECT b.postal_code, count(*)::int,
               COALESCE(max(z.population), 0)::int,
               COALESCE(max(z.avg_income), 0)::float8
        FROM businesses b
        LEFT JOIN zipcodes z ON z.zip_code = b.postal_code
        WHERE b.postal_code = $1
        GROUP BY b.postal_code`, zip)
	if err != nil {
		return nil, fmt.Errorf("failed to query zip stats: %w", err)
	}
	return collect(rows, pgx.RowToStructByPos[ZipStat])
}

// CategoryCounts returns the number of businesses per category in a ZIP
// code, most common first.
func (f *Finder) CategoryCounts(ctx context.Context, zip string) ([]CategoryCount, error) {
	rows, err := f.db.Query(ctx, `
        SELECT category, count(DISTINCT business_id)::int AS n FROM (
            SELECT business_id, `+categoriesOf+` AS category
            FROM businesses
            WHERE postal_code = $1
        ) c
        WHERE category <> ''
        GROUP BY category
        ORDER BY n DESC, category`, zip)
	if err != nil {
		return nil, fmt.Errorf("failed to query category counts: %w", err)
	}
	return collect(rows, pgx.RowToStructByPos[CategoryCount])
}

func (f *Finder) column(ctx context.Context, sql string, args ...any) ([]string, error) {
	rows, err := f.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	return collect(rows, pgx.RowTo[string])
}

// collect is pgx.CollectRows with a non-nil empty result.
func collect[T any](rows pgx.Rows, fn pgx.RowToFunc[T]) ([]T, error) {
	out, err := pgx.CollectRows(rows, fn)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// decodeHours turns the hours document into a day → range map. Values that
// are not strings are rendered as JSON text.
func decodeHours(doc []byte) (Hours, error) {
	hours := Hours{}
	if len(doc) == 0 {
		return hours, nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(doc, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode hours: %w", err)
	}
	for day, v := range raw {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			s = string(v)
		}
		hours[day] = s
	}
	return hours, nil
}
