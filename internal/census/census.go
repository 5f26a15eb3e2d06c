//-------------------------------------------------------------------------
//
// pgEdge Business Finder
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package census fetches ZIP-level population and income tables from the
// US Census API and merges them into demographic records.
package census

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"time"

	"github.com/pgEdge/pgedge-bizfinder/internal/logging"
	"github.com/pgEdge/pgedge-bizfinder/internal/records"
)

// UnknownIncome is the Census "estimate not available" sentinel.
const UnknownIncome = "-666666666"

// Source describes one tabular endpoint.
type Source struct {
	URL string

	// ZipColumn is the index of the ZIP code column. Negative means the
	// last column, which is where the Census API puts geography fields.
	ZipColumn int

	// ValueColumn is the index of the numeric value column.
	ValueColumn int
}

// NewSource returns a Source laid out as `get=NAME,<variable>&for=zcta`
// responses are: name, value, zip.
func NewSource(rawURL string) Source {
	return Source{URL: rawURL, ZipColumn: -1, ValueColumn: 1}
}

// Row is one data row with the header already removed.
type Row []string

// Fetcher performs the HTTP requests.
type Fetcher struct {
	client *http.Client
	apiKey string
}

// NewFetcher creates a fetcher whose requests time out after timeout.
func NewFetcher(timeout time.Duration, apiKey string) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
		apiKey: apiKey,
	}
}

// Fetch issues one GET against src and returns the data rows. Any failure
// is logged and yields no rows so a missing metric degrades to zeros.
func (f *Fetcher) Fetch(ctx context.Context, src Source) []Row {
	rows, err := f.fetch(ctx, src)
	if err != nil {
		logging.Warn().
			Err(err).
			Str("url", src.URL).
			Msg("Census fetch failed, continuing without this metric")
		return nil
	}
	logging.Info().
		Str("url", src.URL).
		Int("rows", len(rows)).
		Msg("Fetched census table")
	return rows
}

func (f *Fetcher) fetch(ctx context.Context, src Source) ([]Row, error) {
	u, err := url.Parse(src.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	if f.apiKey != "" {
		q := u.Query()
		q.Set("key", f.apiKey)
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var table [][]any
	if err := json.NewDecoder(resp.Body).Decode(&table); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(table) == 0 {
		return nil, nil
	}

	rows := make([]Row, 0, len(table)-1)
	for _, cells := range table[1:] {
		row := make(Row, len(cells))
		for i, c := range cells {
			row[i] = cellString(c)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func cellString(c any) string {
	switch v := c.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func (s Source) cells(r Row) (zip, value string, ok bool) {
	zi := s.ZipColumn
	if zi < 0 {
		zi = len(r) - 1
	}
	if zi < 0 || zi >= len(r) || s.ValueColumn < 0 || s.ValueColumn >= len(r) {
		return "", "", false
	}
	if r[zi] == "" {
		return "", "", false
	}
	return r[zi], r[s.ValueColumn], true
}

// PopulationByZip maps ZIP code to population. Rows with a missing or
// non-integer value are skipped.
func PopulationByZip(src Source, rows []Row) map[string]int {
	out := make(map[string]int, len(rows))
	for _, r := range rows {
		zip, value, ok := src.cells(r)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			logging.Debug().Str("zip", zip).Str("value", value).Msg("Skipping population row")
			continue
		}
		out[zip] = n
	}
	return out
}

// IncomeByZip maps ZIP code to income, excluding the UnknownIncome
// sentinel and unparsable values.
func IncomeByZip(src Source, rows []Row) map[string]float64 {
	out := make(map[string]float64, len(rows))
	for _, r := range rows {
		zip, value, ok := src.cells(r)
		if !ok || value == UnknownIncome {
			continue
		}
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			logging.Debug().Str("zip", zip).Str("value", value).Msg("Skipping income row")
			continue
		}
		out[zip] = v
	}
	return out
}

// Merge builds one record per ZIP code seen in either map. A ZIP missing
// from one side gets zero for that metric. Output is ordered by ZIP code.
func Merge(population map[string]int, income map[string]float64) []records.ZipDemographic {
	keys := make(map[string]struct{}, len(population)+len(income))
	for z := range population {
		keys[z] = struct{}{}
	}
	for z := range income {
		keys[z] = struct{}{}
	}

	out := make([]records.ZipDemographic, 0, len(keys))
	for _, z := range slices.Sorted(maps.Keys(keys)) {
		out = append(out, records.ZipDemographic{
			ZipCode:    z,
			Population: population[z],
			AvgIncome:  income[z],
		})
	}
	return out
}

// Demographics fetches both tables and merges them.
func (f *Fetcher) Demographics(ctx context.Context, population, income Source) []records.ZipDemographic {
	pop := PopulationByZip(population, f.Fetch(ctx, population))
	inc := IncomeByZip(income, f.Fetch(ctx, income))
	return Merge(pop, inc)
}
