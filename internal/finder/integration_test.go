//-------------------------------------------------------------------------
//
// pgEdge Business Finder
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

//go:build integration
// +build integration

// Integration tests for the finder queries.
// Run with: go test -tags=integration ./internal/finder/...

package finder_test

import (
	"context"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-bizfinder/internal/finder"
	"github.com/pgEdge/pgedge-bizfinder/internal/loader"
	"github.com/pgEdge/pgedge-bizfinder/internal/records"
	"github.com/pgEdge/pgedge-bizfinder/internal/testutil"
)

func load(t *testing.T, pool *pgxpool.Pool, businesses ...string) {
	t.Helper()
	im := loader.NewImporter(pool, loader.DefaultOptions())
	_, err := im.ImportBusinesses(context.Background(), "business.json",
		strings.NewReader(strings.Join(businesses, "\n")))
	require.NoError(t, err)
}

func TestSingleBusinessScenario(t *testing.T) {
	pool := testutil.NewSchemaDB(t, "scenario")
	ctx := context.Background()
	load(t, pool, `{"business_id":"b1","name":"Night Owl","city":"New York","state":"NY",`+
		`"postal_code":"10001","review_count":5,"categories":"Bars, Nightlife",`+
		`"hours":{"Friday":"18:00-2:00"},"is_open":1}`)

	f := finder.New(pool)

	cats, err := f.Categories(ctx, "10001")
	require.NoError(t, err)
	assert.Equal(t, []string{"Bars", "Nightlife"}, cats)

	found, err := f.BusinessesByCategory(ctx, "10001", "Bars")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Night Owl", found[0].Name)
	assert.Equal(t, 5, found[0].ReviewCount)
	assert.True(t, found[0].IsOpen)
	assert.Equal(t, finder.Hours{"Friday": "18:00-2:00"}, found[0].Hours)
}

func TestDrillDown(t *testing.T) {
	pool := testutil.NewSchemaDB(t, "drill")
	ctx := context.Background()
	load(t, pool,
		`{"business_id":"b1","name":"Bean","city":"Phoenix","state":"AZ","postal_code":"85001","categories":"Coffee, Bakery, Coffee","review_count":30}`,
		`{"business_id":"b2","name":"Crumb","city":"Phoenix","state":"AZ","postal_code":"85001","categories":"Bakery","review_count":50}`,
		`{"business_id":"b3","name":"Ale House","city":"Tempe","state":"AZ","postal_code":"85281","categories":"Bars"}`,
		`{"business_id":"b4","name":"Pike","city":"Seattle","state":"WA","postal_code":"98101","categories":"Coffee"}`,
	)
	_, err := pool.Exec(ctx, `UPDATE businesses SET num_checkins = 7 WHERE business_id = 'b1'`)
	require.NoError(t, err)

	f := finder.New(pool)

	states, err := f.States(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"AZ", "WA"}, states)

	cities, err := f.Cities(ctx, "AZ")
	require.NoError(t, err)
	assert.Equal(t, []string{"Phoenix", "Tempe"}, cities)

	zips, err := f.ZipCodes(ctx, "Phoenix", "AZ")
	require.NoError(t, err)
	assert.Equal(t, []string{"85001"}, zips)

	cats, err := f.Categories(ctx, "85001")
	require.NoError(t, err)
	assert.Equal(t, []string{"Bakery", "Coffee"}, cats)

	inCity, err := f.BusinessesInCity(ctx, "Phoenix", "AZ")
	require.NoError(t, err)
	assert.Equal(t, []finder.Business{
		{Name: "Bean", City: "Phoenix", State: "AZ"},
		{Name: "Crumb", City: "Phoenix", State: "AZ"},
	}, inCity)

	reviewed, err := f.TopReviewed(ctx, "85001", "Bakery")
	require.NoError(t, err)
	require.Len(t, reviewed, 2)
	assert.Equal(t, "Crumb", reviewed[0].Name)
	assert.Equal(t, 50, reviewed[0].ReviewCount)

	checked, err := f.TopCheckedIn(ctx, "85001", "Bakery")
	require.NoError(t, err)
	require.Len(t, checked, 2)
	assert.Equal(t, finder.CheckedIn{Name: "Bean", ReviewCount: 30, NumCheckins: 7}, checked[0])

	counts, err := f.CategoryCounts(ctx, "85001")
	require.NoError(t, err)
	assert.Equal(t, []finder.CategoryCount{
		{Category: "Bakery", Count: 2},
		{Category: "Coffee", Count: 1},
	}, counts)
}

func TestTopListsAreCapped(t *testing.T) {
	pool := testutil.NewSchemaDB(t, "top")
	ctx := context.Background()

	var lines []string
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		lines = append(lines, `{"business_id":"`+id+`","name":"`+id+`","postal_code":"10001","categories":"Pizza"}`)
	}
	load(t, pool, lines...)

	top, err := finder.New(pool).TopReviewed(ctx, "10001", "Pizza")
	require.NoError(t, err)
	assert.Len(t, top, finder.TopN)
}

func TestZipStats(t *testing.T) {
	pool := testutil.NewSchemaDB(t, "zipstats")
	ctx := context.Background()
	load(t, pool,
		`{"business_id":"b1","postal_code":"10001"}`,
		`{"business_id":"b2","postal_code":"10001"}`,
		`{"business_id":"b3","postal_code":"10002"}`,
	)
	_, err := loader.NewImporter(pool, loader.DefaultOptions()).ImportDemographics(ctx, "census",
		[]records.ZipDemographic{{ZipCode: "10001", Population: 21102, AvgIncome: 88526.5}})
	require.NoError(t, err)

	f := finder.New(pool)

	stats, err := f.ZipStats(ctx, "10001")
	require.NoError(t, err)
	assert.Equal(t, []finder.ZipStat{
		{ZipCode: "10001", BusinessCount: 2, Population: 21102, AvgIncome: 88526.5},
	}, stats)

	stats, err = f.ZipStats(ctx, "10002")
	require.NoError(t, err)
	assert.Equal(t, []finder.ZipStat{{ZipCode: "10002", BusinessCount: 1}}, stats)
}

func TestEmptyResults(t *testing.T) {
	pool := testutil.NewSchemaDB(t, "empty")
	ctx := context.Background()
	f := finder.New(pool)

	states, err := f.States(ctx)
	require.NoError(t, err)
	assert.NotNil(t, states)
	assert.Empty(t, states)

	found, err := f.BusinessesByCategory(ctx, "00000", "Bars")
	require.NoError(t, err)
	assert.Empty(t, found)

	stats, err := f.ZipStats(ctx, "00000")
	require.NoError(t, err)
	assert.Empty(t, stats)
}
