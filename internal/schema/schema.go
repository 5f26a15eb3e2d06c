//-------------------------------------------------------------------------
//
// pgEdge Business Finder
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package schema holds the DDL for the business finder tables.
package schema

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"
)

// Execer is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Tables lists the data tables in creation order.
var Tables = []string{"businesses", "checkins", "reviews", "users", "zipcodes"}

const createSchemaSQL = `
-- Businesses: descriptive data plus derived ranking fields
CREATE TABLE IF NOT EXISTS businesses (
    business_id   VARCHAR(64) PRIMARY KEY,
    name          TEXT NOT NULL DEFAULT '',
    neighborhood  TEXT NOT NULL DEFAULT '',
    address       TEXT NOT NULL DEFAULT '',
    city          TEXT NOT NULL DEFAULT '',
    state         VARCHAR(8) NOT NULL DEFAULT '',
    postal_code   VARCHAR(16) NOT NULL DEFAULT '',
    latitude      DOUBLE PRECISION NOT NULL DEFAULT 0,
    longitude     DOUBLE PRECISION NOT NULL DEFAULT 0,
    stars         NUMERIC(2,1) NOT NULL DEFAULT 0,
    review_count  INTEGER NOT NULL DEFAULT 0,
    is_open       BOOLEAN NOT NULL DEFAULT FALSE,
    attributes    JSONB NOT NULL DEFAULT '{}',
    categories    TEXT NOT NULL DEFAULT '',
    hours         JSONB NOT NULL DEFAULT '{}',
    num_checkins  INTEGER NOT NULL DEFAULT 0,
    review_rating DOUBLE PRECISION NOT NULL DEFAULT 0,
    business_age  INTEGER NOT NULL,
    success_score DOUBLE PRECISION NOT NULL
);

-- CheckIns: one row per observed hour bucket
CREATE TABLE IF NOT EXISTS checkins (
    business_id VARCHAR(64) NOT NULL,
    day         VARCHAR(16) NOT NULL,
    hour        VARCHAR(8) NOT NULL,
    count       INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (business_id, day, hour)
);

-- Reviews
CREATE TABLE IF NOT EXISTS reviews (
    review_id   VARCHAR(64) PRIMARY KEY,
    user_id     VARCHAR(64) NOT NULL DEFAULT '',
    business_id VARCHAR(64) NOT NULL DEFAULT '',
    stars       NUMERIC(2,1) NOT NULL DEFAULT 0,
    date        TIMESTAMP,
    text        TEXT NOT NULL DEFAULT '',
    useful      INTEGER NOT NULL DEFAULT 0,
    funny       INTEGER NOT NULL DEFAULT 0,
    cool        INTEGER NOT NULL DEFAULT 0
);

-- Users
CREATE TABLE IF NOT EXISTS users (
    user_id            VARCHAR(64) PRIMARY KEY,
    name               TEXT NOT NULL DEFAULT '',
    review_count       INTEGER NOT NULL DEFAULT 0,
    average_stars      DOUBLE PRECISION NOT NULL DEFAULT 0,
    useful             INTEGER NOT NULL DEFAULT 0,
    funny              INTEGER NOT NULL DEFAULT 0,
    cool               INTEGER NOT NULL DEFAULT 0,
    friends            TEXT[] NOT NULL DEFAULT '{}',
    elite              INTEGER[] NOT NULL DEFAULT '{}',
    fans               INTEGER NOT NULL DEFAULT 0,
    compliment_cool    INTEGER NOT NULL DEFAULT 0,
    compliment_cute    INTEGER NOT NULL DEFAULT 0,
    compliment_funny   INTEGER NOT NULL DEFAULT 0,
    compliment_hot     INTEGER NOT NULL DEFAULT 0,
    compliment_list    INTEGER NOT NULL DEFAULT 0,
    compliment_more    INTEGER NOT NULL DEFAULT 0,
    compliment_note    INTEGER NOT NULL DEFAULT 0,
    compliment_photos  INTEGER NOT NULL DEFAULT 0,
    compliment_plain   INTEGER NOT NULL DEFAULT 0,
    compliment_profile INTEGER NOT NULL DEFAULT 0,
    compliment_writer  INTEGER NOT NULL DEFAULT 0,
    yelping_since      TIMESTAMP
);

-- Zipcodes: census demographics
CREATE TABLE IF NOT EXISTS zipcodes (
    zip_code   VARCHAR(16) PRIMARY KEY,
    population INTEGER NOT NULL DEFAULT 0,
    avg_income NUMERIC(12,1) NOT NULL DEFAULT 0
);

-- Indexes for the finder drill-down
CREATE INDEX IF NOT EXISTS idx_businesses_state_city ON businesses(state, city);
CREATE INDEX IF NOT EXISTS idx_businesses_postal_code ON businesses(postal_code);
CREATE INDEX IF NOT EXISTS idx_reviews_business_id ON reviews(business_id);
`

const dropSchemaSQL = `
DROP TABLE IF EXISTS reviews CASCADE;
DROP TABLE IF EXISTS checkins CASCADE;
DROP TABLE IF EXISTS users CASCADE;
DROP TABLE IF EXISTS businesses CASCADE;
DROP TABLE IF EXISTS zipcodes CASCADE;
`

// Create creates all tables and indexes. It is safe to run repeatedly.
func Create(ctx context.Context, db Execer) error {
	_, err := db.Exec(ctx, createSchemaSQL)
	return err
}

// Drop drops all tables.
func Drop(ctx context.Context, db Execer) error {
	_, err := db.Exec(ctx, dropSchemaSQL)
	return err
}
