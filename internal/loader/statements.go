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
	"github.com/pgEdge/pgedge-bizfinder/internal/records"
)

// Step names, also used as run log keys.
const (
	StepDemographics = "demographics"
	StepBusinesses   = "businesses"
	StepCheckIns     = "checkins"
	StepUsers        = "users"
	StepReviews      = "reviews"
)

// A re-imported business only refreshes its derived fields; num_checkins
// keeps the total from the first import.
const upsertBusinessSQL = `
INSERT INTO businesses (
    business_id, name, neighborhood, address, city, state, postal_code,
    latitude, longitude, stars, review_count, is_open,
    attributes, categories, hours,
    num_checkins, review_rating, business_age, success_score
) VALUES (
    $1, $2, $3, $4, $5, $6, $7,
    $8, $9, $10, $11, $12,
    $13::text::jsonb, $14, $15::text::jsonb,
    $16, 0, $17, $18
)
ON CONFLICT (business_id) DO UPDATE SET
    business_age = EXCLUDED.business_age,
    success_score = EXCLUDED.success_score`

const upsertCheckInSQL = `
INSERT INTO checkins (business_id, day, hour, count)
VALUES ($1, $2, $3, $4)
ON CONFLICT (business_id, day, hour) DO NOTHING`

const upsertReviewSQL = `
INSERT INTO reviews (
    review_id, user_id, business_id, stars, date, text, useful, funny, cool
) VALUES (
    $1, $2, $3, $4, NULLIF($5::text, '')::timestamp, $6, $7, $8, $9
)
ON CONFLICT (review_id) DO NOTHING`

const upsertUserSQL = `
INSERT INTO users (
    user_id, name, review_count, average_stars, useful, funny, cool,
    friends, elite, fans,
    compliment_cool, compliment_cute, compliment_funny, compliment_hot,
    compliment_list, compliment_more, compliment_note, compliment_photos,
    compliment_plain, compliment_profile, compliment_writer,
    yelping_since
) VALUES (
    $1, $2, $3, $4, $5, $6, $7,
    $8, $9, $10,
    $11, $12, $13, $14,
    $15, $16, $17, $18,
    $19, $20, $21,
    NULLIF($22::text, '')::timestamp
)
ON CONFLICT (user_id) DO NOTHING`

const upsertZipSQL = `
INSERT INTO zipcodes (zip_code, population, avg_income)
VALUES ($1, $2, $3)
ON CONFLICT (zip_code) DO UPDATE SET
    population = EXCLUDED.population,
    avg_income = EXCLUDED.avg_income`

func businessStatement(b records.Business) statement {
	return statement{
		sql: upsertBusinessSQL,
		key: b.BusinessID,
		args: []any{
			b.BusinessID, b.Name, b.Neighborhood, b.Address, b.City, b.State, b.PostalCode,
			b.Latitude, b.Longitude, b.Stars, b.ReviewCount, b.IsOpen,
			string(b.Attributes), b.Categories, string(b.Hours),
			b.TotalCheckins, b.BusinessAge, b.SuccessScore,
		},
	}
}

func checkInStatement(c records.CheckIn) statement {
	return statement{
		sql:  upsertCheckInSQL,
		key:  c.BusinessID + "/" + c.Day + "/" + c.Hour,
		args: []any{c.BusinessID, c.Day, c.Hour, c.Count},
	}
}

func reviewStatement(r records.Review) statement {
	return statement{
		sql: upsertReviewSQL,
		key: r.ReviewID,
		args: []any{
			r.ReviewID, r.UserID, r.BusinessID, r.Stars, r.Date, r.Text,
			r.Useful, r.Funny, r.Cool,
		},
	}
}

func userStatement(u records.User) statement {
	elite := make([]int32, len(u.Elite))
	for i, y := range u.Elite {
		elite[i] = int32(y)
	}
	c := u.Compliments
	return statement{
		sql: upsertUserSQL,
		key: u.UserID,
		args: []any{
			u.UserID, u.Name, u.ReviewCount, u.AverageStars, u.Useful, u.Funny, u.Cool,
			u.Friends, elite, u.Fans,
			c.Cool, c.Cute, c.Funny, c.Hot,
			c.List, c.More, c.Note, c.Photos,
			c.Plain, c.Profile, c.Writer,
			u.YelpingSince,
		},
	}
}

func zipStatement(z records.ZipDemographic) statement {
	return statement{
		sql:  upsertZipSQL,
		key:  z.ZipCode,
		args: []any{z.ZipCode, z.Population, z.AvgIncome},
	}
}
