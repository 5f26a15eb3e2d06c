//-------------------------------------------------------------------------
//
// pgEdge Business Finder
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package records decodes Yelp-style newline-delimited JSON datasets into
// persistence-ready records and computes the derived business fields.
package records

import (
	"encoding/json"
	"errors"
	"time"
)

// ErrMalformedRecord is wrapped by every parse failure so callers can apply
// a skip-or-abort policy with errors.Is.
var ErrMalformedRecord = errors.New("malformed record")

// Business is one row of the businesses table.
type Business struct {
	BusinessID   string
	Name         string
	Neighborhood string
	Address      string
	City         string
	State        string
	PostalCode   string
	Latitude     float64
	Longitude    float64
	Stars        float64
	ReviewCount  int
	IsOpen       bool

	// Attributes and Hours are schema-less JSON objects stored as jsonb.
	Attributes json.RawMessage
	Hours      json.RawMessage

	// Categories is the ", "-joined category list.
	Categories string

	TotalCheckins    int
	RegistrationDate time.Time
	BusinessAge      int
	SuccessScore     float64
}

// CheckIn is one (business, day, hour) bucket.
type CheckIn struct {
	BusinessID string `csv:"business_id"`
	Day        string `csv:"day"`
	Hour       string `csv:"hour"`
	Count      int    `csv:"count"`
}

// Review is one row of the reviews table.
type Review struct {
	ReviewID   string  `json:"review_id"`
	UserID     string  `json:"user_id"`
	BusinessID string  `json:"business_id"`
	Stars      float64 `json:"stars"`
	Date       string  `json:"date"`
	Text       string  `json:"text"`
	Useful     int     `json:"useful"`
	Funny      int     `json:"funny"`
	Cool       int     `json:"cool"`
}

// Compliments holds the eleven compliment counters of a user.
type Compliments struct {
	Cool    int `json:"compliment_cool"`
	Cute    int `json:"compliment_cute"`
	Funny   int `json:"compliment_funny"`
	Hot     int `json:"compliment_hot"`
	List    int `json:"compliment_list"`
	More    int `json:"compliment_more"`
	Note    int `json:"compliment_note"`
	Photos  int `json:"compliment_photos"`
	Plain   int `json:"compliment_plain"`
	Profile int `json:"compliment_profile"`
	Writer  int `json:"compliment_writer"`
}

// User is one row of the users table.
type User struct {
	UserID       string     `json:"user_id"`
	Name         string     `json:"name"`
	ReviewCount  int        `json:"review_count"`
	AverageStars float64    `json:"average_stars"`
	Useful       int        `json:"useful"`
	Funny        int        `json:"funny"`
	Cool         int        `json:"cool"`
	Friends      []string   `json:"friends"`
	Elite        []int      `json:"elite"`
	Fans         int        `json:"fans"`
	YelpingSince string     `json:"yelping_since"`
	Compliments
}

// ZipDemographic is one row of the zipcodes table.
type ZipDemographic struct {
	ZipCode    string  `csv:"zip_code" json:"zip_code"`
	Population int     `csv:"population" json:"population"`
	AvgIncome  float64 `csv:"avg_income" json:"avg_income"`
}
