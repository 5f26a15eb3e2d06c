//-------------------------------------------------------------------------
//
// pgEdge Business Finder
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package datagen writes synthetic, internally consistent sample datasets
// in the same NDJSON layout the loader imports.
package datagen

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pgEdge/pgedge-bizfinder/internal/loader"
	"github.com/pgEdge/pgedge-bizfinder/internal/logging"
	"github.com/pgEdge/pgedge-bizfinder/internal/records"
)

// File names written by Generate.
const (
	BusinessFile = "business.json"
	CheckInFile  = "checkin.json"
	UserFile     = "user.json"
	ReviewFile   = "review.json"
)

// SampleConfig sizes a sample dataset.
type SampleConfig struct {
	Businesses int
	Users      int

	// MaxReviews caps the reviews written per business.
	MaxReviews int

	// Seed makes output reproducible. Zero picks a random seed.
	Seed uint64
}

// DefaultSampleConfig returns a small demo dataset configuration.
func DefaultSampleConfig() SampleConfig {
	return SampleConfig{Businesses: 50, Users: 40, MaxReviews: 8}
}

type place struct {
	City, State, Zip string
	Lat, Lon         float64
}

var places = []place{
	{"New York", "NY", "10001", 40.7506, -73.9972},
	{"New York", "NY", "10002", 40.7157, -73.9863},
	{"Phoenix", "AZ", "85004", 33.4511, -112.0686},
	{"Tempe", "AZ", "85281", 33.4270, -111.9318},
	{"Las Vegas", "NV", "89109", 36.1260, -115.1654},
	{"Pittsburgh", "PA", "15213", 40.4435, -79.9556},
	{"Charlotte", "NC", "28202", 35.2271, -80.8431},
}

var categories = []string{
	"Restaurants", "Bars", "Nightlife", "Coffee & Tea", "Bakeries", "Pizza",
	"Italian", "Mexican", "Shopping", "Beauty & Spas", "Auto Repair", "Fitness",
}

var days = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

var (
	earliest = time.Date(1995, 1, 1, 0, 0, 0, 0, time.UTC)
	latest   = time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
)

type businessLine struct {
	BusinessID       string            `json:"business_id"`
	Name             string            `json:"name"`
	Neighborhood     string            `json:"neighborhood"`
	Address          string            `json:"address"`
	City             string            `json:"city"`
	State            string            `json:"state"`
	PostalCode       string            `json:"postal_code"`
	Latitude         float64           `json:"latitude"`
	Longitude        float64           `json:"longitude"`
	Stars            float64           `json:"stars"`
	ReviewCount      int               `json:"review_count"`
	IsOpen           int               `json:"is_open"`
	Attributes       map[string]any    `json:"attributes"`
	Categories       []string          `json:"categories"`
	Hours            map[string]string `json:"hours"`
	RegistrationDate string            `json:"registration_date"`
	RepeatCheckins   int               `json:"repeat_checkins"`
	PositiveReviews  int               `json:"positive_reviews"`
	TotalCheckins    int               `json:"total_checkins"`
	TotalReviews     int               `json:"total_reviews"`
}

type checkinLine struct {
	BusinessID string                    `json:"business_id"`
	Time       map[string]map[string]int `json:"time"`
}

type userLine struct {
	UserID       string   `json:"user_id"`
	Name         string   `json:"name"`
	ReviewCount  int      `json:"review_count"`
	AverageStars float64  `json:"average_stars"`
	Useful       int      `json:"useful"`
	Funny        int      `json:"funny"`
	Cool         int      `json:"cool"`
	Friends      []string `json:"friends"`
	Elite        []int    `json:"elite"`
	Fans         int      `json:"fans"`
	YelpingSince string   `json:"yelping_since"`
	records.Compliments
}

// Generator writes one sample dataset.
type Generator struct {
	cfg   SampleConfig
	faker *Faker
}

// NewGenerator creates a generator.
func NewGenerator(cfg SampleConfig) *Generator {
	if cfg.Seed == 0 {
		return &Generator{cfg: cfg, faker: NewFaker()}
	}
	return &Generator{cfg: cfg, faker: NewFakerWithSeed(cfg.Seed)}
}

// Generate writes the four sample files into dir and returns their paths.
func (g *Generator) Generate(dir string) (loader.Files, error) {
	if g.cfg.Businesses < 1 || g.cfg.Users < 1 {
		return loader.Files{}, fmt.Errorf("sample needs at least one business and one user")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return loader.Files{}, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	files := loader.Files{
		Business: filepath.Join(dir, BusinessFile),
		CheckIn:  filepath.Join(dir, CheckInFile),
		User:     filepath.Join(dir, UserFile),
		Review:   filepath.Join(dir, ReviewFile),
	}

	users := g.users()
	userIDs := make([]string, len(users))
	for i, u := range users {
		userIDs[i] = u.UserID
	}

	var (
		businesses []businessLine
		checkins   []checkinLine
		reviews    []records.Review
	)
	for range g.cfg.Businesses {
		b := g.business()
		rs := g.reviews(b.BusinessID, userIDs)
		c := g.checkins(b.BusinessID)

		b.ReviewCount = len(rs)
		b.TotalReviews = len(rs)
		for _, r := range rs {
			if r.Stars >= 4 {
				b.PositiveReviews++
			}
		}
		for _, hours := range c.Time {
			for _, n := range hours {
				b.TotalCheckins += n
			}
		}
		b.RepeatCheckins = g.faker.Int(0, b.TotalCheckins)

		businesses = append(businesses, b)
		checkins = append(checkins, c)
		reviews = append(reviews, rs...)
	}

	if err := writeLines(files.Business, businesses); err != nil {
		return files, err
	}
	if err := writeLines(files.CheckIn, checkins); err != nil {
		return files, err
	}
	if err := writeLines(files.User, users); err != nil {
		return files, err
	}
	if err := writeLines(files.Review, reviews); err != nil {
		return files, err
	}

	logging.Info().
		Str("dir", dir).
		Int("businesses", len(businesses)).
		Int("users", len(users)).
		Int("reviews", len(reviews)).
		Msg("Sample dataset written")
	return files, nil
}

func (g *Generator) business() businessLine {
	f := g.faker
	p := Choose(f, places)

	hours := map[string]string{}
	open := f.Int(6, 11)
	for _, d := range days {
		if f.Int(0, 6) == 0 {
			continue
		}
		hours[d] = fmt.Sprintf("%d:0-%d:0", open, open+f.Int(6, 12))
	}

	return businessLine{
		BusinessID: f.ID(),
		Name:       f.Company(),
		Address:    f.Street(),
		City:       p.City,
		State:      p.State,
		PostalCode: p.Zip,
		Latitude:   p.Lat + f.Float64(-0.01, 0.01),
		Longitude:  p.Lon + f.Float64(-0.01, 0.01),
		Stars:      f.Stars(),
		IsOpen:     ChooseWeighted(f, []int{1, 0}, []int{9, 1}),
		Attributes: map[string]any{
			"WiFi":                   Choose(f, []string{"free", "no", "paid"}),
			"OutdoorSeating":         f.Bool(),
			"RestaurantsPriceRange2": f.Int(1, 4),
		},
		Categories:       Sample(f, categories, f.Int(1, 3)),
		Hours:            hours,
		RegistrationDate: f.DateRange(earliest, latest).Format(records.DateLayout),
	}
}

func (g *Generator) checkins(businessID string) checkinLine {
	f := g.faker
	c := checkinLine{BusinessID: businessID, Time: map[string]map[string]int{}}
	for _, d := range Sample(f, days, f.Int(0, len(days))) {
		hours := map[string]int{}
		for range f.Int(1, 4) {
			hours[fmt.Sprintf("%d:00", f.Int(0, 23))] += f.Int(1, 20)
		}
		c.Time[d] = hours
	}
	return c
}

func (g *Generator) reviews(businessID string, userIDs []string) []records.Review {
	f := g.faker
	n := f.Int(0, max(0, g.cfg.MaxReviews))
	out := make([]records.Review, 0, n)
	for range n {
		out = append(out, records.Review{
			ReviewID:   f.ID(),
			UserID:     Choose(f, userIDs),
			BusinessID: businessID,
			Stars:      float64(f.Int(1, 5)),
			Date:       f.DateRange(earliest, latest).Format("2006-01-02 15:04:05"),
			Text:       f.Sentence(f.Int(8, 30)),
			Useful:     f.Int(0, 10),
			Funny:      f.Int(0, 5),
			Cool:       f.Int(0, 5),
		})
	}
	return out
}

func (g *Generator) users() []userLine {
	f := g.faker
	ids := make([]string, g.cfg.Users)
	for i := range ids {
		ids[i] = f.ID()
	}

	out := make([]userLine, len(ids))
	for i, id := range ids {
		since := f.DateRange(earliest, latest)
		var elite []int
		for y := since.Year() + 1; y <= latest.Year(); y++ {
			if f.Int(0, 4) == 0 {
				elite = append(elite, y)
			}
		}
		if elite == nil {
			elite = []int{}
		}
		out[i] = userLine{
			UserID:       id,
			Name:         f.FirstName(),
			ReviewCount:  f.Int(0, 300),
			AverageStars: float64(f.Int(100, 500)) / 100,
			Useful:       f.Int(0, 500),
			Funny:        f.Int(0, 200),
			Cool:         f.Int(0, 200),
			Friends:      Sample(f, ids, f.Int(0, 5)),
			Elite:        elite,
			Fans:         f.Int(0, 50),
			YelpingSince: since.Format(records.DateLayout),
			Compliments: records.Compliments{
				Cool:   f.Int(0, 20),
				Hot:    f.Int(0, 20),
				Note:   f.Int(0, 20),
				Photos: f.Int(0, 10),
				Plain:  f.Int(0, 20),
				Writer: f.Int(0, 10),
			},
		}
	}
	return out
}

func writeLines[T any](path string, lines []T) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, l := range lines {
		if err := enc.Encode(l); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return file.Close()
}
