//-------------------------------------------------------------------------
//
// pgEdge Business Finder
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package records

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBusinessAge(t *testing.T) {
	tests := []struct {
		name       string
		registered time.Time
		now        time.Time
		want       int
	}{
		{"same day", date(2020, 5, 10), date(2020, 5, 10), 0},
		{"one year minus one day", date(2023, 6, 16), date(2024, 6, 15), 0},
		{"exactly one year", date(2023, 6, 16), date(2024, 6, 16), 1},
		{"earlier month", date(2010, 12, 1), date(2024, 3, 1), 13},
		{"later month", date(2010, 2, 1), date(2024, 3, 1), 14},
		{"default epoch", DefaultRegistrationDate, date(2026, 10, 17), 26},
		{"leap day", date(2020, 2, 29), date(2021, 2, 28), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BusinessAge(tt.registered, tt.now))
		})
	}
}

func TestSuccessScore(t *testing.T) {
	assert.InDelta(t, 0.3*10+0.4*0.5+0.3*0.25, SuccessScore(10, 5, 1, 10, 4), 1e-9)

	// Zero denominators contribute nothing.
	assert.InDelta(t, 0.3*7, SuccessScore(7, 5, 5, 0, 0), 1e-9)
	assert.InDelta(t, 0.0, SuccessScore(0, 0, 0, 0, 0), 1e-9)
}

func TestSuccessScoreMonotonic(t *testing.T) {
	prev := SuccessScore(0, 3, 2, 10, 10)
	for age := 1; age <= 50; age++ {
		cur := SuccessScore(age, 3, 2, 10, 10)
		assert.GreaterOrEqual(t, cur, prev, "age %d", age)
		prev = cur
	}

	prev = SuccessScore(5, 0, 2, 10, 10)
	for repeat := 1; repeat <= 10; repeat++ {
		cur := SuccessScore(5, repeat, 2, 10, 10)
		assert.GreaterOrEqual(t, cur, prev, "repeat %d", repeat)
		prev = cur
	}

	prev = SuccessScore(5, 3, 0, 10, 10)
	for positive := 1; positive <= 10; positive++ {
		cur := SuccessScore(5, 3, positive, 10, 10)
		assert.GreaterOrEqual(t, cur, prev, "positive %d", positive)
		prev = cur
	}
}

func TestParseBusiness(t *testing.T) {
	now := date(2026, 10, 17)
	line := `{"business_id":"b1","name":"Joe's \"Best\" Cafe","neighborhood":"","address":"1 Main St",
		"city":"Phoenix","state":"AZ","postal_code":"85001","latitude":33.4,"longitude":-112.0,
		"stars":4.5,"review_count":12,"is_open":1,"attributes":{"WiFi": "free", "Parking": {"lot": true}},
		"categories":["Coffee & Tea","Bakeries"],"hours":{"Monday":"7:0-15:0"},
		"registration_date":"2015-11-01","repeat_checkins":4,"positive_reviews":9,
		"total_checkins":8,"total_reviews":12}`
	line = strings.ReplaceAll(line, "\n", "")

	b, err := ParseBusiness([]byte(line), now)
	require.NoError(t, err)

	assert.Equal(t, "b1", b.BusinessID)
	assert.Equal(t, `Joe's "Best" Cafe`, b.Name)
	assert.Equal(t, "85001", b.PostalCode)
	assert.True(t, b.IsOpen)
	assert.Equal(t, "Coffee & Tea, Bakeries", b.Categories)
	assert.JSONEq(t, `{"WiFi":"free","Parking":{"lot":true}}`, string(b.Attributes))
	assert.JSONEq(t, `{"Monday":"7:0-15:0"}`, string(b.Hours))
	assert.Equal(t, 8, b.TotalCheckins)
	assert.Equal(t, 10, b.BusinessAge)
	assert.InDelta(t, SuccessScore(10, 4, 9, 8, 12), b.SuccessScore, 1e-9)
}

func TestParseBusinessDefaults(t *testing.T) {
	now := date(2026, 10, 17)
	b, err := ParseBusiness([]byte(`{"business_id":"b2","name":"X","categories":"Bars, Nightlife","is_open":false,"hours":null}`), now)
	require.NoError(t, err)

	assert.Equal(t, DefaultRegistrationDate, b.RegistrationDate)
	assert.Equal(t, 26, b.BusinessAge)
	assert.InDelta(t, 0.3*26, b.SuccessScore, 1e-9)
	assert.Equal(t, "Bars, Nightlife", b.Categories)
	assert.False(t, b.IsOpen)
	assert.Equal(t, "{}", string(b.Attributes))
	assert.Equal(t, "{}", string(b.Hours))
	assert.Equal(t, 0, b.TotalCheckins)
}

func TestParseBusinessErrors(t *testing.T) {
	now := date(2026, 10, 17)
	tests := []struct {
		name string
		line string
	}{
		{"not json", `{"business_id": "b1",`},
		{"missing id", `{"name":"No Id"}`},
		{"bad date", `{"business_id":"b1","registration_date":"01/02/2015"}`},
		{"bad is_open", `{"business_id":"b1","is_open":"maybe"}`},
		{"bad categories", `{"business_id":"b1","categories":42}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBusiness([]byte(tt.line), now)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedRecord))
		})
	}
}

func TestParseCheckIns(t *testing.T) {
	line := `{"business_id":"b1","time":{"Tuesday":{"9:00":2,"10:00":1},"Monday":{"11:00":3}}}`
	rows, err := ParseCheckIns([]byte(line))
	require.NoError(t, err)

	assert.Equal(t, []CheckIn{
		{BusinessID: "b1", Day: "Monday", Hour: "11:00", Count: 3},
		{BusinessID: "b1", Day: "Tuesday", Hour: "10:00", Count: 1},
		{BusinessID: "b1", Day: "Tuesday", Hour: "9:00", Count: 2},
	}, rows)

	rows, err = ParseCheckIns([]byte(`{"business_id":"b2"}`))
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = ParseCheckIns([]byte(`{"time":{}}`))
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestParseReview(t *testing.T) {
	r, err := ParseReview([]byte(`{"review_id":"r1","user_id":"u1","business_id":"b1","stars":5,"date":"2016-03-09","text":"It's 'great'"}`))
	require.NoError(t, err)

	assert.Equal(t, Review{
		ReviewID:   "r1",
		UserID:     "u1",
		BusinessID: "b1",
		Stars:      5,
		Date:       "2016-03-09",
		Text:       "It's 'great'",
	}, r)

	_, err = ParseReview([]byte(`{"user_id":"u1"}`))
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestParseUser(t *testing.T) {
	tests := []struct {
		name        string
		line        string
		wantFriends []string
		wantElite   []int
	}{
		{
			name:        "lists",
			line:        `{"user_id":"u1","friends":["a","b"],"elite":[2012,2013]}`,
			wantFriends: []string{"a", "b"},
			wantElite:   []int{2012, 2013},
		},
		{
			name:        "comma strings",
			line:        `{"user_id":"u1","friends":"a, b","elite":"2015,2016"}`,
			wantFriends: []string{"a", "b"},
			wantElite:   []int{2015, 2016},
		},
		{
			name:        "none and absent",
			line:        `{"user_id":"u1","friends":"None"}`,
			wantFriends: []string{},
			wantElite:   []int{},
		},
		{
			name:        "quoted years",
			line:        `{"user_id":"u1","elite":["2010"]}`,
			wantFriends: []string{},
			wantElite:   []int{2010},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := ParseUser([]byte(tt.line))
			require.NoError(t, err)
			assert.Equal(t, tt.wantFriends, u.Friends)
			assert.Equal(t, tt.wantElite, u.Elite)
		})
	}
}

func TestParseUserFields(t *testing.T) {
	u, err := ParseUser([]byte(`{"user_id":"u9","name":"Ann","review_count":3,"average_stars":4.25,
		"useful":1,"funny":2,"cool":3,"fans":4,"compliment_cool":5,"compliment_writer":6,
		"yelping_since":"2012-01-01"}`))
	require.NoError(t, err)

	assert.Equal(t, "Ann", u.Name)
	assert.Equal(t, 3, u.ReviewCount)
	assert.InDelta(t, 4.25, u.AverageStars, 1e-9)
	assert.Equal(t, 3, u.Cool)
	assert.Equal(t, 5, u.Compliments.Cool)
	assert.Equal(t, 6, u.Compliments.Writer)
	assert.Equal(t, 0, u.Compliments.Hot)
	assert.Equal(t, "2012-01-01", u.YelpingSince)

	_, err = ParseUser([]byte(`{"user_id":"u1","elite":"twenty"}`))
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestLineReader(t *testing.T) {
	lr := NewLineReader(strings.NewReader("{\"a\":1}\n\n   \n{\"b\":2}\r\n{\"c\":3}"))

	var got []string
	var lines []int
	for {
		b, ok := lr.Next()
		if !ok {
			break
		}
		got = append(got, string(b))
		lines = append(lines, lr.Line())
	}

	require.NoError(t, lr.Err())
	assert.Equal(t, []string{`{"a":1}`, `{"b":2}`, `{"c":3}`}, got)
	assert.Equal(t, []int{1, 4, 5}, lines)
}

func TestSplitCategories(t *testing.T) {
	assert.Nil(t, SplitCategories(""))
	assert.Equal(t, []string{"Coffee", "Bakery", "Coffee"}, SplitCategories("Coffee, Bakery, Coffee"))
}
