package records

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"
)

// CategorySeparator joins and splits the categories column.
const CategorySeparator = ", "

type businessJSON struct {
	BusinessID       string          `json:"business_id"`
	Name             string          `json:"name"`
	Neighborhood     string          `json:"neighborhood"`
	Address          string          `json:"address"`
	City             string          `json:"city"`
	State            string          `json:"state"`
	PostalCode       string          `json:"postal_code"`
	Latitude         float64         `json:"latitude"`
	Longitude        float64         `json:"longitude"`
	Stars            float64         `json:"stars"`
	ReviewCount      int             `json:"review_count"`
	IsOpen           flexBool        `json:"is_open"`
	Attributes       json.RawMessage `json:"attributes"`
	Categories       categoryList    `json:"categories"`
	Hours            json.RawMessage `json:"hours"`
	RegistrationDate string          `json:"registration_date"`
	RepeatCheckins   int             `json:"repeat_checkins"`
	PositiveReviews  int             `json:"positive_reviews"`
	TotalCheckins    int             `json:"total_checkins"`
	TotalReviews     int             `json:"total_reviews"`
}

// ParseBusiness decodes one business line and fills in business_age and
// success_score relative to now.
func ParseBusiness(line []byte, now time.Time) (Business, error) {
	var in businessJSON
	if err := json.Unmarshal(line, &in); err != nil {
		return Business{}, fmt.Errorf("%w: business: %v", ErrMalformedRecord, err)
	}
	if in.BusinessID == "" {
		return Business{}, fmt.Errorf("%w: business: missing business_id", ErrMalformedRecord)
	}

	registered := DefaultRegistrationDate
	if in.RegistrationDate != "" {
		t, err := time.Parse(DateLayout, in.RegistrationDate)
		if err != nil {
			return Business{}, fmt.Errorf("%w: business %s: registration_date: %v",
				ErrMalformedRecord, in.BusinessID, err)
		}
		registered = t
	}

	age := BusinessAge(registered, now)

	return Business{
		BusinessID:       in.BusinessID,
		Name:             in.Name,
		Neighborhood:     in.Neighborhood,
		Address:          in.Address,
		City:             in.City,
		State:            in.State,
		PostalCode:       in.PostalCode,
		Latitude:         in.Latitude,
		Longitude:        in.Longitude,
		Stars:            in.Stars,
		ReviewCount:      in.ReviewCount,
		IsOpen:           bool(in.IsOpen),
		Attributes:       document(in.Attributes),
		Hours:            document(in.Hours),
		Categories:       string(in.Categories),
		TotalCheckins:    in.TotalCheckins,
		RegistrationDate: registered,
		BusinessAge:      age,
		SuccessScore: SuccessScore(age, in.RepeatCheckins, in.PositiveReviews,
			in.TotalCheckins, in.TotalReviews),
	}, nil
}

type checkinJSON struct {
	BusinessID string                    `json:"business_id"`
	Time       map[string]map[string]int `json:"time"`
}

// ParseCheckIns flattens the day → hour → count nesting of one check-in line
// into rows ordered by day then hour.
func ParseCheckIns(line []byte) ([]CheckIn, error) {
	var in checkinJSON
	if err := json.Unmarshal(line, &in); err != nil {
		return nil, fmt.Errorf("%w: checkin: %v", ErrMalformedRecord, err)
	}
	if in.BusinessID == "" {
		return nil, fmt.Errorf("%w: checkin: missing business_id", ErrMalformedRecord)
	}

	var out []CheckIn
	for _, day := range slices.Sorted(maps.Keys(in.Time)) {
		hours := in.Time[day]
		for _, hour := range slices.Sorted(maps.Keys(hours)) {
			out = append(out, CheckIn{
				BusinessID: in.BusinessID,
				Day:        day,
				Hour:       hour,
				Count:      hours[hour],
			})
		}
	}
	return out, nil
}

// ParseReview decodes one review line.
func ParseReview(line []byte) (Review, error) {
	var r Review
	if err := json.Unmarshal(line, &r); err != nil {
		return Review{}, fmt.Errorf("%w: review: %v", ErrMalformedRecord, err)
	}
	if r.ReviewID == "" {
		return Review{}, fmt.Errorf("%w: review: missing review_id", ErrMalformedRecord)
	}
	return r, nil
}

type userJSON struct {
	UserID       string     `json:"user_id"`
	Name         string     `json:"name"`
	ReviewCount  int        `json:"review_count"`
	AverageStars float64    `json:"average_stars"`
	Useful       int        `json:"useful"`
	Funny        int        `json:"funny"`
	Cool         int        `json:"cool"`
	Friends      stringList `json:"friends"`
	Elite        yearList   `json:"elite"`
	Fans         int        `json:"fans"`
	YelpingSince string     `json:"yelping_since"`
	Compliments
}

// ParseUser decodes one user line. Friends and Elite are never nil so they
// store as empty arrays rather than NULL.
func ParseUser(line []byte) (User, error) {
	var in userJSON
	if err := json.Unmarshal(line, &in); err != nil {
		return User{}, fmt.Errorf("%w: user: %v", ErrMalformedRecord, err)
	}
	if in.UserID == "" {
		return User{}, fmt.Errorf("%w: user: missing user_id", ErrMalformedRecord)
	}

	u := User{
		UserID:       in.UserID,
		Name:         in.Name,
		ReviewCount:  in.ReviewCount,
		AverageStars: in.AverageStars,
		Useful:       in.Useful,
		Funny:        in.Funny,
		Cool:         in.Cool,
		Friends:      []string(in.Friends),
		Elite:        []int(in.Elite),
		Fans:         in.Fans,
		YelpingSince: in.YelpingSince,
		Compliments:  in.Compliments,
	}
	if u.Friends == nil {
		u.Friends = []string{}
	}
	if u.Elite == nil {
		u.Elite = []int{}
	}
	return u, nil
}

// SplitCategories tokenizes a categories column the same way the finder's
// SQL does.
func SplitCategories(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, CategorySeparator)
}

// document returns a compact JSON object, substituting {} for absent or
// null input.
func document(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return json.RawMessage("{}")
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return raw
	}
	return buf.Bytes()
}

// flexBool accepts true/false, 0/1 and null.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case "true", "1":
		*b = true
	case "false", "0", "null":
		*b = false
	default:
		return fmt.Errorf("invalid boolean %s", data)
	}
	return nil
}

// categoryList accepts either a pre-joined string or a list of strings.
type categoryList string

func (c *categoryList) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*c = categoryList(strings.Join(list, CategorySeparator))
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*c = categoryList(s)
	return nil
}

// stringList accepts a JSON list of strings or a comma separated string.
// The literal "None" used by some dataset exports means empty.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*l = stringList{}
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*l = list
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*l = splitTrim(s)
	return nil
}

// yearList accepts a JSON list of numbers or numeric strings, or a comma
// separated string of years.
type yearList []int

func (l *yearList) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*l = yearList{}
		return nil
	}
	var parts []string
	if len(data) > 0 && data[0] == '[' {
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		for _, r := range raw {
			parts = append(parts, strings.Trim(string(r), `"`))
		}
	} else {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parts = splitTrim(s)
	}

	years := make(yearList, 0, len(parts))
	for _, p := range parts {
		y, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("invalid elite year %q", p)
		}
		years = append(years, y)
	}
	*l = years
	return nil
}

func splitTrim(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" || p == "None" {
			continue
		}
		out = append(out, p)
	}
	return out
}
