package records

import "time"

// Success score weights. They are fixed and not configurable.
const (
	AgeWeight     = 0.3
	CheckinWeight = 0.4
	ReviewWeight  = 0.3
)

// DateLayout is the format of registration_date in the business dataset.
const DateLayout = "2006-01-02"

// DefaultRegistrationDate is used when a business record has no
// registration_date, so business_age is never null.
var DefaultRegistrationDate = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// BusinessAge returns the number of fully elapsed years between registered
// and now.
func BusinessAge(registered, now time.Time) int {
	age := now.Year() - registered.Year()
	if now.Month() < registered.Month() ||
		(now.Month() == registered.Month() && now.Day() < registered.Day()) {
		age--
	}
	return age
}

// SuccessScore combines business age with the repeat check-in rate and the
// positive review rate. A ratio with a zero denominator contributes zero.
func SuccessScore(age, repeatCheckins, positiveReviews, totalCheckins, totalReviews int) float64 {
	return AgeWeight*float64(age) +
		CheckinWeight*ratio(repeatCheckins, totalCheckins) +
		ReviewWeight*ratio(positiveReviews, totalReviews)
}

func ratio(num, den int) float64 {
	if den <= 0 {
		return 0
	}
	return float64(num) / float64(den)
}
