package utils

import (
	"fmt"
	"math"
	"time"

	"github.com/julianstephens/streaklit/internal/constants"
)

// StartOfDay truncates t to midnight in t's own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayKey returns the canonical YYYY-MM-DD identifier of t's calendar day in t's location.
// Two instants on the same local day always produce the same key.
func DayKey(t time.Time) string {
	return StartOfDay(t).Format(constants.DateFormat)
}

// TodayKey returns the day key for the current moment in loc.
func TodayKey(loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return DayKey(time.Now().In(loc))
}

// CivilDate maps t's calendar day (in t's location) to midnight UTC.
// Arithmetic on civil dates is free of DST shifts, so a day is always 24h.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDayKey parses a YYYY-MM-DD key into its civil date (midnight UTC).
func ParseDayKey(key string) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day key %q: %w", key, err)
	}
	return t, nil
}

// DaysBetween returns the whole number of calendar days from a to b.
// The result is negative when b is before a.
func DaysBetween(a, b time.Time) int {
	return int(CivilDate(b).Sub(CivilDate(a)).Hours() / 24)
}

// RoundHalfUp rounds to the nearest integer with halves going toward +Inf.
func RoundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

// Percent returns round(100*num/den), or 0 when den is not positive.
func Percent(num, den int) int {
	if den <= 0 {
		return 0
	}
	return int(RoundHalfUp(float64(num) / float64(den) * 100))
}

// GetTodayInTimezone returns today's date string (YYYY-MM-DD) in the specified timezone.
func GetTodayInTimezone(timezone string) (string, error) {
	now, err := NowInTimezone(timezone)
	if err != nil {
		return "", err
	}
	return DayKey(now), nil
}

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// NowInTimezone returns the current time in the specified timezone.
func NowInTimezone(timezone string) (time.Time, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return time.Now().In(loc), nil
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	if timezone == "" || timezone == "Local" {
		return true
	}
	_, err := time.LoadLocation(timezone)
	return err == nil
}

// ValidateDayKey checks if the string is a well-formed day key.
func ValidateDayKey(key string) bool {
	_, err := ParseDayKey(key)
	return err == nil
}
