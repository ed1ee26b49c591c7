package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/pkordes/trip-planner/internal/timeofday"
)

// DateLayout is the ISO calendar date format used for every stored date.
const DateLayout = "2006-01-02"

// MaxTripDays bounds the number of days a date range may generate.
const MaxTripDays = 3660

const secondsPerDay = 24 * 60 * 60

var legacyDatePattern = regexp.MustCompile(`^(\d{1,2})[-/](\d{1,2})[-/](\d{4})$`)

// NormalizeDate converts user input into an ISO "YYYY-MM-DD" date.
// Accepted forms are ISO dates and the older "DD/MM/YYYY" or "DD-MM-YYYY"
// input. The empty string normalizes to itself (an unset date).
// Returns ErrValidation for anything else, including impossible calendar
// dates such as 2025-02-30.
func NormalizeDate(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	iso := s
	if m := legacyDatePattern.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		iso = fmt.Sprintf("%s-%02d-%02d", m[3], month, day)
	}
	t, err := time.Parse(DateLayout, iso)
	if err != nil || t.Format(DateLayout) != iso {
		return "", fmt.Errorf("%w: invalid date %q", ErrValidation, s)
	}
	return iso, nil
}

// DayCount returns the number of calendar days in [start, end], both
// inclusive. Both arguments must be ISO dates with start <= end.
func DayCount(start, end string) (int, error) {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid start date %q", ErrValidation, start)
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid end date %q", ErrValidation, end)
	}
	if e.Before(s) {
		return 0, fmt.Errorf("%w: end date cannot be earlier than start date", ErrValidation)
	}
	// Whole days on the UTC dates; a time.Duration saturates after ~292 years.
	return int(e.Unix()/secondsPerDay-s.Unix()/secondsPerDay) + 1, nil
}

// AddDays returns the ISO date n days after iso. The input must already be
// a valid ISO date.
func AddDays(iso string, n int) string {
	t, err := time.Parse(DateLayout, iso)
	if err != nil {
		return iso
	}
	return t.AddDate(0, 0, n).Format(DateLayout)
}

func validateClock(field, hhmm string) error {
	if hhmm == "" {
		return nil
	}
	if _, ok := timeofday.ToMinutes(hhmm); !ok {
		return fmt.Errorf("%w: %s must be HH:MM", ErrValidation, field)
	}
	return nil
}
