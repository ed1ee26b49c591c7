// Package timeofday converts between "HH:MM" wall-clock strings and minute
// offsets from midnight, and formats activity durations for display.
//
// Every function here is total: unparsable input yields a zero value and a
// false flag or an empty string, never a panic.
package timeofday

import (
	"fmt"
	"strconv"
	"strings"
)

// MinutesPerDay is the length of the wrap-around cycle used by FromMinutes
// and Duration.
const MinutesPerDay = 24 * 60

// ToMinutes parses a strict "H:MM" or "HH:MM" string into minutes after
// midnight. It returns false on a missing colon, non-numeric parts, or an
// out-of-range hour or minute.
func ToMinutes(s string) (int, bool) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok || len(hh) < 1 || len(hh) > 2 || len(mm) != 2 {
		return 0, false
	}
	if !allDigits(hh) || !allDigits(mm) {
		return 0, false
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// FromMinutes normalizes total into [0, 1440) with modulo wrap-around
// (negative values included) and formats it as zero-padded "HH:MM".
func FromMinutes(total int) string {
	n := total % MinutesPerDay
	if n < 0 {
		n += MinutesPerDay
	}
	return fmt.Sprintf("%02d:%02d", n/60, n%60)
}

// AddMinutes adds minutes to an "HH:MM" time, wrapping past midnight.
// It returns "" when hhmm cannot be parsed.
func AddMinutes(hhmm string, minutes int) string {
	start, ok := ToMinutes(hhmm)
	if !ok {
		return ""
	}
	return FromMinutes(start + minutes)
}

// Duration returns the human-readable span from start to end.
// When end is earlier than start the span is assumed to cross midnight.
// Returns "" if either time is unparsable.
//
//	Duration("09:00", "10:45") == "1hrs, 45mins"
//	Duration("23:30", "00:15") == "45mins"
func Duration(start, end string) string {
	s, ok := ToMinutes(start)
	if !ok {
		return ""
	}
	e, ok := ToMinutes(end)
	if !ok {
		return ""
	}
	if e < s {
		e += MinutesPerDay
	}
	return FormatMinutes(e - s)
}

// FormatMinutes renders a minute count the way durations are displayed:
// "2hrs, 30mins", "2hrs" when the minute part is zero, "45mins" when the
// hour part is zero. Zero renders as "0mins".
func FormatMinutes(total int) string {
	if total < 0 {
		total = 0
	}
	hours, mins := total/60, total%60
	switch {
	case hours > 0 && mins > 0:
		return fmt.Sprintf("%dhrs, %dmins", hours, mins)
	case hours > 0:
		return fmt.Sprintf("%dhrs", hours)
	default:
		return fmt.Sprintf("%dmins", mins)
	}
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
