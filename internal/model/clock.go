package model

import (
	"strconv"
	"strings"
)

// DateLayout is the calendar-date format used in the API and in DATE columns.
const DateLayout = "2006-01-02"

// MinuteOfDay parses a "HH:MM" clock value (a trailing ":SS" from a MySQL
// TIME column is tolerated and ignored) into minutes since midnight.  The
// second return value reports whether the input was well-formed.
func MinuteOfDay(s string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// NormalizeClock reduces a TIME column value like "09:00:00" to the "HH:MM"
// form used throughout the API.  Malformed input is returned unchanged.
func NormalizeClock(s string) string {
	if _, ok := MinuteOfDay(s); !ok {
		return s
	}
	parts := strings.Split(strings.TrimSpace(s), ":")
	return parts[0] + ":" + parts[1]
}
