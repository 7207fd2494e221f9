package utils

import (
	"fmt"
	"strings"
	"time"
)

const (
	layoutDate     = "2006-01-02"
	layoutClock    = "15:04"
	layoutDateTime = "2006-01-02 15:04:05"
)

// Location is the timezone travel dates and clock times are interpreted in.
var Location = time.Local

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// ParseDate parses YYYY-MM-DD in Location.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(layoutDate, strings.TrimSpace(s), Location)
}

// ParseClock parses HH:MM into minutes since midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse(layoutClock, strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// CanonicalClock rewrites a parseable clock such as "9:05" as "09:05".
// Unparseable input is returned trimmed.
func CanonicalClock(s string) string {
	m, err := ParseClock(s)
	if err != nil {
		return strings.TrimSpace(s)
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// CombineDateClock joins a YYYY-MM-DD date and an HH:MM clock into a timestamp in Location.
func CombineDateClock(date, clock string) (time.Time, error) {
	return time.ParseInLocation(layoutDate+" "+layoutClock, strings.TrimSpace(date)+" "+strings.TrimSpace(clock), Location)
}

// FormatDate formats time to YYYY-MM-DD in Location.
func FormatDate(t time.Time) string {
	return t.In(Location).Format(layoutDate)
}

// FormatClock formats time to HH:MM in Location.
func FormatClock(t time.Time) string {
	return t.In(Location).Format(layoutClock)
}

// FormatDateTime formats time to "YYYY-MM-DD HH:MM:SS" in Location.
func FormatDateTime(t time.Time) string {
	return t.In(Location).Format(layoutDateTime)
}

// SameDay reports whether both instants fall on the same calendar day in Location.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.In(Location).Date()
	by, bm, bd := b.In(Location).Date()
	return ay == by && am == bm && ad == bd
}
