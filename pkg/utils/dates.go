package utils

import (
	"fmt"
	"strings"
	"time"
)

// Wire layouts accepted for service window timestamps
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02T15:04:05"
)

// LocalDate is a calendar date in the viewer's time zone, with no time component
type LocalDate struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date the instant falls on in the given location
func DateOf(t time.Time, loc *time.Location) LocalDate {
	year, month, day := t.In(loc).Date()
	return LocalDate{Year: year, Month: month, Day: day}
}

// Today returns the current date in the given location
func Today(loc *time.Location) LocalDate {
	return DateOf(time.Now(), loc)
}

// ParseLocalDate parses a YYYY-MM-DD string into a LocalDate
func ParseLocalDate(s string) (LocalDate, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return LocalDate{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	year, month, day := t.Date()
	return LocalDate{Year: year, Month: month, Day: day}, nil
}

// String formats the date as YYYY-MM-DD
func (d LocalDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// IsZero reports whether the date is the zero value
func (d LocalDate) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// MarshalJSON encodes the date as a "YYYY-MM-DD" string
func (d LocalDate) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON decodes a "YYYY-MM-DD" string
func (d *LocalDate) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseLocalDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// NoonAnchor returns the date at 12:00 in the given location. Date-only wire
// values are anchored at local noon rather than midnight so that converting the
// instant across nearby time zones cannot shift the calendar day.
func (d LocalDate) NoonAnchor(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, loc)
}

// AddDays returns the date shifted by the given number of days, normalizing
// across month and year boundaries.
func (d LocalDate) AddDays(days int) LocalDate {
	t := time.Date(d.Year, d.Month, d.Day+days, 12, 0, 0, 0, time.UTC)
	year, month, day := t.Date()
	return LocalDate{Year: year, Month: month, Day: day}
}

// ParseServiceTime parses a service window timestamp from the wire. It accepts
// RFC3339 with offset, a zone-less datetime (interpreted in loc), or a bare
// date (anchored at local noon). Returns false for empty or unparseable input;
// callers exclude those records instead of failing the whole pass.
func ParseServiceTime(raw string, loc *time.Location) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation(DateTimeLayout, raw, loc); err == nil {
		return t, true
	}
	if d, err := ParseLocalDate(raw); err == nil {
		return d.NoonAnchor(loc), true
	}
	return time.Time{}, false
}
