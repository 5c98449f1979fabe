package utils

import "time"

// MonthGrid describes the cell layout of one month view. Weekday numbering is
// Sunday=0, matching time.Weekday, for both header labels and blank counts.
type MonthGrid struct {
	Year           int        `json:"year"`
	Month          time.Month `json:"month"`
	DaysInMonth    int        `json:"days_in_month"`
	LeadingBlanks  int        `json:"leading_blanks"`
	TrailingBlanks int        `json:"trailing_blanks"`
}

// DaysIn returns the number of days in the given month (month is 1-based)
func DaysIn(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this month
	return time.Date(year, month+1, 0, 12, 0, 0, 0, time.UTC).Day()
}

// BuildMonthGrid computes the grid shell for one month (month is 1-based).
// The cell total always completes whole weeks:
// LeadingBlanks + DaysInMonth + TrailingBlanks is a multiple of 7.
func BuildMonthGrid(year int, month time.Month) MonthGrid {
	days := DaysIn(year, month)
	leading := int(time.Date(year, month, 1, 12, 0, 0, 0, time.UTC).Weekday())
	trailing := (7 - (leading+days)%7) % 7

	return MonthGrid{
		Year:           year,
		Month:          month,
		DaysInMonth:    days,
		LeadingBlanks:  leading,
		TrailingBlanks: trailing,
	}
}

// AddMonths shifts a (year, month) pair by delta months, rolling over year
// boundaries in either direction.
func AddMonths(year int, month time.Month, delta int) (int, time.Month) {
	t := time.Date(year, month+time.Month(delta), 1, 12, 0, 0, 0, time.UTC)
	return t.Year(), t.Month()
}
