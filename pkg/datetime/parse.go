// Package datetime provides date and time utility functions.
package datetime

import (
	"fmt"
	"time"

	"github.com/iwvelando/finance-tracker/pkg/constants"
)

const (
	// DateLayout is the format expected in config files and is also the output
	// date format.
	DateLayout = constants.DateLayout

	// MonthLayout names a calendar month, e.g. 2024-03.
	MonthLayout = constants.MonthLayout
)

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseDate parses an ISO-8601 date. Both plain calendar dates and full
// RFC 3339 timestamps are accepted; the time of day is kept as given.
func ParseDate(value string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", value)
	}
	return t, nil
}

// FormatDate renders t as an ISO-8601 calendar date.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// AddMonths offsets t by the given number of months. When the day of month
// does not exist in the target month it is clamped to that month's last day,
// so Jan 31 plus one month is the last day of February.
func AddMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	first := time.Date(year, month+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	lastDay := first.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(first.Year(), first.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// ParseMonth parses a YYYY-MM calendar month into its first day in UTC.
func ParseMonth(value string) (time.Time, error) {
	t, err := time.Parse(MonthLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q: expected YYYY-MM", value)
	}
	return t, nil
}

// FormatMonth renders the calendar month containing t.
func FormatMonth(t time.Time) string {
	return t.Format(MonthLayout)
}
