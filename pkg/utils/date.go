package utils

import (
	"time"
)

// DateLayout is the calendar date format used by rate providers and the rate cache.
const DateLayout = "2006-01-02"

func ParseDate(dateStr string) (time.Time, error) {
	return time.Parse(DateLayout, dateStr)
}

func FormatDate(date time.Time) string {
	return date.Format(DateLayout)
}

// AgeInDays reports how many whole days separate dateStr from now. Unparseable dates
// report -1.
func AgeInDays(dateStr string, now time.Time) int {
	date, err := ParseDate(dateStr)
	if err != nil {
		return -1
	}
	today := now.UTC().Truncate(24 * time.Hour)
	return int(today.Sub(date) / (24 * time.Hour))
}
