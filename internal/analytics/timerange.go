package analytics

import (
	"fmt"
	"strings"
	"time"
)

// TimeRange is a trailing window ending now.
type TimeRange string

const (
	Week        TimeRange = "week"
	Month       TimeRange = "month"
	ThreeMonths TimeRange = "3months"
	Year        TimeRange = "year"
	AllTime     TimeRange = "all"
)

// Days returns the window length, or 0 for AllTime.
func (r TimeRange) Days() int {
	switch r {
	case Week:
		return 7
	case Month:
		return 30
	case ThreeMonths:
		return 90
	case Year:
		return 365
	}
	return 0
}

// Cutoff returns the start of the window. It is the zero time for AllTime.
func (r TimeRange) Cutoff(now time.Time) time.Time {
	if r == AllTime {
		return time.Time{}
	}
	return now.AddDate(0, 0, -r.Days())
}

// ParseTimeRange accepts the canonical names and the display labels
// ("3 Months"). An empty string is a week.
func ParseTimeRange(s string) (TimeRange, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "week", "7d":
		return Week, nil
	case "month", "30d":
		return Month, nil
	case "3months", "3 months", "three_months", "90d":
		return ThreeMonths, nil
	case "year", "365d":
		return Year, nil
	case "all":
		return AllTime, nil
	}
	return "", fmt.Errorf("unknown time range %q", s)
}
