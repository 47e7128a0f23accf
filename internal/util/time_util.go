package util

import (
	"fmt"
	"time"
)

const layout = "2006-01-02"

func NewDate(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// DateKey strips time of day and location so dates can be used as
// map keys in joins
func DateKey(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func DateLte(t1, t2 time.Time) bool {
	return t1.Before(t2) || t1.Format(layout) == t2.Format(layout)
}

func DateGte(t1, t2 time.Time) bool {
	return t1.After(t2) || t1.Format(layout) == t2.Format(layout)
}

// InWindow is the closed [start, end] check used by every windowed query
func InWindow(t, start, end time.Time) bool {
	return DateGte(t, start) && DateLte(t, end)
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse date %q: %w", s, err)
	}
	return t, nil
}

// QuarterBounds returns the first and last day of the calendar quarter
// containing t
func QuarterBounds(t time.Time) (time.Time, time.Time) {
	startMonth := ((int(t.Month())-1)/3)*3 + 1
	start := NewDate(t.Year(), startMonth, 1)
	end := start.AddDate(0, 3, -1)
	return start, end
}

func QuarterLabel(t time.Time) string {
	return fmt.Sprintf("%d Q%d", t.Year(), (int(t.Month())-1)/3+1)
}
