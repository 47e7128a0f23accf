package dataset

import (
	"fmt"

	"attributionengine/internal/domain"
)

// PercentChange is the fractional change from prev to cur. it is undefined
// when prev is 0
func PercentChange(prev, cur float64) (float64, bool) {
	if prev == 0 {
		return 0, false
	}
	return (cur - prev) / prev, true
}

// fillReturnsFromLevels derives the period return of the given rows from
// consecutive index levels. records must be date-ordered; the first row
// has no prior level and is treated as the start of the index, so 0
func fillReturnsFromLevels(records []domain.BenchmarkRecord, indexes []int) error {
	for _, i := range indexes {
		if i == 0 {
			records[i].Return = 0
			continue
		}
		change, ok := PercentChange(records[i-1].Level, records[i].Level)
		if !ok {
			return fmt.Errorf("cannot derive benchmark return on %s: previous level is 0", records[i].Date.Format("2006-01-02"))
		}
		records[i].Return = change
	}
	return nil
}
