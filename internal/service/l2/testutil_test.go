package l2_service

import (
	"time"

	"attributionengine/internal/domain"

	"github.com/shopspring/decimal"
)

func newRecord(date time.Time, sector, instrument string, ret float64, value int64) domain.ReturnRecord {
	return domain.ReturnRecord{
		Date:       date,
		Sector:     sector,
		Instrument: instrument,
		Return:     ret,
		AssetValue: decimal.NewFromInt(value),
	}
}

func newSeries(dates []time.Time, values []float64) domain.Series {
	out := make(domain.Series, len(values))
	for i, v := range values {
		out[i] = domain.Observation{Date: dates[i], Value: v}
	}
	return out
}

func monthEnds(year, month, n int) []time.Time {
	out := make([]time.Time, n)
	for i := 0; i < n; i++ {
		// first of the next month minus a day
		out[i] = time.Date(year, time.Month(month+i+1), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	}
	return out
}
