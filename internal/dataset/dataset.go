package dataset

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"attributionengine/internal/domain"
	"attributionengine/internal/util"

	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"
)

type Aggregation int

const (
	// AggregationMean is the simple average of instrument-period returns.
	// it ignores asset values and is the default everywhere
	AggregationMean Aggregation = iota
	AggregationValueWeighted
)

func (a Aggregation) String() string {
	if a == AggregationValueWeighted {
		return "value_weighted"
	}
	return "mean"
}

func ParseAggregation(s string) (Aggregation, error) {
	switch strings.ToLower(s) {
	case "", "mean":
		return AggregationMean, nil
	case "value_weighted":
		return AggregationValueWeighted, nil
	}
	return AggregationMean, fmt.Errorf("unknown aggregation %q", s)
}

// ReturnDataset is an immutable snapshot of portfolio, benchmark and
// commodity records. every accessor hands out copies
type ReturnDataset struct {
	records     []domain.ReturnRecord
	benchmarks  []domain.BenchmarkRecord
	commodities []domain.CommodityPrice
}

func New(
	records []domain.ReturnRecord,
	benchmarks []domain.BenchmarkRecord,
	commodities []domain.CommodityPrice,
) *ReturnDataset {
	rs := make([]domain.ReturnRecord, len(records))
	for i, r := range records {
		r.Date = util.DateKey(r.Date)
		rs[i] = r
	}
	sort.SliceStable(rs, func(i, j int) bool {
		if !rs[i].Date.Equal(rs[j].Date) {
			return rs[i].Date.Before(rs[j].Date)
		}
		if rs[i].Sector != rs[j].Sector {
			return rs[i].Sector < rs[j].Sector
		}
		return rs[i].Instrument < rs[j].Instrument
	})

	bs := make([]domain.BenchmarkRecord, len(benchmarks))
	for i, b := range benchmarks {
		b.Date = util.DateKey(b.Date)
		bs[i] = b
	}
	sort.SliceStable(bs, func(i, j int) bool {
		return bs[i].Date.Before(bs[j].Date)
	})

	cs := make([]domain.CommodityPrice, len(commodities))
	for i, c := range commodities {
		c.Date = util.DateKey(c.Date)
		cs[i] = c
	}
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].Commodity != cs[j].Commodity {
			return cs[i].Commodity < cs[j].Commodity
		}
		return cs[i].Date.Before(cs[j].Date)
	})

	return &ReturnDataset{
		records:     rs,
		benchmarks:  bs,
		commodities: cs,
	}
}

// WithRecords keeps benchmark and commodity data but swaps the portfolio
// records, which is how scenarios build their perturbed copy
func (d *ReturnDataset) WithRecords(records []domain.ReturnRecord) *ReturnDataset {
	return New(records, d.benchmarks, d.commodities)
}

func (d *ReturnDataset) Len() int {
	return len(d.records)
}

func (d *ReturnDataset) Records() []domain.ReturnRecord {
	out := make([]domain.ReturnRecord, len(d.records))
	copy(out, d.records)
	return out
}

func (d *ReturnDataset) Benchmarks() []domain.BenchmarkRecord {
	out := make([]domain.BenchmarkRecord, len(d.benchmarks))
	copy(out, d.benchmarks)
	return out
}

func (d *ReturnDataset) Commodities() []domain.CommodityPrice {
	out := make([]domain.CommodityPrice, len(d.commodities))
	copy(out, d.commodities)
	return out
}

// Window returns the records dated within [start, end]
func (d *ReturnDataset) Window(start, end time.Time) []domain.ReturnRecord {
	out := []domain.ReturnRecord{}
	for _, r := range d.records {
		if util.InWindow(r.Date, start, end) {
			out = append(out, r)
		}
	}
	return out
}

func (d *ReturnDataset) Sectors() []string {
	return SectorsOf(d.records)
}

func (d *ReturnDataset) Dates() []time.Time {
	seen := map[time.Time]bool{}
	out := []time.Time{}
	for _, r := range d.records {
		if !seen[r.Date] {
			seen[r.Date] = true
			out = append(out, r.Date)
		}
	}
	return out
}

// SectorsOf lists the distinct sectors in lexicographic order
func SectorsOf(records []domain.ReturnRecord) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, r := range records {
		if !seen[r.Sector] {
			seen[r.Sector] = true
			out = append(out, r.Sector)
		}
	}
	sort.Strings(out)
	return out
}

func GroupBySector(records []domain.ReturnRecord) map[string][]domain.ReturnRecord {
	out := map[string][]domain.ReturnRecord{}
	for _, r := range records {
		out[r.Sector] = append(out[r.Sector], r)
	}
	return out
}

func TotalValue(records []domain.ReturnRecord) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.AssetValue)
	}
	return total
}

// AggregateReturn collapses records into one return. an empty input and a
// value-weighted group with no value both give 0
func AggregateReturn(records []domain.ReturnRecord, mode Aggregation) float64 {
	if len(records) == 0 {
		return 0
	}
	if mode == AggregationValueWeighted {
		total := TotalValue(records)
		if total.IsZero() {
			return 0
		}
		weighted := 0.0
		for _, r := range records {
			weighted += r.Return * r.AssetValue.InexactFloat64()
		}
		return weighted / total.InexactFloat64()
	}

	returns := make([]float64, len(records))
	for i, r := range records {
		returns[i] = r.Return
	}
	mean, err := stats.Mean(returns)
	if err != nil {
		return 0
	}
	return mean
}

// PortfolioSeries aggregates all records per date
func (d *ReturnDataset) PortfolioSeries(mode Aggregation) domain.Series {
	return seriesByDate(d.records, mode)
}

// SectorSeries aggregates one sector's records per date
func (d *ReturnDataset) SectorSeries(sector string, mode Aggregation) domain.Series {
	records := []domain.ReturnRecord{}
	for _, r := range d.records {
		if r.Sector == sector {
			records = append(records, r)
		}
	}
	return seriesByDate(records, mode)
}

// BenchmarkSeries is the benchmark's periodic return series, oldest first
func (d *ReturnDataset) BenchmarkSeries() domain.Series {
	out := make(domain.Series, 0, len(d.benchmarks))
	for _, b := range d.benchmarks {
		out = append(out, domain.Observation{Date: b.Date, Value: b.Return})
	}
	return out
}

func seriesByDate(records []domain.ReturnRecord, mode Aggregation) domain.Series {
	byDate := map[time.Time][]domain.ReturnRecord{}
	dates := []time.Time{}
	for _, r := range records {
		if _, ok := byDate[r.Date]; !ok {
			dates = append(dates, r.Date)
		}
		byDate[r.Date] = append(byDate[r.Date], r)
	}
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].Before(dates[j])
	})

	out := make(domain.Series, 0, len(dates))
	for _, date := range dates {
		out = append(out, domain.Observation{
			Date:  date,
			Value: AggregateReturn(byDate[date], mode),
		})
	}
	return out
}
