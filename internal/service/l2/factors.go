package l2_service

import (
	"sort"
	"time"

	"attributionengine/internal/dataset"
	"attributionengine/internal/domain"
	"attributionengine/internal/logger"

	"github.com/montanaflynn/stats"
	"go.uber.org/zap"
)

const (
	MarketFactorName    = "market"
	CommodityFactorName = "commodity"
	MomentumFactorName  = "momentum"
	SizeFactorName      = "smb"
	ValueFactorName     = "hml"
)

// MarketFactor is the benchmark's periodic return series
func MarketFactor(ds *dataset.ReturnDataset) domain.Factor {
	return domain.Factor{Name: MarketFactorName, Series: ds.BenchmarkSeries()}
}

// CommodityFactor is the weighted sum of per-commodity percent changes.
// a date only gets a value when every weighted commodity that has any
// data also has a change on that date. commodities with no data at all
// are left out of the composite
func CommodityFactor(prices []domain.CommodityPrice, weights map[string]float64, log *zap.SugaredLogger) domain.Factor {
	log = logger.OrNop(log)

	byCommodity := map[string][]domain.CommodityPrice{}
	for _, p := range prices {
		byCommodity[p.Commodity] = append(byCommodity[p.Commodity], p)
	}

	names := make([]string, 0, len(weights))
	for name := range weights {
		names = append(names, name)
	}
	sort.Strings(names)

	active := []string{}
	changesByCommodity := map[string]map[time.Time]float64{}
	for _, name := range names {
		history := byCommodity[name]
		if len(history) == 0 {
			log.Debugw("skipping commodity with no price data", "commodity", name)
			continue
		}
		sort.Slice(history, func(i, j int) bool {
			return history[i].Date.Before(history[j].Date)
		})
		changes := map[time.Time]float64{}
		for i := 1; i < len(history); i++ {
			change, ok := dataset.PercentChange(history[i-1].Price, history[i].Price)
			if ok {
				changes[history[i].Date] = change
			}
		}
		changesByCommodity[name] = changes
		active = append(active, name)
	}

	series := domain.Series{}
	if len(active) == 0 {
		return domain.Factor{Name: CommodityFactorName, Series: series}
	}

	dates := map[time.Time]bool{}
	for _, changes := range changesByCommodity {
		for date := range changes {
			dates[date] = true
		}
	}

	for date := range dates {
		value := 0.0
		complete := true
		for _, name := range active {
			change, ok := changesByCommodity[name][date]
			// a partial composite would shift the factor's scale from
			// date to date, so the whole date is dropped instead of
			// summing the commodities that do have a change
			if !ok {
				complete = false
				break
			}
			value += weights[name] * change
		}
		if complete {
			series = append(series, domain.Observation{Date: date, Value: value})
		}
	}

	return domain.Factor{Name: CommodityFactorName, Series: sortedSeries(series)}
}

// MomentumFactor is the trailing mean of the previous window periods of
// target, so a period never sees its own return
func MomentumFactor(target domain.Series, window int) domain.Factor {
	series := domain.Series{}
	for i := window; i < len(target); i++ {
		trailing := target[i-window : i].Values()
		mean, err := stats.Mean(trailing)
		if err != nil {
			continue
		}
		series = append(series, domain.Observation{Date: target[i].Date, Value: mean})
	}
	return domain.Factor{Name: MomentumFactorName, Series: series}
}

// SizeFactor is small minus big: the mean return of records at or below
// the dataset-wide median asset value minus the mean return of records
// above it. dates missing either leg are left out
func SizeFactor(ds *dataset.ReturnDataset) domain.Factor {
	records := ds.Records()
	series := domain.Series{}
	if len(records) == 0 {
		return domain.Factor{Name: SizeFactorName, Series: series}
	}

	values := make([]float64, len(records))
	for i, r := range records {
		values[i] = r.AssetValue.InexactFloat64()
	}
	median, err := stats.Median(values)
	if err != nil {
		return domain.Factor{Name: SizeFactorName, Series: series}
	}

	byDate := map[time.Time][]domain.ReturnRecord{}
	for _, r := range records {
		byDate[r.Date] = append(byDate[r.Date], r)
	}

	for _, date := range ds.Dates() {
		small := []float64{}
		big := []float64{}
		for _, r := range byDate[date] {
			if r.AssetValue.InexactFloat64() <= median {
				small = append(small, r.Return)
			} else {
				big = append(big, r.Return)
			}
		}
		if len(small) == 0 || len(big) == 0 {
			continue
		}
		smallMean, _ := stats.Mean(small)
		bigMean, _ := stats.Mean(big)
		series = append(series, domain.Observation{Date: date, Value: smallMean - bigMean})
	}

	return domain.Factor{Name: SizeFactorName, Series: series}
}

// ValueFactor is high minus low on sector mean returns: the mean of the
// best `buckets` sectors of each date minus the mean of the worst. with
// fewer sectors than buckets every sector sits in both legs
func ValueFactor(ds *dataset.ReturnDataset, buckets int) domain.Factor {
	series := domain.Series{}
	byDate := map[time.Time][]domain.ReturnRecord{}
	for _, r := range ds.Records() {
		byDate[r.Date] = append(byDate[r.Date], r)
	}

	for _, date := range ds.Dates() {
		sectorReturns := map[string]float64{}
		for sector, records := range dataset.GroupBySector(byDate[date]) {
			sectorReturns[sector] = dataset.AggregateReturn(records, dataset.AggregationMean)
		}
		high, _ := stats.Mean(topNValues(sectorReturns, buckets, true))
		low, _ := stats.Mean(topNValues(sectorReturns, buckets, false))
		series = append(series, domain.Observation{Date: date, Value: high - low})
	}

	return domain.Factor{Name: ValueFactorName, Series: series}
}

// topNValues ranks by value, breaking ties by key, and keeps the first n
func topNValues(valuesByKey map[string]float64, n int, descending bool) []float64 {
	type keyValue struct {
		Key   string
		Value float64
	}
	pairs := make([]keyValue, 0, len(valuesByKey))
	for key, value := range valuesByKey {
		pairs = append(pairs, keyValue{key, value})
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Value != pairs[j].Value {
			if descending {
				return pairs[i].Value > pairs[j].Value
			}
			return pairs[i].Value < pairs[j].Value
		}
		return pairs[i].Key < pairs[j].Key
	})

	if len(pairs) > n {
		pairs = pairs[:n]
	}
	out := make([]float64, len(pairs))
	for i, kv := range pairs {
		out[i] = kv.Value
	}
	return out
}

func sortedSeries(series domain.Series) domain.Series {
	sort.Slice(series, func(i, j int) bool {
		return series[i].Date.Before(series[j].Date)
	})
	return series
}
