package l2_service

import (
	"fmt"

	"attributionengine/internal/calculator"
	"attributionengine/internal/dataset"
	"attributionengine/internal/domain"
	"attributionengine/internal/logger"

	"github.com/montanaflynn/stats"
	"go.uber.org/zap"
)

type TimeSeriesService interface {
	RollingPerformance(window int) ([]domain.RollingPoint, error)
	TestStationarity() (*domain.StationarityResult, error)
	DecomposeReturns() (*domain.Decomposition, error)
}

type timeSeriesServiceHandler struct {
	Dataset        *dataset.ReturnDataset
	Aggregation    dataset.Aggregation
	PeriodsPerYear int
	SeasonalPeriod int
	Log            *zap.SugaredLogger
}

func NewTimeSeriesService(
	ds *dataset.ReturnDataset,
	aggregation dataset.Aggregation,
	periodsPerYear int,
	seasonalPeriod int,
	log *zap.SugaredLogger,
) TimeSeriesService {
	return timeSeriesServiceHandler{
		Dataset:        ds,
		Aggregation:    aggregation,
		PeriodsPerYear: periodsPerYear,
		SeasonalPeriod: seasonalPeriod,
		Log:            logger.OrNop(log),
	}
}

// RollingPerformance computes the trailing mean, sample stdev and
// annualized Sharpe of the portfolio series. the first window-1 points
// have no value
func (h timeSeriesServiceHandler) RollingPerformance(window int) ([]domain.RollingPoint, error) {
	if window < 2 {
		return nil, fmt.Errorf("rolling window must be at least 2, got %d", window)
	}

	series := h.Dataset.PortfolioSeries(h.Aggregation)
	values := series.Values()
	out := make([]domain.RollingPoint, len(series))
	for i, obs := range series {
		out[i] = domain.RollingPoint{Date: obs.Date}
		if i < window-1 {
			continue
		}

		trailing := values[i-window+1 : i+1]
		mean, err := stats.Mean(trailing)
		if err != nil {
			return nil, fmt.Errorf("failed to compute rolling mean on %s: %w", obs.Date.Format("2006-01-02"), err)
		}
		stdev := calculator.SampleStdev(trailing)
		sharpe := calculator.AnnualizedSharpe(trailing, 0, h.PeriodsPerYear)

		out[i].Mean = &mean
		out[i].StdDev = &stdev
		out[i].Sharpe = &sharpe
	}

	return out, nil
}

// TestStationarity runs an augmented Dickey-Fuller test on the portfolio
// series
func (h timeSeriesServiceHandler) TestStationarity() (*domain.StationarityResult, error) {
	series := h.Dataset.PortfolioSeries(h.Aggregation)
	result, err := adfTest(series.Values())
	if err != nil {
		return nil, fmt.Errorf("failed to test stationarity: %w", err)
	}
	h.Log.Debugw("adf test", "statistic", result.Statistic, "pValue", result.PValue, "usedLag", result.UsedLag)
	return result, nil
}

// DecomposeReturns splits the portfolio series into trend, seasonal and
// residual parts
func (h timeSeriesServiceHandler) DecomposeReturns() (*domain.Decomposition, error) {
	series := h.Dataset.PortfolioSeries(h.Aggregation)
	decomposition, err := decomposeAdditive(series, h.SeasonalPeriod)
	if err != nil {
		return nil, fmt.Errorf("failed to decompose returns: %w", err)
	}
	return decomposition, nil
}
