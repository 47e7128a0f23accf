package l2_service

import (
	"context"
	"testing"

	"attributionengine/internal/dataset"
	"attributionengine/internal/domain"
	"attributionengine/internal/logger"

	"github.com/stretchr/testify/require"
)

func newRegressionHandler(ds *dataset.ReturnDataset) factorRegressionServiceHandler {
	return factorRegressionServiceHandler{
		Dataset:          ds,
		Aggregation:      dataset.AggregationMean,
		CommodityWeights: map[string]float64{"Gold": 1},
		MomentumWindow:   3,
		StyleBuckets:     3,
		Log:              logger.NewNop(),
	}
}

func Test_factorRegressionServiceHandler_Regress(t *testing.T) {
	handler := newRegressionHandler(dataset.New(nil, nil, nil))
	dates := monthEnds(2024, 1, 5)

	t.Run("exact linear relationship", func(t *testing.T) {
		factor := domain.Factor{Name: "f", Series: newSeries(dates, []float64{0.01, -0.02, 0.03, 0.005, -0.01})}
		target := newSeries(dates, []float64{0.02, -0.04, 0.06, 0.01, -0.02})

		exposure, err := handler.Regress(target, factor)
		require.NoError(t, err)
		require.InDelta(t, 2.0, exposure.Coefficients["f"], 1e-9)
		require.InDelta(t, 0.0, exposure.Intercept, 1e-9)
		require.InDelta(t, 1.0, exposure.RSquared, 1e-9)
		require.Equal(t, 5, exposure.Observations)
		require.Equal(t, 3, exposure.ResidualDF)
		require.Empty(t, exposure.DroppedDates)
	})

	t.Run("inference stats", func(t *testing.T) {
		factor := domain.Factor{Name: "x", Series: newSeries(dates, []float64{1, 2, 3, 4, 5})}
		target := newSeries(dates, []float64{2.1, 3.9, 6.2, 7.8, 10.1})

		exposure, err := handler.Regress(target, factor)
		require.NoError(t, err)
		require.Equal(t, []string{"x"}, exposure.Factors)
		require.InDelta(t, 1.99, exposure.Coefficients["x"], 1e-9)
		require.InDelta(t, 0.05, exposure.Intercept, 1e-9)
		require.InDelta(t, 0.9973053289, exposure.RSquared, 1e-9)
		require.InDelta(t, 0.9964071052, exposure.AdjustedRSquared, 1e-9)
		require.InDelta(t, 0.0597215762, exposure.StdErrors["x"], 1e-9)
		require.InDelta(t, 0.1980740602, exposure.StdErrors[domain.InterceptKey], 1e-9)
		require.InDelta(t, 33.3212906595, exposure.TValues["x"], 1e-6)
		require.InDelta(t, 0.8170151782, exposure.PValues[domain.InterceptKey], 1e-6)
		require.InDelta(t, 5.94153911e-05, exposure.PValues["x"], 1e-8)
	})

	t.Run("drops unaligned dates", func(t *testing.T) {
		factor := domain.Factor{Name: "x", Series: newSeries(dates[1:], []float64{2, 3, 4, 5})}
		target := newSeries(dates, []float64{9, 2.1, 2.9, 4.2, 4.8})

		exposure, err := handler.Regress(target, factor)
		require.NoError(t, err)
		require.Equal(t, 4, exposure.Observations)
		require.Equal(t, dates[:1], exposure.DroppedDates)
	})

	t.Run("no common dates", func(t *testing.T) {
		factor := domain.Factor{Name: "x", Series: newSeries(monthEnds(2020, 1, 5), []float64{1, 2, 3, 4, 5})}
		target := newSeries(dates, []float64{1, 2, 3, 4, 5})

		_, err := handler.Regress(target, factor)
		require.ErrorIs(t, err, domain.ErrMisalignedDates)
		var misaligned domain.MisalignedDatesError
		require.ErrorAs(t, err, &misaligned)
		require.Equal(t, 5, misaligned.TargetDates)
		require.Equal(t, map[string]int{"x": 5}, misaligned.FactorDates)
	})

	t.Run("fewer observations than factors+1", func(t *testing.T) {
		short := dates[:3]
		factors := []domain.Factor{
			{Name: "a", Series: newSeries(short, []float64{1, 2, 3})},
			{Name: "b", Series: newSeries(short, []float64{3, 1, 2})},
			{Name: "c", Series: newSeries(short, []float64{2, 2, 5})},
		}
		_, err := handler.Regress(newSeries(short, []float64{1, 2, 3}), factors...)
		require.ErrorIs(t, err, domain.ErrInsufficientData)
	})

	t.Run("exactly determined has no inference stats", func(t *testing.T) {
		short := dates[:2]
		factor := domain.Factor{Name: "x", Series: newSeries(short, []float64{1, 2})}

		exposure, err := handler.Regress(newSeries(short, []float64{3, 5}), factor)
		require.NoError(t, err)
		require.Equal(t, 0, exposure.ResidualDF)
		require.Equal(t, exposure.RSquared, exposure.AdjustedRSquared)
		require.Nil(t, exposure.PValues)
	})

	t.Run("constant factor is reported by name", func(t *testing.T) {
		varying := domain.Factor{Name: "x", Series: newSeries(dates, []float64{1, 2, 3, 4, 5})}
		flat := domain.Factor{Name: "flat", Series: newSeries(dates, []float64{0, 0, 0, 0, 0})}
		_, err := handler.Regress(newSeries(dates, []float64{0.01, 0.03, -0.02, 0.04, 0.0}), varying, flat)
		require.ErrorIs(t, err, domain.ErrDegenerateFactor)

		var degenerate domain.DegenerateFactorError
		require.ErrorAs(t, err, &degenerate)
		require.Equal(t, []string{"flat"}, degenerate.Factors)
		require.Equal(t, 5, degenerate.Observations)
	})

	t.Run("constant target", func(t *testing.T) {
		factor := domain.Factor{Name: "x", Series: newSeries(dates, []float64{1, 2, 3, 4, 5})}
		exposure, err := handler.Regress(newSeries(dates, []float64{0.01, 0.01, 0.01, 0.01, 0.01}), factor)
		require.NoError(t, err)
		require.Equal(t, 0.0, exposure.RSquared)
	})
}

func regressionDataset() *dataset.ReturnDataset {
	dates := monthEnds(2024, 1, 10)
	returnsA := []float64{0.012, -0.004, 0.021, 0.007, -0.015, 0.030, 0.002, -0.008, 0.017, 0.011}
	benchmark := []float64{0.010, -0.002, 0.015, 0.004, -0.011, 0.022, 0.001, -0.006, 0.013, 0.009}
	gold := []float64{100, 103, 101, 106, 104, 102, 109, 111, 108, 112, 115}

	records := []domain.ReturnRecord{}
	benchmarks := []domain.BenchmarkRecord{}
	commodities := []domain.CommodityPrice{
		{Date: monthEnds(2023, 12, 1)[0], Commodity: "Gold", Price: gold[0]},
	}
	for i, date := range dates {
		records = append(records, newRecord(date, "A", "AAA", returnsA[i], 100))
		benchmarks = append(benchmarks, domain.BenchmarkRecord{Date: date, Return: benchmark[i]})
		commodities = append(commodities, domain.CommodityPrice{Date: date, Commodity: "Gold", Price: gold[i+1]})
	}
	// B only has two months, not enough for momentum
	records = append(records,
		newRecord(dates[0], "B", "BBB", 0.01, 50),
		newRecord(dates[1], "B", "BBB", 0.02, 50),
	)
	return dataset.New(records, benchmarks, commodities)
}

func Test_factorRegressionServiceHandler_FactorRegression(t *testing.T) {
	handler := newRegressionHandler(regressionDataset())

	exposure, err := handler.FactorRegression("A")
	require.NoError(t, err)
	require.Equal(t, []string{MarketFactorName, CommodityFactorName, MomentumFactorName}, exposure.Factors)
	// momentum needs three prior months
	require.Equal(t, 7, exposure.Observations)
	require.Len(t, exposure.DroppedDates, 3)
	require.Equal(t, 3, exposure.ResidualDF)
	require.Len(t, exposure.PValues, 4)
}

func Test_factorRegressionServiceHandler_SectorRegressions(t *testing.T) {
	handler := newRegressionHandler(regressionDataset())

	exposures, err := handler.SectorRegressions(context.Background())
	require.ErrorContains(t, err, "failed to regress 1/2 sectors")
	require.ErrorContains(t, err, "B: ")
	require.Len(t, exposures, 1)
	require.Equal(t, "A", exposures[0].Sector)
}

func Test_factorRegressionServiceHandler_StyleRegression(t *testing.T) {
	dates := monthEnds(2024, 1, 6)
	sectorReturns := map[string][]float64{
		"Energy":     {0.010, 0.020, -0.010, 0.015, 0.000, 0.030},
		"Financials": {0.005, -0.010, 0.020, 0.010, 0.012, -0.004},
		"Mining":     {0.030, 0.010, 0.000, -0.020, 0.025, 0.008},
		"Retail":     {-0.010, 0.004, 0.011, 0.003, -0.006, 0.016},
	}
	values := map[string]int64{"Energy": 100, "Financials": 200, "Mining": 300, "Retail": 400}
	benchmark := []float64{0.008, 0.004, 0.006, 0.001, 0.007, 0.012}

	records := []domain.ReturnRecord{}
	benchmarks := []domain.BenchmarkRecord{}
	for i, date := range dates {
		for sector, returns := range sectorReturns {
			records = append(records, newRecord(date, sector, sector[:3], returns[i], values[sector]))
		}
		benchmarks = append(benchmarks, domain.BenchmarkRecord{Date: date, Return: benchmark[i]})
	}
	handler := newRegressionHandler(dataset.New(records, benchmarks, nil))

	exposure, err := handler.StyleRegression()
	require.NoError(t, err)
	require.Equal(t, []string{MarketFactorName, SizeFactorName, ValueFactorName}, exposure.Factors)
	require.Equal(t, 6, exposure.Observations)
	require.Equal(t, 2, exposure.ResidualDF)
}

func Test_factorRegressionServiceHandler_StyleRegression_fewSectors(t *testing.T) {
	dates := monthEnds(2024, 1, 8)
	mining := []float64{0.030, 0.010, 0.000, -0.020, 0.025, 0.008, 0.014, -0.006}
	energy := []float64{0.010, 0.020, -0.010, 0.015, 0.000, 0.030, -0.004, 0.009}
	benchmark := []float64{0.008, 0.004, 0.006, 0.001, 0.007, 0.012, -0.002, 0.005}

	records := []domain.ReturnRecord{}
	benchmarks := []domain.BenchmarkRecord{}
	for i, date := range dates {
		records = append(records,
			newRecord(date, "Mining", "MIN", mining[i], 300),
			newRecord(date, "Energy", "ENE", energy[i], 100),
		)
		benchmarks = append(benchmarks, domain.BenchmarkRecord{Date: date, Return: benchmark[i]})
	}
	handler := newRegressionHandler(dataset.New(records, benchmarks, nil))

	// both sectors sit in both value buckets
	_, err := handler.StyleRegression()
	require.ErrorIs(t, err, domain.ErrDegenerateFactor)
	require.ErrorContains(t, err, ValueFactorName)
}
