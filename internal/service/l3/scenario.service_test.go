package l3_service

import (
	"math/rand/v2"
	"sort"
	"testing"

	"attributionengine/internal/dataset"
	"attributionengine/internal/domain"
	"attributionengine/internal/logger"
	"attributionengine/internal/util"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newRecord(month int, sector string, ret float64, value int64) domain.ReturnRecord {
	return domain.ReturnRecord{
		Date:       util.NewDate(2024, month, 28),
		Sector:     sector,
		Instrument: sector[:3],
		Return:     ret,
		AssetValue: decimal.NewFromInt(value),
	}
}

func scenarioDataset() *dataset.ReturnDataset {
	return dataset.New([]domain.ReturnRecord{
		newRecord(1, "Mining", 0.02, 100),
		newRecord(1, "Energy", 0.01, 100),
		newRecord(2, "Mining", 0.04, 100),
		newRecord(2, "Energy", 0.01, 100),
	}, nil, nil)
}

func newScenarioHandler(ds *dataset.ReturnDataset, aggregation dataset.Aggregation, seed uint64) scenarioServiceHandler {
	return scenarioServiceHandler{
		Dataset:              ds,
		Aggregation:          aggregation,
		PeriodsPerYear:       12,
		CommodityCorrelation: 0.5,
		ShockSector:          "Mining",
		SectorBetas: map[string]float64{
			"Mining": 1.3,
			"Energy": 1.1,
		},
		HorizonPeriods: 12,
		Src:            rand.NewPCG(seed, seed),
		Log:            logger.NewNop(),
	}
}

func Test_scenarioServiceHandler_CommodityShock(t *testing.T) {
	handler := newScenarioHandler(scenarioDataset(), dataset.AggregationMean, 42)

	t.Run("negative shock lowers return", func(t *testing.T) {
		result, err := handler.CommodityShock(map[string]float64{"Gold": -0.2, "Platinum": -0.1})
		require.NoError(t, err)
		require.Equal(t, CommodityShockScenario, result.Name)
		require.InDelta(t, 0.24, result.OriginalReturn, 1e-12)
		require.InDelta(t, 0.2265, result.ScenarioReturn, 1e-12)
		require.InDelta(t, -0.0135, result.Impact, 1e-12)
		require.Less(t, result.Impact, 0.0)

		for _, r := range result.Records {
			if r.Sector == "Energy" {
				require.Equal(t, 0.01, r.Return)
			}
		}
	})

	t.Run("original dataset is untouched", func(t *testing.T) {
		_, err := handler.CommodityShock(map[string]float64{"Gold": -0.5})
		require.NoError(t, err)
		require.Equal(t, 0.02, handler.Dataset.Records()[1].Return)
	})

	t.Run("empty changes", func(t *testing.T) {
		_, err := handler.CommodityShock(map[string]float64{})
		require.Error(t, err)
	})
}

func Test_scenarioServiceHandler_SectorReallocation(t *testing.T) {
	targets := map[string]float64{"Mining": 0.8, "Energy": 0.2, "Retail": 0.1}

	t.Run("mean aggregation has no impact", func(t *testing.T) {
		handler := newScenarioHandler(scenarioDataset(), dataset.AggregationMean, 42)
		result, err := handler.SectorReallocation(targets)
		require.NoError(t, err)
		require.Equal(t, SectorReallocationScenario, result.Name)
		require.Equal(t, 0.0, result.Impact)

		for _, r := range result.Records {
			if r.Sector == "Mining" {
				require.True(t, r.AssetValue.Equal(decimal.NewFromInt(160)), r.AssetValue.String())
			} else {
				require.True(t, r.AssetValue.Equal(decimal.NewFromInt(40)), r.AssetValue.String())
			}
		}
	})

	t.Run("value weighted aggregation shows the shift", func(t *testing.T) {
		handler := newScenarioHandler(scenarioDataset(), dataset.AggregationValueWeighted, 42)
		result, err := handler.SectorReallocation(targets)
		require.NoError(t, err)
		require.InDelta(t, 0.24, result.OriginalReturn, 1e-12)
		require.InDelta(t, 0.312, result.ScenarioReturn, 1e-12)
		require.InDelta(t, 0.072, result.Impact, 1e-12)
	})

	t.Run("negative weight", func(t *testing.T) {
		handler := newScenarioHandler(scenarioDataset(), dataset.AggregationMean, 42)
		_, err := handler.SectorReallocation(map[string]float64{"Mining": -0.1})
		require.Error(t, err)
	})
}

func Test_scenarioServiceHandler_MarketDownturn(t *testing.T) {
	ds := scenarioDataset()

	t.Run("beta scaled decline", func(t *testing.T) {
		handler := newScenarioHandler(ds, dataset.AggregationMean, 42)
		result, err := handler.MarketDownturn(-0.3)
		require.NoError(t, err)
		require.Equal(t, MarketDownturnScenario, result.Name)
		require.InDelta(t, -0.36, result.Impact, 1e-12)
	})

	t.Run("sectors without beta are unaffected", func(t *testing.T) {
		handler := newScenarioHandler(ds, dataset.AggregationMean, 42)
		handler.SectorBetas = map[string]float64{"Mining": 1.3}
		result, err := handler.MarketDownturn(-0.3)
		require.NoError(t, err)
		// only half of each period moves
		require.InDelta(t, -0.3*1.3/2, result.Impact, 1e-12)
		for _, r := range result.Records {
			if r.Sector == "Energy" {
				require.Equal(t, 0.01, r.Return)
			}
		}
	})
}

func Test_scenarioServiceHandler_MonteCarlo(t *testing.T) {
	t.Run("summary statistics", func(t *testing.T) {
		handler := newScenarioHandler(scenarioDataset(), dataset.AggregationMean, 42)
		result, err := handler.MonteCarlo(500)
		require.NoError(t, err)
		require.Equal(t, 500, result.Simulations)
		require.Len(t, result.Returns, 500)
		require.InDelta(t, 0.02, result.MonthlyMean, 1e-12)
		require.Equal(t, -result.Percentile5, result.VaR95)
		require.LessOrEqual(t, result.Percentile5, result.Median)
		require.LessOrEqual(t, result.Median, result.Percentile95)
		require.GreaterOrEqual(t, result.CVaR95, result.VaR95)
		require.Greater(t, result.StdDev, 0.0)
	})

	t.Run("percentiles interpolate on (n-1)*p", func(t *testing.T) {
		result, err := newScenarioHandler(scenarioDataset(), dataset.AggregationMean, 42).MonteCarlo(10)
		require.NoError(t, err)

		sorted := append([]float64{}, result.Returns...)
		sort.Float64s(sorted)
		// 9*0.05 = 0.45 and 9*0.95 = 8.55
		require.InDelta(t, sorted[0]+0.45*(sorted[1]-sorted[0]), result.Percentile5, 1e-12)
		require.InDelta(t, sorted[8]+0.55*(sorted[9]-sorted[8]), result.Percentile95, 1e-12)
		require.InDelta(t, -result.Percentile5, result.VaR95, 1e-12)
		// only the worst outcome is at or below P5
		require.InDelta(t, -sorted[0], result.CVaR95, 1e-12)
	})

	t.Run("same seed same outcomes", func(t *testing.T) {
		first, err := newScenarioHandler(scenarioDataset(), dataset.AggregationMean, 7).MonteCarlo(100)
		require.NoError(t, err)
		second, err := newScenarioHandler(scenarioDataset(), dataset.AggregationMean, 7).MonteCarlo(100)
		require.NoError(t, err)
		require.Equal(t, first, second)

		other, err := newScenarioHandler(scenarioDataset(), dataset.AggregationMean, 8).MonteCarlo(100)
		require.NoError(t, err)
		require.NotEqual(t, first.Returns, other.Returns)
	})

	t.Run("bad inputs", func(t *testing.T) {
		handler := newScenarioHandler(scenarioDataset(), dataset.AggregationMean, 42)
		_, err := handler.MonteCarlo(0)
		require.Error(t, err)

		short := newScenarioHandler(dataset.New([]domain.ReturnRecord{newRecord(1, "Mining", 0.01, 1)}, nil, nil), dataset.AggregationMean, 42)
		_, err = short.MonteCarlo(10)
		require.ErrorIs(t, err, domain.ErrInsufficientData)
	})
}
