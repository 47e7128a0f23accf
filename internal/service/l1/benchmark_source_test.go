package l1_service

import (
	"math/rand/v2"
	"testing"

	"attributionengine/internal/domain"
	"attributionengine/internal/logger"
	"attributionengine/internal/util"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func nopLog() *zap.SugaredLogger {
	return logger.NewNop()
}

func TestFixedBenchmarkSource(t *testing.T) {
	source := FixedBenchmarkSource{
		Returns: map[string]float64{"Mining": 0.01},
		Default: 0.005,
	}
	start, end := util.NewDate(2024, 1, 1), util.NewDate(2024, 3, 31)

	r, err := source.SectorReturn("Mining", start, end)
	require.NoError(t, err)
	require.Equal(t, 0.01, r)

	r, err = source.SectorReturn("Retail", start, end)
	require.NoError(t, err)
	require.Equal(t, 0.005, r)

	defaults := DefaultFixedBenchmarkSource()
	r, err = defaults.SectorReturn("Energy", start, end)
	require.NoError(t, err)
	require.Equal(t, 0.006, r)
}

func TestStochasticBenchmarkSource(t *testing.T) {
	start, end := util.NewDate(2024, 1, 1), util.NewDate(2024, 3, 31)

	draw := func(seed uint64) []float64 {
		source := NewStochasticBenchmarkSource(DefaultSectorBands(), DefaultBand(), rand.NewPCG(seed, seed))
		out := []float64{}
		for _, sector := range []string{"Energy", "Financials", "Mining", "Other"} {
			r, err := source.SectorReturn(sector, start, end)
			require.NoError(t, err)
			out = append(out, r)
		}
		return out
	}

	t.Run("same seed same draws", func(t *testing.T) {
		require.Equal(t, draw(42), draw(42))
	})

	t.Run("different seed different draws", func(t *testing.T) {
		require.NotEqual(t, draw(42), draw(7))
	})
}

func TestIndexBenchmarkSource(t *testing.T) {
	source := IndexBenchmarkSource{
		Benchmarks: []domain.BenchmarkRecord{
			{Date: util.NewDate(2024, 1, 31), Return: 0.01},
			{Date: util.NewDate(2024, 2, 29), Return: 0.03},
			{Date: util.NewDate(2024, 4, 30), Return: 0.50},
		},
	}

	t.Run("mean of window", func(t *testing.T) {
		r, err := source.SectorReturn("Mining", util.NewDate(2024, 1, 1), util.NewDate(2024, 3, 31))
		require.NoError(t, err)
		require.InDelta(t, 0.02, r, 1e-12)
	})

	t.Run("empty window", func(t *testing.T) {
		_, err := source.SectorReturn("Mining", util.NewDate(2023, 1, 1), util.NewDate(2023, 3, 31))
		require.ErrorIs(t, err, domain.ErrInsufficientData)
	})
}
