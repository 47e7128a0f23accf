package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "attribution.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("defaults only", func(t *testing.T) {
		config, err := Load()
		require.NoError(t, err)
		require.Equal(t, NewDefaultConfig().Risk, config.Risk)
		require.Equal(t, "Mining", config.Scenario.ShockSector)
		require.Equal(t, 0.35, config.Factors.CommodityWeights["Gold"])
		require.Equal(t, 0.010, config.Attribution.FixedReturns["Mining"])
		require.Equal(t, 0.007, config.Attribution.DefaultFixedReturn)
		require.Equal(t, BandConfig{Mean: 0.006, Volatility: 0.035}, config.Attribution.Bands["Energy"])
		require.Equal(t, BandConfig{Mean: 0.007, Volatility: 0.032}, config.Attribution.DefaultBand)
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		path := writeConfig(t, `
[risk]
risk_free_rate = 0.001

[scenario]
simulations = 250
seed = 7
`)
		config, err := Load(path)
		require.NoError(t, err)
		require.Equal(t, 0.001, config.Risk.RiskFreeRate)
		require.Equal(t, 12, config.Risk.PeriodsPerYear)
		require.Equal(t, 250, config.Scenario.Simulations)
		require.Equal(t, uint64(7), config.Scenario.Seed)
	})

	t.Run("declared tables replace default maps", func(t *testing.T) {
		path := writeConfig(t, `
[factors.commodity_weights]
Copper = 1.0

[scenario.sector_betas]
Mining = 1.5
`)
		config, err := Load(path)
		require.NoError(t, err)
		require.Equal(t, map[string]float64{"Copper": 1.0}, config.Factors.CommodityWeights)
		require.Equal(t, map[string]float64{"Mining": 1.5}, config.Scenario.SectorBetas)
		// tables the file leaves out keep their defaults
		require.Equal(t, NewDefaultConfig().Attribution.FixedReturns, config.Attribution.FixedReturns)
		require.Len(t, config.Attribution.Bands, 3)
	})

	t.Run("later files replace tables of earlier ones", func(t *testing.T) {
		first := writeConfig(t, `
[attribution.fixed_returns]
Mining = 0.02
Energy = 0.01
`)
		second := filepath.Join(t.TempDir(), "override.toml")
		require.NoError(t, os.WriteFile(second, []byte(`
[attribution.fixed_returns]
Retail = 0.004
`), 0o600))

		config, err := Load(first, second)
		require.NoError(t, err)
		require.Equal(t, map[string]float64{"Retail": 0.004}, config.Attribution.FixedReturns)
	})

	t.Run("env overrides file", func(t *testing.T) {
		path := writeConfig(t, `
[scenario]
simulations = 250
`)
		t.Setenv("ATTRIBUTION_SIMULATIONS", "500")
		t.Setenv("ATTRIBUTION_BENCHMARK_SOURCE", "Stochastic")

		config, err := Load(path)
		require.NoError(t, err)
		require.Equal(t, 500, config.Scenario.Simulations)
		require.Equal(t, "stochastic", config.Attribution.BenchmarkSource)
	})

	t.Run("invalid env value", func(t *testing.T) {
		t.Setenv("ATTRIBUTION_RISK_FREE_RATE", "abc")
		_, err := Load()
		require.ErrorContains(t, err, "ATTRIBUTION_RISK_FREE_RATE")
	})

	t.Run("fails validation", func(t *testing.T) {
		path := writeConfig(t, `
[attribution]
aggregation = "median"
`)
		_, err := Load(path)
		require.ErrorContains(t, err, "invalid config")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
		require.Error(t, err)
	})
}
