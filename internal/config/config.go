package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	l1_service "attributionengine/internal/service/l1"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

const envPrefix = "ATTRIBUTION_"

type Config struct {
	Environment string            `toml:"environment"`
	Risk        RiskConfig        `toml:"risk"`
	Attribution AttributionConfig `toml:"attribution"`
	Factors     FactorConfig      `toml:"factors"`
	Scenario    ScenarioConfig    `toml:"scenario"`
	TimeSeries  TimeSeriesConfig  `toml:"timeseries"`
}

type RiskConfig struct {
	// per period, so 0.02/12 for a 2% annual rate on monthly data
	RiskFreeRate   float64 `toml:"risk_free_rate" validate:"gte=0,lt=1"`
	PeriodsPerYear int     `toml:"periods_per_year" validate:"gt=0"`
}

type BandConfig struct {
	Mean       float64 `toml:"mean"`
	Volatility float64 `toml:"volatility" validate:"gte=0"`
}

type AttributionConfig struct {
	Aggregation     string `toml:"aggregation" validate:"oneof=mean value_weighted"`
	BenchmarkSource string `toml:"benchmark_source" validate:"oneof=fixed stochastic index"`
	BenchmarkSeed   uint64 `toml:"benchmark_seed"`
	// empty means equal weight across the sectors present in a window
	BenchmarkWeights   map[string]float64    `toml:"benchmark_weights" validate:"dive,gte=0,lte=1"`
	FixedReturns       map[string]float64    `toml:"fixed_returns"`
	DefaultFixedReturn float64               `toml:"default_fixed_return"`
	Bands              map[string]BandConfig `toml:"bands" validate:"dive"`
	DefaultBand        BandConfig            `toml:"default_band"`
}

type FactorConfig struct {
	CommodityWeights map[string]float64 `toml:"commodity_weights" validate:"required,dive,gte=0"`
	MomentumWindow   int                `toml:"momentum_window" validate:"gt=0"`
	// how many sectors make up each leg of the value factor
	StyleBuckets int `toml:"style_buckets" validate:"gt=0"`
}

type ScenarioConfig struct {
	CommodityCorrelation float64            `toml:"commodity_correlation" validate:"gte=0,lte=1"`
	ShockSector          string             `toml:"shock_sector" validate:"required"`
	SectorBetas          map[string]float64 `toml:"sector_betas"`
	Simulations          int                `toml:"simulations" validate:"gt=0"`
	HorizonPeriods       int                `toml:"horizon_periods" validate:"gt=0"`
	Seed                 uint64             `toml:"seed"`
}

type TimeSeriesConfig struct {
	RollingWindow  int `toml:"rolling_window" validate:"gte=2"`
	SeasonalPeriod int `toml:"seasonal_period" validate:"gte=2"`
}

func NewDefaultConfig() *Config {
	return &Config{
		Environment: "prod",
		Risk: RiskConfig{
			RiskFreeRate:   0.02 / 12,
			PeriodsPerYear: 12,
		},
		Attribution: defaultAttributionConfig(),
		Factors: FactorConfig{
			CommodityWeights: map[string]float64{
				"Gold":     0.35,
				"Platinum": 0.30,
				"Lithium":  0.20,
				"Nickel":   0.10,
				"Chrome":   0.05,
			},
			MomentumWindow: 3,
			StyleBuckets:   3,
		},
		Scenario: ScenarioConfig{
			CommodityCorrelation: 0.5,
			ShockSector:          "Mining",
			SectorBetas: map[string]float64{
				"Mining":        1.3,
				"Financials":    1.2,
				"Real Estate":   0.9,
				"Energy":        1.1,
				"ICT":           1.15,
				"Transport":     1.0,
				"Agriculture":   0.8,
				"Manufacturing": 1.05,
			},
			Simulations:    1000,
			HorizonPeriods: 12,
			Seed:           42,
		},
		TimeSeries: TimeSeriesConfig{
			RollingWindow:  12,
			SeasonalPeriod: 12,
		},
	}
}

// the benchmark defaults come from the l1 sources so the tables live in
// one place
func defaultAttributionConfig() AttributionConfig {
	fixed := l1_service.DefaultFixedBenchmarkSource()
	bands := map[string]BandConfig{}
	for sector, band := range l1_service.DefaultSectorBands() {
		bands[sector] = BandConfig{Mean: band.Mean, Volatility: band.Volatility}
	}
	defaultBand := l1_service.DefaultBand()

	return AttributionConfig{
		Aggregation:        "mean",
		BenchmarkSource:    "fixed",
		BenchmarkSeed:      42,
		FixedReturns:       fixed.Returns,
		DefaultFixedReturn: fixed.Default,
		Bands:              bands,
		DefaultBand:        BandConfig{Mean: defaultBand.Mean, Volatility: defaultBand.Volatility},
	}
}

// Load builds the config with priority: defaults -> files (in order) ->
// .env -> environment. the result is validated before it is returned
func Load(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		err = resetDeclaredTables(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	err = applyEnvOverrides(config)
	if err != nil {
		return nil, err
	}

	err = config.Validate()
	if err != nil {
		return nil, err
	}

	return config, nil
}

// resetDeclaredTables drops the default entries of every map table the
// file declares. decoding merges into existing maps, so without this a
// file could add sectors or commodities but never remove the defaults
func resetDeclaredTables(data []byte, config *Config) error {
	var raw map[string]any
	err := toml.Unmarshal(data, &raw)
	if err != nil {
		return err
	}

	tables := []struct {
		Section string
		Key     string
		Reset   func()
	}{
		{"attribution", "benchmark_weights", func() { config.Attribution.BenchmarkWeights = nil }},
		{"attribution", "fixed_returns", func() { config.Attribution.FixedReturns = nil }},
		{"attribution", "bands", func() { config.Attribution.Bands = nil }},
		{"factors", "commodity_weights", func() { config.Factors.CommodityWeights = nil }},
		{"scenario", "sector_betas", func() { config.Scenario.SectorBetas = nil }},
	}
	for _, table := range tables {
		section, ok := raw[table.Section].(map[string]any)
		if !ok {
			continue
		}
		if _, ok := section[table.Key]; ok {
			table.Reset()
		}
	}
	return nil
}

func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func applyEnvOverrides(config *Config) error {
	if env := os.Getenv(envPrefix + "ENV"); env != "" {
		config.Environment = env
	}
	if v := os.Getenv(envPrefix + "AGGREGATION"); v != "" {
		config.Attribution.Aggregation = strings.ToLower(v)
	}
	if v := os.Getenv(envPrefix + "BENCHMARK_SOURCE"); v != "" {
		config.Attribution.BenchmarkSource = strings.ToLower(v)
	}

	floats := map[string]*float64{
		"RISK_FREE_RATE":        &config.Risk.RiskFreeRate,
		"COMMODITY_CORRELATION": &config.Scenario.CommodityCorrelation,
	}
	for key, dst := range floats {
		v := os.Getenv(envPrefix + key)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("failed to parse %s%s: %w", envPrefix, key, err)
		}
		*dst = f
	}

	ints := map[string]*int{
		"SIMULATIONS":    &config.Scenario.Simulations,
		"ROLLING_WINDOW": &config.TimeSeries.RollingWindow,
	}
	for key, dst := range ints {
		v := os.Getenv(envPrefix + key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("failed to parse %s%s: %w", envPrefix, key, err)
		}
		*dst = n
	}

	seeds := map[string]*uint64{
		"SEED":           &config.Scenario.Seed,
		"BENCHMARK_SEED": &config.Attribution.BenchmarkSeed,
	}
	for key, dst := range seeds {
		v := os.Getenv(envPrefix + key)
		if v == "" {
			continue
		}
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("failed to parse %s%s: %w", envPrefix, key, err)
		}
		*dst = n
	}

	return nil
}
