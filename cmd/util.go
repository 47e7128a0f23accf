package cmd

import (
	"fmt"
	"math/rand/v2"

	"attributionengine/internal/config"
	"attributionengine/internal/dataset"
	"attributionengine/internal/logger"
	l1_service "attributionengine/internal/service/l1"
	l2_service "attributionengine/internal/service/l2"
	l3_service "attributionengine/internal/service/l3"

	"go.uber.org/zap"
)

type Dependencies struct {
	Config      *config.Config
	Dataset     *dataset.ReturnDataset
	Aggregation dataset.Aggregation
	Log         *zap.SugaredLogger

	AttributionService      l2_service.AttributionService
	FactorRegressionService l2_service.FactorRegressionService
	TimeSeriesService       l2_service.TimeSeriesService
	ScenarioService         l3_service.ScenarioService
}

// NewRandomSource seeds a PCG generator. the second word is derived from
// the seed so one number fully pins a run
func NewRandomSource(seed uint64) rand.Source {
	return rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
}

func NewBenchmarkSource(cfg config.AttributionConfig, ds *dataset.ReturnDataset) (l1_service.BenchmarkReturnSource, error) {
	switch cfg.BenchmarkSource {
	case "fixed":
		return l1_service.FixedBenchmarkSource{
			Returns: cfg.FixedReturns,
			Default: cfg.DefaultFixedReturn,
		}, nil
	case "stochastic":
		bands := map[string]l1_service.Band{}
		for sector, b := range cfg.Bands {
			bands[sector] = l1_service.Band{Mean: b.Mean, Volatility: b.Volatility}
		}
		return l1_service.NewStochasticBenchmarkSource(
			bands,
			l1_service.Band{Mean: cfg.DefaultBand.Mean, Volatility: cfg.DefaultBand.Volatility},
			NewRandomSource(cfg.BenchmarkSeed),
		), nil
	case "index":
		if len(ds.Benchmarks()) == 0 {
			return nil, fmt.Errorf("index benchmark source needs benchmark data")
		}
		return l1_service.IndexBenchmarkSource{Benchmarks: ds.Benchmarks()}, nil
	default:
		return nil, fmt.Errorf("unknown benchmark source %q", cfg.BenchmarkSource)
	}
}

func InitializeDependencies(cfg *config.Config, ds *dataset.ReturnDataset, log *zap.SugaredLogger) (*Dependencies, error) {
	log = logger.OrNop(log)

	aggregation, err := dataset.ParseAggregation(cfg.Attribution.Aggregation)
	if err != nil {
		return nil, err
	}

	benchmarkSource, err := NewBenchmarkSource(cfg.Attribution, ds)
	if err != nil {
		return nil, fmt.Errorf("failed to create benchmark source: %w", err)
	}

	sectorAggregator := l1_service.NewSectorAggregator(
		benchmarkSource,
		cfg.Attribution.BenchmarkWeights,
		aggregation,
		log,
	)

	attributionService := l2_service.NewAttributionService(
		ds,
		sectorAggregator,
		aggregation,
		cfg.Risk.RiskFreeRate,
		log,
	)
	factorRegressionService := l2_service.NewFactorRegressionService(
		ds,
		aggregation,
		cfg.Factors.CommodityWeights,
		cfg.Factors.MomentumWindow,
		cfg.Factors.StyleBuckets,
		log,
	)
	timeSeriesService := l2_service.NewTimeSeriesService(
		ds,
		aggregation,
		cfg.Risk.PeriodsPerYear,
		cfg.TimeSeries.SeasonalPeriod,
		log,
	)
	scenarioService := l3_service.NewScenarioService(
		l3_service.NewScenarioServiceInput{
			Dataset:              ds,
			Aggregation:          aggregation,
			PeriodsPerYear:       cfg.Risk.PeriodsPerYear,
			CommodityCorrelation: cfg.Scenario.CommodityCorrelation,
			ShockSector:          cfg.Scenario.ShockSector,
			SectorBetas:          cfg.Scenario.SectorBetas,
			HorizonPeriods:       cfg.Scenario.HorizonPeriods,
			Src:                  NewRandomSource(cfg.Scenario.Seed),
		},
		log,
	)

	return &Dependencies{
		Config:                  cfg,
		Dataset:                 ds,
		Aggregation:             aggregation,
		Log:                     log,
		AttributionService:      attributionService,
		FactorRegressionService: factorRegressionService,
		TimeSeriesService:       timeSeriesService,
		ScenarioService:         scenarioService,
	}, nil
}
