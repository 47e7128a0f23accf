package l3_service

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"attributionengine/internal/dataset"
	"attributionengine/internal/domain"
	"attributionengine/internal/logger"

	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	CommodityShockScenario     = "Commodity Price Shock"
	SectorReallocationScenario = "Sector Reallocation"
	MarketDownturnScenario     = "Market Downturn"
)

type ScenarioService interface {
	CommodityShock(changes map[string]float64) (*domain.ScenarioResult, error)
	SectorReallocation(targets map[string]float64) (*domain.ScenarioResult, error)
	MarketDownturn(annualDecline float64) (*domain.ScenarioResult, error)
	MonteCarlo(simulations int) (*domain.MonteCarloResult, error)
}

type scenarioServiceHandler struct {
	Dataset        *dataset.ReturnDataset
	Aggregation    dataset.Aggregation
	PeriodsPerYear int
	// share of the average commodity move that passes through to the
	// shocked sector
	CommodityCorrelation float64
	ShockSector          string
	SectorBetas          map[string]float64
	HorizonPeriods       int
	Src                  rand.Source
	Log                  *zap.SugaredLogger
}

type NewScenarioServiceInput struct {
	Dataset              *dataset.ReturnDataset
	Aggregation          dataset.Aggregation
	PeriodsPerYear       int
	CommodityCorrelation float64
	ShockSector          string
	SectorBetas          map[string]float64
	HorizonPeriods       int
	Src                  rand.Source
}

func NewScenarioService(in NewScenarioServiceInput, log *zap.SugaredLogger) ScenarioService {
	return scenarioServiceHandler{
		Dataset:              in.Dataset,
		Aggregation:          in.Aggregation,
		PeriodsPerYear:       in.PeriodsPerYear,
		CommodityCorrelation: in.CommodityCorrelation,
		ShockSector:          in.ShockSector,
		SectorBetas:          in.SectorBetas,
		HorizonPeriods:       in.HorizonPeriods,
		Src:                  in.Src,
		Log:                  logger.OrNop(log),
	}
}

// CommodityShock scales every return of the shock sector by one plus the
// correlated average commodity move
func (h scenarioServiceHandler) CommodityShock(changes map[string]float64) (*domain.ScenarioResult, error) {
	if len(changes) == 0 {
		return nil, fmt.Errorf("commodity shock needs at least one commodity change")
	}

	moves := make([]float64, 0, len(changes))
	for _, name := range sortedKeys(changes) {
		moves = append(moves, changes[name])
	}
	avgMove, err := stats.Mean(moves)
	if err != nil {
		return nil, fmt.Errorf("failed to average commodity changes: %w", err)
	}
	impact := avgMove * h.CommodityCorrelation

	records := h.Dataset.Records()
	numShocked := 0
	for i := range records {
		if records[i].Sector == h.ShockSector {
			records[i].Return *= 1 + impact
			numShocked++
		}
	}
	h.Log.Debugw("applied commodity shock", "sector", h.ShockSector, "impact", impact, "records", numShocked)

	return h.scenarioImpact(CommodityShockScenario, records)
}

// SectorReallocation spreads the dataset's total asset value over the
// listed sectors by target weight, split evenly across each sector's
// records. returns are untouched, so under mean aggregation the impact is
// always 0
func (h scenarioServiceHandler) SectorReallocation(targets map[string]float64) (*domain.ScenarioResult, error) {
	for sector, w := range targets {
		if w < 0 {
			return nil, fmt.Errorf("target weight for %s must be >= 0, got %f", sector, w)
		}
	}

	records := h.Dataset.Records()
	total := dataset.TotalValue(records)
	counts := map[string]int64{}
	for _, r := range records {
		counts[r.Sector]++
	}

	for _, sector := range sortedKeys(targets) {
		count := counts[sector]
		if count == 0 {
			h.Log.Warnw("reallocation target has no records, skipping", "sector", sector)
			continue
		}
		value := total.Mul(decimal.NewFromFloat(targets[sector])).Div(decimal.NewFromInt(count))
		for i := range records {
			if records[i].Sector == sector {
				records[i].AssetValue = value
			}
		}
	}

	return h.scenarioImpact(SectorReallocationScenario, records)
}

// MarketDownturn adds the monthly share of annualDecline, scaled by each
// sector's beta. sectors without a beta are unaffected
func (h scenarioServiceHandler) MarketDownturn(annualDecline float64) (*domain.ScenarioResult, error) {
	records := h.Dataset.Records()
	periodDecline := annualDecline / float64(h.PeriodsPerYear)
	for i := range records {
		beta, ok := h.SectorBetas[records[i].Sector]
		if !ok {
			continue
		}
		records[i].Return += periodDecline * beta
	}
	return h.scenarioImpact(MarketDownturnScenario, records)
}

func (h scenarioServiceHandler) scenarioImpact(name string, scenarioRecords []domain.ReturnRecord) (*domain.ScenarioResult, error) {
	originalReturn, err := h.annualizedReturn(h.Dataset)
	if err != nil {
		return nil, fmt.Errorf("failed to compute original return: %w", err)
	}
	scenarioReturn, err := h.annualizedReturn(h.Dataset.WithRecords(scenarioRecords))
	if err != nil {
		return nil, fmt.Errorf("failed to compute %s return: %w", name, err)
	}

	return &domain.ScenarioResult{
		Name:           name,
		OriginalReturn: originalReturn,
		ScenarioReturn: scenarioReturn,
		Impact:         scenarioReturn - originalReturn,
		Records:        scenarioRecords,
	}, nil
}

func (h scenarioServiceHandler) annualizedReturn(ds *dataset.ReturnDataset) (float64, error) {
	series := ds.PortfolioSeries(h.Aggregation)
	if len(series) == 0 {
		return 0, domain.InsufficientDataError{
			Operation: "annualized return",
			Have:      0,
			Need:      1,
		}
	}
	mean, err := stats.Mean(series.Values())
	if err != nil {
		return 0, err
	}
	return mean * float64(h.PeriodsPerYear), nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
