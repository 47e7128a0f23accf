package l3_service

import (
	"fmt"
	"sort"

	"attributionengine/internal/calculator"
	"attributionengine/internal/domain"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// MonteCarlo simulates compounded returns over the horizon by drawing
// every period from a normal fitted to the portfolio series. draws come
// from the handler's source, so equal seeds give equal results
func (h scenarioServiceHandler) MonteCarlo(simulations int) (*domain.MonteCarloResult, error) {
	if simulations <= 0 {
		return nil, fmt.Errorf("simulations must be positive, got %d", simulations)
	}
	if h.Src == nil {
		return nil, fmt.Errorf("monte carlo needs a random source")
	}

	values := h.Dataset.PortfolioSeries(h.Aggregation).Values()
	if len(values) < 2 {
		return nil, domain.InsufficientDataError{
			Operation: "monte carlo",
			Have:      len(values),
			Need:      2,
		}
	}

	mean, err := stats.Mean(values)
	if err != nil {
		return nil, fmt.Errorf("failed to compute mean return: %w", err)
	}
	stdev, err := stats.StandardDeviationSample(values)
	if err != nil {
		return nil, fmt.Errorf("failed to compute return stdev: %w", err)
	}

	dist := distuv.Normal{
		Mu:    mean,
		Sigma: stdev,
		Src:   h.Src,
	}

	outcomes := make([]float64, simulations)
	for i := range outcomes {
		growth := 1.0
		for p := 0; p < h.HorizonPeriods; p++ {
			growth *= 1 + dist.Rand()
		}
		outcomes[i] = growth - 1
	}

	sorted := append([]float64{}, outcomes...)
	sort.Float64s(sorted)

	outcomeMean, err := stats.Mean(sorted)
	if err != nil {
		return nil, fmt.Errorf("failed to compute outcome mean: %w", err)
	}
	median, err := stats.Median(sorted)
	if err != nil {
		return nil, fmt.Errorf("failed to compute outcome median: %w", err)
	}
	outcomeStdev, err := stats.StandardDeviationPopulation(sorted)
	if err != nil {
		return nil, fmt.Errorf("failed to compute outcome stdev: %w", err)
	}
	p5, err := calculator.Percentile(sorted, 0.05)
	if err != nil {
		return nil, fmt.Errorf("failed to compute 5th percentile: %w", err)
	}
	p95, err := calculator.Percentile(sorted, 0.95)
	if err != nil {
		return nil, fmt.Errorf("failed to compute 95th percentile: %w", err)
	}

	tail := []float64{}
	for _, o := range sorted {
		if o > p5 {
			break
		}
		tail = append(tail, o)
	}
	cvar := -p5
	if len(tail) > 0 {
		tailMean, _ := stats.Mean(tail)
		cvar = -tailMean
	}

	h.Log.Debugw("ran monte carlo", "simulations", simulations, "mean", outcomeMean, "var95", -p5)

	return &domain.MonteCarloResult{
		Simulations:  simulations,
		MonthlyMean:  mean,
		MonthlyStdev: stdev,
		Mean:         outcomeMean,
		Median:       median,
		StdDev:       outcomeStdev,
		Percentile5:  p5,
		Percentile95: p95,
		VaR95:        -p5,
		CVaR95:       cvar,
		Returns:      outcomes,
	}, nil
}
