package calculator

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
)

type CalculateMetricsResult struct {
	AnnualizedStdev  float64 `json:"annualizedStdev" msgpack:"annualizedStdev"`
	AnnualizedReturn float64 `json:"annualizedReturn" msgpack:"annualizedReturn"`
	SharpeRatio      float64 `json:"sharpeRatio" msgpack:"sharpeRatio"`
	MaxDrawdown      float64 `json:"maxDrawdown" msgpack:"maxDrawdown"`
}

// Sharpe is the per-period Sharpe ratio using the sample standard
// deviation. degenerate inputs (fewer than two points, a constant series)
// give exactly 0 rather than noise or NaN
func Sharpe(returns []float64, riskFreePerPeriod float64) float64 {
	stdev := SampleStdev(returns)
	if stdev == 0 {
		return 0
	}
	mean, err := stats.Mean(returns)
	if err != nil {
		return 0
	}

	return (mean - riskFreePerPeriod) / stdev
}

// SampleStdev is the n-1 standard deviation, exactly 0 for constant or
// single point series
func SampleStdev(values []float64) float64 {
	if len(values) < 2 || isConstant(values) {
		return 0
	}
	stdev, err := stats.StandardDeviationSample(values)
	if err != nil || math.IsNaN(stdev) {
		return 0
	}
	return stdev
}

func AnnualizedSharpe(returns []float64, riskFreePerPeriod float64, periodsPerYear int) float64 {
	return Sharpe(returns, riskFreePerPeriod) * math.Sqrt(float64(periodsPerYear))
}

// CalculateMetrics summarises a periodic return series. returns are
// arithmetic per period, annualized by periodsPerYear
func CalculateMetrics(returns []float64, periodsPerYear int) (*CalculateMetricsResult, error) {
	if len(returns) < 2 {
		return nil, fmt.Errorf("cannot calculate metrics on < 2 returns")
	}
	if periodsPerYear <= 0 {
		return nil, fmt.Errorf("periods per year must be positive, got %d", periodsPerYear)
	}

	mean, err := stats.Mean(returns)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate mean: %w", err)
	}

	stdev := SampleStdev(returns)

	return &CalculateMetricsResult{
		AnnualizedStdev:  stdev * math.Sqrt(float64(periodsPerYear)),
		AnnualizedReturn: mean * float64(periodsPerYear),
		SharpeRatio:      AnnualizedSharpe(returns, 0, periodsPerYear),
		MaxDrawdown:      MaxDrawdown(returns),
	}, nil
}

// MaxDrawdown is the largest peak-to-trough fall of the compounded series,
// as a positive fraction of the peak
func MaxDrawdown(returns []float64) float64 {
	value := 1.0
	peak := 1.0
	maxDrawdown := 0.0
	for _, r := range returns {
		value *= 1 + r
		if value > peak {
			peak = value
		}
		if peak > 0 {
			maxDrawdown = math.Max(maxDrawdown, (peak-value)/peak)
		}
	}
	return maxDrawdown
}

// Percentile interpolates linearly between the closest ranks of an
// ascending slice, placing p at position (n-1)*p. p is a fraction in [0, 1]
func Percentile(sorted []float64, p float64) (float64, error) {
	if len(sorted) == 0 {
		return 0, fmt.Errorf("cannot take a percentile of 0 values")
	}
	if p < 0 || p > 1 || math.IsNaN(p) {
		return 0, fmt.Errorf("percentile must be within [0, 1], got %f", p)
	}

	pos := p * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	if lower >= len(sorted)-1 {
		return sorted[len(sorted)-1], nil
	}
	frac := pos - float64(lower)
	return sorted[lower] + frac*(sorted[lower+1]-sorted[lower]), nil
}

// floating point leaves a tiny nonzero stdev on some constant series, so
// compare the values instead
func isConstant(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}
