package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"attributionengine/internal/calculator"
	"attributionengine/internal/dataset"
	"attributionengine/internal/domain"
)

type RunOptions struct {
	Start time.Time
	End   time.Time

	RollingWindow   int
	CommodityShock  map[string]float64
	Reallocation    map[string]float64
	MarketDecline   float64
	Simulations     int
	SkipValidation  bool
	SkipScenarios   bool
	SkipTimeSeries  bool
	SkipRegressions bool
}

// DefaultRunOptions mirrors the reference scenario set: a broad commodity
// sell-off, a 30% market decline and the configured simulation count
func (d *Dependencies) DefaultRunOptions() RunOptions {
	start, end := d.DateRange()
	return RunOptions{
		Start:         start,
		End:           end,
		RollingWindow: d.Config.TimeSeries.RollingWindow,
		CommodityShock: map[string]float64{
			"Gold":     -0.20,
			"Platinum": -0.15,
			"Lithium":  -0.30,
		},
		MarketDecline: -0.30,
		Simulations:   d.Config.Scenario.Simulations,
	}
}

// DateRange is the first and last date in the dataset
func (d *Dependencies) DateRange() (time.Time, time.Time) {
	dates := d.Dataset.Dates()
	if len(dates) == 0 {
		return time.Time{}, time.Time{}
	}
	return dates[0], dates[len(dates)-1]
}

// Run executes every analysis into one report. a failing stage is logged
// and recorded on its span, the remaining stages still run. stages whose
// preconditions are not met, or whose factors are constant over the
// data, are not counted as failures
func (d *Dependencies) Run(ctx context.Context, opts RunOptions) (*Report, error) {
	profile := domain.ProfileFromContext(ctx)
	report := NewReport()
	report.Profile = profile
	numFailed := 0

	stage := func(name string, fn func() error) {
		if ctx.Err() != nil {
			return
		}
		span, endSpan := profile.StartNewSpan(name)
		err := fn()
		if err != nil {
			span.Fail(err)
			if errors.Is(err, domain.ErrNotApplicable) || errors.Is(err, domain.ErrDegenerateFactor) {
				d.Log.Infow("skipped stage", "stage", name, "reason", err)
				return
			}
			numFailed++
			d.Log.Errorw("stage failed", "stage", name, "error", err)
			return
		}
		endSpan()
	}

	if !opts.SkipValidation {
		stage("validate", func() error {
			validation := d.Dataset.Validate()
			report.Validation = &validation
			if !validation.OK() {
				d.Log.Warnw(
					"dataset has data quality issues",
					"issues", len(validation.Issues),
					"negativeValues", validation.Count(dataset.IssueNegativeValue),
					"nonFiniteReturns", validation.Count(dataset.IssueNonFiniteReturn),
					"extremeReturns", validation.Count(dataset.IssueExtremeReturn),
					"dateGaps", validation.Count(dataset.IssueDateGap),
					"missingBenchmarks", validation.Count(dataset.IssueMissingBenchmark),
				)
			}
			return nil
		})
	}

	stage("attribute", func() error {
		var err error
		report.Attribution, err = d.AttributionService.Attribute(opts.Start, opts.End)
		return err
	})
	stage("attribute by quarter", func() error {
		var err error
		report.Quarterly, err = d.AttributionService.AttributeByQuarter()
		return err
	})
	stage("risk adjusted attribution", func() error {
		var err error
		report.RiskAdjusted, err = d.AttributionService.RiskAdjustedAttribution()
		return err
	})
	stage("portfolio metrics", func() error {
		var err error
		report.Metrics, err = d.PortfolioMetrics()
		return err
	})

	if !opts.SkipRegressions {
		stage("factor regression", func() error {
			var err error
			report.FactorExposure, err = d.FactorRegressionService.FactorRegression("")
			return err
		})
		stage("style regression", func() error {
			var err error
			report.StyleExposure, err = d.FactorRegressionService.StyleRegression()
			return err
		})
		stage("sector regressions", func() error {
			var err error
			report.SectorExposures, err = d.FactorRegressionService.SectorRegressions(ctx)
			return err
		})
	}

	if !opts.SkipTimeSeries {
		stage("rolling performance", func() error {
			var err error
			report.Rolling, err = d.TimeSeriesService.RollingPerformance(opts.RollingWindow)
			return err
		})
		stage("stationarity", func() error {
			var err error
			report.Stationarity, err = d.TimeSeriesService.TestStationarity()
			return err
		})
		stage("decomposition", func() error {
			var err error
			report.Decomposition, err = d.TimeSeriesService.DecomposeReturns()
			return err
		})
	}

	if !opts.SkipScenarios {
		if len(opts.CommodityShock) > 0 {
			stage("commodity shock", func() error {
				return d.appendScenario(report, func() (*domain.ScenarioResult, error) {
					return d.ScenarioService.CommodityShock(opts.CommodityShock)
				})
			})
		}
		if len(opts.Reallocation) > 0 {
			stage("sector reallocation", func() error {
				return d.appendScenario(report, func() (*domain.ScenarioResult, error) {
					return d.ScenarioService.SectorReallocation(opts.Reallocation)
				})
			})
		}
		if opts.MarketDecline != 0 {
			stage("market downturn", func() error {
				return d.appendScenario(report, func() (*domain.ScenarioResult, error) {
					return d.ScenarioService.MarketDownturn(opts.MarketDecline)
				})
			})
		}
		if opts.Simulations > 0 {
			stage("monte carlo", func() error {
				var err error
				report.MonteCarlo, err = d.ScenarioService.MonteCarlo(opts.Simulations)
				return err
			})
		}
	}

	profile.End()

	if ctx.Err() != nil {
		return report, ctx.Err()
	}
	if numFailed > 0 {
		return report, fmt.Errorf("%d of %d stages failed", numFailed, len(profile.Spans))
	}
	return report, nil
}

func (d *Dependencies) appendScenario(report *Report, fn func() (*domain.ScenarioResult, error)) error {
	result, err := fn()
	if err != nil {
		return err
	}
	// the perturbed records are only useful in the single scenario command
	result.Records = nil
	report.Scenarios = append(report.Scenarios, *result)
	return nil
}

// PortfolioMetrics summarises the per-date portfolio return series
func (d *Dependencies) PortfolioMetrics() (*calculator.CalculateMetricsResult, error) {
	returns := d.Dataset.PortfolioSeries(d.Aggregation).Values()
	metrics, err := calculator.CalculateMetrics(returns, d.Config.Risk.PeriodsPerYear)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate portfolio metrics: %w", err)
	}
	return metrics, nil
}
