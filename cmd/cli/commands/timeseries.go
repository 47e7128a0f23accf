package commands

import (
	"errors"

	attribution "attributionengine/cmd"
	"attributionengine/internal/domain"

	"github.com/spf13/cobra"
)

var timeseriesCmd = &cobra.Command{
	Use:   "timeseries",
	Short: "Rolling performance, stationarity and seasonal decomposition",
	Long: `Analyses the portfolio's periodic return series.

A decomposition over less than two seasonal cycles is skipped, not failed.

Example:
  attribution timeseries --portfolio returns.csv --window 6`,
	RunE: runTimeseries,
}

var timeseriesWindow int

func init() {
	rootCmd.AddCommand(timeseriesCmd)

	timeseriesCmd.Flags().IntVar(&timeseriesWindow, "window", 0, "rolling window in periods (default from config)")
}

func runTimeseries(cmd *cobra.Command, args []string) error {
	deps, err := loadDependencies()
	if err != nil {
		return err
	}

	window := timeseriesWindow
	if window == 0 {
		window = deps.Config.TimeSeries.RollingWindow
	}

	report := attribution.NewReport()
	report.Rolling, err = deps.TimeSeriesService.RollingPerformance(window)
	if err != nil {
		return err
	}

	report.Stationarity, err = deps.TimeSeriesService.TestStationarity()
	if err != nil {
		return err
	}

	report.Decomposition, err = deps.TimeSeriesService.DecomposeReturns()
	if errors.Is(err, domain.ErrNotApplicable) {
		deps.Log.Infow("skipping decomposition", "reason", err)
	} else if err != nil {
		return err
	}

	return writeOutput(report)
}
