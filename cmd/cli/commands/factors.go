package commands

import (
	attribution "attributionengine/cmd"

	"github.com/spf13/cobra"
)

var factorsCmd = &cobra.Command{
	Use:   "factors",
	Short: "Factor regressions",
	Long: `Regresses returns on market, commodity and momentum factors, or on
market, size and value with --style.

Example:
  attribution factors --portfolio returns.csv --benchmark zse.csv --commodities commodities.csv
  attribution factors --portfolio returns.csv --benchmark zse.csv --sector Mining
  attribution factors --portfolio returns.csv --benchmark zse.csv --all-sectors --style`,
	RunE: runFactors,
}

var (
	factorsSector     string
	factorsStyle      bool
	factorsAllSectors bool
)

func init() {
	rootCmd.AddCommand(factorsCmd)

	factorsCmd.Flags().StringVar(&factorsSector, "sector", "", "regress one sector instead of the portfolio")
	factorsCmd.Flags().BoolVar(&factorsStyle, "style", false, "also run the market/size/value regression")
	factorsCmd.Flags().BoolVar(&factorsAllSectors, "all-sectors", false, "regress every sector")
}

func runFactors(cmd *cobra.Command, args []string) error {
	deps, err := loadDependencies()
	if err != nil {
		return err
	}

	report := attribution.NewReport()
	report.FactorExposure, err = deps.FactorRegressionService.FactorRegression(factorsSector)
	if err != nil {
		return err
	}

	if factorsStyle {
		report.StyleExposure, err = deps.FactorRegressionService.StyleRegression()
		if err != nil {
			return err
		}
	}

	if factorsAllSectors {
		report.SectorExposures, err = deps.FactorRegressionService.SectorRegressions(cmd.Context())
		if err != nil {
			// partial results are still worth writing
			deps.Log.Warnw("some sector regressions failed", "error", err)
		}
	}

	return writeOutput(report)
}
