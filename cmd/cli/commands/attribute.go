package commands

import (
	attribution "attributionengine/cmd"

	"github.com/spf13/cobra"
)

var attributeCmd = &cobra.Command{
	Use:   "attribute",
	Short: "Brinson-Fachler attribution over a date window",
	Long: `Decomposes active return into allocation, selection and interaction
effects per sector. The window defaults to the whole dataset.

Example:
  attribution attribute --portfolio returns.csv --start 2024-01-01 --end 2024-06-30
  attribution attribute --portfolio returns.csv --quarterly --risk-adjusted`,
	RunE: runAttribute,
}

var (
	attributeStart        string
	attributeEnd          string
	attributeQuarterly    bool
	attributeRiskAdjusted bool
)

func init() {
	rootCmd.AddCommand(attributeCmd)

	attributeCmd.Flags().StringVar(&attributeStart, "start", "", "window start (YYYY-MM-DD)")
	attributeCmd.Flags().StringVar(&attributeEnd, "end", "", "window end (YYYY-MM-DD)")
	attributeCmd.Flags().BoolVar(&attributeQuarterly, "quarterly", false, "also attribute every calendar quarter")
	attributeCmd.Flags().BoolVar(&attributeRiskAdjusted, "risk-adjusted", false, "also compute portfolio and sector sharpe ratios")
}

func runAttribute(cmd *cobra.Command, args []string) error {
	deps, err := loadDependencies()
	if err != nil {
		return err
	}

	start, end, err := parseWindow(deps, attributeStart, attributeEnd)
	if err != nil {
		return err
	}

	report := attribution.NewReport()
	report.Attribution, err = deps.AttributionService.Attribute(start, end)
	if err != nil {
		return err
	}

	if attributeQuarterly {
		report.Quarterly, err = deps.AttributionService.AttributeByQuarter()
		if err != nil {
			return err
		}
	}

	if attributeRiskAdjusted {
		report.RiskAdjusted, err = deps.AttributionService.RiskAdjustedAttribution()
		if err != nil {
			return err
		}
		report.Metrics, err = deps.PortfolioMetrics()
		if err != nil {
			return err
		}
	}

	return writeOutput(report)
}
