package commands

import (
	attribution "attributionengine/cmd"
	"attributionengine/internal/domain"

	"github.com/spf13/cobra"
)

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "What-if scenarios and Monte Carlo simulation",
	Long: `Runs the scenarios whose flags are set. Weights and changes are given
as name=value lists.

Example:
  attribution scenarios --portfolio returns.csv --shock Gold=-0.2,Platinum=-0.15,Lithium=-0.3
  attribution scenarios --portfolio returns.csv --decline -0.3 --simulations 1000
  attribution scenarios --portfolio returns.csv --reallocate Mining=0.3,Energy=0.2,Financials=0.5`,
	RunE: runScenarios,
}

var (
	scenarioShock       string
	scenarioReallocate  string
	scenarioDecline     float64
	scenarioSimulations int
	scenarioRecords     bool
)

func init() {
	rootCmd.AddCommand(scenariosCmd)

	scenariosCmd.Flags().StringVar(&scenarioShock, "shock", "", "commodity price changes, e.g. Gold=-0.2,Platinum=-0.15")
	scenariosCmd.Flags().StringVar(&scenarioReallocate, "reallocate", "", "target sector weights, e.g. Mining=0.3,Energy=0.2")
	scenariosCmd.Flags().Float64Var(&scenarioDecline, "decline", 0, "annual market decline, e.g. -0.3")
	scenariosCmd.Flags().IntVar(&scenarioSimulations, "simulations", 0, "monte carlo paths (0 skips the simulation)")
	scenariosCmd.Flags().BoolVar(&scenarioRecords, "records", false, "include the perturbed records in the output")
}

func runScenarios(cmd *cobra.Command, args []string) error {
	deps, err := loadDependencies()
	if err != nil {
		return err
	}

	shock, err := parseWeights(scenarioShock)
	if err != nil {
		return err
	}
	reallocation, err := parseWeights(scenarioReallocate)
	if err != nil {
		return err
	}

	report := attribution.NewReport()
	add := func(result *domain.ScenarioResult, err error) error {
		if err != nil {
			return err
		}
		if !scenarioRecords {
			result.Records = nil
		}
		report.Scenarios = append(report.Scenarios, *result)
		return nil
	}

	if len(shock) > 0 {
		err = add(deps.ScenarioService.CommodityShock(shock))
		if err != nil {
			return err
		}
	}
	if len(reallocation) > 0 {
		err = add(deps.ScenarioService.SectorReallocation(reallocation))
		if err != nil {
			return err
		}
	}
	if scenarioDecline != 0 {
		err = add(deps.ScenarioService.MarketDownturn(scenarioDecline))
		if err != nil {
			return err
		}
	}
	if scenarioSimulations > 0 {
		report.MonteCarlo, err = deps.ScenarioService.MonteCarlo(scenarioSimulations)
		if err != nil {
			return err
		}
	}

	return writeOutput(report)
}
