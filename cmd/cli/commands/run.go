package commands

import (
	"attributionengine/internal/domain"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run every analysis into one report",
	Long: `Validation, attribution, regressions, time series diagnostics and the
reference scenarios in one pass. Failed stages are recorded in the report
profile and do not stop the rest.

Example:
  attribution run --portfolio returns.csv --benchmark zse.csv --commodities commodities.csv -o report.json`,
	RunE: runRun,
}

var (
	runReallocate  string
	runSimulations int
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runReallocate, "reallocate", "", "also run a reallocation to these sector weights")
	runCmd.Flags().IntVar(&runSimulations, "simulations", 0, "monte carlo paths (default from config)")
}

func runRun(cmd *cobra.Command, args []string) error {
	deps, err := loadDependencies()
	if err != nil {
		return err
	}

	opts := deps.DefaultRunOptions()
	opts.Reallocation, err = parseWeights(runReallocate)
	if err != nil {
		return err
	}
	if runSimulations > 0 {
		opts.Simulations = runSimulations
	}

	profile, endProfile := domain.NewProfile()
	defer endProfile()
	ctx := domain.NewProfileContext(cmd.Context(), profile)

	report, runErr := deps.Run(ctx, opts)
	err = writeOutput(report)
	if err != nil {
		return err
	}
	return runErr
}
