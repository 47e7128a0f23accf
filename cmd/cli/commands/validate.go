package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Data quality checks on the input files",
	Long: `Reports negative asset values, non-finite or extreme returns, gaps
between periods and periods missing from the benchmark.

Example:
  attribution validate --portfolio returns.csv --benchmark zse.csv --strict`,
	RunE: runValidate,
}

var validateStrict bool

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "exit non-zero when any issue is found")
}

func runValidate(cmd *cobra.Command, args []string) error {
	deps, err := loadDependencies()
	if err != nil {
		return err
	}

	report := deps.Dataset.Validate()
	err = writeOutput(report)
	if err != nil {
		return err
	}

	if validateStrict && !report.OK() {
		return fmt.Errorf("found %d data quality issues", len(report.Issues))
	}
	return nil
}
