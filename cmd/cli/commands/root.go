package commands

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	attribution "attributionengine/cmd"
	"attributionengine/internal/config"
	"attributionengine/internal/dataset"
	"attributionengine/internal/logger"
	"attributionengine/internal/util"

	"github.com/spf13/cobra"
)

var (
	// global flags
	configFile      string
	portfolioFile   string
	benchmarkFile   string
	benchmarkColumn string
	commodityFile   string
	outputFormat    string
	outputFile      string
)

var rootCmd = &cobra.Command{
	Use:   "attribution",
	Short: "Portfolio attribution and risk analytics",
	Long: `Brinson-Fachler attribution, factor regressions, time series diagnostics
and scenario analysis over a CSV portfolio return history.

Examples:
  attribution run --portfolio returns.csv --benchmark zse.csv --commodities commodities.csv
  attribution attribute --portfolio returns.csv --quarterly
  attribution scenarios --portfolio returns.csv --shock Gold=-0.2,Platinum=-0.15`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "toml config file")
	rootCmd.PersistentFlags().StringVar(&portfolioFile, "portfolio", "", "portfolio returns csv (required)")
	rootCmd.PersistentFlags().StringVar(&benchmarkFile, "benchmark", "", "benchmark index csv")
	rootCmd.PersistentFlags().StringVar(&benchmarkColumn, "benchmark-column", dataset.DefaultBenchmarkLevelColumn, "benchmark level column")
	rootCmd.PersistentFlags().StringVar(&commodityFile, "commodities", "", "commodity prices csv")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", attribution.FormatJSON, "output format (json|msgpack)")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "output file (default stdout)")
	_ = rootCmd.MarkPersistentFlagRequired("portfolio")
}

func loadDependencies() (*attribution.Dependencies, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Environment != "" {
		os.Setenv(logger.EnvVar, cfg.Environment)
	}
	log := logger.New()

	ds, err := dataset.LoadFiles(dataset.Files{
		Portfolio:            portfolioFile,
		Benchmark:            benchmarkFile,
		BenchmarkLevelColumn: benchmarkColumn,
		Commodities:          commodityFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}
	log.Infow("loaded dataset", "records", ds.Len(), "sectors", len(ds.Sectors()), "benchmarks", len(ds.Benchmarks()))

	return attribution.InitializeDependencies(cfg, ds, log)
}

func writeOutput(v any) error {
	if outputFile == "" {
		return attribution.WriteReport(os.Stdout, v, outputFormat)
	}
	return writeFile(outputFile, v, outputFormat)
}

// writeFile reports a failed close, which is where a short write on a full
// disk surfaces
func writeFile(path string, v any, format string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		closeErr := f.Close()
		if closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, closeErr)
		}
	}()

	return attribution.WriteReport(f, v, format)
}

// parseWeights reads "Gold=-0.2,Platinum=-0.15"
func parseWeights(s string) (map[string]float64, error) {
	out := map[string]float64{}
	if strings.TrimSpace(s) == "" {
		return out, nil
	}
	for _, pair := range strings.Split(s, ",") {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("expected name=value, got %q", pair)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %w", name, err)
		}
		out[strings.TrimSpace(name)] = f
	}
	return out, nil
}

// parseWindow falls back to the dataset's range for empty flags
func parseWindow(deps *attribution.Dependencies, start, end string) (time.Time, time.Time, error) {
	first, last := deps.DateRange()
	var err error
	if start != "" {
		first, err = util.ParseDate(start)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if end != "" {
		last, err = util.ParseDate(end)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if last.Before(first) {
		return time.Time{}, time.Time{}, fmt.Errorf("end %s is before start %s", last.Format(time.DateOnly), first.Format(time.DateOnly))
	}
	return first, last, nil
}
