package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"attributionengine/internal/calculator"
	"attributionengine/internal/dataset"
	"attributionengine/internal/domain"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	FormatJSON    = "json"
	FormatMsgpack = "msgpack"
)

// Report collects every result of one analysis run. sections that were
// not run, or failed, stay empty and the failure is on the matching span
type Report struct {
	RunID       uuid.UUID `json:"runId" msgpack:"runId"`
	GeneratedAt time.Time `json:"generatedAt" msgpack:"generatedAt"`

	Validation      *dataset.ValidationReport          `json:"validation,omitempty" msgpack:"validation,omitempty"`
	Attribution     *domain.AttributionResult          `json:"attribution,omitempty" msgpack:"attribution,omitempty"`
	Quarterly       []domain.PeriodAttribution         `json:"quarterly,omitempty" msgpack:"quarterly,omitempty"`
	RiskAdjusted    *domain.RiskAdjustedAttribution    `json:"riskAdjusted,omitempty" msgpack:"riskAdjusted,omitempty"`
	Metrics         *calculator.CalculateMetricsResult `json:"metrics,omitempty" msgpack:"metrics,omitempty"`
	FactorExposure  *domain.FactorExposure             `json:"factorExposure,omitempty" msgpack:"factorExposure,omitempty"`
	StyleExposure   *domain.FactorExposure             `json:"styleExposure,omitempty" msgpack:"styleExposure,omitempty"`
	SectorExposures []domain.SectorExposure            `json:"sectorExposures,omitempty" msgpack:"sectorExposures,omitempty"`
	Rolling         []domain.RollingPoint              `json:"rolling,omitempty" msgpack:"rolling,omitempty"`
	Stationarity    *domain.StationarityResult         `json:"stationarity,omitempty" msgpack:"stationarity,omitempty"`
	Decomposition   *domain.Decomposition              `json:"decomposition,omitempty" msgpack:"decomposition,omitempty"`
	Scenarios       []domain.ScenarioResult            `json:"scenarios,omitempty" msgpack:"scenarios,omitempty"`
	MonteCarlo      *domain.MonteCarloResult           `json:"monteCarlo,omitempty" msgpack:"monteCarlo,omitempty"`

	Profile *domain.Profile `json:"profile,omitempty" msgpack:"profile,omitempty"`
}

func NewReport() *Report {
	return &Report{
		RunID:       uuid.New(),
		GeneratedAt: time.Now().UTC(),
	}
}

func WriteReport(w io.Writer, v any, format string) error {
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		err := encoder.Encode(v)
		if err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
	case FormatMsgpack:
		err := msgpack.NewEncoder(w).Encode(v)
		if err != nil {
			return fmt.Errorf("failed to encode msgpack: %w", err)
		}
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
	return nil
}
