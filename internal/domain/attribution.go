package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SectorSummary is the per-sector aggregate of a closed date window. it is
// recomputed for every query and never stored
type SectorSummary struct {
	Sector          string          `json:"sector" msgpack:"sector"`
	AssetValue      decimal.Decimal `json:"assetValue" msgpack:"assetValue"`
	Observations    int             `json:"observations" msgpack:"observations"`
	PortfolioWeight float64         `json:"portfolioWeight" msgpack:"portfolioWeight"`
	PortfolioReturn float64         `json:"portfolioReturn" msgpack:"portfolioReturn"`
	BenchmarkWeight float64         `json:"benchmarkWeight" msgpack:"benchmarkWeight"`
	BenchmarkReturn float64         `json:"benchmarkReturn" msgpack:"benchmarkReturn"`
}

type SectorAttribution struct {
	SectorSummary
	AllocationEffect  float64 `json:"allocationEffect" msgpack:"allocationEffect"`
	SelectionEffect   float64 `json:"selectionEffect" msgpack:"selectionEffect"`
	InteractionEffect float64 `json:"interactionEffect" msgpack:"interactionEffect"`
}

// TotalEffect is the sector's contribution to active return
func (s SectorAttribution) TotalEffect() float64 {
	return s.AllocationEffect + s.SelectionEffect + s.InteractionEffect
}

type AttributionResult struct {
	Start             time.Time           `json:"start" msgpack:"start"`
	End               time.Time           `json:"end" msgpack:"end"`
	AllocationEffect  float64             `json:"allocationEffect" msgpack:"allocationEffect"`
	SelectionEffect   float64             `json:"selectionEffect" msgpack:"selectionEffect"`
	InteractionEffect float64             `json:"interactionEffect" msgpack:"interactionEffect"`
	TotalActiveReturn float64             `json:"totalActiveReturn" msgpack:"totalActiveReturn"`
	Sectors           []SectorAttribution `json:"sectors" msgpack:"sectors"`
}

// PeriodAttribution labels an attribution run over a calendar period,
// e.g. "2024 Q1"
type PeriodAttribution struct {
	Period string            `json:"period" msgpack:"period"`
	Result AttributionResult `json:"result" msgpack:"result"`
}

type SectorSharpe struct {
	Sector string  `json:"sector" msgpack:"sector"`
	Sharpe float64 `json:"sharpe" msgpack:"sharpe"`
}

type RiskAdjustedAttribution struct {
	RiskFreeRate    float64        `json:"riskFreeRate" msgpack:"riskFreeRate"`
	PortfolioSharpe float64        `json:"portfolioSharpe" msgpack:"portfolioSharpe"`
	SectorSharpes   []SectorSharpe `json:"sectorSharpes" msgpack:"sectorSharpes"`
}
