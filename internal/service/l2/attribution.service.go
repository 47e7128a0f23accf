package l2_service

import (
	"fmt"
	"time"

	"attributionengine/internal/calculator"
	"attributionengine/internal/dataset"
	"attributionengine/internal/domain"
	"attributionengine/internal/logger"
	l1_service "attributionengine/internal/service/l1"
	"attributionengine/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type AttributionService interface {
	Attribute(start, end time.Time) (*domain.AttributionResult, error)
	AttributeByQuarter() ([]domain.PeriodAttribution, error)
	RiskAdjustedAttribution() (*domain.RiskAdjustedAttribution, error)
}

type attributionServiceHandler struct {
	Dataset          *dataset.ReturnDataset
	SectorAggregator l1_service.SectorAggregator
	Aggregation      dataset.Aggregation
	// per period
	RiskFreeRate float64
	Log          *zap.SugaredLogger
}

func NewAttributionService(
	ds *dataset.ReturnDataset,
	sectorAggregator l1_service.SectorAggregator,
	aggregation dataset.Aggregation,
	riskFreeRate float64,
	log *zap.SugaredLogger,
) AttributionService {
	return attributionServiceHandler{
		Dataset:          ds,
		SectorAggregator: sectorAggregator,
		Aggregation:      aggregation,
		RiskFreeRate:     riskFreeRate,
		Log:              logger.OrNop(log),
	}
}

// Attribute runs a Brinson-Fachler decomposition of active return over the
// closed window [start, end]
func (h attributionServiceHandler) Attribute(start, end time.Time) (*domain.AttributionResult, error) {
	summaries, err := h.SectorAggregator.Aggregate(h.Dataset, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate sectors: %w", err)
	}

	result := &domain.AttributionResult{
		Start:   start,
		End:     end,
		Sectors: make([]domain.SectorAttribution, 0, len(summaries)),
	}

	// a window holding no value has nothing to attribute, keep the rows
	// with every effect at 0
	totalValue := decimal.Zero
	for _, s := range summaries {
		totalValue = totalValue.Add(s.AssetValue)
	}
	if len(summaries) > 0 && totalValue.IsZero() {
		h.Log.Warnw("window has no asset value, returning zero effects", "start", start, "end", end)
		for _, s := range summaries {
			result.Sectors = append(result.Sectors, domain.SectorAttribution{SectorSummary: s})
		}
		return result, nil
	}

	for _, s := range summaries {
		row := brinsonFachler(s)
		result.AllocationEffect += row.AllocationEffect
		result.SelectionEffect += row.SelectionEffect
		result.InteractionEffect += row.InteractionEffect
		result.TotalActiveReturn += row.TotalEffect()
		result.Sectors = append(result.Sectors, row)
	}

	h.Log.Debugw(
		"computed attribution",
		"start", start.Format(time.DateOnly),
		"end", end.Format(time.DateOnly),
		"sectors", len(summaries),
		"totalActiveReturn", result.TotalActiveReturn,
	)

	return result, nil
}

func brinsonFachler(s domain.SectorSummary) domain.SectorAttribution {
	activeWeight := s.PortfolioWeight - s.BenchmarkWeight
	activeReturn := s.PortfolioReturn - s.BenchmarkReturn
	return domain.SectorAttribution{
		SectorSummary:     s,
		AllocationEffect:  activeWeight * s.BenchmarkReturn,
		SelectionEffect:   s.BenchmarkWeight * activeReturn,
		InteractionEffect: activeWeight * activeReturn,
	}
}

// AttributeByQuarter attributes every calendar quarter that has at least
// one record, oldest first
func (h attributionServiceHandler) AttributeByQuarter() ([]domain.PeriodAttribution, error) {
	out := []domain.PeriodAttribution{}
	seen := map[string]bool{}
	for _, date := range h.Dataset.Dates() {
		label := util.QuarterLabel(date)
		if seen[label] {
			continue
		}
		seen[label] = true

		start, end := util.QuarterBounds(date)
		result, err := h.Attribute(start, end)
		if err != nil {
			return nil, fmt.Errorf("failed to attribute %s: %w", label, err)
		}
		out = append(out, domain.PeriodAttribution{
			Period: label,
			Result: *result,
		})
	}
	return out, nil
}

// RiskAdjustedAttribution computes per-period Sharpe ratios of the
// portfolio and of every sector over the whole dataset
func (h attributionServiceHandler) RiskAdjustedAttribution() (*domain.RiskAdjustedAttribution, error) {
	portfolio := h.Dataset.PortfolioSeries(h.Aggregation)
	if len(portfolio) == 0 {
		return nil, domain.InsufficientDataError{
			Operation: "risk adjusted attribution",
			Have:      0,
			Need:      1,
		}
	}

	sectors := h.Dataset.Sectors()
	sectorSharpes := make([]domain.SectorSharpe, 0, len(sectors))
	for _, sector := range sectors {
		series := h.Dataset.SectorSeries(sector, h.Aggregation)
		sectorSharpes = append(sectorSharpes, domain.SectorSharpe{
			Sector: sector,
			Sharpe: calculator.Sharpe(series.Values(), h.RiskFreeRate),
		})
	}

	return &domain.RiskAdjustedAttribution{
		RiskFreeRate:    h.RiskFreeRate,
		PortfolioSharpe: calculator.Sharpe(portfolio.Values(), h.RiskFreeRate),
		SectorSharpes:   sectorSharpes,
	}, nil
}
