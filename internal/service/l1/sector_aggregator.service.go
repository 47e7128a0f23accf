package l1_service

import (
	"fmt"
	"time"

	"attributionengine/internal/dataset"
	"attributionengine/internal/domain"
	"attributionengine/internal/logger"

	"go.uber.org/zap"
)

type SectorAggregator interface {
	Aggregate(ds *dataset.ReturnDataset, start, end time.Time) ([]domain.SectorSummary, error)
}

func NewSectorAggregator(
	benchmarkSource BenchmarkReturnSource,
	benchmarkWeights map[string]float64,
	aggregation dataset.Aggregation,
	log *zap.SugaredLogger,
) SectorAggregator {
	if benchmarkSource == nil {
		benchmarkSource = DefaultFixedBenchmarkSource()
	}
	return sectorAggregatorHandler{
		BenchmarkSource:  benchmarkSource,
		BenchmarkWeights: benchmarkWeights,
		Aggregation:      aggregation,
		Log:              logger.OrNop(log),
	}
}

type sectorAggregatorHandler struct {
	BenchmarkSource BenchmarkReturnSource
	// nil or empty means equal weight across the sectors in the window
	BenchmarkWeights map[string]float64
	Aggregation      dataset.Aggregation
	Log              *zap.SugaredLogger
}

// Aggregate summarises every sector present in [start, end], ordered by
// sector label. an empty window is not an error
func (h sectorAggregatorHandler) Aggregate(ds *dataset.ReturnDataset, start, end time.Time) ([]domain.SectorSummary, error) {
	records := ds.Window(start, end)
	if len(records) == 0 {
		h.Log.Debugw("no records in window", "start", start, "end", end)
		return []domain.SectorSummary{}, nil
	}

	sectors := dataset.SectorsOf(records)
	bySector := dataset.GroupBySector(records)
	total := dataset.TotalValue(records)
	if total.IsZero() {
		h.Log.Warnw("window has no asset value, all portfolio weights are 0", "start", start, "end", end)
	}

	out := make([]domain.SectorSummary, 0, len(sectors))
	for _, sector := range sectors {
		sectorRecords := bySector[sector]
		value := dataset.TotalValue(sectorRecords)

		weight := 0.0
		if !total.IsZero() {
			weight = value.Div(total).InexactFloat64()
		}

		benchmarkReturn, err := h.BenchmarkSource.SectorReturn(sector, start, end)
		if err != nil {
			return nil, fmt.Errorf("failed to get benchmark return for %s: %w", sector, err)
		}

		out = append(out, domain.SectorSummary{
			Sector:          sector,
			AssetValue:      value,
			Observations:    len(sectorRecords),
			PortfolioWeight: weight,
			PortfolioReturn: dataset.AggregateReturn(sectorRecords, h.Aggregation),
			BenchmarkWeight: h.benchmarkWeight(sector, len(sectors)),
			BenchmarkReturn: benchmarkReturn,
		})
	}

	return out, nil
}

func (h sectorAggregatorHandler) benchmarkWeight(sector string, numSectors int) float64 {
	if len(h.BenchmarkWeights) == 0 {
		return 1 / float64(numSectors)
	}
	w, ok := h.BenchmarkWeights[sector]
	if !ok {
		h.Log.Warnw("sector missing from benchmark weights, using 0", "sector", sector)
		return 0
	}
	return w
}
