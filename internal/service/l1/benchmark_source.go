package l1_service

import (
	"math/rand/v2"
	"time"

	"attributionengine/internal/domain"
	"attributionengine/internal/util"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// BenchmarkReturnSource supplies the benchmark return of one sector over a
// closed window. callers ask for sectors in lexicographic order so that
// stateful sources stay reproducible
type BenchmarkReturnSource interface {
	SectorReturn(sector string, start, end time.Time) (float64, error)
}

// FixedBenchmarkSource returns a constant per sector
type FixedBenchmarkSource struct {
	Returns map[string]float64
	Default float64
}

func (s FixedBenchmarkSource) SectorReturn(sector string, start, end time.Time) (float64, error) {
	if r, ok := s.Returns[sector]; ok {
		return r, nil
	}
	return s.Default, nil
}

// DefaultFixedBenchmarkSource uses the centre of each stochastic band
func DefaultFixedBenchmarkSource() FixedBenchmarkSource {
	bands := DefaultSectorBands()
	returns := map[string]float64{}
	for sector, band := range bands {
		returns[sector] = band.Mean
	}
	return FixedBenchmarkSource{
		Returns: returns,
		Default: DefaultBand().Mean,
	}
}

type Band struct {
	Mean       float64
	Volatility float64
}

func DefaultSectorBands() map[string]Band {
	return map[string]Band{
		"Mining":     {Mean: 0.010, Volatility: 0.040},
		"Financials": {Mean: 0.008, Volatility: 0.030},
		"Energy":     {Mean: 0.006, Volatility: 0.035},
	}
}

func DefaultBand() Band {
	return Band{Mean: 0.007, Volatility: 0.032}
}

// StochasticBenchmarkSource draws every sector return from a normal
// distribution. it consumes Src, so two sources built on equally seeded
// generators produce the same draws
type StochasticBenchmarkSource struct {
	Bands   map[string]Band
	Default Band
	Src     rand.Source
}

func NewStochasticBenchmarkSource(bands map[string]Band, defaultBand Band, src rand.Source) *StochasticBenchmarkSource {
	return &StochasticBenchmarkSource{
		Bands:   bands,
		Default: defaultBand,
		Src:     src,
	}
}

func (s *StochasticBenchmarkSource) SectorReturn(sector string, start, end time.Time) (float64, error) {
	band, ok := s.Bands[sector]
	if !ok {
		band = s.Default
	}
	dist := distuv.Normal{
		Mu:    band.Mean,
		Sigma: band.Volatility,
		Src:   s.Src,
	}
	return dist.Rand(), nil
}

// IndexBenchmarkSource uses the mean index return of the window for every
// sector
type IndexBenchmarkSource struct {
	Benchmarks []domain.BenchmarkRecord
}

func (s IndexBenchmarkSource) SectorReturn(sector string, start, end time.Time) (float64, error) {
	returns := []float64{}
	for _, b := range s.Benchmarks {
		if util.InWindow(b.Date, start, end) {
			returns = append(returns, b.Return)
		}
	}
	if len(returns) == 0 {
		return 0, domain.InsufficientDataError{
			Operation: "index benchmark return",
			Have:      0,
			Need:      1,
		}
	}
	return stats.Mean(returns)
}
