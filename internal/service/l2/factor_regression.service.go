package l2_service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"attributionengine/internal/dataset"
	"attributionengine/internal/domain"
	"attributionengine/internal/logger"

	"go.uber.org/zap"
)

type FactorRegressionService interface {
	Regress(target domain.Series, factors ...domain.Factor) (*domain.FactorExposure, error)
	FactorRegression(sector string) (*domain.FactorExposure, error)
	StyleRegression() (*domain.FactorExposure, error)
	SectorRegressions(ctx context.Context) ([]domain.SectorExposure, error)
}

type factorRegressionServiceHandler struct {
	Dataset          *dataset.ReturnDataset
	Aggregation      dataset.Aggregation
	CommodityWeights map[string]float64
	MomentumWindow   int
	StyleBuckets     int
	Log              *zap.SugaredLogger
}

func NewFactorRegressionService(
	ds *dataset.ReturnDataset,
	aggregation dataset.Aggregation,
	commodityWeights map[string]float64,
	momentumWindow int,
	styleBuckets int,
	log *zap.SugaredLogger,
) FactorRegressionService {
	return factorRegressionServiceHandler{
		Dataset:          ds,
		Aggregation:      aggregation,
		CommodityWeights: commodityWeights,
		MomentumWindow:   momentumWindow,
		StyleBuckets:     styleBuckets,
		Log:              logger.OrNop(log),
	}
}

// Regress fits target on the factors plus an intercept. rows are joined on
// date and any target date missing from a factor is dropped
func (h factorRegressionServiceHandler) Regress(target domain.Series, factors ...domain.Factor) (*domain.FactorExposure, error) {
	if len(factors) == 0 {
		return nil, fmt.Errorf("cannot regress on 0 factors")
	}

	aligned := alignOnDate(target, factors)
	if len(aligned.Dates) == 0 {
		factorDates := map[string]int{}
		for _, f := range factors {
			factorDates[f.Name] = len(f.Series)
		}
		return nil, domain.MisalignedDatesError{
			TargetDates: len(target),
			FactorDates: factorDates,
		}
	}
	if len(aligned.DroppedDates) > 0 {
		h.Log.Debugw("dropped unaligned dates", "dropped", len(aligned.DroppedDates), "kept", len(aligned.Dates))
	}

	need := len(factors) + 1
	if len(aligned.Dates) < need {
		return nil, domain.InsufficientDataError{
			Operation: "factor regression",
			Have:      len(aligned.Dates),
			Need:      need,
		}
	}

	constant := []string{}
	for i, column := range aligned.Columns {
		if hasNoVariance(column) {
			constant = append(constant, factors[i].Name)
		}
	}
	if len(constant) > 0 {
		return nil, domain.DegenerateFactorError{
			Factors:      constant,
			Observations: len(aligned.Dates),
		}
	}

	fit, err := fitOLS(aligned.Target, aligned.Columns)
	if err != nil {
		return nil, fmt.Errorf("failed to fit regression: %w", err)
	}

	names := make([]string, len(factors))
	for i, f := range factors {
		names[i] = f.Name
	}

	exposure := &domain.FactorExposure{
		Factors:          names,
		Intercept:        fit.Coefficients[0],
		Coefficients:     map[string]float64{},
		RSquared:         fit.RSquared,
		AdjustedRSquared: fit.AdjustedRSquared,
		Observations:     fit.Observations,
		ResidualDF:       fit.ResidualDF,
		DroppedDates:     aligned.DroppedDates,
	}
	for i, name := range names {
		exposure.Coefficients[name] = fit.Coefficients[i+1]
	}
	if fit.StdErrors != nil {
		exposure.StdErrors = keyByTerm(names, fit.StdErrors)
		exposure.TValues = keyByTerm(names, fit.TValues)
		exposure.PValues = keyByTerm(names, fit.PValues)
	}

	return exposure, nil
}

func hasNoVariance(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}

func keyByTerm(names []string, values []float64) map[string]float64 {
	out := map[string]float64{domain.InterceptKey: values[0]}
	for i, name := range names {
		out[name] = values[i+1]
	}
	return out
}

type alignedRows struct {
	Dates        []time.Time
	Target       []float64
	Columns      [][]float64
	DroppedDates []time.Time
}

func alignOnDate(target domain.Series, factors []domain.Factor) alignedRows {
	factorMaps := make([]map[time.Time]float64, len(factors))
	for i, f := range factors {
		factorMaps[i] = f.Series.ToMap()
	}

	out := alignedRows{
		Columns: make([][]float64, len(factors)),
	}
	for _, obs := range target {
		row := make([]float64, len(factors))
		complete := true
		for i, m := range factorMaps {
			value, ok := m[obs.Date]
			if !ok {
				complete = false
				break
			}
			row[i] = value
		}
		if !complete {
			out.DroppedDates = append(out.DroppedDates, obs.Date)
			continue
		}
		out.Dates = append(out.Dates, obs.Date)
		out.Target = append(out.Target, obs.Value)
		for i, value := range row {
			out.Columns[i] = append(out.Columns[i], value)
		}
	}
	return out
}

// FactorRegression regresses one sector's return series, or the whole
// portfolio's when sector is empty, on market, commodity and momentum
func (h factorRegressionServiceHandler) FactorRegression(sector string) (*domain.FactorExposure, error) {
	target := h.Dataset.PortfolioSeries(h.Aggregation)
	if sector != "" {
		target = h.Dataset.SectorSeries(sector, h.Aggregation)
	}
	if len(target) == 0 {
		return nil, domain.InsufficientDataError{
			Operation: fmt.Sprintf("factor regression for %q", sector),
			Have:      0,
			Need:      4,
		}
	}

	exposure, err := h.Regress(
		target,
		MarketFactor(h.Dataset),
		CommodityFactor(h.Dataset.Commodities(), h.CommodityWeights, h.Log),
		MomentumFactor(target, h.MomentumWindow),
	)
	if err != nil {
		return nil, err
	}
	return exposure, nil
}

// StyleRegression regresses the portfolio on market, size and value
func (h factorRegressionServiceHandler) StyleRegression() (*domain.FactorExposure, error) {
	exposure, err := h.Regress(
		h.Dataset.PortfolioSeries(h.Aggregation),
		MarketFactor(h.Dataset),
		SizeFactor(h.Dataset),
		ValueFactor(h.Dataset, h.StyleBuckets),
	)
	if err != nil {
		return nil, err
	}
	return exposure, nil
}

type sectorRegressionResult struct {
	Sector   string
	Exposure *domain.FactorExposure
	Err      error
}

// SectorRegressions runs FactorRegression for every sector. failures do
// not stop the others: the successful exposures are returned alongside an
// error that wraps the first failure in sector order
func (h factorRegressionServiceHandler) SectorRegressions(ctx context.Context) ([]domain.SectorExposure, error) {
	sectors := h.Dataset.Sectors()
	if len(sectors) == 0 {
		return []domain.SectorExposure{}, nil
	}

	inputCh := make(chan string, len(sectors))
	resultCh := make(chan sectorRegressionResult, len(sectors))
	for _, sector := range sectors {
		inputCh <- sector
	}
	close(inputCh)

	numGoroutines := 4
	if len(sectors) < numGoroutines {
		numGoroutines = len(sectors)
	}

	var wg sync.WaitGroup
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sector := range inputCh {
				if ctx.Err() != nil {
					resultCh <- sectorRegressionResult{Sector: sector, Err: ctx.Err()}
					continue
				}
				exposure, err := h.FactorRegression(sector)
				resultCh <- sectorRegressionResult{
					Sector:   sector,
					Exposure: exposure,
					Err:      err,
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := []sectorRegressionResult{}
	for res := range resultCh {
		results = append(results, res)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Sector < results[j].Sector
	})

	out := []domain.SectorExposure{}
	var firstErr error
	numFailed := 0
	for _, res := range results {
		if res.Err != nil {
			h.Log.Warnw("sector regression failed", "sector", res.Sector, "error", res.Err)
			numFailed++
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", res.Sector, res.Err)
			}
			continue
		}
		out = append(out, domain.SectorExposure{
			Sector:   res.Sector,
			Exposure: *res.Exposure,
		})
	}

	if firstErr != nil {
		return out, fmt.Errorf("failed to regress %d/%d sectors: %w", numFailed, len(sectors), firstErr)
	}
	return out, nil
}
