package l2_service

import (
	"attributionengine/internal/domain"

	"github.com/montanaflynn/stats"
)

// decomposeAdditive splits series into trend + seasonal + residual. the
// trend is a centred moving average (2 x period for even periods), so the
// first and last period/2 points have no trend or residual
func decomposeAdditive(series domain.Series, period int) (*domain.Decomposition, error) {
	n := len(series)
	if period < 2 || n < 2*period {
		return nil, domain.InsufficientDataError{
			Operation:     "seasonal decomposition",
			Have:          n,
			Need:          2 * period,
			NotApplicable: true,
		}
	}

	observed := series.Values()
	trend := centredMovingAverage(observed, period)

	detrended := make([]*float64, n)
	for i := range observed {
		if trend[i] != nil {
			v := observed[i] - *trend[i]
			detrended[i] = &v
		}
	}

	periodAverages := make([]float64, period)
	for p := 0; p < period; p++ {
		values := []float64{}
		for i := p; i < n; i += period {
			if detrended[i] != nil {
				values = append(values, *detrended[i])
			}
		}
		mean, err := stats.Mean(values)
		if err != nil {
			mean = 0
		}
		periodAverages[p] = mean
	}
	overall, err := stats.Mean(periodAverages)
	if err != nil {
		overall = 0
	}
	for p := range periodAverages {
		periodAverages[p] -= overall
	}

	seasonal := make([]float64, n)
	residual := make([]*float64, n)
	for i := range observed {
		seasonal[i] = periodAverages[i%period]
		if detrended[i] != nil {
			v := *detrended[i] - seasonal[i]
			residual[i] = &v
		}
	}

	return &domain.Decomposition{
		Period:   period,
		Dates:    series.Dates(),
		Observed: observed,
		Trend:    trend,
		Seasonal: seasonal,
		Residual: residual,
	}, nil
}

func centredMovingAverage(values []float64, period int) []*float64 {
	var weights []float64
	if period%2 == 0 {
		weights = make([]float64, period+1)
		for i := range weights {
			weights[i] = 1 / float64(period)
		}
		weights[0] /= 2
		weights[period] /= 2
	} else {
		weights = make([]float64, period)
		for i := range weights {
			weights[i] = 1 / float64(period)
		}
	}

	half := len(weights) / 2
	out := make([]*float64, len(values))
	for i := half; i < len(values)-half; i++ {
		sum := 0.0
		for j, w := range weights {
			sum += w * values[i-half+j]
		}
		out[i] = &sum
	}
	return out
}
