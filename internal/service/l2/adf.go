package l2_service

import (
	"fmt"
	"math"

	"attributionengine/internal/domain"

	"gonum.org/v1/gonum/stat/distuv"
)

// augmented Dickey-Fuller with a constant, lag picked by AIC

const adfSignificance = 0.05

// MacKinnon (1994) response surface for one variable with a constant
var (
	adfMaxStat  = 2.74
	adfMinStat  = -18.83
	adfStarStat = -1.61
	adfSmallP   = []float64{2.1659, 1.4412, 0.038269}
	adfLargeP   = []float64{1.7339, 0.93202, -0.12745, -0.010368}
)

// MacKinnon (2010) finite sample critical values
var adfCritical = []struct {
	Level  string
	Coeffs []float64
}{
	{"1%", []float64{-3.43035, -6.5393, -16.786, -79.433}},
	{"5%", []float64{-2.86154, -2.8903, -4.234, -40.04}},
	{"10%", []float64{-2.56677, -1.5384, -2.809}},
}

func adfMaxLag(n int) int {
	maxLag := int(math.Ceil(12 * math.Pow(float64(n)/100, 0.25)))
	if limit := n/2 - 2; limit < maxLag {
		maxLag = limit
	}
	return maxLag
}

// adfDesign builds the regression of dx_t on x_{t-1} and `lags` lagged
// differences, using only the last nobs rows
func adfDesign(x []float64, lags, nobs int) ([]float64, [][]float64) {
	xdiff := make([]float64, len(x)-1)
	for i := range xdiff {
		xdiff[i] = x[i+1] - x[i]
	}

	first := len(xdiff) - nobs
	y := make([]float64, nobs)
	columns := make([][]float64, lags+1)
	for c := range columns {
		columns[c] = make([]float64, nobs)
	}
	for r := 0; r < nobs; r++ {
		t := first + r
		y[r] = xdiff[t]
		columns[0][r] = x[t]
		for l := 1; l <= lags; l++ {
			columns[l][r] = xdiff[t-l]
		}
	}
	return y, columns
}

func olsAIC(fit *olsFit) float64 {
	n := float64(fit.Observations)
	llf := -n / 2 * (math.Log(2*math.Pi) + math.Log(fit.SSR/n) + 1)
	return -2*llf + 2*float64(len(fit.Coefficients))
}

func adfTest(x []float64) (*domain.StationarityResult, error) {
	n := len(x)
	if n < 4 {
		return nil, domain.InsufficientDataError{
			Operation: "stationarity test",
			Have:      n,
			Need:      4,
		}
	}

	maxLag := adfMaxLag(n)
	if maxLag < 0 {
		maxLag = 0
	}

	// every candidate lag is fitted on the same sample so the AICs compare
	commonObs := n - 1 - maxLag
	bestLag := 0
	bestAIC := math.Inf(1)
	for lag := 0; lag <= maxLag; lag++ {
		y, columns := adfDesign(x, lag, commonObs)
		fit, err := fitOLS(y, columns)
		if err != nil {
			return nil, fmt.Errorf("failed to fit lag %d: %w", lag, err)
		}
		aic := olsAIC(fit)
		if aic < bestAIC {
			bestAIC = aic
			bestLag = lag
		}
	}

	nobs := n - 1 - bestLag
	y, columns := adfDesign(x, bestLag, nobs)
	fit, err := fitOLS(y, columns)
	if err != nil {
		return nil, fmt.Errorf("failed to fit lag %d: %w", bestLag, err)
	}
	if fit.TValues == nil {
		return nil, fmt.Errorf("adf statistic undefined: exact fit with %d residual degrees of freedom", fit.ResidualDF)
	}

	stat := fit.TValues[1]
	pValue := mackinnonP(stat)

	critical := map[string]float64{}
	for _, c := range adfCritical {
		critical[c.Level] = polyInverse(c.Coeffs, float64(nobs))
	}

	return &domain.StationarityResult{
		Statistic:      stat,
		PValue:         pValue,
		IsStationary:   pValue < adfSignificance,
		UsedLag:        bestLag,
		Observations:   nobs,
		CriticalValues: critical,
	}, nil
}

func mackinnonP(stat float64) float64 {
	if stat > adfMaxStat {
		return 1
	}
	if stat < adfMinStat {
		return 0
	}
	coeffs := adfLargeP
	if stat <= adfStarStat {
		coeffs = adfSmallP
	}
	z := 0.0
	for i := len(coeffs) - 1; i >= 0; i-- {
		z = z*stat + coeffs[i]
	}
	return distuv.UnitNormal.CDF(z)
}

// polyInverse evaluates c0 + c1/t + c2/t^2 + ...
func polyInverse(coeffs []float64, t float64) float64 {
	out := 0.0
	for i, c := range coeffs {
		out += c / math.Pow(t, float64(i))
	}
	return out
}
