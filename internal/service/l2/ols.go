package l2_service

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// olsFit holds an ordinary least squares fit. index 0 of every slice is
// the intercept, the rest follow the column order given to fitOLS
type olsFit struct {
	Coefficients     []float64
	StdErrors        []float64
	TValues          []float64
	PValues          []float64
	RSquared         float64
	AdjustedRSquared float64
	SSR              float64
	Observations     int
	ResidualDF       int
}

// fitOLS regresses y on an intercept plus the given columns. inference
// stats stay nil when there are no residual degrees of freedom or the fit
// is exact
func fitOLS(y []float64, columns [][]float64) (*olsFit, error) {
	n := len(y)
	k := len(columns)
	for i, col := range columns {
		if len(col) != n {
			return nil, fmt.Errorf("column %d has %d rows, expected %d", i, len(col), n)
		}
	}
	if n < k+1 {
		return nil, fmt.Errorf("need at least %d observations for %d regressors, got %d", k+1, k, n)
	}

	x := mat.NewDense(n, k+1, nil)
	for i := 0; i < n; i++ {
		x.Set(i, 0, 1)
		for j, col := range columns {
			x.Set(i, j+1, col[i])
		}
	}
	yVec := mat.NewVecDense(n, append([]float64{}, y...))

	var qr mat.QR
	qr.Factorize(x)
	var beta mat.VecDense
	err := qr.SolveVecTo(&beta, false, yVec)
	if err != nil {
		return nil, fmt.Errorf("failed to solve least squares: %w", err)
	}

	var fitted mat.VecDense
	fitted.MulVec(x, &beta)
	ssr := 0.0
	for i := 0; i < n; i++ {
		resid := y[i] - fitted.AtVec(i)
		ssr += resid * resid
	}

	yMean, err := stats.Mean(y)
	if err != nil {
		return nil, fmt.Errorf("failed to compute target mean: %w", err)
	}
	sst := 0.0
	for _, v := range y {
		sst += (v - yMean) * (v - yMean)
	}

	df := n - k - 1
	fit := &olsFit{
		Coefficients: make([]float64, k+1),
		SSR:          ssr,
		Observations: n,
		ResidualDF:   df,
	}
	for j := 0; j <= k; j++ {
		fit.Coefficients[j] = beta.AtVec(j)
	}

	if sst > 0 {
		fit.RSquared = 1 - ssr/sst
	}
	fit.AdjustedRSquared = fit.RSquared
	if df > 0 && sst > 0 {
		fit.AdjustedRSquared = 1 - (1-fit.RSquared)*float64(n-1)/float64(df)
	}

	if df <= 0 || ssr == 0 {
		return fit, nil
	}

	// cov(beta) = sigma^2 (X'X)^-1
	var xtx, xtxInv mat.Dense
	xtx.Mul(x.T(), x)
	err = xtxInv.Inverse(&xtx)
	if err != nil {
		return nil, fmt.Errorf("failed to invert design matrix: %w", err)
	}
	sigma2 := ssr / float64(df)
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}

	fit.StdErrors = make([]float64, k+1)
	fit.TValues = make([]float64, k+1)
	fit.PValues = make([]float64, k+1)
	for j := 0; j <= k; j++ {
		se := math.Sqrt(sigma2 * xtxInv.At(j, j))
		t := fit.Coefficients[j] / se
		fit.StdErrors[j] = se
		fit.TValues[j] = t
		fit.PValues[j] = 2 * (1 - tDist.CDF(math.Abs(t)))
	}

	return fit, nil
}
