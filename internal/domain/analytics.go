package domain

import "time"

// FactorExposure is the outcome of one OLS fit. StdErrors, TValues and
// PValues are keyed like Coefficients plus "intercept", and are only
// populated when the fit has residual degrees of freedom
type FactorExposure struct {
	Factors          []string           `json:"factors" msgpack:"factors"`
	Intercept        float64            `json:"intercept" msgpack:"intercept"`
	Coefficients     map[string]float64 `json:"coefficients" msgpack:"coefficients"`
	RSquared         float64            `json:"rSquared" msgpack:"rSquared"`
	AdjustedRSquared float64            `json:"adjustedRSquared" msgpack:"adjustedRSquared"`
	StdErrors        map[string]float64 `json:"stdErrors,omitempty" msgpack:"stdErrors,omitempty"`
	TValues          map[string]float64 `json:"tValues,omitempty" msgpack:"tValues,omitempty"`
	PValues          map[string]float64 `json:"pValues,omitempty" msgpack:"pValues,omitempty"`
	Observations     int                `json:"observations" msgpack:"observations"`
	ResidualDF       int                `json:"residualDf" msgpack:"residualDf"`
	DroppedDates     []time.Time        `json:"droppedDates,omitempty" msgpack:"droppedDates,omitempty"`
}

const InterceptKey = "intercept"

type SectorExposure struct {
	Sector   string         `json:"sector" msgpack:"sector"`
	Exposure FactorExposure `json:"exposure" msgpack:"exposure"`
}

// RollingPoint holds nil stats for the leading window-1 periods
type RollingPoint struct {
	Date   time.Time `json:"date" msgpack:"date"`
	Mean   *float64  `json:"mean" msgpack:"mean"`
	StdDev *float64  `json:"stdDev" msgpack:"stdDev"`
	Sharpe *float64  `json:"sharpe" msgpack:"sharpe"`
}

type StationarityResult struct {
	Statistic      float64            `json:"adfStatistic" msgpack:"adfStatistic"`
	PValue         float64            `json:"pValue" msgpack:"pValue"`
	IsStationary   bool               `json:"isStationary" msgpack:"isStationary"`
	UsedLag        int                `json:"usedLag" msgpack:"usedLag"`
	Observations   int                `json:"observations" msgpack:"observations"`
	CriticalValues map[string]float64 `json:"criticalValues" msgpack:"criticalValues"`
}

// Decomposition is an additive trend/seasonal/residual split. trend and
// residual are nil where the centred moving average is undefined
type Decomposition struct {
	Period   int         `json:"period" msgpack:"period"`
	Dates    []time.Time `json:"dates" msgpack:"dates"`
	Observed []float64   `json:"observed" msgpack:"observed"`
	Trend    []*float64  `json:"trend" msgpack:"trend"`
	Seasonal []float64   `json:"seasonal" msgpack:"seasonal"`
	Residual []*float64  `json:"residual" msgpack:"residual"`
}

type ScenarioResult struct {
	Name           string         `json:"scenarioName" msgpack:"scenarioName"`
	OriginalReturn float64        `json:"originalReturn" msgpack:"originalReturn"`
	ScenarioReturn float64        `json:"scenarioReturn" msgpack:"scenarioReturn"`
	Impact         float64        `json:"impact" msgpack:"impact"`
	Records        []ReturnRecord `json:"records,omitempty" msgpack:"records,omitempty"`
}

type MonteCarloResult struct {
	Simulations  int       `json:"simulations" msgpack:"simulations"`
	MonthlyMean  float64   `json:"monthlyMean" msgpack:"monthlyMean"`
	MonthlyStdev float64   `json:"monthlyStdev" msgpack:"monthlyStdev"`
	Mean         float64   `json:"mean" msgpack:"mean"`
	Median       float64   `json:"median" msgpack:"median"`
	StdDev       float64   `json:"std" msgpack:"std"`
	Percentile5  float64   `json:"percentile5" msgpack:"percentile5"`
	Percentile95 float64   `json:"percentile95" msgpack:"percentile95"`
	VaR95        float64   `json:"var95" msgpack:"var95"`
	CVaR95       float64   `json:"cvar95" msgpack:"cvar95"`
	Returns      []float64 `json:"returns" msgpack:"returns"`
}
