package dataset

import (
	"fmt"
	"math"
	"sort"
	"time"

	"attributionengine/internal/domain"
)

type IssueKind string

const (
	IssueNegativeValue    IssueKind = "negative_asset_value"
	IssueNonFiniteReturn  IssueKind = "non_finite_return"
	IssueExtremeReturn    IssueKind = "extreme_return"
	IssueDateGap          IssueKind = "date_gap"
	IssueMissingBenchmark IssueKind = "missing_benchmark"
)

type ValidationIssue struct {
	Kind       IssueKind `json:"kind" msgpack:"kind"`
	Date       time.Time `json:"date" msgpack:"date"`
	Sector     string    `json:"sector,omitempty" msgpack:"sector,omitempty"`
	Instrument string    `json:"instrument,omitempty" msgpack:"instrument,omitempty"`
	Detail     string    `json:"detail" msgpack:"detail"`
}

type ValidationReport struct {
	Records int               `json:"records" msgpack:"records"`
	Issues  []ValidationIssue `json:"issues" msgpack:"issues"`
}

func (r ValidationReport) OK() bool {
	return len(r.Issues) == 0
}

// Count returns how many issues of the given kind were found
func (r ValidationReport) Count(kind IssueKind) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Kind == kind {
			n++
		}
	}
	return n
}

const (
	maxAbsReturn = 1.0
	minGapDays   = 28
	maxGapDays   = 31
)

// Validate runs the pre-flight data quality checks. none of the engines
// call it, it is up to the caller whether to proceed on issues
func (d *ReturnDataset) Validate() ValidationReport {
	report := ValidationReport{
		Records: len(d.records),
		Issues:  []ValidationIssue{},
	}

	for _, r := range d.records {
		if r.AssetValue.IsNegative() {
			report.Issues = append(report.Issues, recordIssue(IssueNegativeValue, r, fmt.Sprintf("asset value %s", r.AssetValue.String())))
		}
		if math.IsNaN(r.Return) || math.IsInf(r.Return, 0) {
			report.Issues = append(report.Issues, recordIssue(IssueNonFiniteReturn, r, fmt.Sprintf("return %v", r.Return)))
		} else if math.Abs(r.Return) > maxAbsReturn {
			report.Issues = append(report.Issues, recordIssue(IssueExtremeReturn, r, fmt.Sprintf("return %.4f outside ±100%%", r.Return)))
		}
	}

	dates := d.Dates()
	for i := 1; i < len(dates); i++ {
		days := int(dates[i].Sub(dates[i-1]).Hours() / 24)
		if days < minGapDays || days > maxGapDays {
			report.Issues = append(report.Issues, ValidationIssue{
				Kind:   IssueDateGap,
				Date:   dates[i],
				Detail: fmt.Sprintf("%d days since %s", days, dates[i-1].Format("2006-01-02")),
			})
		}
	}

	if len(d.benchmarks) > 0 {
		benchmarkDates := map[time.Time]bool{}
		for _, b := range d.benchmarks {
			benchmarkDates[b.Date] = true
		}
		missing := []time.Time{}
		for _, date := range dates {
			if !benchmarkDates[date] {
				missing = append(missing, date)
			}
		}
		sort.Slice(missing, func(i, j int) bool { return missing[i].Before(missing[j]) })
		for _, date := range missing {
			report.Issues = append(report.Issues, ValidationIssue{
				Kind:   IssueMissingBenchmark,
				Date:   date,
				Detail: "no benchmark record for portfolio date",
			})
		}
	}

	return report
}

func recordIssue(kind IssueKind, r domain.ReturnRecord, detail string) ValidationIssue {
	return ValidationIssue{
		Kind:       kind,
		Date:       r.Date,
		Sector:     r.Sector,
		Instrument: r.Instrument,
		Detail:     detail,
	}
}
