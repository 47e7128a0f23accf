package dataset

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"attributionengine/internal/domain"
	"attributionengine/internal/util"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
)

// column names follow the files the data generators produce

type portfolioRow struct {
	Date       string  `csv:"Date"`
	Sector     string  `csv:"Sector"`
	Company    string  `csv:"Company"`
	Return     float64 `csv:"Monthly_Return"`
	AssetValue string  `csv:"Asset_Value"`
}

type commodityRow struct {
	Date      string  `csv:"Date"`
	Commodity string  `csv:"Commodity"`
	Price     float64 `csv:"Price"`
	Unit      string  `csv:"Unit"`
}

const (
	DefaultBenchmarkLevelColumn = "ZSE_AllShare"
	benchmarkReturnColumn       = "Monthly_Return"
)

func LoadPortfolioCSV(r io.Reader) ([]domain.ReturnRecord, error) {
	rows := []portfolioRow{}
	err := gocsv.Unmarshal(r, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to parse portfolio csv: %w", err)
	}

	out := make([]domain.ReturnRecord, 0, len(rows))
	for i, row := range rows {
		date, err := util.ParseDate(datePart(row.Date))
		if err != nil {
			return nil, fmt.Errorf("portfolio row %d: %w", i+1, err)
		}
		value, err := decimal.NewFromString(strings.TrimSpace(row.AssetValue))
		if err != nil {
			return nil, fmt.Errorf("portfolio row %d: failed to parse asset value %q: %w", i+1, row.AssetValue, err)
		}
		out = append(out, domain.ReturnRecord{
			Date:       date,
			Sector:     row.Sector,
			Instrument: row.Company,
			Return:     row.Return,
			AssetValue: value,
		})
	}

	return out, nil
}

// LoadBenchmarkCSV reads index levels from levelColumn. rows with an empty
// return column get the period-over-period change of the level instead
func LoadBenchmarkCSV(r io.Reader, levelColumn string) ([]domain.BenchmarkRecord, error) {
	if levelColumn == "" {
		levelColumn = DefaultBenchmarkLevelColumn
	}
	rows, err := gocsv.CSVToMaps(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse benchmark csv: %w", err)
	}

	out := make([]domain.BenchmarkRecord, 0, len(rows))
	missingReturns := []int{}
	for i, row := range rows {
		date, err := util.ParseDate(datePart(row["Date"]))
		if err != nil {
			return nil, fmt.Errorf("benchmark row %d: %w", i+1, err)
		}
		rawLevel, ok := row[levelColumn]
		if !ok {
			return nil, fmt.Errorf("benchmark csv has no %q column", levelColumn)
		}
		level, err := strconv.ParseFloat(strings.TrimSpace(rawLevel), 64)
		if err != nil {
			return nil, fmt.Errorf("benchmark row %d: failed to parse level %q: %w", i+1, rawLevel, err)
		}

		record := domain.BenchmarkRecord{
			Date:  date,
			Level: level,
		}
		rawReturn := strings.TrimSpace(row[benchmarkReturnColumn])
		if rawReturn == "" {
			missingReturns = append(missingReturns, len(out))
		} else {
			record.Return, err = strconv.ParseFloat(rawReturn, 64)
			if err != nil {
				return nil, fmt.Errorf("benchmark row %d: failed to parse return %q: %w", i+1, rawReturn, err)
			}
		}
		out = append(out, record)
	}

	if len(missingReturns) > 0 {
		err = fillReturnsFromLevels(out, missingReturns)
		if err != nil {
			return nil, err
		}
	}

	return out, nil
}

func LoadCommodityCSV(r io.Reader) ([]domain.CommodityPrice, error) {
	rows := []commodityRow{}
	err := gocsv.Unmarshal(r, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to parse commodity csv: %w", err)
	}

	out := make([]domain.CommodityPrice, 0, len(rows))
	for i, row := range rows {
		date, err := util.ParseDate(datePart(row.Date))
		if err != nil {
			return nil, fmt.Errorf("commodity row %d: %w", i+1, err)
		}
		out = append(out, domain.CommodityPrice{
			Date:      date,
			Commodity: row.Commodity,
			Price:     row.Price,
			Unit:      row.Unit,
		})
	}

	return out, nil
}

type Files struct {
	Portfolio            string
	Benchmark            string
	BenchmarkLevelColumn string
	Commodities          string
}

// LoadFiles reads whichever files are set. only the portfolio file is
// required
func LoadFiles(files Files) (*ReturnDataset, error) {
	if files.Portfolio == "" {
		return nil, fmt.Errorf("portfolio file is required")
	}

	var records []domain.ReturnRecord
	err := withFile(files.Portfolio, func(r io.Reader) error {
		var err error
		records, err = LoadPortfolioCSV(r)
		return err
	})
	if err != nil {
		return nil, err
	}

	var benchmarks []domain.BenchmarkRecord
	if files.Benchmark != "" {
		err = withFile(files.Benchmark, func(r io.Reader) error {
			var err error
			benchmarks, err = LoadBenchmarkCSV(r, files.BenchmarkLevelColumn)
			return err
		})
		if err != nil {
			return nil, err
		}
	}

	var commodities []domain.CommodityPrice
	if files.Commodities != "" {
		err = withFile(files.Commodities, func(r io.Reader) error {
			var err error
			commodities, err = LoadCommodityCSV(r)
			return err
		})
		if err != nil {
			return nil, err
		}
	}

	return New(records, benchmarks, commodities), nil
}

func withFile(path string, fn func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	err = fn(f)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// exports carry either "2024-01-31" or "2024-01-31 00:00:00"
func datePart(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 10 {
		return s[:10]
	}
	return s
}
