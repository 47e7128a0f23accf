package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReturnRecord is one instrument-period observation of the portfolio
type ReturnRecord struct {
	Date       time.Time       `json:"date" msgpack:"date"`
	Sector     string          `json:"sector" msgpack:"sector"`
	Instrument string          `json:"instrument" msgpack:"instrument"`
	Return     float64         `json:"return" msgpack:"return"`
	AssetValue decimal.Decimal `json:"assetValue" msgpack:"assetValue"`
}

// BenchmarkRecord is one period of the benchmark index
type BenchmarkRecord struct {
	Date   time.Time `json:"date" msgpack:"date"`
	Level  float64   `json:"level" msgpack:"level"`
	Return float64   `json:"return" msgpack:"return"`
}

type CommodityPrice struct {
	Date      time.Time `json:"date" msgpack:"date"`
	Commodity string    `json:"commodity" msgpack:"commodity"`
	Price     float64   `json:"price" msgpack:"price"`
	Unit      string    `json:"unit,omitempty" msgpack:"unit,omitempty"`
}

type Observation struct {
	Date  time.Time `json:"date" msgpack:"date"`
	Value float64   `json:"value" msgpack:"value"`
}

// Series is a date-ordered sequence of observations. constructors
// in this repo always return it sorted ascending with unique dates
type Series []Observation

func (s Series) Values() []float64 {
	out := make([]float64, len(s))
	for i, o := range s {
		out[i] = o.Value
	}
	return out
}

func (s Series) Dates() []time.Time {
	out := make([]time.Time, len(s))
	for i, o := range s {
		out[i] = o.Date
	}
	return out
}

func (s Series) ToMap() map[time.Time]float64 {
	out := make(map[time.Time]float64, len(s))
	for _, o := range s {
		out[o.Date] = o.Value
	}
	return out
}

// Factor is a named explanatory series used in a regression
type Factor struct {
	Name   string
	Series Series
}
