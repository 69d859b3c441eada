package contracts

import (
	"github.com/shopspring/decimal"
)

// WideRecord is one input CSV row: a region and one cell per date column.
// Cells keep their raw text; coercion happens in the reshaper.
type WideRecord struct {
	RegionName string
	Cells      []string // aligned with WideTable.DateLabels
}

// WideTable is the source-of-truth snapshot read from the CSV
type WideTable struct {
	DateLabels []string
	Records    []WideRecord
}

// Observation is one (region, month, price) triple in long format
// ⭐ SSOT: 파이프라인 전체가 소비하는 기본 단위
type Observation struct {
	RegionName string              `json:"region_name"`
	Date       Month               `json:"date"`  // zero = unparsable column label
	Price      decimal.NullDecimal `json:"price"` // Valid=false = non-numeric cell
}

// HasDate reports whether the observation can take part in time-series operations
func (o Observation) HasDate() bool {
	return !o.Date.IsZero()
}

// YearlyMetric summarises one calendar year of a region
type YearlyMetric struct {
	Year                     int                 `json:"year"`
	AverageHomeSale          int64               `json:"average_home_sale"`
	PriorYearAverageHomeSale *int64              `json:"prior_year_average_home_sale"`  // nil = no prior year
	PercentChangeVsPriorYear decimal.NullDecimal `json:"percent_change_vs_prior_year"` // 2 decimals, null when undefined
}

// RankingEntry is a region with its all-time mean price
type RankingEntry struct {
	Rank         int             `json:"rank"`
	RegionName   string          `json:"region_name"`
	AverageValue decimal.Decimal `json:"average_value"`
}

// Leaderboard holds both ends of the all-time ranking
type Leaderboard struct {
	Top    []RankingEntry `json:"top"`    // descending by AverageValue
	Bottom []RankingEntry `json:"bottom"` // ascending by AverageValue
}

// ForecastPoint is a projected monthly price
type ForecastPoint struct {
	Date            Month           `json:"date"`
	ForecastedPrice decimal.Decimal `json:"forecasted_price"`
}
