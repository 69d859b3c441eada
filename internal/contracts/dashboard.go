package contracts

import "time"

// ChartKind 차트 종류
type ChartKind string

const (
	ChartLine     ChartKind = "line"
	ChartBar      ChartKind = "bar"
	ChartForecast ChartKind = "forecast"
)

// ChartPoint is one x/y pair of a chart series
type ChartPoint struct {
	Date  Month   `json:"date"`
	Value float64 `json:"value"`
}

// ChartSeries is a named sequence of points
type ChartSeries struct {
	Name   string       `json:"name"`
	Points []ChartPoint `json:"points"`
}

// ChartSpec is a renderer-agnostic chart description handed to the UI
type ChartSpec struct {
	Kind   ChartKind     `json:"kind"`
	Title  string        `json:"title"`
	XLabel string        `json:"x_label"`
	YLabel string        `json:"y_label"`
	Series []ChartSeries `json:"series"`
}

// ForecastResult wraps the forecast so a failure does not abort the payload
type ForecastResult struct {
	Available bool            `json:"available"`
	Reason    string          `json:"reason,omitempty"` // set when Available=false
	Order     string          `json:"order"`            // e.g. "(5,1,0)"
	Points    []ForecastPoint `json:"points"`
	Chart     *ChartSpec      `json:"chart,omitempty"`
}

// Dashboard is everything the UI needs for one selected region
// ⭐ SSOT: 지역 선택 시 UI에 반환되는 전체 응답
type Dashboard struct {
	Region        string         `json:"region"`
	GeneratedAt   time.Time      `json:"generated_at"`
	PriceHistory  ChartSpec      `json:"price_history"`    // time series line
	SalesByPeriod ChartSpec      `json:"sales_by_period"`  // time series bar
	YearlyMetrics []YearlyMetric `json:"yearly_metrics"`
	Top           []RankingEntry `json:"top"`
	Bottom        []RankingEntry `json:"bottom"`
	Forecast      ForecastResult `json:"forecast"`
}

// DatasetQuality is a coverage snapshot of the loaded table
type DatasetQuality struct {
	Source          string    `json:"source"`
	LoadedAt        time.Time `json:"loaded_at"`
	Regions         int       `json:"regions"`
	DateColumns     int       `json:"date_columns"`
	Observations    int       `json:"observations"`
	MissingDates    int       `json:"missing_dates"`     // unparsable column labels × regions
	MissingPrices   int       `json:"missing_prices"`    // non-numeric cells
	PriceCoverage   float64   `json:"price_coverage"`    // 0~1
	FirstMonth      Month     `json:"first_month"`
	LastMonth       Month     `json:"last_month"`
	UnpricedRegions []string  `json:"unpriced_regions"` // regions without a single valid price
}

// IsUsable reports whether the table can drive the dashboard at all
func (q DatasetQuality) IsUsable() bool {
	return q.Regions > 0 && q.DateColumns > 0 && q.Observations > q.MissingPrices
}
