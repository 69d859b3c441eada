// Package charts builds renderer-agnostic chart specs for a region and renders
// them to PNG.
package charts

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/wonny/housedash/internal/contracts"
)

const (
	xLabel = "Date"
	yLabel = "Price"
)

// PriceHistory is the line chart of a region's observed prices.
// series must be chronological; rows without a price are skipped.
func PriceHistory(region string, series []contracts.Observation) contracts.ChartSpec {
	points := make([]contracts.ChartPoint, 0, len(series))
	for _, row := range series {
		if !row.HasDate() || !row.Price.Valid {
			continue
		}
		points = append(points, contracts.ChartPoint{
			Date:  row.Date,
			Value: row.Price.Decimal.InexactFloat64(),
		})
	}

	return contracts.ChartSpec{
		Kind:   contracts.ChartLine,
		Title:  fmt.Sprintf("Home Sales Over Time in %s", region),
		XLabel: xLabel,
		YLabel: yLabel,
		Series: []contracts.ChartSeries{{Name: region, Points: points}},
	}
}

// SalesByPeriod is the bar chart of the summed price per date
func SalesByPeriod(region string, series []contracts.Observation) contracts.ChartSpec {
	var order []contracts.Month
	sums := make(map[contracts.Month]decimal.Decimal)
	for _, row := range series {
		if !row.HasDate() || !row.Price.Valid {
			continue
		}
		if _, ok := sums[row.Date]; !ok {
			order = append(order, row.Date)
		}
		sums[row.Date] = sums[row.Date].Add(row.Price.Decimal)
	}

	points := make([]contracts.ChartPoint, len(order))
	for i, m := range order {
		points[i] = contracts.ChartPoint{Date: m, Value: sums[m].InexactFloat64()}
	}

	return contracts.ChartSpec{
		Kind:   contracts.ChartBar,
		Title:  fmt.Sprintf("Home Sales by Period in %s", region),
		XLabel: xLabel,
		YLabel: yLabel,
		Series: []contracts.ChartSeries{{Name: region, Points: points}},
	}
}

// Forecast overlays the projected points on the observed history
func Forecast(region string, series []contracts.Observation, points []contracts.ForecastPoint) contracts.ChartSpec {
	spec := PriceHistory(region, series)
	spec.Kind = contracts.ChartForecast
	spec.Title = fmt.Sprintf("24-Month Price Forecast for %s", region)
	spec.Series[0].Name = "Observed"

	projected := make([]contracts.ChartPoint, len(points))
	for i, p := range points {
		projected[i] = contracts.ChartPoint{Date: p.Date, Value: p.ForecastedPrice.InexactFloat64()}
	}
	spec.Series = append(spec.Series, contracts.ChartSeries{Name: "Forecast", Points: projected})

	return spec
}
