package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/wonny/housedash/internal/contracts"
)

func sampleDashboard() *contracts.Dashboard {
	prior := int64(100000)
	return &contracts.Dashboard{
		Region: "Austin",
		YearlyMetrics: []contracts.YearlyMetric{
			{Year: 2020, AverageHomeSale: 100000},
			{
				Year:                     2021,
				AverageHomeSale:          110000,
				PriorYearAverageHomeSale: &prior,
				PercentChangeVsPriorYear: decimal.NewNullDecimal(decimal.RequireFromString("10.00")),
			},
		},
		Top: []contracts.RankingEntry{
			{Rank: 1, RegionName: "Boston", AverageValue: decimal.NewFromInt(500)},
		},
		Bottom: []contracts.RankingEntry{
			{Rank: 1, RegionName: "Chicago", AverageValue: decimal.NewFromInt(50)},
		},
		Forecast: contracts.ForecastResult{
			Available: true,
			Points: []contracts.ForecastPoint{
				{Date: contracts.Month{Year: 2022, Month: time.February}, ForecastedPrice: decimal.RequireFromString("121500.25")},
			},
		},
	}
}

func openWorkbook(t *testing.T, d *contracts.Dashboard) *excelize.File {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(d, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestWriteWorkbook(t *testing.T) {
	f := openWorkbook(t, sampleDashboard())

	assert.Equal(t, []string{SheetYearly, SheetTop, SheetBottom, SheetForecast}, f.GetSheetList())

	yearly, err := f.GetRows(SheetYearly)
	require.NoError(t, err)
	require.Len(t, yearly, 3)
	assert.Equal(t, "Year", yearly[0][0])
	assert.Equal(t, []string{"2020", "100000"}, yearly[1], "absent values stay empty")
	assert.Equal(t, []string{"2021", "110000", "100000", "10"}, yearly[2])

	top, err := f.GetRows(SheetTop)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "Boston", "500"}, top[1])

	bottom, err := f.GetRows(SheetBottom)
	require.NoError(t, err)
	assert.Equal(t, "Chicago", bottom[1][1])

	forecast, err := f.GetRows(SheetForecast)
	require.NoError(t, err)
	assert.Equal(t, []string{"2022-02", "121500.25"}, forecast[1])
}

func TestWriteWorkbook_ForecastUnavailable(t *testing.T) {
	d := sampleDashboard()
	d.Forecast = contracts.ForecastResult{Available: false, Reason: "series too short for model order"}

	f := openWorkbook(t, d)

	rows, err := f.GetRows(SheetForecast)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Forecast unavailable", rows[0][0])
	assert.Equal(t, d.Forecast.Reason, rows[0][1])
}
