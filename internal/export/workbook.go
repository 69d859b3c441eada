// Package export writes a region's dashboard tables to an XLSX workbook.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/wonny/housedash/internal/contracts"
)

// Sheet names, in workbook order
const (
	SheetYearly   = "Yearly"
	SheetTop      = "Top"
	SheetBottom   = "Bottom"
	SheetForecast = "Forecast"
)

// WriteWorkbook writes the dashboard tables as one sheet each.
// Absent values are left as empty cells.
func WriteWorkbook(d *contracts.Dashboard, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	// 기본 시트 이름 변경
	if err := f.SetSheetName("Sheet1", SheetYearly); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetTop, SheetBottom, SheetForecast} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	if err := writeYearly(f, d.YearlyMetrics); err != nil {
		return err
	}
	if err := writeRanking(f, SheetTop, d.Top); err != nil {
		return err
	}
	if err := writeRanking(f, SheetBottom, d.Bottom); err != nil {
		return err
	}
	if err := writeForecast(f, d.Forecast); err != nil {
		return err
	}

	if err := f.SetDocProps(&excelize.DocProperties{
		Title:   fmt.Sprintf("Housing dashboard - %s", d.Region),
		Creator: "housedash",
	}); err != nil {
		return fmt.Errorf("set doc props: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeYearly(f *excelize.File, rows []contracts.YearlyMetric) error {
	header := []interface{}{"Year", "Average Home Sale", "Prior Year Average Home Sale", "Percent Change vs Prior Year"}
	if err := setRow(f, SheetYearly, 1, header); err != nil {
		return err
	}

	for i, m := range rows {
		values := []interface{}{m.Year, m.AverageHomeSale, nil, nil}
		if m.PriorYearAverageHomeSale != nil {
			values[2] = *m.PriorYearAverageHomeSale
		}
		if m.PercentChangeVsPriorYear.Valid {
			values[3] = m.PercentChangeVsPriorYear.Decimal.InexactFloat64()
		}
		if err := setRow(f, SheetYearly, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

func writeRanking(f *excelize.File, sheet string, entries []contracts.RankingEntry) error {
	if err := setRow(f, sheet, 1, []interface{}{"Rank", "Region", "Average Value"}); err != nil {
		return err
	}
	for i, e := range entries {
		values := []interface{}{e.Rank, e.RegionName, e.AverageValue.InexactFloat64()}
		if err := setRow(f, sheet, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

func writeForecast(f *excelize.File, result contracts.ForecastResult) error {
	if !result.Available {
		return setRow(f, SheetForecast, 1, []interface{}{"Forecast unavailable", result.Reason})
	}

	if err := setRow(f, SheetForecast, 1, []interface{}{"Date", "Forecasted Price"}); err != nil {
		return err
	}
	for i, p := range result.Points {
		values := []interface{}{p.Date.String(), p.ForecastedPrice.InexactFloat64()}
		if err := setRow(f, SheetForecast, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}
