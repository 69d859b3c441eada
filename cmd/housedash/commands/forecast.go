package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wonny/housedash/internal/charts"
	"github.com/wonny/housedash/internal/contracts"
	"github.com/wonny/housedash/internal/export"
)

// forecastCmd prints the 24-month forecast of one region
var forecastCmd = &cobra.Command{
	Use:   "forecast <region>",
	Short: "Fit the autoregressive model and print 24 monthly points",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(cmd.Context())
		if err != nil {
			return err
		}
		result, err := d.service.Forecast(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printForecast(cmd.OutOrStdout(), args[0], result)
		return nil
	},
}

// exportCmd writes the dashboard tables of one region to XLSX
var exportCmd = &cobra.Command{
	Use:   "export <region>",
	Short: "Write yearly metrics, rankings and forecast to an XLSX workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(cmd.Context())
		if err != nil {
			return err
		}
		dash, err := d.service.Build(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out := exportOutput
		if out == "" {
			out = args[0] + ".xlsx"
		}
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create %s: %w", out, err)
		}
		defer f.Close()

		if err := export.WriteWorkbook(dash, f); err != nil {
			return err
		}
		PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Wrote %s", out))

		if exportCharts == "" {
			return nil
		}
		written, err := writeCharts(dash, exportCharts)
		for _, path := range written {
			PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Wrote %s", path))
		}
		return err
	},
}

var (
	exportOutput string
	exportCharts string
)

func init() {
	rootCmd.AddCommand(forecastCmd)
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default <region>.xlsx)")
	exportCmd.Flags().StringVar(&exportCharts, "charts", "", "also render PNG charts into this directory")
}

// writeCharts renders every chart of the dashboard as <dir>/<region>_<kind>.png
func writeCharts(d *contracts.Dashboard, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}

	specs := []contracts.ChartSpec{d.PriceHistory, d.SalesByPeriod}
	if d.Forecast.Chart != nil {
		specs = append(specs, *d.Forecast.Chart)
	}

	var written []string
	for _, spec := range specs {
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.png", d.Region, spec.Kind))
		if err := writeChart(spec, path); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func writeChart(spec contracts.ChartSpec, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := charts.RenderPNG(spec, f); err != nil {
		return fmt.Errorf("render %s: %w", spec.Kind, err)
	}
	return nil
}

func printForecast(w io.Writer, region string, result contracts.ForecastResult) {
	PrintHeader(w, fmt.Sprintf("Forecast ARIMA%s - %s", result.Order, region))

	if !result.Available {
		PrintWarning(w, "Forecast unavailable: "+result.Reason)
		return
	}

	widths := []int{8, 16}
	PrintTableHeader(w, []string{"Month", "Forecast"}, widths)
	for _, p := range result.Points {
		PrintTableRow(w, []string{p.Date.String(), p.ForecastedPrice.StringFixed(2)}, widths)
	}
}
