package commands

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/wonny/housedash/internal/export"
)

const fixture = "testdata/housing.csv"

// run executes the root command with args and returns what it printed
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	// cobra keeps flag values between executions
	configFile, datasetPath, verbose = "", "", false
	exportOutput, exportCharts = "", ""
	t.Setenv("METRICS_ENABLED", "false")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRegions(t *testing.T) {
	out, err := run(t, "regions", "--dataset", fixture)
	require.NoError(t, err)

	assert.Contains(t, out, "Regions (4)")
	austin := strings.Index(out, "1. Austin")
	ghost := strings.Index(out, "4. Ghost")
	assert.True(t, austin >= 0 && ghost > austin, out)
}

func TestMetrics(t *testing.T) {
	out, err := run(t, "metrics", "Austin", "--dataset", fixture)
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	var rows []string
	for _, l := range lines {
		if strings.HasPrefix(l, "2021") || strings.HasPrefix(l, "2022") {
			rows = append(rows, strings.Join(strings.Fields(l), " "))
		}
	}
	assert.Equal(t, []string{
		"2021 308650 - -",
		"2022 326650 308650 5.83",
	}, rows)
}

func TestMetrics_UnknownRegion(t *testing.T) {
	_, err := run(t, "metrics", "Nowhere", "--dataset", fixture)
	assert.Error(t, err)
}

func TestRank(t *testing.T) {
	out, err := run(t, "rank", "--dataset", fixture)
	require.NoError(t, err)

	top := out[strings.Index(out, "Top 10"):strings.Index(out, "Bottom 10")]
	bottom := out[strings.Index(out, "Bottom 10"):]

	assert.Less(t, strings.Index(top, "Boston"), strings.Index(top, "Austin"))
	assert.Less(t, strings.Index(top, "Austin"), strings.Index(top, "Dayton"))
	assert.Contains(t, top, "617650.00")
	assert.Less(t, strings.Index(bottom, "Dayton"), strings.Index(bottom, "Boston"))
	assert.NotContains(t, out, "Ghost")
}

func TestForecast(t *testing.T) {
	out, err := run(t, "forecast", "Austin", "--dataset", fixture)
	require.NoError(t, err)

	assert.Contains(t, out, "Forecast ARIMA(5,1,0) - Austin")
	assert.Contains(t, out, "2023-01")
	assert.Contains(t, out, "2024-12")
	assert.NotContains(t, out, "2025-01")
}

func TestForecast_NoPrices(t *testing.T) {
	_, err := run(t, "forecast", "Ghost", "--dataset", fixture)
	assert.Error(t, err)
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "austin.xlsx")
	chartDir := filepath.Join(dir, "charts")

	printed, err := run(t, "export", "Austin", "--dataset", fixture, "-o", out, "--charts", chartDir)
	require.NoError(t, err)
	assert.Contains(t, printed, "Wrote "+out)

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(export.SheetYearly)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "2022", rows[2][0])

	for _, kind := range []string{"line", "bar", "forecast"} {
		path := filepath.Join(chartDir, "Austin_"+kind+".png")
		img, err := os.Open(path)
		require.NoError(t, err, kind)
		_, err = png.Decode(img)
		img.Close()
		assert.NoError(t, err, kind)
	}
}

func TestCheck(t *testing.T) {
	out, err := run(t, "check", "--dataset", fixture)
	require.NoError(t, err)

	assert.Contains(t, out, "2021-01 ~ 2022-12")
	assert.Contains(t, out, "regions without any price: Ghost")
	assert.Contains(t, out, "Dataset usable")
}

func TestCheck_Unusable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(path, []byte("RegionName,2021-01-31,2021-02-28\nGhost,,\n"), 0o644))

	out, err := run(t, "check", "--dataset", path)
	assert.ErrorIs(t, err, errUnusable)
	assert.Contains(t, out, "no usable prices")
}

func TestJobs_List(t *testing.T) {
	out, err := run(t, "jobs", "--dataset", fixture)
	require.NoError(t, err)

	assert.Contains(t, out, "dataset_quality")
	assert.Contains(t, out, "0 0 * * * *")
	assert.NotContains(t, out, "dataset_reload")
}

func TestJobs_RunNow(t *testing.T) {
	t.Setenv("RELOAD_SCHEDULE", "@every 1h")

	tests := []struct {
		name string
		job  string
	}{
		{"quality", "dataset_quality"},
		{"reload", "dataset_reload"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, "jobs", tt.job, "--dataset", fixture)
			require.NoError(t, err)

			assert.Contains(t, out, "Job "+tt.job)
			assert.Contains(t, out, "Job succeeded")
		})
	}
}

func TestJobs_UnknownJob(t *testing.T) {
	_, err := run(t, "jobs", "nightly_backup", "--dataset", fixture)
	assert.ErrorContains(t, err, "job nightly_backup not found")
}
