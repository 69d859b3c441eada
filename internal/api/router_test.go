package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/wonny/housedash/internal/api/handlers"
	"github.com/wonny/housedash/internal/contracts"
	"github.com/wonny/housedash/internal/dashboard"
	"github.com/wonny/housedash/internal/dataset"
	"github.com/wonny/housedash/internal/forecast"
	"github.com/wonny/housedash/internal/ranking"
	"github.com/wonny/housedash/pkg/config"
	"github.com/wonny/housedash/pkg/logger"
	"github.com/wonny/housedash/pkg/telemetry"
)

func testConfig() *config.Config {
	return &config.Config{
		Port: "0",
		Env:  "test",
		Forecast: config.ForecastConfig{
			P: 2, D: 1, Horizon: 24, Timeout: 5 * time.Second,
		},
		Ranking: config.RankingConfig{Size: 10},
	}
}

// testTable: Austin and Boston with 30 priced months, Sparse with one price
func testTable() *dataset.Table {
	start := contracts.Month{Year: 2020, Month: time.January}
	labels := make([]string, 30)
	for i := range labels {
		labels[i] = start.AddMonths(i).String()
	}

	row := func(name string, base, first int) contracts.WideRecord {
		cells := make([]string, len(labels))
		for i := first; i < len(cells); i++ {
			cells[i] = fmt.Sprintf("%d", base+1000*i+(i%4)*250)
		}
		return contracts.WideRecord{RegionName: name, Cells: cells}
	}

	return dataset.NewTable(&contracts.WideTable{
		DateLabels: labels,
		Records: []contracts.WideRecord{
			row("Austin", 300000, 0),
			row("Boston", 600000, 0),
			row("Sparse", 1000, 29),
		},
	}, "memory")
}

func newTestRouter(t *testing.T, cfg *config.Config) (http.Handler, *telemetry.Metrics) {
	t.Helper()

	log := logger.Nop()
	m := telemetry.New()
	svc := dashboard.NewService(
		dataset.NewStaticStore(testTable()),
		ranking.NewRanker(cfg.Ranking.Size, log),
		forecast.NewForecaster(cfg.Forecast, log),
		m,
		log,
	)
	h := handlers.New(svc, cfg.Ranking.Size, m, log)
	return NewRouter(cfg, h, m, log), m
}

func get(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t, testConfig())

	rec := get(t, router, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestRequestID_Propagated(t *testing.T) {
	router, _ := newTestRouter(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestListRegions(t *testing.T) {
	router, _ := newTestRouter(t, testConfig())

	rec := get(t, router, "/api/regions")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp handlers.RegionsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"Austin", "Boston", "Sparse"}, resp.Regions)
	assert.Equal(t, "Austin", resp.Default)
}

func TestGetDashboard(t *testing.T) {
	router, _ := newTestRouter(t, testConfig())

	rec := get(t, router, "/api/regions/Austin/dashboard")
	require.Equal(t, http.StatusOK, rec.Code)

	var d contracts.Dashboard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.Equal(t, "Austin", d.Region)
	assert.Len(t, d.YearlyMetrics, 3)
	assert.Len(t, d.Top, 3)
	assert.Equal(t, "Boston", d.Top[0].RegionName)
	require.True(t, d.Forecast.Available, d.Forecast.Reason)
	assert.Len(t, d.Forecast.Points, 24)
	assert.Equal(t, "2022-07", d.Forecast.Points[0].Date.String())
}

func TestErrorMapping(t *testing.T) {
	router, _ := newTestRouter(t, testConfig())

	tests := []struct {
		path string
		code int
	}{
		{"/api/regions/Atlantis/dashboard", http.StatusNotFound},
		{"/api/regions/Sparse/dashboard", http.StatusUnprocessableEntity},
		{"/api/regions/Sparse/metrics", http.StatusUnprocessableEntity},
		{"/api/regions/Austin/charts/pie", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := get(t, router, tt.path)
			assert.Equal(t, tt.code, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestNoTable_ServiceUnavailable(t *testing.T) {
	log := logger.Nop()
	cfg := testConfig()
	svc := dashboard.NewService(dataset.NewStore(nil, ""), ranking.NewRanker(10, log),
		forecast.NewForecaster(cfg.Forecast, log), nil, log)
	router := NewRouter(cfg, handlers.New(svc, 10, nil, log), nil, log)

	rec := get(t, router, "/api/regions")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestYearlyRankingsForecastQuality(t *testing.T) {
	router, _ := newTestRouter(t, testConfig())

	rec := get(t, router, "/api/regions/Boston/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"yearly_metrics"`)

	rec = get(t, router, "/api/rankings")
	require.Equal(t, http.StatusOK, rec.Code)
	var board contracts.Leaderboard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &board))
	assert.Equal(t, "Sparse", board.Bottom[0].RegionName)

	rec = get(t, router, "/api/regions/Boston/forecast")
	require.Equal(t, http.StatusOK, rec.Code)
	var fc contracts.ForecastResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fc))
	assert.True(t, fc.Available)
	assert.Equal(t, "(2,1,0)", fc.Order)

	rec = get(t, router, "/api/dataset/quality")
	require.Equal(t, http.StatusOK, rec.Code)
	var q contracts.DatasetQuality
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &q))
	assert.Equal(t, 3, q.Regions)
	assert.Equal(t, 90, q.Observations)
}

func TestCharts(t *testing.T) {
	router, _ := newTestRouter(t, testConfig())

	rec := get(t, router, "/api/regions/Austin/charts/bar")
	require.Equal(t, http.StatusOK, rec.Code)
	var spec contracts.ChartSpec
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &spec))
	assert.Equal(t, contracts.ChartBar, spec.Kind)

	for _, kind := range []string{"line", "bar", "forecast"} {
		rec := get(t, router, "/api/regions/Austin/charts/"+kind+".png")
		require.Equal(t, http.StatusOK, rec.Code, kind)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		assert.True(t, strings.HasPrefix(rec.Body.String(), "\x89PNG"))
	}
}

func TestExportWorkbook(t *testing.T) {
	router, _ := newTestRouter(t, testConfig())

	rec := get(t, router, "/api/regions/Austin/export.xlsx")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "Austin.xlsx")

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), "Forecast")
}

func TestIndexPage(t *testing.T) {
	router, _ := newTestRouter(t, testConfig())

	rec := get(t, router, "/?region=Boston")
	require.Equal(t, http.StatusOK, rec.Code)

	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)

	var options []string
	doc.Find("select#region option").Each(func(_ int, s *goquery.Selection) {
		options = append(options, s.Text())
	})
	assert.Equal(t, []string{"Austin", "Boston", "Sparse"}, options)

	selected := doc.Find("select#region option[selected]")
	assert.Equal(t, "Boston", selected.Text())

	src, ok := doc.Find("img#chart-line").Attr("src")
	require.True(t, ok)
	assert.Equal(t, "/api/regions/Boston/charts/line.png", src)
	assert.Equal(t, "Top 10", doc.Find("h2").First().Next().Next().Text())
}

func TestIndexPage_UnknownRegionFallsBack(t *testing.T) {
	router, _ := newTestRouter(t, testConfig())

	rec := get(t, router, "/?region=Atlantis")
	require.Equal(t, http.StatusOK, rec.Code)

	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, "Austin", doc.Find("select#region option[selected]").Text())
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Forecast.RateLimit = 0.001
	cfg.Forecast.RateBurst = 1
	router, _ := newTestRouter(t, cfg)

	first := get(t, router, "/api/regions/Austin/forecast")
	assert.Equal(t, http.StatusOK, first.Code)

	second := get(t, router, "/api/regions/Austin/forecast")
	assert.Equal(t, http.StatusTooManyRequests, second.Code)

	// non-forecast routes are not limited
	assert.Equal(t, http.StatusOK, get(t, router, "/api/regions").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, testConfig())

	get(t, router, "/api/regions/Austin/dashboard")

	rec := get(t, router, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `housedash_http_requests_total{code="200",method="GET",route="/api/regions/{region}/dashboard"} 1`)
	assert.Contains(t, body, `housedash_forecasts_total{outcome="ok"} 1`)
}

func TestSelectorWebsocket(t *testing.T) {
	router, _ := newTestRouter(t, testConfig())
	srv := httptest.NewServer(router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(10 * time.Second))

	// default region is pushed on connect
	var msg struct {
		Type   string              `json:"type"`
		Region string              `json:"region"`
		Status int                 `json:"status"`
		Data   contracts.Dashboard `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "dashboard", msg.Type)
	assert.Equal(t, "Austin", msg.Data.Region)

	require.NoError(t, conn.WriteJSON(handlers.SelectRequest{Region: "Boston"}))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "dashboard", msg.Type)
	assert.Equal(t, "Boston", msg.Region)
	assert.Len(t, msg.Data.YearlyMetrics, 3)

	require.NoError(t, conn.WriteJSON(handlers.SelectRequest{Region: "Sparse"}))
	msg.Type, msg.Status = "", 0
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "error", msg.Type)
	assert.Equal(t, http.StatusUnprocessableEntity, msg.Status)
}

func TestSelectorWebsocket_RateLimitedPerSelection(t *testing.T) {
	cfg := testConfig()
	cfg.Forecast.RateLimit = 0.001
	cfg.Forecast.RateBurst = 2
	router, _ := newTestRouter(t, cfg)
	srv := httptest.NewServer(router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(10 * time.Second))

	var msg handlers.SelectorMessage

	// default push and first selection use the two tokens
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "dashboard", msg.Type)

	require.NoError(t, conn.WriteJSON(handlers.SelectRequest{Region: "Boston"}))
	msg = handlers.SelectorMessage{}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "dashboard", msg.Type)

	// the next selection is rejected but the connection stays open
	for i := 0; i < 2; i++ {
		require.NoError(t, conn.WriteJSON(handlers.SelectRequest{Region: "Austin"}))
		msg = handlers.SelectorMessage{}
		require.NoError(t, conn.ReadJSON(&msg))
		assert.Equal(t, "error", msg.Type)
		assert.Equal(t, http.StatusTooManyRequests, msg.Status)
		assert.Equal(t, "Austin", msg.Region)
	}
}
