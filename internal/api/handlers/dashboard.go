package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/wonny/housedash/internal/charts"
	"github.com/wonny/housedash/internal/contracts"
	"github.com/wonny/housedash/internal/dashboard"
	"github.com/wonny/housedash/internal/export"
	"github.com/wonny/housedash/pkg/logger"
	"github.com/wonny/housedash/pkg/telemetry"
)

// Handler serves the dashboard API
// ⭐ SSOT: 대시보드 API 핸들러는 이 구조체에서만
type Handler struct {
	service     *dashboard.Service
	rankingSize int
	metrics     *telemetry.Metrics
	limiter     *rate.Limiter
	logger      *logger.Logger
}

// New creates a new dashboard handler. m may be nil.
func New(service *dashboard.Service, rankingSize int, m *telemetry.Metrics, log *logger.Logger) *Handler {
	return &Handler{
		service:     service,
		rankingSize: rankingSize,
		metrics:     m,
		logger:      log,
	}
}

// WithLimiter bounds how often a websocket client may trigger a rebuild.
// A nil limiter disables limiting.
func (h *Handler) WithLimiter(l *rate.Limiter) *Handler {
	h.limiter = l
	return h
}

// RegionsResponse lists the selectable regions
type RegionsResponse struct {
	Regions []string `json:"regions"`
	Default string   `json:"default"`
}

// ListRegions returns all regions in dataset order
// GET /api/regions
func (h *Handler) ListRegions(w http.ResponseWriter, r *http.Request) {
	regions, err := h.service.Regions()
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	resp := RegionsResponse{Regions: regions}
	if len(regions) > 0 {
		resp.Default = regions[0]
	}
	respondJSON(w, http.StatusOK, resp)
}

// GetDashboard returns every derived view for one region
// GET /api/regions/{region}/dashboard
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	region := mux.Vars(r)["region"]

	d, err := h.service.Build(r.Context(), region)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, d)
}

// GetYearlyMetrics returns the per-year table
// GET /api/regions/{region}/metrics
func (h *Handler) GetYearlyMetrics(w http.ResponseWriter, r *http.Request) {
	region := mux.Vars(r)["region"]

	yearly, err := h.service.YearlyMetrics(region)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"region":         region,
		"yearly_metrics": yearly,
	})
}

// GetForecast returns the forecast for one region
// GET /api/regions/{region}/forecast
func (h *Handler) GetForecast(w http.ResponseWriter, r *http.Request) {
	region := mux.Vars(r)["region"]

	result, err := h.service.Forecast(r.Context(), region)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GetRankings returns the global leaderboard
// GET /api/rankings
func (h *Handler) GetRankings(w http.ResponseWriter, r *http.Request) {
	board, err := h.service.Leaderboard()
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, board)
}

// GetChart returns one chart spec as JSON
// GET /api/regions/{region}/charts/{kind}
func (h *Handler) GetChart(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	spec, err := h.service.Chart(r.Context(), vars["region"], contracts.ChartKind(vars["kind"]))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, spec)
}

// GetChartPNG renders one chart as a PNG image
// GET /api/regions/{region}/charts/{kind}.png
func (h *Handler) GetChartPNG(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	spec, err := h.service.Chart(r.Context(), vars["region"], contracts.ChartKind(vars["kind"]))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	// 렌더링 실패 시 JSON 에러를 보내야 하므로 버퍼에 먼저 기록
	var buf bytes.Buffer
	if err := charts.RenderPNG(spec, &buf); err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// ExportWorkbook returns the dashboard tables as XLSX
// GET /api/regions/{region}/export.xlsx
func (h *Handler) ExportWorkbook(w http.ResponseWriter, r *http.Request) {
	region := mux.Vars(r)["region"]

	d, err := h.service.Build(r.Context(), region)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteWorkbook(d, &buf); err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName(region)+".xlsx"))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// GetQuality returns the coverage snapshot of the loaded dataset
// GET /api/dataset/quality
func (h *Handler) GetQuality(w http.ResponseWriter, r *http.Request) {
	q, err := h.service.Quality()
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, q)
}

// fileName turns a region name into a safe download name
func fileName(region string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, region)
}
