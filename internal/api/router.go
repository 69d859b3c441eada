package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/wonny/housedash/internal/api/handlers"
	"github.com/wonny/housedash/pkg/config"
	"github.com/wonny/housedash/pkg/logger"
	"github.com/wonny/housedash/pkg/telemetry"
)

// NewRouter creates and configures the HTTP router. m may be nil.
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(cfg *config.Config, h *handlers.Handler, m *telemetry.Metrics, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// 모델 적합이 포함된 경로와 websocket 선택 메시지는 전역 limiter 공유
	limiter := newLimiter(cfg.Forecast)
	fit := rateLimitMiddleware(limiter)
	h.WithLimiter(limiter)

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	// Selector page + websocket
	r.HandleFunc("/", h.Index).Methods("GET")
	r.HandleFunc("/ws", h.Selector).Methods("GET")

	if m != nil {
		r.Handle("/metrics", m.Handler()).Methods("GET")
	}

	// API
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/regions", h.ListRegions).Methods("GET")
	api.HandleFunc("/rankings", h.GetRankings).Methods("GET")
	api.HandleFunc("/dataset/quality", h.GetQuality).Methods("GET")

	region := api.PathPrefix("/regions/{region}").Subrouter()
	region.HandleFunc("/metrics", h.GetYearlyMetrics).Methods("GET")
	region.Handle("/dashboard", fit(http.HandlerFunc(h.GetDashboard))).Methods("GET")
	region.Handle("/forecast", fit(http.HandlerFunc(h.GetForecast))).Methods("GET")
	region.Handle("/export.xlsx", fit(http.HandlerFunc(h.ExportWorkbook))).Methods("GET")
	region.Handle("/charts/{kind:[a-z]+}.png", fit(http.HandlerFunc(h.GetChartPNG))).Methods("GET")
	region.Handle("/charts/{kind:[a-z]+}", fit(http.HandlerFunc(h.GetChart))).Methods("GET")

	// Apply middleware
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(log))
	r.Use(metricsMiddleware(m))
	r.Use(recoveryMiddleware(log))

	return r
}

// newLimiter returns nil when rate limiting is disabled
func newLimiter(cfg config.ForecastConfig) *rate.Limiter {
	if cfg.RateLimit <= 0 {
		return nil
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "housedash",
	})
}
