// Package telemetry exposes Prometheus metrics for the dashboard server.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "housedash"

// Metrics holds every collector on a private registry
// ⭐ SSOT: 메트릭 이름은 여기서만 정의
type Metrics struct {
	registry *prometheus.Registry

	requests         *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	forecasts        *prometheus.CounterVec
	forecastDuration prometheus.Histogram
	datasetRows      prometheus.Gauge
	datasetRegions   prometheus.Gauge
	priceCoverage    prometheus.Gauge
	reloads          *prometheus.CounterVec
	wsClients        prometheus.Gauge
}

// New registers all collectors on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "method", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		forecasts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecasts_total",
			Help:      "Forecast attempts by outcome.",
		}, []string{"outcome"}),
		forecastDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "forecast_duration_seconds",
			Help:      "Time spent fitting and projecting a forecast.",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		}),
		datasetRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_observations",
			Help:      "Observations in the loaded table.",
		}),
		datasetRegions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_regions",
			Help:      "Regions in the loaded table.",
		}),
		priceCoverage: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_price_coverage_ratio",
			Help:      "Share of observations with a valid price.",
		}),
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_reloads_total",
			Help:      "Dataset reload attempts by result.",
		}, []string{"result"}),
		wsClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_clients",
			Help:      "Connected selector websocket clients.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.forecasts,
		m.forecastDuration,
		m.datasetRows,
		m.datasetRegions,
		m.priceCoverage,
		m.reloads,
		m.wsClients,
	)
	return m
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry (tests)
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest records one HTTP request.
// All methods are nil-safe so callers can run without metrics.
func (m *Metrics) ObserveRequest(route, method string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// ObserveForecast records a forecast attempt; outcome is "ok" or a failure reason
func (m *Metrics) ObserveForecast(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.forecasts.WithLabelValues(outcome).Inc()
	m.forecastDuration.Observe(d.Seconds())
}

// ForecastCounter returns the counter for outcome
func (m *Metrics) ForecastCounter(outcome string) prometheus.Counter {
	return m.forecasts.WithLabelValues(outcome)
}

// SetDataset records the shape of the loaded table
func (m *Metrics) SetDataset(observations, regions int, coverage float64) {
	if m == nil {
		return
	}
	m.datasetRows.Set(float64(observations))
	m.datasetRegions.Set(float64(regions))
	m.priceCoverage.Set(coverage)
}

// ObserveReload records a reload attempt
func (m *Metrics) ObserveReload(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.reloads.WithLabelValues(result).Inc()
}

// WebsocketConnected adjusts the connected client gauge by delta
func (m *Metrics) WebsocketConnected(delta int) {
	if m == nil {
		return
	}
	m.wsClients.Add(float64(delta))
}
