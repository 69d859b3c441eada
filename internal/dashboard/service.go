// Package dashboard assembles every derived view for a selected region.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/housedash/internal/charts"
	"github.com/wonny/housedash/internal/contracts"
	"github.com/wonny/housedash/internal/dataset"
	"github.com/wonny/housedash/internal/forecast"
	"github.com/wonny/housedash/internal/metrics"
	"github.com/wonny/housedash/internal/ranking"
	"github.com/wonny/housedash/pkg/logger"
	"github.com/wonny/housedash/pkg/telemetry"
)

// TableSource provides the current immutable table snapshot
type TableSource interface {
	Current() (*dataset.Table, error)
}

// Service recomputes the dashboard from the table on every call.
// Nothing derived is cached.
type Service struct {
	tables     TableSource
	ranker     *ranking.Ranker
	forecaster *forecast.Forecaster
	metrics    *telemetry.Metrics
	logger     *logger.Logger
	now        func() time.Time
}

// NewService creates a new dashboard service. m may be nil.
func NewService(tables TableSource, ranker *ranking.Ranker, forecaster *forecast.Forecaster, m *telemetry.Metrics, log *logger.Logger) *Service {
	return &Service{
		tables:     tables,
		ranker:     ranker,
		forecaster: forecaster,
		metrics:    m,
		logger:     log,
		now:        time.Now,
	}
}

// Regions lists region names in first-encounter order
func (s *Service) Regions() ([]string, error) {
	table, err := s.tables.Current()
	if err != nil {
		return nil, err
	}
	return table.Regions(), nil
}

// HasRegion reports whether region is in the current table
func (s *Service) HasRegion(region string) bool {
	table, err := s.tables.Current()
	if err != nil {
		return false
	}
	return table.HasRegion(region)
}

// DefaultRegion is the initial selector value (first region of the table)
func (s *Service) DefaultRegion() (string, error) {
	regions, err := s.Regions()
	if err != nil {
		return "", err
	}
	if len(regions) == 0 {
		return "", dataset.ErrEmptyDataset
	}
	return regions[0], nil
}

// Quality returns the coverage snapshot of the current table
func (s *Service) Quality() (contracts.DatasetQuality, error) {
	table, err := s.tables.Current()
	if err != nil {
		return contracts.DatasetQuality{}, err
	}
	return table.Quality(), nil
}

// Build computes the full dashboard for region from a single table snapshot.
// A forecast failure is reported inside the result and never fails the build.
func (s *Service) Build(ctx context.Context, region string) (*contracts.Dashboard, error) {
	table, err := s.tables.Current()
	if err != nil {
		return nil, err
	}

	series, err := regionSeries(table, region)
	if err != nil {
		return nil, err
	}

	board := s.ranker.Rank(table.Rows())

	d := &contracts.Dashboard{
		Region:        region,
		GeneratedAt:   s.now().UTC(),
		PriceHistory:  charts.PriceHistory(region, series),
		SalesByPeriod: charts.SalesByPeriod(region, series),
		YearlyMetrics: metrics.Yearly(series),
		Top:           board.Top,
		Bottom:        board.Bottom,
		Forecast:      s.forecast(ctx, region, series),
	}

	s.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"region":             region,
		"observations":       len(series),
		"years":              len(d.YearlyMetrics),
		"forecast_available": d.Forecast.Available,
	}).Debug("Dashboard built")

	return d, nil
}

// YearlyMetrics returns the per-year table for region
func (s *Service) YearlyMetrics(region string) ([]contracts.YearlyMetric, error) {
	table, err := s.tables.Current()
	if err != nil {
		return nil, err
	}
	series, err := regionSeries(table, region)
	if err != nil {
		return nil, err
	}
	return metrics.Yearly(series), nil
}

// Leaderboard returns the global top/bottom ranking
// ⭐ 선택 지역과 무관 (전체 데이터 기준)
func (s *Service) Leaderboard() (contracts.Leaderboard, error) {
	table, err := s.tables.Current()
	if err != nil {
		return contracts.Leaderboard{}, err
	}
	return s.ranker.Rank(table.Rows()), nil
}

// Forecast returns only the forecast part of the dashboard for region
func (s *Service) Forecast(ctx context.Context, region string) (contracts.ForecastResult, error) {
	table, err := s.tables.Current()
	if err != nil {
		return contracts.ForecastResult{}, err
	}
	series, err := regionSeries(table, region)
	if err != nil {
		return contracts.ForecastResult{}, err
	}
	return s.forecast(ctx, region, series), nil
}

// Chart returns one chart spec for region
func (s *Service) Chart(ctx context.Context, region string, kind contracts.ChartKind) (contracts.ChartSpec, error) {
	table, err := s.tables.Current()
	if err != nil {
		return contracts.ChartSpec{}, err
	}
	series, err := regionSeries(table, region)
	if err != nil {
		return contracts.ChartSpec{}, err
	}

	switch kind {
	case contracts.ChartLine:
		return charts.PriceHistory(region, series), nil
	case contracts.ChartBar:
		return charts.SalesByPeriod(region, series), nil
	case contracts.ChartForecast:
		result := s.forecast(ctx, region, series)
		if !result.Available {
			return contracts.ChartSpec{}, fmt.Errorf("%w: %s", ErrForecastUnavailable, result.Reason)
		}
		return *result.Chart, nil
	default:
		return contracts.ChartSpec{}, fmt.Errorf("%w: %q", ErrUnknownChart, kind)
	}
}

func (s *Service) forecast(ctx context.Context, region string, series []contracts.Observation) contracts.ForecastResult {
	result := contracts.ForecastResult{Order: s.forecaster.Order()}

	start := time.Now()
	points, err := s.forecaster.Forecast(ctx, series)
	s.metrics.ObserveForecast(outcome(err), time.Since(start))

	if err != nil {
		s.logger.WithContext(ctx).WithRegion(region).WithError(err).Warn("Forecast unavailable")
		result.Reason = err.Error()
		result.Points = []contracts.ForecastPoint{}
		return result
	}

	chart := charts.Forecast(region, series, points)
	result.Available = true
	result.Points = points
	result.Chart = &chart
	return result
}

// regionSeries returns the dated series of region, or ErrInsufficientData when
// fewer than two dated prices exist
func regionSeries(table *dataset.Table, region string) ([]contracts.Observation, error) {
	series, err := table.Series(region)
	if err != nil {
		return nil, err
	}

	priced := 0
	for _, row := range series {
		if row.Price.Valid {
			priced++
		}
	}
	if priced < 2 {
		return nil, fmt.Errorf("%w: %s has %d priced observations", contracts.ErrInsufficientData, region, priced)
	}
	return series, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, forecast.ErrSeriesTooShort):
		return "too_short"
	case errors.Is(err, forecast.ErrInvalidSeries):
		return "invalid_series"
	case errors.Is(err, forecast.ErrForecastTimeout):
		return "timeout"
	case errors.Is(err, forecast.ErrForecastFailed):
		return "failed"
	default:
		return "error"
	}
}
