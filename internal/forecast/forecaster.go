// Package forecast projects a region's monthly prices with an ARIMA(p,d,q) model.
package forecast

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sartorproj/goarima/arima"
	"github.com/sartorproj/goarima/timeseries"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"

	"github.com/wonny/housedash/internal/contracts"
	"github.com/wonny/housedash/pkg/config"
	"github.com/wonny/housedash/pkg/logger"
)

// Horizon is the number of monthly points every forecast returns
const Horizon = 24

// Forecaster fits a model per request and projects Horizon months
// ⭐ SSOT: 예측 입력 검증 + 모델 호출은 여기서만
type Forecaster struct {
	p       int
	d       int
	q       int
	timeout time.Duration
	logger  *logger.Logger
}

// NewForecaster creates a forecaster from config
func NewForecaster(cfg config.ForecastConfig, log *logger.Logger) *Forecaster {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Forecaster{
		p:       cfg.P,
		d:       cfg.D,
		q:       cfg.Q,
		timeout: timeout,
		logger:  log,
	}
}

// Order returns the model order as "(p,d,q)"
func (f *Forecaster) Order() string {
	return fmt.Sprintf("(%d,%d,%d)", f.p, f.d, f.q)
}

// MinLength returns the minimum series length the model accepts
func (f *Forecaster) MinLength() int {
	return f.p + f.d + f.q + 10
}

type fitResult struct {
	values []float64
	err    error
}

// Forecast validates series and returns Horizon points starting the month after
// the last observation. series must be chronological and fully dated; leading
// rows without a price are trimmed.
func (f *Forecaster) Forecast(ctx context.Context, series []contracts.Observation) ([]contracts.ForecastPoint, error) {
	values, last, err := prepare(series)
	if err != nil {
		return nil, err
	}
	if len(values) < f.MinLength() {
		return nil, fmt.Errorf("%w: need %d points, got %d", ErrSeriesTooShort, f.MinLength(), len(values))
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	if err := ctx.Err(); err != nil {
		return nil, f.contextError(err)
	}

	start := time.Now()
	done := make(chan fitResult, 1)
	go func() {
		out, err := f.fit(values)
		done <- fitResult{values: out, err: err}
	}()

	var res fitResult
	select {
	case <-ctx.Done():
		return nil, f.contextError(ctx.Err())
	case res = <-done:
	}
	if res.err != nil {
		return nil, res.err
	}

	points := make([]contracts.ForecastPoint, len(res.values))
	month := last
	for i, v := range res.values {
		month = month.Next()
		points[i] = contracts.ForecastPoint{
			Date:            month,
			ForecastedPrice: decimal.NewFromFloat(v).Round(2),
		}
	}

	f.logger.WithFields(map[string]interface{}{
		"observations": len(values),
		"order":        f.Order(),
		"duration_ms":  time.Since(start).Milliseconds(),
	}).Debug("Forecast fitted")

	return points, nil
}

// fit runs the ARIMA model on values and returns Horizon points
func (f *Forecaster) fit(values []float64) ([]float64, error) {
	model := arima.New(f.p, f.d, f.q)
	if err := model.Fit(timeseries.New(values)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrForecastFailed, err)
	}

	out, err := model.Predict(Horizon)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrForecastFailed, err)
	}
	if len(out) != Horizon {
		return nil, fmt.Errorf("%w: model returned %d points", ErrForecastFailed, len(out))
	}
	if floats.HasNaN(out) || math.IsInf(floats.Max(out), 1) || math.IsInf(floats.Min(out), -1) {
		return nil, fmt.Errorf("%w: non-finite forecast", ErrForecastFailed)
	}
	return out, nil
}

func (f *Forecaster) contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		f.logger.WithField("timeout", f.timeout.String()).Warn("Forecast exceeded budget")
		return fmt.Errorf("%w after %s", ErrForecastTimeout, f.timeout)
	}
	return err
}

// prepare converts observations to floats, trimming leading missing prices.
// Returns the last observed month.
func prepare(series []contracts.Observation) ([]float64, contracts.Month, error) {
	start := 0
	for start < len(series) && !series[start].Price.Valid {
		start++
	}
	series = series[start:]
	if len(series) == 0 {
		return nil, contracts.Month{}, fmt.Errorf("%w: no observed prices", ErrInvalidSeries)
	}

	values := make([]float64, len(series))
	var prev contracts.Month
	for i, row := range series {
		if !row.HasDate() {
			return nil, contracts.Month{}, fmt.Errorf("%w: row %d has no date", ErrInvalidSeries, i)
		}
		if i > 0 && !prev.Before(row.Date) {
			return nil, contracts.Month{}, fmt.Errorf("%w: dates not strictly increasing at %s", ErrInvalidSeries, row.Date)
		}
		if !row.Price.Valid {
			return nil, contracts.Month{}, fmt.Errorf("%w: missing price at %s", ErrInvalidSeries, row.Date)
		}
		values[i] = row.Price.Decimal.InexactFloat64()
		prev = row.Date
	}

	return values, prev, nil
}
