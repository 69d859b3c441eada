package dashboard

import "errors"

var (
	// ErrUnknownChart means the requested chart kind does not exist
	ErrUnknownChart = errors.New("unknown chart kind")
	// ErrForecastUnavailable means the forecast chart cannot be drawn
	ErrForecastUnavailable = errors.New("forecast unavailable")
)
