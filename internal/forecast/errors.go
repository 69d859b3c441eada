package forecast

import "errors"

// Forecast errors. Callers map all of them to an unavailable forecast.
var (
	// ErrInvalidSeries means the series has gaps in its prices or dates
	ErrInvalidSeries = errors.New("insufficient or invalid series")
	// ErrSeriesTooShort means fewer points than the model order requires
	ErrSeriesTooShort = errors.New("series too short for model order")
	// ErrForecastFailed means the model rejected the series or produced non-finite values
	ErrForecastFailed = errors.New("forecast fitting failed")
	// ErrForecastTimeout means the fit exceeded its wall-clock budget
	ErrForecastTimeout = errors.New("forecast timed out")
)
