package stats

import "errors"

var (
	// ErrEmptyInput is returned when a statistic is requested over a
	// collection with no present values for the field.
	ErrEmptyInput = errors.New("stats: empty input")

	// ErrDegenerateVariance is returned when skewness or kurtosis is
	// requested for a zero-variance field. Callers must not confuse this
	// with a legitimate zero value.
	ErrDegenerateVariance = errors.New("stats: zero variance, skewness and kurtosis undefined")

	// ErrZeroVariance is returned by Correlation when either field is
	// constant across the collection.
	ErrZeroVariance = errors.New("stats: zero variance field, correlation undefined")
)
