package stats

import (
	"math"

	"github.com/septivank/mill-analytics-worker/internal/model"
)

// Summary holds the descriptive statistics of one field over one collection.
// Variance is the population variance (divide by N, matching the rest of the
// pipeline's divide-by-count convention). Kurtosis is the raw fourth
// standardized moment, not excess kurtosis: no -3 correction is applied.
type Summary struct {
	Count    int
	Mean     float64
	Min      float64
	Max      float64
	Variance float64
	StdDev   float64
	Skewness float64
	Kurtosis float64
}

// Moments computes count, mean, min, max, population variance and stddev of
// the present values of f. Mean and variance accumulate in a single Welford
// pass so long series do not suffer catastrophic cancellation.
func Moments(readings []model.Reading, f model.Field) (Summary, error) {
	var (
		n    int
		mean float64
		m2   float64
	)
	min := math.Inf(1)
	max := math.Inf(-1)

	for i := range readings {
		v, ok := f.Value(&readings[i])
		if !ok {
			continue
		}
		n++
		delta := v - mean
		mean += delta / float64(n)
		m2 += delta * (v - mean)
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	if n == 0 {
		return Summary{}, ErrEmptyInput
	}

	variance := m2 / float64(n)
	return Summary{
		Count:    n,
		Mean:     mean,
		Min:      min,
		Max:      max,
		Variance: variance,
		StdDev:   math.Sqrt(variance),
	}, nil
}

// Shape fills Skewness and Kurtosis on a summary previously computed by
// Moments, as a second pass over the data. The base moments are parameters,
// never recomputed per row. On a zero-variance field the summary comes back
// with NaN shape statistics and ErrDegenerateVariance so callers can tell
// "undefined" apart from a real zero.
func Shape(readings []model.Reading, f model.Field, m Summary) (Summary, error) {
	if m.Count == 0 {
		return m, ErrEmptyInput
	}
	if m.StdDev == 0 {
		m.Skewness = math.NaN()
		m.Kurtosis = math.NaN()
		return m, ErrDegenerateVariance
	}

	var s3, s4 float64
	for i := range readings {
		v, ok := f.Value(&readings[i])
		if !ok {
			continue
		}
		d := v - m.Mean
		d2 := d * d
		s3 += d2 * d
		s4 += d2 * d2
	}

	n := float64(m.Count)
	m.Skewness = s3 / n / (m.StdDev * m.StdDev * m.StdDev)
	m.Kurtosis = s4 / n / (m.Variance * m.Variance)
	return m, nil
}

// Describe is Moments followed by Shape. On a zero-variance field the base
// moments are still returned, alongside ErrDegenerateVariance.
func Describe(readings []model.Reading, f model.Field) (Summary, error) {
	m, err := Moments(readings, f)
	if err != nil {
		return m, err
	}
	return Shape(readings, f, m)
}
