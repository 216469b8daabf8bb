package stats

import (
	"cmp"
	"math"
	"slices"

	"github.com/septivank/mill-analytics-worker/internal/model"
)

// QuartileFrame holds the first and third quartile of a field. It is
// ephemeral: computed, consumed by fence calculations, discarded.
type QuartileFrame struct {
	Q1 float64
	Q3 float64
}

// IQR returns the interquartile range Q3-Q1.
func (q QuartileFrame) IQR() float64 {
	return q.Q3 - q.Q1
}

// Quantile returns the value of f at fractional rank fraction using the
// floor-based order statistic the original reports were tuned against: the
// element at 1-based position floor(fraction*N), clamped to [1, N], after a
// stable ascending sort of the present values. This is deliberately not an
// interpolated percentile; the fence thresholds downstream depend on this
// exact indexing.
func Quantile(readings []model.Reading, f model.Field, fraction float64) (float64, error) {
	vals := presentValues(readings, f)
	if len(vals) == 0 {
		return 0, ErrEmptyInput
	}
	slices.SortStableFunc(vals, func(a, b float64) int { return cmp.Compare(a, b) })
	return pick(vals, fraction), nil
}

// Quartiles returns Q1 and Q3 of f from a single ranking of the collection.
func Quartiles(readings []model.Reading, f model.Field) (QuartileFrame, error) {
	vals := presentValues(readings, f)
	if len(vals) == 0 {
		return QuartileFrame{}, ErrEmptyInput
	}
	slices.SortStableFunc(vals, func(a, b float64) int { return cmp.Compare(a, b) })
	return QuartileFrame{
		Q1: pick(vals, 0.25),
		Q3: pick(vals, 0.75),
	}, nil
}

// pick selects the 1-based position floor(fraction*N) clamped to [1, N]
// from ascending-sorted vals.
func pick(vals []float64, fraction float64) float64 {
	n := len(vals)
	pos := int(math.Floor(fraction * float64(n)))
	if pos < 1 {
		pos = 1
	}
	if pos > n {
		pos = n
	}
	return vals[pos-1]
}

// presentValues extracts the present values of f in collection order.
func presentValues(readings []model.Reading, f model.Field) []float64 {
	vals := make([]float64, 0, len(readings))
	for i := range readings {
		if v, ok := f.Value(&readings[i]); ok {
			vals = append(vals, v)
		}
	}
	return vals
}
