package stats

import (
	"gonum.org/v1/gonum/stat"

	"github.com/septivank/mill-analytics-worker/internal/model"
)

// Correlation computes the Pearson product-moment correlation between fields
// x and y over the readings where both are present. The result lies in
// [-1, 1] up to floating-point tolerance.
func Correlation(readings []model.Reading, x, y model.Field) (float64, error) {
	xs := make([]float64, 0, len(readings))
	ys := make([]float64, 0, len(readings))
	for i := range readings {
		xv, ok := x.Value(&readings[i])
		if !ok {
			continue
		}
		yv, ok := y.Value(&readings[i])
		if !ok {
			continue
		}
		xs = append(xs, xv)
		ys = append(ys, yv)
	}

	if len(xs) == 0 {
		return 0, ErrEmptyInput
	}
	if isConstant(xs) || isConstant(ys) {
		return 0, ErrZeroVariance
	}

	return stat.Correlation(xs, ys, nil), nil
}

func isConstant(vals []float64) bool {
	for _, v := range vals {
		if v != vals[0] {
			return false
		}
	}
	return true
}
