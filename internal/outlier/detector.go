package outlier

import (
	"errors"

	"github.com/google/uuid"

	"github.com/septivank/mill-analytics-worker/internal/model"
	"github.com/septivank/mill-analytics-worker/internal/stats"
)

// Fence is the pair of IQR-derived cutoffs for one field. Values strictly
// outside (Lower, Upper) are outliers.
type Fence struct {
	Lower float64
	Upper float64
}

// Detector flags readings whose field values fall outside their IQR fences.
type Detector struct {
	fenceMultiplier float64
}

// NewDetector creates a detector with the given fence multiplier
// (1.5 is the conventional default).
func NewDetector(fenceMultiplier float64) *Detector {
	return &Detector{fenceMultiplier: fenceMultiplier}
}

// Fences computes the fence for f: Q1 - k*IQR below, Q3 + k*IQR above.
// With a single reading, or an all-identical field, IQR is zero and the
// fence collapses to a point, so nothing is flagged.
func (d *Detector) Fences(readings []model.Reading, f model.Field) (Fence, error) {
	q, err := stats.Quartiles(readings, f)
	if err != nil {
		return Fence{}, err
	}
	iqr := q.IQR()
	return Fence{
		Lower: q.Q1 - d.fenceMultiplier*iqr,
		Upper: q.Q3 + d.fenceMultiplier*iqr,
	}, nil
}

// Detect returns the readings where at least one tested field lies strictly
// outside its fence, ordered most recent first. Fields with no present
// values are skipped. The input is never mutated and flagged readings are
// not removed; removal is the caller's explicit follow-up via Remove.
func (d *Detector) Detect(readings []model.Reading, fields ...model.Field) ([]model.Reading, error) {
	if len(readings) == 0 {
		return nil, stats.ErrEmptyInput
	}

	fences := make([]Fence, len(fields))
	tested := make([]bool, len(fields))
	for i, f := range fields {
		fence, err := d.Fences(readings, f)
		if err != nil {
			if errors.Is(err, stats.ErrEmptyInput) {
				continue
			}
			return nil, err
		}
		fences[i] = fence
		tested[i] = true
	}

	var flagged []model.Reading
	for i := range readings {
		for fi, f := range fields {
			if !tested[fi] {
				continue
			}
			v, ok := f.Value(&readings[i])
			if !ok {
				continue
			}
			if v < fences[fi].Lower || v > fences[fi].Upper {
				flagged = append(flagged, readings[i])
				break
			}
		}
	}

	model.SortByTimestampDesc(flagged)
	return flagged, nil
}

// Remove returns a copy of readings with the flagged set excluded, matched
// by reading ID.
func Remove(readings, flagged []model.Reading) []model.Reading {
	drop := make(map[uuid.UUID]struct{}, len(flagged))
	for i := range flagged {
		drop[flagged[i].ID] = struct{}{}
	}

	kept := make([]model.Reading, 0, len(readings))
	for i := range readings {
		if _, ok := drop[readings[i].ID]; ok {
			continue
		}
		kept = append(kept, readings[i])
	}
	return kept
}
