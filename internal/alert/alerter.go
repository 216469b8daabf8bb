package alert

import (
	"cmp"
	"slices"

	"github.com/septivank/mill-analytics-worker/internal/model"
	"github.com/septivank/mill-analytics-worker/internal/stats"
)

// Direction says which side of the threshold triggers the alert.
type Direction int

const (
	Above Direction = iota
	Below
)

// Combine says how a rule's conditions are joined.
type Combine int

const (
	// Any flags a reading when at least one condition matches.
	Any Combine = iota
	// All flags a reading only when every condition matches; a reading with
	// any required field absent never matches.
	All
)

// Reference is what a condition's multiplier scales: the mean of a field
// over the collection, or a literal domain constant.
type Reference struct {
	meanOf  *model.Field
	literal float64
}

// MeanOf references the collection mean of f.
func MeanOf(f model.Field) Reference { return Reference{meanOf: &f} }

// Literal references a fixed domain constant.
func Literal(v float64) Reference { return Reference{literal: v} }

// Condition is one (field, reference, multiplier, direction) test.
type Condition struct {
	Field      model.Field
	Ref        Reference
	Multiplier float64
	Direction  Direction
}

// Rule is a named alert definition.
type Rule struct {
	Name       string
	Combine    Combine
	Conditions []Condition
}

// Alerter evaluates threshold rules over a reading snapshot. All multipliers
// are configurable; defaults come from operational tuning on the mill.
type Alerter struct {
	cfg Config
}

// Config holds the per-alert multipliers and constants.
type Config struct {
	RejectRateMultiplier    float64 // reject rate vs its own mean
	HighOutletTempC         float64 // literal outlet temperature ceiling
	SeparatorLoadMultiplier float64 // separator power vs its own mean
	MaintenanceMultiplier   float64 // vent-fan / separator power vs own means
	PowerSpikeMultiplier    float64 // mill / separator / combustion-air power vs own means
	FanRPMDropMultiplier    float64 // vent-fan RPM floor vs its mean
	FanPowerRiseMultiplier  float64 // vent-fan power ceiling vs its mean
	WearRPMMultiplier       float64 // separator RPM floor vs its mean
	WearResidueMultiplier   float64 // residue ceiling vs its mean
}

// DefaultConfig returns the tuned production thresholds.
func DefaultConfig() Config {
	return Config{
		RejectRateMultiplier:    1.5,
		HighOutletTempC:         100,
		SeparatorLoadMultiplier: 1.3,
		MaintenanceMultiplier:   1.2,
		PowerSpikeMultiplier:    1.2,
		FanRPMDropMultiplier:    0.85,
		FanPowerRiseMultiplier:  1.1,
		WearRPMMultiplier:       0.95,
		WearResidueMultiplier:   1.1,
	}
}

// NewAlerter creates an alerter with the given thresholds.
func NewAlerter(cfg Config) *Alerter {
	return &Alerter{cfg: cfg}
}

// Evaluate returns the readings matching the rule, most recent first.
// Reference means are resolved once per rule over the full collection, never
// per row. A reference field with no present values makes its condition
// unevaluable: under Any the condition is dropped, under All the rule
// matches nothing.
func (a *Alerter) Evaluate(readings []model.Reading, rule Rule) ([]model.Reading, error) {
	if len(readings) == 0 {
		return nil, stats.ErrEmptyInput
	}

	thresholds := make([]float64, 0, len(rule.Conditions))
	conds := make([]Condition, 0, len(rule.Conditions))
	for _, c := range rule.Conditions {
		ref, ok := resolveReference(readings, c.Ref)
		if !ok {
			if rule.Combine == All {
				return nil, nil
			}
			continue
		}
		thresholds = append(thresholds, c.Multiplier*ref)
		conds = append(conds, c)
	}
	if len(conds) == 0 {
		return nil, nil
	}

	var flagged []model.Reading
	for i := range readings {
		if matches(&readings[i], rule.Combine, conds, thresholds) {
			flagged = append(flagged, readings[i])
		}
	}

	model.SortByTimestampDesc(flagged)
	return flagged, nil
}

func resolveReference(readings []model.Reading, ref Reference) (float64, bool) {
	if ref.meanOf == nil {
		return ref.literal, true
	}
	m, err := stats.Moments(readings, *ref.meanOf)
	if err != nil {
		return 0, false
	}
	return m.Mean, true
}

func matches(r *model.Reading, combine Combine, conds []Condition, thresholds []float64) bool {
	for i, c := range conds {
		v, ok := c.Field.Value(r)
		hit := false
		if ok {
			switch c.Direction {
			case Above:
				hit = v > thresholds[i]
			case Below:
				hit = v < thresholds[i]
			}
		}
		switch combine {
		case Any:
			if hit {
				return true
			}
		case All:
			if !hit {
				return false
			}
		}
	}
	return combine == All
}

// ValueCount is one group in an occurrence-count aggregation.
type ValueCount struct {
	Value float64
	Count int
}

// CountByValue groups readings by the value of f and orders the groups by
// occurrence count descending, ties by value ascending. Readings where f is
// absent are excluded.
func CountByValue(readings []model.Reading, f model.Field) []ValueCount {
	counts := make(map[float64]int)
	for i := range readings {
		if v, ok := f.Value(&readings[i]); ok {
			counts[v]++
		}
	}

	groups := make([]ValueCount, 0, len(counts))
	for v, n := range counts {
		groups = append(groups, ValueCount{Value: v, Count: n})
	}
	slices.SortFunc(groups, func(a, b ValueCount) int {
		if a.Count != b.Count {
			return cmp.Compare(b.Count, a.Count)
		}
		return cmp.Compare(a.Value, b.Value)
	})
	return groups
}
