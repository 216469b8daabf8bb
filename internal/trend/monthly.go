package trend

import (
	"fmt"
	"slices"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/septivank/mill-analytics-worker/internal/model"
)

// MonthKey identifies a calendar month. Bucketing uses this pair rather than
// a formatted string so grouping cannot drift with locale or format changes.
type MonthKey struct {
	Year  int
	Month time.Month
}

func (k MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year, int(k.Month))
}

// Before reports whether k is chronologically earlier than other.
func (k MonthKey) Before(other MonthKey) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	return k.Month < other.Month
}

// MonthTrend is one bucket in a monthly series. GrowthPct is nil for the
// earliest month and whenever the prior bucket's aggregate is zero; absent
// growth must never be reported as 0.
type MonthTrend struct {
	Month     MonthKey
	Value     float64
	Count     int
	GrowthPct *float64
}

// MonthlyMeans buckets readings by calendar month, computes the mean of f
// per bucket, and attaches month-over-month percent growth against the
// immediately preceding month present in the data. Readings with a missing
// (zero) timestamp, or where f is absent, are silently excluded.
func MonthlyMeans(readings []model.Reading, f model.Field) []MonthTrend {
	buckets := make(map[MonthKey][]float64)
	for i := range readings {
		r := &readings[i]
		if r.Timestamp.IsZero() {
			continue
		}
		v, ok := f.Value(r)
		if !ok {
			continue
		}
		k := MonthKey{Year: r.Timestamp.Year(), Month: r.Timestamp.Month()}
		buckets[k] = append(buckets[k], v)
	}

	series := make([]MonthTrend, 0, len(buckets))
	for k, vals := range buckets {
		series = append(series, MonthTrend{
			Month: k,
			Value: stat.Mean(vals, nil),
			Count: len(vals),
		})
	}
	finish(series)
	return series
}

// MonthlyRatio computes sum(num)/sum(den) per month, e.g. energy per unit
// output as sum(mill power)/sum(throughput). Only readings where both fields
// are present contribute. A bucket whose denominator sums to zero has no
// defined aggregate and is omitted from the series.
func MonthlyRatio(readings []model.Reading, num, den model.Field) []MonthTrend {
	type pair struct{ num, den []float64 }
	buckets := make(map[MonthKey]*pair)
	for i := range readings {
		r := &readings[i]
		if r.Timestamp.IsZero() {
			continue
		}
		nv, ok := num.Value(r)
		if !ok {
			continue
		}
		dv, ok := den.Value(r)
		if !ok {
			continue
		}
		k := MonthKey{Year: r.Timestamp.Year(), Month: r.Timestamp.Month()}
		b := buckets[k]
		if b == nil {
			b = &pair{}
			buckets[k] = b
		}
		b.num = append(b.num, nv)
		b.den = append(b.den, dv)
	}

	series := make([]MonthTrend, 0, len(buckets))
	for k, b := range buckets {
		denSum := floats.Sum(b.den)
		if denSum == 0 {
			continue
		}
		series = append(series, MonthTrend{
			Month: k,
			Value: floats.Sum(b.num) / denSum,
			Count: len(b.num),
		})
	}
	finish(series)
	return series
}

// finish orders the series chronologically and fills month-over-month
// growth: (current-previous)/previous*100, undefined when there is no
// previous bucket or its aggregate is exactly zero.
func finish(series []MonthTrend) {
	slices.SortFunc(series, func(a, b MonthTrend) int {
		switch {
		case a.Month.Before(b.Month):
			return -1
		case b.Month.Before(a.Month):
			return 1
		default:
			return 0
		}
	})

	for i := 1; i < len(series); i++ {
		prev := series[i-1].Value
		if prev == 0 {
			continue
		}
		g := (series[i].Value - prev) / prev * 100
		series[i].GrowthPct = &g
	}
}
