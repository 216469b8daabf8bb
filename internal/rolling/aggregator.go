package rolling

import (
	"iter"
	"time"

	"github.com/septivank/mill-analytics-worker/internal/model"
)

// Point is one (timestamp, rolling mean) pair.
type Point struct {
	Timestamp time.Time
	Mean      float64
}

// Aggregator computes a trailing moving average over a time-ordered series.
type Aggregator struct {
	window int
}

// NewAggregator creates an aggregator over a trailing window of the given
// size (11 is the operational default: the current reading plus ten prior).
func NewAggregator(window int) *Aggregator {
	if window <= 0 {
		window = 1
	}
	return &Aggregator{window: window}
}

// Means yields one point per reading where f is present, in input order.
// Each mean covers the current value plus up to window-1 immediately
// preceding present values, so the window is partial at the start of the
// series: the first point's window has size 1. The sequence is lazy and
// restartable; iterating it again replays the same points.
func (a *Aggregator) Means(readings []model.Reading, f model.Field) iter.Seq[Point] {
	return func(yield func(Point) bool) {
		buf := make([]float64, a.window)
		var (
			idx   int
			count int
			sum   float64
		)
		for i := range readings {
			v, ok := f.Value(&readings[i])
			if !ok {
				continue
			}
			if count < a.window {
				count++
			} else {
				sum -= buf[idx]
			}
			buf[idx] = v
			sum += v
			idx = (idx + 1) % a.window

			if !yield(Point{Timestamp: readings[i].Timestamp, Mean: sum / float64(count)}) {
				return
			}
		}
	}
}
