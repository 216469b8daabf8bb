package stats_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/septivank/mill-analytics-worker/internal/model"
	"github.com/septivank/mill-analytics-worker/internal/stats"
)

func readingsWithTPH(values ...float64) []model.Reading {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	readings := make([]model.Reading, len(values))
	for i, v := range values {
		readings[i] = model.Reading{
			ID:        uuid.New(),
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			MillTPH:   model.Float64Ptr(v),
		}
	}
	return readings
}

func TestQuantile_FloorIndexing(t *testing.T) {
	readings := readingsWithTPH(3, 1, 4, 2)

	cases := []struct {
		fraction float64
		expected float64
	}{
		{0.25, 1}, // floor(0.25*4) = position 1
		{0.50, 2}, // floor(0.50*4) = position 2
		{0.75, 3}, // floor(0.75*4) = position 3
		{1.00, 4}, // clamped to position 4
	}

	for _, c := range cases {
		got, err := stats.Quantile(readings, model.MillTPH, c.fraction)
		if err != nil {
			t.Fatalf("Quantile(%v) returned error: %v", c.fraction, err)
		}
		if got != c.expected {
			t.Errorf("Quantile(%v): expected %v, got %v", c.fraction, c.expected, got)
		}
	}
}

func TestQuantile_SingleReading(t *testing.T) {
	readings := readingsWithTPH(42)

	q, err := stats.Quartiles(readings, model.MillTPH)
	if err != nil {
		t.Fatalf("Quartiles returned error: %v", err)
	}

	if q.Q1 != 42 || q.Q3 != 42 {
		t.Errorf("Expected Q1 = Q3 = 42 for a single reading, got Q1=%v Q3=%v", q.Q1, q.Q3)
	}
	if q.IQR() != 0 {
		t.Errorf("Expected zero IQR for a single reading, got %v", q.IQR())
	}
}

func TestQuantile_EmptyInput(t *testing.T) {
	_, err := stats.Quantile(nil, model.MillTPH, 0.5)

	if !errors.Is(err, stats.ErrEmptyInput) {
		t.Errorf("Expected ErrEmptyInput, got %v", err)
	}
}

func TestQuartiles_Monotonic(t *testing.T) {
	readings := readingsWithTPH(87, 12, 55, 55, 3, 99, 41, 68, 23, 76, 31)

	q, err := stats.Quartiles(readings, model.MillTPH)
	if err != nil {
		t.Fatalf("Quartiles returned error: %v", err)
	}

	if q.Q1 > q.Q3 {
		t.Errorf("Expected Q1 <= Q3, got Q1=%v Q3=%v", q.Q1, q.Q3)
	}
}

func TestQuantile_SkipsAbsentValues(t *testing.T) {
	readings := readingsWithTPH(10, 20, 30)
	readings = append(readings, model.Reading{ID: uuid.New()}) // no throughput

	got, err := stats.Quantile(readings, model.MillTPH, 1.0)
	if err != nil {
		t.Fatalf("Quantile returned error: %v", err)
	}
	if got != 30 {
		t.Errorf("Expected max of present values 30, got %v", got)
	}
}
