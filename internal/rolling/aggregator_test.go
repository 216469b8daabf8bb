package rolling_test

import (
	"slices"
	"testing"
	"time"

	"github.com/septivank/mill-analytics-worker/internal/model"
	"github.com/septivank/mill-analytics-worker/internal/rolling"
)

const testWindowSize = 11

func sequentialReadings(n int) []model.Reading {
	base := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	readings := make([]model.Reading, n)
	for i := 0; i < n; i++ {
		readings[i] = model.Reading{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			MillTPH:   model.Float64Ptr(float64(i + 1)),
		}
	}
	return readings
}

func TestMeans_TrailingWindowAtTwelfthReading(t *testing.T) {
	agg := rolling.NewAggregator(testWindowSize)
	readings := sequentialReadings(15)

	points := slices.Collect(agg.Means(readings, model.MillTPH))

	if len(points) != 15 {
		t.Fatalf("Expected one point per reading, got %d", len(points))
	}
	// The 12th reading's window covers values 2..12
	if points[11].Mean != 7.0 {
		t.Errorf("Expected rolling mean 7.0 at the 12th reading, got %v", points[11].Mean)
	}
}

func TestMeans_PartialWindowAtStart(t *testing.T) {
	agg := rolling.NewAggregator(testWindowSize)
	readings := sequentialReadings(3)

	points := slices.Collect(agg.Means(readings, model.MillTPH))

	if points[0].Mean != 1.0 {
		t.Errorf("Expected first window of size 1 with mean 1.0, got %v", points[0].Mean)
	}
	if points[1].Mean != 1.5 {
		t.Errorf("Expected second window mean 1.5, got %v", points[1].Mean)
	}
	if points[2].Mean != 2.0 {
		t.Errorf("Expected third window mean 2.0, got %v", points[2].Mean)
	}
}

func TestMeans_Restartable(t *testing.T) {
	agg := rolling.NewAggregator(testWindowSize)
	readings := sequentialReadings(15)
	seq := agg.Means(readings, model.MillTPH)

	first := slices.Collect(seq)
	second := slices.Collect(seq)

	if len(first) != len(second) {
		t.Fatalf("Replaying the sequence changed its length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("Replaying the sequence changed point %d: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestMeans_SkipsAbsentValues(t *testing.T) {
	agg := rolling.NewAggregator(testWindowSize)
	readings := sequentialReadings(3)
	readings[1].MillTPH = nil

	points := slices.Collect(agg.Means(readings, model.MillTPH))

	if len(points) != 2 {
		t.Fatalf("Expected two points over present values, got %d", len(points))
	}
	if points[1].Mean != 2.0 {
		t.Errorf("Expected mean of values 1 and 3, got %v", points[1].Mean)
	}
}

func TestMeans_EarlyBreakStops(t *testing.T) {
	agg := rolling.NewAggregator(testWindowSize)
	readings := sequentialReadings(15)

	var got int
	for range agg.Means(readings, model.MillTPH) {
		got++
		if got == 3 {
			break
		}
	}

	if got != 3 {
		t.Errorf("Expected iteration to stop after 3 points, got %d", got)
	}
}
