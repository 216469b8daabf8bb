package trend_test

import (
	"math"
	"testing"
	"time"

	"github.com/septivank/mill-analytics-worker/internal/model"
	"github.com/septivank/mill-analytics-worker/internal/trend"
)

func monthReading(year int, month time.Month, day int, tph float64) model.Reading {
	return model.Reading{
		Timestamp: time.Date(year, month, day, 10, 0, 0, 0, time.UTC),
		MillTPH:   model.Float64Ptr(tph),
	}
}

func TestMonthlyMeans_GrowthAgainstPreviousMonth(t *testing.T) {
	readings := []model.Reading{
		monthReading(2024, time.January, 5, 90),
		monthReading(2024, time.January, 20, 110), // January mean 100
		monthReading(2024, time.February, 3, 115),
		monthReading(2024, time.February, 18, 125), // February mean 120
	}

	series := trend.MonthlyMeans(readings, model.MillTPH)

	if len(series) != 2 {
		t.Fatalf("Expected two monthly buckets, got %d", len(series))
	}
	if series[0].Month != (trend.MonthKey{Year: 2024, Month: time.January}) {
		t.Errorf("Expected January first, got %v", series[0].Month)
	}
	if series[0].GrowthPct != nil {
		t.Errorf("Expected undefined growth for the earliest month, got %v", *series[0].GrowthPct)
	}
	if series[1].Value != 120 {
		t.Errorf("Expected February mean 120, got %v", series[1].Value)
	}
	if series[1].GrowthPct == nil {
		t.Fatal("Expected growth for February")
	}
	if math.Abs(*series[1].GrowthPct-20.0) > 1e-9 {
		t.Errorf("Expected 20%% growth, got %v", *series[1].GrowthPct)
	}
}

func TestMonthlyMeans_ZeroPriorBucketGivesUndefinedGrowth(t *testing.T) {
	readings := []model.Reading{
		monthReading(2024, time.January, 5, 0),
		monthReading(2024, time.February, 5, 50),
	}

	series := trend.MonthlyMeans(readings, model.MillTPH)

	if len(series) != 2 {
		t.Fatalf("Expected two monthly buckets, got %d", len(series))
	}
	if series[1].GrowthPct != nil {
		t.Errorf("Expected undefined growth after a zero-valued month, got %v", *series[1].GrowthPct)
	}
}

func TestMonthlyMeans_ExcludesMissingTimestamps(t *testing.T) {
	readings := []model.Reading{
		monthReading(2024, time.January, 5, 100),
		{MillTPH: model.Float64Ptr(500)}, // zero timestamp: unparsable at load
	}

	series := trend.MonthlyMeans(readings, model.MillTPH)

	if len(series) != 1 {
		t.Fatalf("Expected one bucket, got %d", len(series))
	}
	if series[0].Value != 100 {
		t.Errorf("Expected the untimestamped reading excluded, got mean %v", series[0].Value)
	}
}

func TestMonthlyRatio_EnergyPerTon(t *testing.T) {
	jan1 := monthReading(2024, time.January, 5, 100)
	jan1.MillKW = model.Float64Ptr(3000)
	jan2 := monthReading(2024, time.January, 20, 100)
	jan2.MillKW = model.Float64Ptr(3400)
	feb := monthReading(2024, time.February, 3, 100)
	feb.MillKW = model.Float64Ptr(3520)

	series := trend.MonthlyRatio([]model.Reading{jan1, jan2, feb}, model.MillKW, model.MillTPH)

	if len(series) != 2 {
		t.Fatalf("Expected two monthly buckets, got %d", len(series))
	}
	// January: 6400/200 = 32 kWh per ton; February: 3520/100 = 35.2
	if series[0].Value != 32 {
		t.Errorf("Expected January ratio 32, got %v", series[0].Value)
	}
	if series[1].GrowthPct == nil {
		t.Fatal("Expected growth for February")
	}
	if math.Abs(*series[1].GrowthPct-10.0) > 1e-9 {
		t.Errorf("Expected 10%% growth, got %v", *series[1].GrowthPct)
	}
}

func TestMonthlyRatio_OmitsZeroDenominatorBucket(t *testing.T) {
	jan := monthReading(2024, time.January, 5, 0) // throughput sums to zero
	jan.MillKW = model.Float64Ptr(3000)
	feb := monthReading(2024, time.February, 3, 100)
	feb.MillKW = model.Float64Ptr(3000)

	series := trend.MonthlyRatio([]model.Reading{jan, feb}, model.MillKW, model.MillTPH)

	if len(series) != 1 {
		t.Fatalf("Expected the zero-denominator bucket omitted, got %d buckets", len(series))
	}
	if series[0].Month != (trend.MonthKey{Year: 2024, Month: time.February}) {
		t.Errorf("Expected only February, got %v", series[0].Month)
	}
}

func TestMonthlyMeans_SkipsReadingsWithoutField(t *testing.T) {
	jan := monthReading(2024, time.January, 5, 100)
	bare := model.Reading{Timestamp: time.Date(2024, time.January, 6, 0, 0, 0, 0, time.UTC)}

	series := trend.MonthlyMeans([]model.Reading{jan, bare}, model.MillTPH)

	if len(series) != 1 || series[0].Count != 1 {
		t.Fatalf("Expected one bucket with one contributing reading, got %+v", series)
	}
}
