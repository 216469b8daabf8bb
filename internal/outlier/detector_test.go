package outlier_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/septivank/mill-analytics-worker/internal/model"
	"github.com/septivank/mill-analytics-worker/internal/outlier"
	"github.com/septivank/mill-analytics-worker/internal/stats"
)

const testFenceMultiplier = 1.5

func tphReadings(values ...float64) []model.Reading {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
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

func TestDetect_ConstantFieldFlagsNothing(t *testing.T) {
	detector := outlier.NewDetector(testFenceMultiplier)
	readings := tphReadings(50, 50, 50, 50, 50)

	flagged, err := detector.Detect(readings, model.MillTPH)
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}

	if len(flagged) != 0 {
		t.Errorf("Expected no outliers on a constant field, got %d", len(flagged))
	}
}

func TestDetect_FlagsExtremeValue(t *testing.T) {
	detector := outlier.NewDetector(testFenceMultiplier)
	// Q1=10, Q3=12, IQR=2, fences [7, 15]
	readings := tphReadings(10, 11, 12, 10, 11, 12, 11, 10, 12, 100)

	flagged, err := detector.Detect(readings, model.MillTPH)
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}

	if len(flagged) != 1 {
		t.Fatalf("Expected exactly one outlier, got %d", len(flagged))
	}
	if v, _ := model.MillTPH.Value(&flagged[0]); v != 100 {
		t.Errorf("Expected the 100 tph reading flagged, got %v", v)
	}
}

func TestDetect_OrdersMostRecentFirst(t *testing.T) {
	detector := outlier.NewDetector(testFenceMultiplier)
	// Two extreme values at positions 0 and 9; position 9 is the most recent
	readings := tphReadings(100, 11, 12, 10, 11, 12, 11, 10, 12, 200)

	flagged, err := detector.Detect(readings, model.MillTPH)
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}

	if len(flagged) != 2 {
		t.Fatalf("Expected two outliers, got %d", len(flagged))
	}
	if !flagged[0].Timestamp.After(flagged[1].Timestamp) {
		t.Errorf("Expected most recent outlier first, got %v then %v",
			flagged[0].Timestamp, flagged[1].Timestamp)
	}
}

func TestDetect_DoesNotMutateInput(t *testing.T) {
	detector := outlier.NewDetector(testFenceMultiplier)
	readings := tphReadings(100, 11, 12, 10, 11, 12, 11, 10, 12, 200)
	firstID := readings[0].ID

	if _, err := detector.Detect(readings, model.MillTPH); err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}

	if readings[0].ID != firstID {
		t.Error("Detect reordered the input collection")
	}
	if len(readings) != 10 {
		t.Errorf("Detect changed the input length: %d", len(readings))
	}
}

func TestDetect_EmptyInput(t *testing.T) {
	detector := outlier.NewDetector(testFenceMultiplier)

	_, err := detector.Detect(nil, model.MillTPH)

	if !errors.Is(err, stats.ErrEmptyInput) {
		t.Errorf("Expected ErrEmptyInput, got %v", err)
	}
}

func TestRemove_ExcludesFlaggedByID(t *testing.T) {
	detector := outlier.NewDetector(testFenceMultiplier)
	readings := tphReadings(10, 11, 12, 10, 11, 12, 11, 10, 12, 100)

	flagged, err := detector.Detect(readings, model.MillTPH)
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}

	kept := outlier.Remove(readings, flagged)

	if len(kept) != len(readings)-len(flagged) {
		t.Fatalf("Expected %d readings after removal, got %d",
			len(readings)-len(flagged), len(kept))
	}
	for i := range kept {
		if v, _ := model.MillTPH.Value(&kept[i]); v == 100 {
			t.Error("Flagged reading survived removal")
		}
	}
}

func TestDetect_OrAcrossFields(t *testing.T) {
	detector := outlier.NewDetector(testFenceMultiplier)
	readings := tphReadings(10, 11, 12, 10, 11, 12, 11, 10, 12, 11)
	// Give every reading a stable power draw except one spike
	for i := range readings {
		readings[i].MillKW = model.Float64Ptr(3000)
	}
	readings[4].MillKW = model.Float64Ptr(9000)

	flagged, err := detector.Detect(readings, model.MillTPH, model.MillKW)
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}

	if len(flagged) != 1 {
		t.Fatalf("Expected one outlier via the power field, got %d", len(flagged))
	}
	if v, _ := model.MillKW.Value(&flagged[0]); v != 9000 {
		t.Errorf("Expected the 9000 kW reading flagged, got %v", v)
	}
}
