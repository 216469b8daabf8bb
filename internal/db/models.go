package db

import (
	"time"

	"github.com/google/uuid"
)

// AnalysisRun records one batch analysis invocation in the database.
type AnalysisRun struct {
	ID           uuid.UUID
	RequestID    string
	WindowStart  *time.Time
	WindowEnd    *time.Time
	ReadingCount int
	OutlierCount int
	AlertCount   int
	StartedAt    time.Time
	FinishedAt   time.Time
}
