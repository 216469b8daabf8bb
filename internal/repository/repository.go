package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/septivank/mill-analytics-worker/internal/db"
	"github.com/septivank/mill-analytics-worker/internal/model"
	"github.com/septivank/mill-analytics-worker/tools/timeparser"
)

// Repository is the reading store: it loads mill reading snapshots and
// persists analysis run records.
type Repository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewRepository creates a new repository
func NewRepository(pool *pgxpool.Pool, logger *zap.Logger) *Repository {
	return &Repository{pool: pool, logger: logger}
}

// LoadReadings loads the full reading snapshot. The historian exports
// timestamps as text; rows whose timestamp cannot be parsed keep a zero
// Timestamp and are later excluded from time-bucketed analyses, never
// surfaced as errors.
func (r *Repository) LoadReadings(ctx context.Context) ([]model.Reading, error) {
	query := `
		SELECT id, reading_timestamp_raw,
			mill_tph, clinker_tph, gypsum_tph, dry_fly_ash_tph, wet_fly_ash_tph,
			mill_kw, inlet_temp_c, outlet_temp_c,
			separator_rpm, separator_kw, vent_fan_rpm, vent_fan_kw, comb_air_fan_kw,
			residue_pct, reject_pct
		FROM mill_readings
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query mill readings: %w", err)
	}
	defer rows.Close()

	var readings []model.Reading
	for rows.Next() {
		var (
			reading model.Reading
			rawTS   *string
		)
		err := rows.Scan(
			&reading.ID,
			&rawTS,
			&reading.MillTPH,
			&reading.ClinkerTPH,
			&reading.GypsumTPH,
			&reading.DryFlyAshTPH,
			&reading.WetFlyAshTPH,
			&reading.MillKW,
			&reading.InletTempC,
			&reading.OutletTempC,
			&reading.SeparatorRPM,
			&reading.SeparatorKW,
			&reading.VentFanRPM,
			&reading.VentFanKW,
			&reading.CombAirFanKW,
			&reading.ResiduePct,
			&reading.RejectPct,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mill reading: %w", err)
		}

		if rawTS != nil {
			ts, err := timeparser.ParseMillTimestamp(*rawTS)
			if err != nil {
				r.logger.Debug("excluding unparsable reading timestamp",
					zap.String("reading_id", reading.ID.String()),
					zap.String("raw_timestamp", *rawTS),
				)
			} else {
				reading.Timestamp = ts
			}
		}

		readings = append(readings, reading)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return readings, nil
}

// InsertAnalysisRun persists the record of one completed analysis run.
func (r *Repository) InsertAnalysisRun(ctx context.Context, run *db.AnalysisRun) error {
	query := `
		INSERT INTO analysis_runs (
			id, request_id, window_start, window_end,
			reading_count, outlier_count, alert_count,
			started_at, finished_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		run.ID,
		run.RequestID,
		run.WindowStart,
		run.WindowEnd,
		run.ReadingCount,
		run.OutlierCount,
		run.AlertCount,
		run.StartedAt,
		run.FinishedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert analysis run: %w", err)
	}

	return nil
}
