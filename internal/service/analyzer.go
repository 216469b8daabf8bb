package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/septivank/mill-analytics-worker/internal/alert"
	"github.com/septivank/mill-analytics-worker/internal/cleaning"
	"github.com/septivank/mill-analytics-worker/internal/config"
	"github.com/septivank/mill-analytics-worker/internal/db"
	"github.com/septivank/mill-analytics-worker/internal/logging"
	"github.com/septivank/mill-analytics-worker/internal/model"
	"github.com/septivank/mill-analytics-worker/internal/mq"
	"github.com/septivank/mill-analytics-worker/internal/outlier"
	"github.com/septivank/mill-analytics-worker/internal/repository"
	"github.com/septivank/mill-analytics-worker/internal/rolling"
	"github.com/septivank/mill-analytics-worker/internal/stats"
	"github.com/septivank/mill-analytics-worker/internal/trend"
	"github.com/septivank/mill-analytics-worker/tools/timeparser"
)

// AnalysisJob is the incoming job message. The optional window bounds use
// the historian timestamp format (MM/DD/YYYY HH:MM).
type AnalysisJob struct {
	RequestID   string `json:"request_id"`
	RequestedAt string `json:"requested_at"`
	WindowStart string `json:"window_start,omitempty"`
	WindowEnd   string `json:"window_end,omitempty"`
}

// summaryFields are the columns reported with full descriptive statistics.
var summaryFields = []model.Field{
	model.MillTPH,
	model.MillKW,
	model.OutletTempC,
	model.ResiduePct,
	model.RejectPct,
}

// outlierFields are the columns screened with IQR fences.
var outlierFields = []model.Field{
	model.MillTPH,
	model.MillKW,
	model.ResiduePct,
	model.RejectPct,
}

// AnalyzerService runs the batch analysis pipeline for one job: load the
// snapshot, clean it, fan the independent analyses out over the immutable
// collection, persist the run record and publish the report.
type AnalyzerService struct {
	repo      *repository.Repository
	publisher *mq.Publisher
	detector  *outlier.Detector
	alerter   *alert.Alerter
	roller    *rolling.Aggregator
	cfg       *config.Config
	logger    *zap.Logger
}

// NewAnalyzerService creates a new analyzer service
func NewAnalyzerService(
	repo *repository.Repository,
	publisher *mq.Publisher,
	detector *outlier.Detector,
	alerter *alert.Alerter,
	roller *rolling.Aggregator,
	cfg *config.Config,
	logger *zap.Logger,
) *AnalyzerService {
	return &AnalyzerService{
		repo:      repo,
		publisher: publisher,
		detector:  detector,
		alerter:   alerter,
		roller:    roller,
		cfg:       cfg,
		logger:    logger,
	}
}

// RunAnalysis processes one analysis job message.
func (s *AnalyzerService) RunAnalysis(ctx context.Context, body []byte) error {
	startedAt := time.Now()

	var job AnalysisJob
	if err := json.Unmarshal(body, &job); err != nil {
		return fmt.Errorf("failed to unmarshal analysis job: %w", err)
	}

	reqLogger := logging.WithRequestID(s.logger, job.RequestID)
	reqLogger.Info("starting analysis run",
		zap.String("window_start", job.WindowStart),
		zap.String("window_end", job.WindowEnd),
	)

	raw, err := s.repo.LoadReadings(ctx)
	if err != nil {
		reqLogger.Error("failed to load readings", zap.Error(err))
		return fmt.Errorf("failed to load readings: %w", err)
	}

	readings := cleaning.Clean(raw)

	windowStart, windowEnd, err := parseWindow(job)
	if err != nil {
		return err
	}
	readings = filterWindow(readings, windowStart, windowEnd)

	reqLogger.Info("snapshot ready",
		zap.Int("raw_count", len(raw)),
		zap.Int("clean_count", len(readings)),
	)

	if len(readings) == 0 {
		return fmt.Errorf("no readings in analysis window: %w", stats.ErrEmptyInput)
	}

	report, flaggedAlerts, err := s.analyze(ctx, readings, reqLogger)
	if err != nil {
		return err
	}

	runID := uuid.New()
	run := &db.AnalysisRun{
		ID:           runID,
		RequestID:    job.RequestID,
		WindowStart:  windowStart,
		WindowEnd:    windowEnd,
		ReadingCount: len(readings),
		OutlierCount: report.OutlierCount,
		AlertCount:   report.AlertCount,
		StartedAt:    startedAt,
		FinishedAt:   time.Now(),
	}
	if err := s.repo.InsertAnalysisRun(ctx, run); err != nil {
		reqLogger.Error("failed to persist analysis run", zap.Error(err))
		return err
	}

	report.RunID = runID.String()
	report.RequestID = job.RequestID
	report.GeneratedAt = run.FinishedAt.Format(time.RFC3339)

	if err := s.publisher.PublishReport(ctx, *report, s.cfg.RabbitMQ.ReportRoutingKey); err != nil {
		reqLogger.Error("failed to publish report", zap.Error(err))
		return err
	}

	for _, a := range flaggedAlerts {
		a.RunID = runID.String()
		if err := s.publisher.PublishAlert(ctx, a, s.cfg.RabbitMQ.AlertRoutingKey); err != nil {
			// Report already went out; log and continue with the rest
			reqLogger.Error("failed to publish alert",
				zap.Error(err),
				zap.String("rule", a.Rule),
			)
		}
	}

	reqLogger.Info("analysis run completed",
		zap.String("run_id", runID.String()),
		zap.Int("outliers", report.OutlierCount),
		zap.Int("alerts", report.AlertCount),
	)

	return nil
}

// analyze fans the independent analyses out over the immutable snapshot.
// Statistical degeneracy (zero variance, undefined growth) stays local to
// its field and never aborts sibling analyses.
func (s *AnalyzerService) analyze(ctx context.Context, readings []model.Reading, logger *zap.Logger) (*mq.ReportEvent, []mq.AlertEvent, error) {
	var (
		summaries     []mq.FieldSummaryEvent
		outliers      []model.Reading
		corr          *float64
		rollingLatest *float64
		monthlyTPH    []trend.MonthTrend
		monthlyEnergy []trend.MonthTrend
		alertEvents   []mq.AlertEvent
	)

	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		summaries = s.describeFields(readings, logger)
		return nil
	})

	g.Go(func() error {
		flagged, err := s.detector.Detect(readings, outlierFields...)
		if err != nil {
			return fmt.Errorf("outlier detection failed: %w", err)
		}
		outliers = flagged
		return nil
	})

	g.Go(func() error {
		r, err := stats.Correlation(readings, model.MillKW, model.MillTPH)
		switch {
		case err == nil:
			corr = &r
		case errors.Is(err, stats.ErrZeroVariance), errors.Is(err, stats.ErrEmptyInput):
			logger.Warn("power/throughput correlation undefined", zap.Error(err))
		default:
			return err
		}
		return nil
	})

	g.Go(func() error {
		for p := range s.roller.Means(readings, model.MillTPH) {
			v := p.Mean
			rollingLatest = &v
		}
		return nil
	})

	g.Go(func() error {
		monthlyTPH = trend.MonthlyMeans(readings, model.MillTPH)
		monthlyEnergy = trend.MonthlyRatio(readings, model.MillKW, model.MillTPH)
		return nil
	})

	g.Go(func() error {
		events, err := s.evaluateAlerts(readings, logger)
		if err != nil {
			return err
		}
		alertEvents = events
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	report := &mq.ReportEvent{
		ReadingCount:         len(readings),
		OutlierCount:         len(outliers),
		AlertCount:           len(alertEvents),
		FieldSummaries:       summaries,
		PowerThroughputCorr:  corr,
		RollingThroughputTPH: rollingLatest,
		MonthlyThroughput:    trendEvents(monthlyTPH),
		MonthlyEnergyPerTon:  trendEvents(monthlyEnergy),
	}
	return report, alertEvents, nil
}

// describeFields computes full descriptive statistics per reported field.
// Zero-variance fields keep their base moments; skewness and kurtosis are
// left absent rather than zero.
func (s *AnalyzerService) describeFields(readings []model.Reading, logger *zap.Logger) []mq.FieldSummaryEvent {
	summaries := make([]mq.FieldSummaryEvent, 0, len(summaryFields))
	for _, f := range summaryFields {
		m, err := stats.Describe(readings, f)
		if errors.Is(err, stats.ErrEmptyInput) {
			logger.Warn("field has no present values, skipping summary",
				zap.String("field", f.Name))
			continue
		}

		ev := mq.FieldSummaryEvent{
			Field:    f.Name,
			Count:    m.Count,
			Mean:     m.Mean,
			Min:      m.Min,
			Max:      m.Max,
			Variance: m.Variance,
			StdDev:   m.StdDev,
		}
		if err == nil {
			sk, ku := m.Skewness, m.Kurtosis
			ev.Skewness = &sk
			ev.Kurtosis = &ku
		} else if errors.Is(err, stats.ErrDegenerateVariance) {
			logger.Warn("zero-variance field, shape statistics undefined",
				zap.String("field", f.Name))
		}
		summaries = append(summaries, ev)
	}
	return summaries
}

func (s *AnalyzerService) evaluateAlerts(readings []model.Reading, logger *zap.Logger) ([]mq.AlertEvent, error) {
	var events []mq.AlertEvent
	for _, rule := range s.alerter.Rules() {
		flagged, err := s.alerter.Evaluate(readings, rule)
		if err != nil {
			return nil, fmt.Errorf("alert rule %s failed: %w", rule.Name, err)
		}
		logger.Debug("alert rule evaluated",
			zap.String("rule", rule.Name),
			zap.Int("flagged", len(flagged)),
		)
		for i := range flagged {
			events = append(events, mq.AlertEvent{
				Rule:             rule.Name,
				ReadingID:        flagged[i].ID.String(),
				ReadingTimestamp: flagged[i].Timestamp.Format(time.RFC3339),
			})
		}
	}
	return events, nil
}

func trendEvents(series []trend.MonthTrend) []mq.MonthTrendEvent {
	events := make([]mq.MonthTrendEvent, 0, len(series))
	for _, b := range series {
		events = append(events, mq.MonthTrendEvent{
			Month:     b.Month.String(),
			Value:     b.Value,
			Count:     b.Count,
			GrowthPct: b.GrowthPct,
		})
	}
	return events
}

func parseWindow(job AnalysisJob) (*time.Time, *time.Time, error) {
	var start, end *time.Time
	if job.WindowStart != "" {
		t, err := timeparser.ParseMillTimestamp(job.WindowStart)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid window_start: %w", err)
		}
		start = &t
	}
	if job.WindowEnd != "" {
		t, err := timeparser.ParseMillTimestamp(job.WindowEnd)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid window_end: %w", err)
		}
		end = &t
	}
	return start, end, nil
}

func filterWindow(readings []model.Reading, start, end *time.Time) []model.Reading {
	if start == nil && end == nil {
		return readings
	}
	kept := make([]model.Reading, 0, len(readings))
	for i := range readings {
		ts := readings[i].Timestamp
		if ts.IsZero() {
			continue
		}
		if start != nil && ts.Before(*start) {
			continue
		}
		if end != nil && ts.After(*end) {
			continue
		}
		kept = append(kept, readings[i])
	}
	return kept
}
