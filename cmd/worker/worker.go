package main

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/septivank/mill-analytics-worker/internal/alert"
	"github.com/septivank/mill-analytics-worker/internal/config"
	"github.com/septivank/mill-analytics-worker/internal/db"
	"github.com/septivank/mill-analytics-worker/internal/mq"
	"github.com/septivank/mill-analytics-worker/internal/outlier"
	"github.com/septivank/mill-analytics-worker/internal/repository"
	"github.com/septivank/mill-analytics-worker/internal/rolling"
	"github.com/septivank/mill-analytics-worker/internal/service"
)

func startWorker(
	lc fx.Lifecycle,
	conn *mq.Connection,
	cfg *config.Config,
	logger *zap.Logger,
	analyzer *service.AnalyzerService,
) (*mq.Consumer, error) {
	// Create context for consumer that will be cancelled on shutdown
	ctx, cancel := context.WithCancel(context.Background())

	consumer, err := mq.NewConsumer(mq.ConsumerConfig{
		Connection:       conn,
		Queue:            cfg.RabbitMQ.JobsQueue,
		DLQQueue:         cfg.RabbitMQ.DLQQueue,
		Exchange:         cfg.RabbitMQ.JobsExchange,
		RoutingKey:       cfg.RabbitMQ.JobsRoutingKey,
		PrefetchCount:    cfg.RabbitMQ.PrefetchCount,
		Logger:           logger,
		MessageProcessor: analyzer.RunAnalysis,
	})
	if err != nil {
		cancel()
		return nil, err
	}

	// Register lifecycle hooks
	lc.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			logger.Info("starting analysis job consumer",
				zap.String("queue", cfg.RabbitMQ.JobsQueue),
				zap.Int("prefetch", cfg.RabbitMQ.PrefetchCount))
			return consumer.Start(ctx)
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			if err := consumer.Close(); err != nil {
				logger.Error("failed to close consumer", zap.Error(err))
				return err
			}
			logger.Info("worker stopped gracefully")
			return nil
		},
	})

	return consumer, nil
}

// ProvideRepository creates a new repository instance
func ProvideRepository(pool *db.Pool, logger *zap.Logger) *repository.Repository {
	return repository.NewRepository(pool, logger)
}

// ProvideOutlierDetector creates the IQR outlier detector
func ProvideOutlierDetector(cfg *config.Config) *outlier.Detector {
	return outlier.NewDetector(cfg.Analysis.IQRFenceMultiplier)
}

// ProvideAlerter creates the threshold alerter from the configured multipliers
func ProvideAlerter(cfg *config.Config) *alert.Alerter {
	return alert.NewAlerter(alert.Config{
		RejectRateMultiplier:    cfg.Alerts.RejectRateMultiplier,
		HighOutletTempC:         cfg.Alerts.HighOutletTempC,
		SeparatorLoadMultiplier: cfg.Alerts.SeparatorLoadMultiplier,
		MaintenanceMultiplier:   cfg.Alerts.MaintenanceMultiplier,
		PowerSpikeMultiplier:    cfg.Alerts.PowerSpikeMultiplier,
		FanRPMDropMultiplier:    cfg.Alerts.FanRPMDropMultiplier,
		FanPowerRiseMultiplier:  cfg.Alerts.FanPowerRiseMultiplier,
		WearRPMMultiplier:       cfg.Alerts.WearRPMMultiplier,
		WearResidueMultiplier:   cfg.Alerts.WearResidueMultiplier,
	})
}

// ProvideRollingAggregator creates the trailing-window aggregator
func ProvideRollingAggregator(cfg *config.Config) *rolling.Aggregator {
	return rolling.NewAggregator(cfg.Analysis.RollingWindowSize)
}

// ProvidePublisher creates a new publisher instance
func ProvidePublisher(conn *mq.Connection, cfg *config.Config, logger *zap.Logger) (*mq.Publisher, error) {
	return mq.NewPublisher(conn, cfg.RabbitMQ.ReportExchange, logger)
}

// ProvideAnalyzerService creates a new analyzer service instance
func ProvideAnalyzerService(
	repo *repository.Repository,
	publisher *mq.Publisher,
	detector *outlier.Detector,
	alerter *alert.Alerter,
	roller *rolling.Aggregator,
	cfg *config.Config,
	logger *zap.Logger,
) *service.AnalyzerService {
	return service.NewAnalyzerService(repo, publisher, detector, alerter, roller, cfg, logger)
}

// ProvideDBPool creates a new database pool instance
func ProvideDBPool(lc fx.Lifecycle, logger *zap.Logger, cfg *config.Config) (*db.Pool, error) {
	return db.NewPool(lc, logger, cfg.Database.URL)
}

// ProvideMQConnection creates a new RabbitMQ connection instance
func ProvideMQConnection(lc fx.Lifecycle, logger *zap.Logger, cfg *config.Config) (*mq.Connection, error) {
	return mq.NewConnection(lc, logger, cfg.RabbitMQ.URL)
}
