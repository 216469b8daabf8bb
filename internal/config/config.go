package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	ServiceName string
	Database    DatabaseConfig
	RabbitMQ    RabbitMQConfig
	Analysis    AnalysisConfig
	Alerts      AlertConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL string
}

// RabbitMQConfig holds RabbitMQ connection and queue settings
type RabbitMQConfig struct {
	URL              string
	JobsExchange     string
	JobsQueue        string
	JobsRoutingKey   string
	ReportExchange   string
	ReportRoutingKey string
	AlertRoutingKey  string
	DLQQueue         string
	PrefetchCount    int
}

// AnalysisConfig holds the statistical engine settings
type AnalysisConfig struct {
	IQRFenceMultiplier float64
	RollingWindowSize  int
}

// AlertConfig holds the threshold alert multipliers and constants
type AlertConfig struct {
	RejectRateMultiplier    float64
	HighOutletTempC         float64
	SeparatorLoadMultiplier float64
	MaintenanceMultiplier   float64
	PowerSpikeMultiplier    float64
	FanRPMDropMultiplier    float64
	FanPowerRiseMultiplier  float64
	WearRPMMultiplier       float64
	WearResidueMultiplier   float64
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		ServiceName: getEnv("SERVICE_NAME", "mill-analytics-worker"),
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		RabbitMQ: RabbitMQConfig{
			URL:              getEnv("RABBITMQ_URL", ""),
			JobsExchange:     getEnv("RABBITMQ_JOBS_EXCHANGE", "mill-analytics.jobs.exchange"),
			JobsQueue:        getEnv("RABBITMQ_JOBS_QUEUE", "mill-analytics.jobs.queue"),
			JobsRoutingKey:   getEnv("RABBITMQ_JOBS_ROUTING_KEY", "analysis.job.requested"),
			ReportExchange:   getEnv("RABBITMQ_REPORT_EXCHANGE", "mill-analytics.reports.exchange"),
			ReportRoutingKey: getEnv("RABBITMQ_REPORT_ROUTING_KEY", "analysis.report.completed"),
			AlertRoutingKey:  getEnv("RABBITMQ_ALERT_ROUTING_KEY", "analysis.alert.raised"),
			DLQQueue:         getEnv("RABBITMQ_DLQ_QUEUE", "mill-analytics.jobs.dlq"),
			PrefetchCount:    getEnvAsInt("RABBITMQ_PREFETCH", 1),
		},
		Analysis: AnalysisConfig{
			IQRFenceMultiplier: getEnvAsFloat("ANALYSIS_IQR_FENCE_MULTIPLIER", 1.5),
			RollingWindowSize:  getEnvAsInt("ANALYSIS_ROLLING_WINDOW_SIZE", 11),
		},
		Alerts: AlertConfig{
			RejectRateMultiplier:    getEnvAsFloat("ALERT_REJECT_RATE_MULTIPLIER", 1.5),
			HighOutletTempC:         getEnvAsFloat("ALERT_HIGH_OUTLET_TEMP_C", 100),
			SeparatorLoadMultiplier: getEnvAsFloat("ALERT_SEPARATOR_LOAD_MULTIPLIER", 1.3),
			MaintenanceMultiplier:   getEnvAsFloat("ALERT_MAINTENANCE_MULTIPLIER", 1.2),
			PowerSpikeMultiplier:    getEnvAsFloat("ALERT_POWER_SPIKE_MULTIPLIER", 1.2),
			FanRPMDropMultiplier:    getEnvAsFloat("ALERT_FAN_RPM_DROP_MULTIPLIER", 0.85),
			FanPowerRiseMultiplier:  getEnvAsFloat("ALERT_FAN_POWER_RISE_MULTIPLIER", 1.1),
			WearRPMMultiplier:       getEnvAsFloat("ALERT_WEAR_RPM_MULTIPLIER", 0.95),
			WearResidueMultiplier:   getEnvAsFloat("ALERT_WEAR_RESIDUE_MULTIPLIER", 1.1),
		},
	}

	// Validate required fields
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required but not set in environment variables")
	}
	if cfg.RabbitMQ.URL == "" {
		return nil, fmt.Errorf("RABBITMQ_URL is required but not set in environment variables")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}
