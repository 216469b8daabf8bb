package mq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher handles message publishing to RabbitMQ
type Publisher struct {
	conn     *Connection
	channel  *amqp.Channel
	exchange string
	logger   *zap.Logger
}

// NewPublisher creates a new RabbitMQ publisher
func NewPublisher(conn *Connection, exchange string, logger *zap.Logger) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}

	// Declare exchange
	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &Publisher{
		conn:     conn,
		channel:  ch,
		exchange: exchange,
		logger:   logger,
	}, nil
}

// FieldSummaryEvent is the published form of one field's descriptive
// statistics. Skewness and kurtosis are omitted (null) when the field had
// zero variance, never reported as 0.
type FieldSummaryEvent struct {
	Field    string   `json:"field"`
	Count    int      `json:"count"`
	Mean     float64  `json:"mean"`
	Min      float64  `json:"min"`
	Max      float64  `json:"max"`
	Variance float64  `json:"variance"`
	StdDev   float64  `json:"stddev"`
	Skewness *float64 `json:"skewness,omitempty"`
	Kurtosis *float64 `json:"kurtosis,omitempty"`
}

// MonthTrendEvent is one monthly bucket in the published report.
type MonthTrendEvent struct {
	Month     string   `json:"month"`
	Value     float64  `json:"value"`
	Count     int      `json:"count"`
	GrowthPct *float64 `json:"growth_pct,omitempty"`
}

// ReportEvent summarizes one completed analysis run.
type ReportEvent struct {
	RunID               string              `json:"run_id"`
	RequestID           string              `json:"request_id"`
	ReadingCount        int                 `json:"reading_count"`
	OutlierCount        int                 `json:"outlier_count"`
	AlertCount          int                 `json:"alert_count"`
	FieldSummaries      []FieldSummaryEvent `json:"field_summaries"`
	PowerThroughputCorr *float64            `json:"power_throughput_corr,omitempty"`
	// RollingThroughputTPH is the trailing moving average of throughput at
	// the most recent reading in the window.
	RollingThroughputTPH *float64          `json:"rolling_throughput_tph,omitempty"`
	MonthlyThroughput    []MonthTrendEvent `json:"monthly_throughput"`
	MonthlyEnergyPerTon  []MonthTrendEvent `json:"monthly_energy_per_ton"`
	GeneratedAt          string            `json:"generated_at"`
}

// AlertEvent is one raised threshold alert.
type AlertEvent struct {
	RunID            string `json:"run_id"`
	Rule             string `json:"rule"`
	ReadingID        string `json:"reading_id"`
	ReadingTimestamp string `json:"reading_timestamp"`
}

// PublishReport publishes the completed analysis report
func (p *Publisher) PublishReport(ctx context.Context, event ReportEvent, routingKey string) error {
	return p.publish(ctx, event, routingKey)
}

// PublishAlert publishes a raised alert
func (p *Publisher) PublishAlert(ctx context.Context, event AlertEvent, routingKey string) error {
	return p.publish(ctx, event, routingKey)
}

func (p *Publisher) publish(ctx context.Context, event interface{}, routingKey string) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)

	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// Close closes the publisher channel
func (p *Publisher) Close() error {
	if p.channel == nil {
		return nil
	}
	return p.channel.Close()
}
