package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/yourorg/trading-admin/internal/config"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes audit events to a Kafka topic, retrying failed writes
// with exponential backoff
type KafkaPublisher struct {
	writer     messageWriter
	topic      string
	maxRetries uint64
	timeout    time.Duration
	newBackOff func() backoff.BackOff
	logger     *zap.Logger
}

// New returns a Kafka publisher when auditing is enabled, otherwise a no-op one
func New(cfg config.AuditConfig, logger *zap.Logger) Publisher {
	if !cfg.Enabled {
		logger.Info("Procedure audit disabled")
		return NopPublisher{}
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    1,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
		Transport: &kafka.Transport{
			ClientID: cfg.ClientID,
		},
	}

	logger.Info("Procedure audit enabled",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("topic", cfg.Topic))

	return newKafkaPublisher(writer, cfg, logger)
}

func newKafkaPublisher(writer messageWriter, cfg config.AuditConfig, logger *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer:     writer,
		topic:      cfg.Topic,
		maxRetries: uint64(cfg.MaxRetries),
		timeout:    cfg.Timeout,
		newBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
		logger:     logger,
	}
}

// Publish writes the event keyed by procedure name. The write is detached from
// the caller's cancellation and bounded by the configured timeout.
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal audit event", zap.String("event_id", event.ID), zap.Error(err))
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.Procedure),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.ID)},
		},
		Time: event.OccurredAt,
	}

	ctx = context.WithoutCancel(ctx)
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(p.newBackOff(), p.maxRetries), ctx)
	attempt := 0
	err = backoff.Retry(func() error {
		attempt++
		if err := p.writer.WriteMessages(ctx, msg); err != nil {
			p.logger.Warn("Failed to publish audit event",
				zap.String("topic", p.topic),
				zap.String("event_id", event.ID),
				zap.Int("attempt", attempt),
				zap.Error(err))
			return err
		}
		return nil
	}, policy)
	if err != nil {
		p.logger.Error("Giving up on audit event",
			zap.String("topic", p.topic),
			zap.String("event_id", event.ID),
			zap.Error(err))
		return err
	}

	p.logger.Debug("Audit event published",
		zap.String("topic", p.topic),
		zap.String("event_id", event.ID),
		zap.String("procedure", event.Procedure))

	return nil
}

// Close flushes and closes the writer
func (p *KafkaPublisher) Close() error {
	if err := p.writer.Close(); err != nil {
		p.logger.Error("Failed to close Kafka writer", zap.String("topic", p.topic), zap.Error(err))
		return err
	}
	return nil
}
