package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
)

// EventOrderConfirmed is the type of event emitted after the remote API accepts an order
const EventOrderConfirmed = "order.confirmed"

// Publisher announces checkout outcomes to downstream consumers
type Publisher interface {
	PublishOrderConfirmed(ctx context.Context, order domain.Order) error
	Close() error
}

// OrderEvent is the message value written for every confirmed order
type OrderEvent struct {
	Type       string       `json:"type"`
	SessionID  string       `json:"session_id,omitempty"`
	OccurredAt time.Time    `json:"occurred_at"`
	Order      domain.Order `json:"order"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
	logger *zap.Logger
}

// NewKafkaPublisher creates a publisher writing to topic on the given brokers
func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: w, logger: logger}
}

func (p *KafkaPublisher) PublishOrderConfirmed(ctx context.Context, order domain.Order) error {
	event := OrderEvent{
		Type:       EventOrderConfirmed,
		SessionID:  SessionFromContext(ctx),
		OccurredAt: time.Now().UTC(),
		Order:      order,
	}
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", EventOrderConfirmed, err)
	}

	msg := kafka.Message{
		Key:   []byte(order.ID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventOrderConfirmed)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish order event", zap.String("order_id", order.ID), zap.Error(err))
		return fmt.Errorf("failed to publish %s: %w", EventOrderConfirmed, err)
	}

	p.logger.Info("Order event published", zap.String("order_id", order.ID))
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) PublishOrderConfirmed(context.Context, domain.Order) error { return nil }

func (NopPublisher) Close() error { return nil }

type sessionKey struct{}

// WithSession tags ctx with the browsing session the event belongs to
func WithSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionKey{}, sessionID)
}

// SessionFromContext returns the session set by WithSession, or ""
func SessionFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}
