package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/config"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

const CheckoutEventType = "cart.checkout"

type CheckoutEventItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// CheckoutEvent is published once per checkout call that decremented stock.
type CheckoutEvent struct {
	CartID      uuid.UUID           `json:"cart_id"`
	UserID      uuid.UUID           `json:"user_id"`
	Outcome     string              `json:"outcome"`
	Items       []CheckoutEventItem `json:"items"`
	FailedCount int                 `json:"failed_count"`
	Total       decimal.Decimal     `json:"total"`
	CompletedAt *time.Time          `json:"completed_at,omitempty"`
	OccurredAt  time.Time           `json:"occurred_at"`
}

type Publisher interface {
	PublishCheckout(ctx context.Context, event CheckoutEvent) error
	Close() error
}

// messageWriter is the part of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
}

// NewPublisher returns a Kafka publisher, or a no-op one when no brokers are
// configured.
func NewPublisher(cfg config.Kafka) Publisher {
	if len(cfg.Brokers) == 0 {
		return NoopPublisher{}
	}

	return NewKafkaPublisher(cfg)
}

func NewKafkaPublisher(cfg config.Kafka) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}

	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) PublishCheckout(ctx context.Context, event CheckoutEvent) error {

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal checkout event: %w", err)
	}

	// keyed by cart so events for one cart stay on one partition
	msg := kafka.Message{
		Key:   []byte(event.CartID.String()),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(CheckoutEventType)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish checkout event: %w", err)
	}

	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

type NoopPublisher struct{}

func (NoopPublisher) PublishCheckout(context.Context, CheckoutEvent) error { return nil }

func (NoopPublisher) Close() error { return nil }
