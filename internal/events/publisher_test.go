package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/config"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

type recordingWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func sampleEvent() CheckoutEvent {
	completedAt := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	return CheckoutEvent{
		CartID:  uuid.New(),
		UserID:  uuid.New(),
		Outcome: "completed",
		Items: []CheckoutEventItem{
			{ProductID: uuid.New(), Quantity: 2, Price: decimal.RequireFromString("10.50")},
		},
		Total:       decimal.RequireFromString("21.00"),
		CompletedAt: &completedAt,
		OccurredAt:  completedAt,
	}
}

func TestNewPublisher(t *testing.T) {
	t.Run("Success - Noop Without Brokers", func(t *testing.T) {
		publisher := NewPublisher(config.Kafka{Topic: "checkout-events"})

		assert.IsType(t, NoopPublisher{}, publisher)
		assert.NoError(t, publisher.PublishCheckout(t.Context(), sampleEvent()))
		assert.NoError(t, publisher.Close())
	})

	t.Run("Success - Kafka With Brokers", func(t *testing.T) {
		publisher := NewPublisher(config.Kafka{Brokers: []string{"localhost:9092"}, Topic: "checkout-events"})

		assert.IsType(t, &KafkaPublisher{}, publisher)
	})
}

func TestKafkaPublisher_PublishCheckout(t *testing.T) {
	t.Run("Success - Keyed By Cart", func(t *testing.T) {
		// Arrange
		writer := &recordingWriter{}
		publisher := &KafkaPublisher{writer: writer}
		event := sampleEvent()

		// Act
		err := publisher.PublishCheckout(t.Context(), event)

		// Assert
		require.NoError(t, err)
		require.Len(t, writer.messages, 1)

		msg := writer.messages[0]
		assert.Equal(t, event.CartID.String(), string(msg.Key))
		require.Len(t, msg.Headers, 1)
		assert.Equal(t, CheckoutEventType, string(msg.Headers[0].Value))

		var decoded CheckoutEvent
		require.NoError(t, json.Unmarshal(msg.Value, &decoded))
		assert.Equal(t, event.CartID, decoded.CartID)
		assert.True(t, event.Total.Equal(decoded.Total))
		assert.Len(t, decoded.Items, 1)
	})

	t.Run("Failure - Writer Error", func(t *testing.T) {
		// Arrange
		writer := &recordingWriter{err: errors.New("broker unavailable")}
		publisher := &KafkaPublisher{writer: writer}

		// Act
		err := publisher.PublishCheckout(t.Context(), sampleEvent())

		// Assert
		assert.ErrorContains(t, err, "failed to publish checkout event")
		assert.ErrorIs(t, err, writer.err)
	})

	t.Run("Success - Close", func(t *testing.T) {
		writer := &recordingWriter{}
		publisher := &KafkaPublisher{writer: writer}

		require.NoError(t, publisher.Close())
		assert.True(t, writer.closed)
	})
}

func TestKafkaPublisher_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping kafka container test in short mode")
	}

	ctx := context.Background()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate kafka container: %v", err)
		}
	})

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)

	topic := fmt.Sprintf("checkout-events-%d", time.Now().UnixNano())

	conn, err := kafka.Dial("tcp", brokers[0])
	require.NoError(t, err)
	require.NoError(t, conn.CreateTopics(kafka.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1}))
	conn.Close()

	publisher := NewKafkaPublisher(config.Kafka{Brokers: brokers, Topic: topic})
	t.Cleanup(func() { publisher.Close() })

	event := sampleEvent()
	require.NoError(t, publisher.PublishCheckout(ctx, event))

	reader := kafka.NewReader(kafka.ReaderConfig{Brokers: brokers, Topic: topic, Partition: 0})
	t.Cleanup(func() { reader.Close() })

	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := reader.ReadMessage(readCtx)
	require.NoError(t, err)
	assert.Equal(t, event.CartID.String(), string(msg.Key))
}
