//go:build integration

package kafka_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/underwriting/internal/domain/event"
	"github.com/bibbank/underwriting/internal/infrastructure/kafka"
	pkgkafka "github.com/bibbank/underwriting/pkg/kafka"
	"github.com/bibbank/underwriting/pkg/testutil"
)

func TestKafkaEventPublisher_RoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	kc := testutil.NewKafkaContainer(ctx, t)
	t.Cleanup(func() { kc.Cleanup(t) })

	const topic = "underwriting-events"
	producer := pkgkafka.NewProducer(pkgkafka.Config{Brokers: kc.Brokers, ClientID: "underwriting-test"})
	t.Cleanup(func() { _ = producer.Close() })

	pub := kafka.NewKafkaEventPublisher(producer, topic, slog.New(slog.NewTextHandler(io.Discard, nil)))

	evt := event.NewAllocationCompleted(testutil.TestAllocationID.String(),
		decimal.NewFromInt(1000000), decimal.NewFromInt(1000000), 2, 2)

	// The first write may race topic auto-creation.
	require.Eventually(t, func() bool {
		return pub.Publish(ctx, evt) == nil
	}, 30*time.Second, time.Second)

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   kc.Brokers,
		Topic:     topic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  1 << 20,
	})
	t.Cleanup(func() { _ = reader.Close() })

	msg, err := reader.ReadMessage(ctx)
	require.NoError(t, err)

	assert.Equal(t, testutil.TestAllocationID.String(), string(msg.Key))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, event.TypeAllocationCompleted, decoded["event_type"])
}
