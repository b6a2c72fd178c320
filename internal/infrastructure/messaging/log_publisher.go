package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/bibbank/underwriting/internal/domain/event"
)

// LogEventPublisher implements port.EventPublisher by logging events. It is
// used when Kafka is disabled, typically in local development.
type LogEventPublisher struct {
	topic  string
	logger *slog.Logger
}

// NewLogEventPublisher creates a publisher that logs under the given topic name.
func NewLogEventPublisher(topic string, logger *slog.Logger) *LogEventPublisher {
	return &LogEventPublisher{
		topic:  topic,
		logger: logger,
	}
}

// Publish serialises each event and logs it at info level.
func (p *LogEventPublisher) Publish(ctx context.Context, events ...event.DomainEvent) error {
	for _, evt := range events {
		payload, err := json.Marshal(evt)
		if err != nil {
			return fmt.Errorf("marshal event %s: %w", evt.EventType(), err)
		}

		p.logger.InfoContext(ctx, "publishing domain event",
			"event_type", evt.EventType(),
			"event_id", evt.EventID(),
			"aggregate_id", evt.AggregateID(),
			"topic", p.topic,
			"payload", string(payload),
		)
	}
	return nil
}
