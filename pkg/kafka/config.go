package kafka

import "time"

// Config holds Kafka producer parameters.
type Config struct {
	Brokers []string

	// ClientID identifies this service to the brokers.
	ClientID string

	// BatchTimeout bounds how long a partial batch waits before flushing.
	// Zero uses 10ms.
	BatchTimeout time.Duration
}

func (c Config) batchTimeout() time.Duration {
	if c.BatchTimeout <= 0 {
		return 10 * time.Millisecond
	}
	return c.BatchTimeout
}
