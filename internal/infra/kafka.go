package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// PingKafka dials the first reachable broker so startup fails fast on a
// misconfigured KAFKA_BROKERS.
func PingKafka(ctx context.Context, brokers []string) error {
	if len(brokers) == 0 {
		return fmt.Errorf("kafka brokers are required")
	}
	dialer := &kafka.Dialer{Timeout: 5 * time.Second}
	var lastErr error
	for _, broker := range brokers {
		conn, err := dialer.DialContext(ctx, "tcp", broker)
		if err != nil {
			lastErr = err
			continue
		}
		return conn.Close()
	}
	return fmt.Errorf("dial kafka: %w", lastErr)
}
