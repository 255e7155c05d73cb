package kafka

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/TemirB/jewelry-pricing/internal/config"
)

const topicReadyTimeout = 10 * time.Second

// EnsureTopics creates any of topics missing on the cluster and waits until
// their partitions show up in metadata. Safe to call from several replicas.
func EnsureTopics(ctx context.Context, cfg config.Kafka, log *zap.Logger, topics ...string) error {
	if len(cfg.Brokers) == 0 {
		return fmt.Errorf("no kafka brokers configured")
	}

	dialer := &kafkago.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", cfg.Brokers[0])
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	defer conn.Close()

	var missing []kafkago.TopicConfig
	for _, topic := range topics {
		if strings.TrimSpace(topic) == "" {
			return fmt.Errorf("empty topic")
		}
		if parts, err := conn.ReadPartitions(topic); err == nil && len(parts) > 0 {
			log.Info("kafka topic exists", zap.String("topic", topic), zap.Int("partitions", len(parts)))
			continue
		}
		missing = append(missing, kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     cfg.Partitions,
			ReplicationFactor: cfg.Replication,
		})
	}
	if len(missing) == 0 {
		return nil
	}

	// topics can only be created through the controller
	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("get controller: %w", err)
	}
	ctrlAddr := net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port))
	ctrlConn, err := dialer.DialContext(ctx, "tcp", ctrlAddr)
	if err != nil {
		return fmt.Errorf("dial controller %s: %w", ctrlAddr, err)
	}
	defer ctrlConn.Close()

	for _, tc := range missing {
		log.Info("creating kafka topic",
			zap.String("topic", tc.Topic),
			zap.Int("partitions", tc.NumPartitions),
			zap.Int("replication", tc.ReplicationFactor),
		)
	}
	if err := ctrlConn.CreateTopics(missing...); err != nil && !isTopicExists(err) {
		return fmt.Errorf("create topics: %w", err)
	}

	for _, tc := range missing {
		if err := waitForTopic(ctx, conn, tc.Topic, tc.NumPartitions); err != nil {
			return err
		}
		log.Info("kafka topic is ready", zap.String("topic", tc.Topic))
	}
	return nil
}

func waitForTopic(ctx context.Context, conn *kafkago.Conn, topic string, partitions int) error {
	deadline := time.Now().Add(topicReadyTimeout)
	for {
		parts, err := conn.ReadPartitions(topic)
		if err == nil && len(parts) >= partitions {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("topic %s not visible after creation", topic)
		}
		if !sleepWithContext(ctx, 500*time.Millisecond) {
			return ctx.Err()
		}
	}
}

func isTopicExists(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "exists")
}
