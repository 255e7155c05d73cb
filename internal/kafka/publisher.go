package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/TemirB/jewelry-pricing/internal/domain"
)

var priceKey = []byte("gold")

type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

func NewWriter(brokers []string, topic string) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
	}
}

// PricePublisher announces every refreshed gold price. All events share one
// key so they land on one partition in refresh order.
type PricePublisher struct {
	writer Writer
}

func NewPricePublisher(w Writer) *PricePublisher {
	return &PricePublisher{writer: w}
}

func (p *PricePublisher) Publish(ctx context.Context, snap domain.PriceSnapshot) error {
	value, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal price event: %w", err)
	}
	msg := kafkago.Message{Key: priceKey, Value: value}
	if snap.UpdatedAt != nil {
		msg.Time = *snap.UpdatedAt
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write price event: %w", err)
	}
	return nil
}

func (p *PricePublisher) Close() error { return p.writer.Close() }
