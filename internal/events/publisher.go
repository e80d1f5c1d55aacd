package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"shop-api/internal/config"
)

const (
	ProductCreated = "product.created"
	ProductUpdated = "product.updated"
	ProductDeleted = "product.deleted"
)

type ProductEvent struct {
	Event     string    `json:"event"`
	ProductID string    `json:"product_id"`
	ShopID    string    `json:"shop_id,omitempty"`
	At        time.Time `json:"at"`
}

// Publisher emits product lifecycle events. Publishing is best-effort from
// the caller's point of view; request handling never fails on a broker error.
type Publisher interface {
	Publish(ctx context.Context, event ProductEvent) error
	Close() error
}

func NewPublisher(conf *config.Config) Publisher {
	if !conf.Kafka.Enabled {
		return &noopPublisher{}
	}
	return &kafkaPublisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(conf.Kafka.Brokers...),
			Topic:    conf.Kafka.Topic,
			Balancer: &kafka.Hash{},
		},
	}
}

type kafkaPublisher struct {
	writer *kafka.Writer
}

func (p *kafkaPublisher) Publish(ctx context.Context, event ProductEvent) error {
	if event.At.IsZero() {
		event.At = time.Now()
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.ProductID),
		Value: value,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, ProductEvent) error { return nil }
func (noopPublisher) Close() error                                { return nil }
