package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/mkravets/brewcart/internal/orders"
)

// messageWriter is what the publisher needs from a kafka writer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher emits an event to the order-events topic whenever a checkout
// completes. Consumers (receipts, analytics) tail the topic; the checkout
// flow itself never depends on a publish succeeding.
type Publisher struct {
	writer messageWriter
}

func NewPublisher(brokers ...string) *Publisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  "order-events",
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w}
}

func (p *Publisher) OrderCompleted(ctx context.Context, order *orders.Order) error {
	payload := map[string]interface{}{
		"order_id":       order.ID,
		"items":          order.Items,
		"subtotal":       order.Subtotal,
		"shipping_fee":   order.ShippingFee,
		"tax":            order.Tax,
		"total":          order.Total,
		"payment_method": order.PaymentMethod,
		"completed_at":   order.CreatedAt,
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(order.ID.String()),
		Value: payloadJSON,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish order event: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
