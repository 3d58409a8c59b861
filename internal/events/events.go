package events

import (
	"context"
	"fmt"
	"time"

	"restaurant-orders/config"
	"restaurant-orders/internal/models"

	"github.com/shopspring/decimal"
)

type Type string

const (
	OrderCreated         Type = "order.created"
	OrderItemsAdded      Type = "order.items_added"
	OrderPreparing       Type = "order.preparing"
	OrderCancelled       Type = "order.cancelled"
	OrderReopened        Type = "order.reopened"
	OrderPaymentRecorded Type = "order.payment_recorded"
	OrderClosed          Type = "order.closed"
)

// OrderEvent is the payload published after a lifecycle change commits.
type OrderEvent struct {
	Type        Type               `json:"type"`
	OrderID     uint               `json:"order_id"`
	OrderNumber string             `json:"order_number"`
	TableID     uint               `json:"table_id"`
	Status      models.OrderStatus `json:"status"`
	TotalAmount decimal.Decimal    `json:"total_amount"`
	Amount      *decimal.Decimal   `json:"amount,omitempty"`
	OccurredAt  time.Time          `json:"occurred_at"`
}

// Key routes every event of one order to the same partition.
func (e OrderEvent) Key() string {
	return e.OrderNumber
}

// Publisher defines an interface for publishing order events to a message
// broker.
type Publisher interface {
	Publish(ctx context.Context, event OrderEvent) error
	Close() error
}

// Noop discards events. It is used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, OrderEvent) error { return nil }
func (Noop) Close() error                              { return nil }

// New returns the publisher selected by cfg.Broker.
func New(cfg config.EventsConfig) (Publisher, error) {
	switch cfg.Broker {
	case "kafka":
		return NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic), nil
	case "rabbitmq":
		return NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange)
	case "", "none":
		return Noop{}, nil
	}
	return nil, fmt.Errorf("unsupported events broker %q", cfg.Broker)
}
