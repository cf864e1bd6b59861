// Package notify hands composed customer messages to the external delivery
// service. Publishing is best effort; callers log failures and carry on.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Kind identifies a notification and doubles as its routing key.
type Kind string

const (
	KindInvoiceReady   Kind = "invoice.ready"
	KindOrderConfirmed Kind = "order.confirmed"
)

// Notification is the payload consumed by the delivery service.
type Notification struct {
	Kind          Kind      `json:"kind"`
	OrderID       string    `json:"order_id"`
	InvoiceID     string    `json:"invoice_id,omitempty"`
	InvoiceNumber string    `json:"invoice_number,omitempty"`
	CustomerName  string    `json:"customer_name"`
	CustomerPhone string    `json:"customer_phone,omitempty"`
	Link          string    `json:"link,omitempty"`
	Text          string    `json:"text"`
	CreatedAt     time.Time `json:"created_at"`
}

// Publisher sends notifications.
type Publisher interface {
	Publish(ctx context.Context, n Notification) error
}

// RabbitPublisher publishes persistent JSON messages to a durable topic
// exchange, routed by notification kind.
type RabbitPublisher struct {
	ch       *amqp.Channel
	exchange string
}

// NewRabbitPublisher declares exchange on ch.
func NewRabbitPublisher(ch *amqp.Channel, exchange string) (*RabbitPublisher, error) {
	if err := ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &RabbitPublisher{ch: ch, exchange: exchange}, nil
}

// Publish sends n with routing key n.Kind.
func (p *RabbitPublisher) Publish(ctx context.Context, n Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    n.CreatedAt,
		Body:         body,
	}
	if err := p.ch.PublishWithContext(ctx, p.exchange, string(n.Kind), false, false, pub); err != nil {
		return fmt.Errorf("publish %s: %w", n.Kind, err)
	}
	return nil
}

// Dial connects to url and returns a publisher plus a function closing the
// channel and connection.
func Dial(url, exchange string) (*RabbitPublisher, func() error, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}
	p, err := NewRabbitPublisher(ch, exchange)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, err
	}
	closeFn := func() error {
		_ = ch.Close()
		return conn.Close()
	}
	return p, closeFn, nil
}

// LogPublisher writes notifications to a logger. Used when no broker is
// configured.
type LogPublisher struct {
	log *slog.Logger
}

// NewLogPublisher returns a publisher logging to l.
func NewLogPublisher(l *slog.Logger) *LogPublisher {
	return &LogPublisher{log: l}
}

func (p *LogPublisher) Publish(ctx context.Context, n Notification) error {
	p.log.InfoContext(ctx, "notification",
		"kind", n.Kind, "order_id", n.OrderID, "invoice_number", n.InvoiceNumber, "link", n.Link)
	return nil
}

var (
	_ Publisher = (*RabbitPublisher)(nil)
	_ Publisher = (*LogPublisher)(nil)
)
