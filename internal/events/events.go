// Package events publishes order lifecycle events to RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	OrderPlaced        = "order.placed"
	OrderStatusChanged = "order.status_changed"

	DefaultQueue = "order_events"
)

type Event struct {
	Type    string    `json:"type"`
	OrderID string    `json:"order_id"`
	UserID  string    `json:"user_id"`
	Status  string    `json:"status"`
	Total   string    `json:"total,omitempty"`
	At      time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Channel is the subset of *amqp.Channel the publisher needs.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type AMQPPublisher struct {
	mu    sync.Mutex
	ch    Channel
	queue string
}

// NewAMQPPublisher declares a durable queue on ch and publishes to it.
func NewAMQPPublisher(ch Channel, queue string) (*AMQPPublisher, error) {
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}
	return &AMQPPublisher{ch: ch, queue: queue}, nil
}

// Dial connects to the broker. The returned close func shuts down channel and connection.
func Dial(url, queue string) (*AMQPPublisher, func() error, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("amqp channel: %w", err)
	}
	p, err := NewAMQPPublisher(ch, queue)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, nil, err
	}
	closeFn := func() error {
		_ = ch.Close()
		return conn.Close()
	}
	return p, closeFn, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, e Event) error {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	body, err := json.Marshal(e)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// amqp channels are not safe for concurrent publishing
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         e.Type,
		Timestamp:    e.At,
		Body:         body,
	})
}

// Noop logs events instead of sending them. Used when no broker is configured.
type Noop struct{}

func (Noop) Publish(_ context.Context, e Event) error {
	log.Printf("[events] %s order=%s status=%s (broker disabled)", e.Type, e.OrderID, e.Status)
	return nil
}
