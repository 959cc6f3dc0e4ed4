package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/carbon-footprint-tracker/internal/queue"
)

// Publisher emits domain events. Errors are returned for callers that care,
// but a failed publish must never fail the request that caused it.
type Publisher interface {
	PublishUserRegistered(ctx context.Context, ev queue.UserRegisteredEvent) error
	PublishActivityLogged(ctx context.Context, ev queue.ActivityLoggedEvent) error
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishUserRegistered(context.Context, queue.UserRegisteredEvent) error {
	return nil
}

func (NopPublisher) PublishActivityLogged(context.Context, queue.ActivityLoggedEvent) error {
	return nil
}

// AMQPPublisher publishes events to RabbitMQ over one lazily dialled
// connection. A failed publish drops the connection so the next call
// redials.
type AMQPPublisher struct {
	url string
	log *slog.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewAMQPPublisher returns a publisher for the broker at url. No connection
// is made until the first event.
func NewAMQPPublisher(url string, log *slog.Logger) *AMQPPublisher {
	if log == nil {
		log = slog.Default()
	}
	return &AMQPPublisher{url: url, log: log.With("component", "publisher")}
}

func (p *AMQPPublisher) PublishUserRegistered(ctx context.Context, ev queue.UserRegisteredEvent) error {
	return p.publish(ctx, queue.UserRegisteredQueue, ev)
}

func (p *AMQPPublisher) PublishActivityLogged(ctx context.Context, ev queue.ActivityLoggedEvent) error {
	return p.publish(ctx, queue.ActivityLoggedQueue, ev)
}

func (p *AMQPPublisher) publish(ctx context.Context, queueName string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		p.log.ErrorContext(ctx, "marshal event failed", "queue", queueName, "error", err)
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		p.log.WarnContext(ctx, "broker unavailable", "queue", queueName, "error", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := ch.PublishWithContext(pubCtx,
		"",        // default exchange
		queueName, // routing key = queue name
		false,     // mandatory
		false,     // immediate
		pub,
	); err != nil {
		p.log.WarnContext(ctx, "publish failed", "queue", queueName, "error", err)
		p.reset()
		return err
	}
	return nil
}

// channel returns an open channel, dialling and declaring queues when
// needed. Callers hold p.mu.
func (p *AMQPPublisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() && p.conn != nil && !p.conn.IsClosed() {
		return p.ch, nil
	}
	p.reset()

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := queue.DeclareQueues(ch); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	p.conn, p.ch = conn, ch
	return ch, nil
}

func (p *AMQPPublisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.ch, p.conn = nil, nil
}

// Close releases the broker connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}
