package cloudevent

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher publishes Envelopes onto a durable topic exchange. One Publisher
// is owned and constructor-injected per service lifecycle — it is never a
// package-level singleton.
type Publisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string

	mu       sync.Mutex
	declared bool
}

// NewPublisher dials url and prepares a Publisher for exchange. The exchange
// is declared lazily on first Publish call.
func NewPublisher(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	return &Publisher{conn: conn, ch: ch, exchange: exchange}, nil
}

func (p *Publisher) ensureExchange() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.declared {
		return nil
	}
	if err := p.ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", p.exchange, err)
	}
	p.declared = true
	return nil
}

// Publish serialises env as CloudEvents JSON and publishes it with persistent
// delivery mode on routingKey.
func (p *Publisher) Publish(ctx context.Context, routingKey string, env Envelope) error {
	if err := p.ensureExchange(); err != nil {
		return err
	}
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	return p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/cloudevents+json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}

func (p *Publisher) Close() error {
	if err := p.ch.Close(); err != nil {
		return err
	}
	return p.conn.Close()
}

// DeclareQueueBinding declares queue (durable) and binds it to exchange with
// routingKey. Used at consumer startup for the fixed set of bindings.
func (p *Publisher) DeclareQueueBinding(queue, routingKey string) error {
	if err := p.ensureExchange(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := p.ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", queue, err)
	}
	if err := p.ch.QueueBind(queue, routingKey, p.exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s to %s: %w", queue, routingKey, err)
	}
	return nil
}
