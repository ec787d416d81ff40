// Package queue publishes import notifications to RabbitMQ for automations
// that consume events instead of exposing a webhook.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/phbpx/outreach"
	"github.com/phbpx/outreach/leadimport"
)

// Config is the required properties to publish import events.
type Config struct {
	URL        string
	Exchange   string
	RoutingKey string
}

// RabbitMQ owns the connection and channel used by a Publisher.
type RabbitMQ struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

// Dial connects and declares the durable direct exchange events go to.
func Dial(cfg Config) (*RabbitMQ, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connecting to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("opening channel: %w", err)
	}

	if err := ch.ExchangeDeclare(cfg.Exchange, "direct", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declaring exchange %s: %w", cfg.Exchange, err)
	}

	return &RabbitMQ{Conn: conn, Ch: ch}, nil
}

func (r *RabbitMQ) Close() error {
	if err := r.Ch.Close(); err != nil {
		r.Conn.Close()
		return err
	}
	return r.Conn.Close()
}

// Channel is the part of *amqp.Channel the publisher needs.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// ImportEvent is the message body of an import notification.
type ImportEvent struct {
	UserID   string            `json:"user_id"`
	Campaign outreach.Campaign `json:"campaign"`
	FileName string            `json:"file_name"`
	File     []byte            `json:"file"`
	SentAt   time.Time         `json:"sent_at"`
}

// Publisher implements leadimport.Notifier over an AMQP channel.
type Publisher struct {
	ch         Channel
	exchange   string
	routingKey string
}

func NewPublisher(ch Channel, exchange, routingKey string) *Publisher {
	return &Publisher{
		ch:         ch,
		exchange:   exchange,
		routingKey: routingKey,
	}
}

func (p *Publisher) Notify(ctx context.Context, n leadimport.Notification) error {
	body, err := json.Marshal(ImportEvent{
		UserID:   n.OwnerID,
		Campaign: n.Campaign,
		FileName: n.FileName,
		File:     n.Content,
		SentAt:   time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encoding import event: %w", err)
	}

	err = p.ch.PublishWithContext(ctx,
		p.exchange,
		p.routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publishing import event: %w", err)
	}

	return nil
}
