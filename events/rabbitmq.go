package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// amqpChannel is the part of *amqp.Channel the publisher needs.
type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMQPublisher шлёт события в topic exchange с ключом team.<teamId>.<event>
// (leaderboard.<event> для событий без команды).
type RabbitMQPublisher struct {
	conn     *amqp.Connection
	channel  amqpChannel
	exchange string
	logger   zerolog.Logger
	mu       sync.Mutex
}

func NewRabbitMQPublisher(url, exchange string, logger zerolog.Logger) (*RabbitMQPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	p, err := newRabbitMQPublisher(channel, exchange, logger)
	if err != nil {
		conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

func newRabbitMQPublisher(channel amqpChannel, exchange string, logger zerolog.Logger) (*RabbitMQPublisher, error) {
	if err := channel.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}
	return &RabbitMQPublisher{
		channel:  channel,
		exchange: exchange,
		logger:   logger.With().Str("component", "rabbitmq_publisher").Logger(),
	}, nil
}

// RoutingKey строит ключ маршрутизации, например team.TEAM001.submission_uploaded.
func RoutingKey(event Event) string {
	name := strings.ToLower(event.Type)
	if event.TeamID == "" {
		return "leaderboard." + name
	}
	// точки в id сломали бы topic-шаблоны
	return "team." + strings.ReplaceAll(event.TeamID, ".", "_") + "." + name
}

func (p *RabbitMQPublisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", event.Type, err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// amqp.Channel нельзя использовать конкурентно для publish
	p.mu.Lock()
	defer p.mu.Unlock()

	key := RoutingKey(event)
	err = p.channel.PublishWithContext(
		publishCtx,
		p.exchange, // exchange
		key,        // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.Timestamp,
			Type:         event.Type,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s to %s: %w", key, p.exchange, err)
	}
	p.logger.Debug().Str("routing_key", key).Msg("Event published")
	return nil
}

func (p *RabbitMQPublisher) Close() error {
	var firstErr error
	if err := p.channel.Close(); err != nil {
		firstErr = err
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
