package notify

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Skotchmaster/bookcart/internal/cart"
)

const DefaultExchange = "domain_events"

// Rabbit publishes notifications on a topic exchange with routing key
// "cart.<kind>".
type Rabbit struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	source   string
}

func NewRabbit(url, exchange, source string) (*Rabbit, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbit: dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbit: channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("rabbit: declare exchange: %w", err)
	}
	return &Rabbit{conn: conn, ch: ch, exchange: exchange, source: source}, nil
}

func RoutingKey(k cart.Kind) string {
	return "cart." + string(k)
}

func (r *Rabbit) Publish(ctx context.Context, n cart.Notification) error {
	body, err := encodeEvent(n, r.source, time.Now())
	if err != nil {
		return fmt.Errorf("rabbit: json.Marshal failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return r.ch.PublishWithContext(ctx, r.exchange, RoutingKey(n.Kind), false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Timestamp:    time.Now(),
		Body:         body,
	})
}

func (r *Rabbit) Close() error {
	if r.ch != nil {
		_ = r.ch.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
