package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Skotchmaster/bookcart/internal/cart"
)

const DefaultTopic = "cart_events"

// Kafka publishes notifications as JSON events keyed by item id.
type Kafka struct {
	writer *kafka.Writer
	source string
}

type event struct {
	Type        cart.Kind `json:"type"`
	ItemID      string    `json:"itemID,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Source      string    `json:"source,omitempty"`
	At          time.Time `json:"at"`
}

func NewKafka(brokers []string, topic, source string) (*Kafka, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka: no brokers configured")
	}
	if topic == "" {
		topic = DefaultTopic
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		WriteTimeout:           5 * time.Second,
	}
	return &Kafka{writer: w, source: source}, nil
}

func encodeEvent(n cart.Notification, source string, at time.Time) ([]byte, error) {
	return json.Marshal(event{
		Type:        n.Kind,
		ItemID:      n.ItemID,
		Title:       n.Title,
		Description: n.Description,
		Source:      source,
		At:          at.UTC(),
	})
}

func (k *Kafka) Publish(ctx context.Context, n cart.Notification) error {
	data, err := encodeEvent(n, k.source, time.Now())
	if err != nil {
		return fmt.Errorf("kafka: json.Marshal failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(n.ItemID),
		Value: data,
	}); err != nil {
		return fmt.Errorf("kafka: write failed: %w", err)
	}
	return nil
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}
