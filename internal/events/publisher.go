package events

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"time"

	"github.com/KatlegoSeiphemo/odysseyfinds/internal/domain"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

type EventType string

const EventTypeOrderCreated EventType = "order.created"

// OrderEvent is the message value written to the orders topic.
type OrderEvent struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	OrderID   string          `json:"order_id"`
	SessionID string          `json:"session_id"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// Publisher announces order lifecycle events.
type Publisher interface {
	PublishOrderCreated(ctx context.Context, order *domain.Order) error
	Close() error
}

// messageWriter is the part of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publishes order events keyed by order id.
type KafkaPublisher struct {
	writer messageWriter
	logger *log.Logger
	now    func() time.Time
}

func NewKafkaPublisher(brokers []string, topic string, logger *log.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
	}
	return newKafkaPublisher(writer, logger)
}

func newKafkaPublisher(w messageWriter, logger *log.Logger) *KafkaPublisher {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &KafkaPublisher{writer: w, logger: logger, now: time.Now}
}

func (p *KafkaPublisher) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	data, err := json.Marshal(order)
	if err != nil {
		return err
	}

	event := OrderEvent{
		ID:        uuid.NewString(),
		Type:      EventTypeOrderCreated,
		OrderID:   order.ID,
		SessionID: order.SessionID,
		Data:      data,
		Timestamp: p.now().UTC(),
	}
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.ID)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Printf("events: publish type=%s order_id=%s error=%v", event.Type, event.OrderID, err)
		return err
	}
	p.logger.Printf("events: published type=%s order_id=%s event_id=%s", event.Type, event.OrderID, event.ID)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Nop discards events; used when no brokers are configured.
type Nop struct{}

func (Nop) PublishOrderCreated(context.Context, *domain.Order) error { return nil }
func (Nop) Close() error { return nil }
