package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/mustore/internal/domain"
)

// OutboxTopicPublisher публикует outbox-сообщения в заданный Kafka topic.
// Сообщения заказов разворачиваются в OrderEvent, остальные (например,
// DLQ-конверты) уходят как есть.
type OutboxTopicPublisher struct {
	producer *Producer
	topic    string
}

// NewOutboxPublisher создаёт Kafka-паблишер для transactional outbox.
func NewOutboxPublisher(producer *Producer, topic string) domain.OutboxPublisher {
	if topic == "" {
		topic = TopicOrderEvents
	}
	return &OutboxTopicPublisher{
		producer: producer,
		topic:    topic,
	}
}

// orderEventPayload повторяет форму payload, который кладут в outbox
// репозитории заказов при создании и смене статуса.
type orderEventPayload struct {
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
	Status      string `json:"status"`
	TotalMinor  int64  `json:"total_minor"`
}

func (p *OutboxTopicPublisher) Publish(event domain.OutboxMessage) error {
	if p == nil || p.producer == nil {
		return fmt.Errorf("kafka outbox publisher is not initialized")
	}

	key := event.AggregateID
	if key == "" {
		key = event.ID
	}

	// DLQ-конверты воркера сохраняют aggregate_type заказа, но их payload
	// не событие заказа, поэтому решает содержимое, а не тип агрегата.
	if event.AggregateType == "order" {
		var payload orderEventPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return fmt.Errorf("decode order outbox payload %s: %w", event.ID, err)
		}
		if payload.OrderID != "" {
			orderEvent := NewOrderEvent(EventType(event.EventType), payload.OrderID, payload.OrderNumber, payload.Status, map[string]interface{}{
				"outbox_id":   event.ID,
				"total_minor": payload.TotalMinor,
			})
			return p.producer.PublishEvent(p.topic, key, orderEvent)
		}
	}

	envelope := struct {
		ID            string          `json:"id"`
		AggregateType string          `json:"aggregate_type"`
		AggregateID   string          `json:"aggregate_id"`
		EventType     string          `json:"event_type"`
		Payload       json.RawMessage `json:"payload"`
		PublishedAt   time.Time       `json:"published_at"`
	}{
		ID:            event.ID,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		EventType:     event.EventType,
		Payload:       json.RawMessage(event.Payload),
		PublishedAt:   time.Now().UTC(),
	}
	return p.producer.PublishEvent(p.topic, key, envelope)
}

var _ domain.OutboxPublisher = (*OutboxTopicPublisher)(nil)
