package kafka

import (
	"encoding/json"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/mustore/internal/domain"
)

func TestOutboxPublisher_PublishOrderEvent(t *testing.T) {
	t.Parallel()

	mockProducer := mocks.NewSyncProducer(t, nil)
	mockProducer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(raw []byte) error {
		var event OrderEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			return err
		}
		if event.EventType != EventTypeOrderPlaced {
			t.Errorf("event_type = %q, want %q", event.EventType, EventTypeOrderPlaced)
		}
		if event.OrderID != "order-123" {
			t.Errorf("order_id = %q, want order-123", event.OrderID)
		}
		if event.OrderNumber != "MS-20260830-0001" {
			t.Errorf("order_number = %q, want MS-20260830-0001", event.OrderNumber)
		}
		if event.Status != "pending" {
			t.Errorf("status = %q, want pending", event.Status)
		}
		if event.Metadata["outbox_id"] != "outbox-1" {
			t.Errorf("metadata outbox_id = %v, want outbox-1", event.Metadata["outbox_id"])
		}
		if event.Timestamp.IsZero() {
			t.Error("timestamp is zero")
		}
		return nil
	})

	producer := &Producer{
		producer: mockProducer,
		logger:   log.WithField("component", "kafka-outbox-publisher-test"),
	}
	publisher := NewOutboxPublisher(producer, TopicOrderEvents)

	err := publisher.Publish(domain.OutboxMessage{
		ID:            "outbox-1",
		AggregateType: "order",
		AggregateID:   "order-123",
		EventType:     string(EventTypeOrderPlaced),
		Payload:       []byte(`{"order_id":"order-123","order_number":"MS-20260830-0001","status":"pending","total_minor":125000}`),
	})
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestOutboxPublisher_PublishDLQEnvelope(t *testing.T) {
	t.Parallel()

	mockProducer := mocks.NewSyncProducer(t, nil)
	mockProducer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(raw []byte) error {
		var envelope struct {
			ID        string          `json:"id"`
			EventType string          `json:"event_type"`
			Payload   json.RawMessage `json:"payload"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return err
		}
		if envelope.ID != "outbox-2" {
			t.Errorf("envelope id = %q, want outbox-2", envelope.ID)
		}
		if len(envelope.Payload) == 0 {
			t.Error("envelope payload is empty")
		}
		return nil
	})

	producer := &Producer{
		producer: mockProducer,
		logger:   log.WithField("component", "kafka-outbox-publisher-test"),
	}
	publisher := NewOutboxPublisher(producer, TopicDeadLetterQueue)

	// Конверт воркера без order_id в payload уходит как есть.
	err := publisher.Publish(domain.OutboxMessage{
		ID:            "outbox-2",
		AggregateType: "order",
		AggregateID:   "order-234",
		EventType:     string(EventTypeOrderPlaced),
		Payload:       []byte(`{"outbox_id":"outbox-2","publish_error":"kafka: broker down"}`),
	})
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestOutboxPublisher_PublishProducerError(t *testing.T) {
	t.Parallel()

	mockProducer := mocks.NewSyncProducer(t, nil)
	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	producer := &Producer{
		producer: mockProducer,
		logger:   log.WithField("component", "kafka-outbox-publisher-test"),
	}
	publisher := NewOutboxPublisher(producer, TopicOrderEvents)

	err := publisher.Publish(domain.OutboxMessage{
		ID:            "outbox-3",
		AggregateType: "order",
		AggregateID:   "order-345",
		EventType:     string(EventTypeOrderStatusChanged),
		Payload:       []byte(`{"order_id":"order-345","order_number":"MS-20260830-0002","status":"cancelled","total_minor":30000}`),
	})
	if err == nil {
		t.Fatal("expected publish error, got nil")
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestOutboxPublisher_PublishNilProducer(t *testing.T) {
	t.Parallel()

	publisher := NewOutboxPublisher(nil, TopicOrderEvents)
	if err := publisher.Publish(domain.OutboxMessage{ID: "outbox-4"}); err == nil {
		t.Fatal("expected error for nil producer")
	}
}
