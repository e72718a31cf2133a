package kafka

import "time"

// EventType определяет тип события
type EventType string

const (
	// Order события
	EventTypeOrderPlaced        EventType = "order.placed"
	EventTypeOrderStatusChanged EventType = "order.status_changed"
)

// Topics для Kafka
const (
	TopicOrderEvents     = "mustore.order.events"
	TopicDeadLetterQueue = "mustore.order.dlq"
)

// OrderEvent представляет событие заказа
type OrderEvent struct {
	EventType   EventType              `json:"event_type"`
	OrderID     string                 `json:"order_id"`
	OrderNumber string                 `json:"order_number"`
	Status      string                 `json:"status"`
	Timestamp   time.Time              `json:"timestamp"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// NewOrderEvent создает новое событие заказа
func NewOrderEvent(eventType EventType, orderID, orderNumber, status string, metadata map[string]interface{}) *OrderEvent {
	return &OrderEvent{
		EventType:   eventType,
		OrderID:     orderID,
		OrderNumber: orderNumber,
		Status:      status,
		Timestamp:   time.Now(),
		Metadata:    metadata,
	}
}
