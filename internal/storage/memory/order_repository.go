package memory

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/mustore/internal/domain"
)

// orderRepositoryInMemory — in-memory реализация OrderRepository и
// CheckoutRepository. Обе операции выполняются под общим мьютексом
// хранилища, что воспроизводит атомарность транзакций PostgreSQL.
type orderRepositoryInMemory struct {
	s *Store
}

// NewOrderRepository возвращает in-memory репозиторий заказов.
func NewOrderRepository(s *Store) domain.OrderRepository {
	return &orderRepositoryInMemory{s: s}
}

// NewCheckoutRepository возвращает in-memory реализацию оформления заказа.
func NewCheckoutRepository(s *Store) domain.CheckoutRepository {
	return &orderRepositoryInMemory{s: s}
}

// PlaceOrder оформляет заказ атомарно: до первой мутации выполняются все
// проверки, поэтому неуспешная попытка не оставляет следов — ни резерва,
// ни заказа, ни опустошённой корзины.
func (r *orderRepositoryInMemory) PlaceOrder(cartID string, build domain.CheckoutBuildFunc) (domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.carts[cartID]; !ok {
		return domain.Order{}, domain.ErrCartNotFound
	}

	lines := r.s.linesLocked(cartID)
	order, err := build(lines)
	if err != nil {
		return domain.Order{}, err
	}

	for _, existing := range r.s.orders {
		if existing.OrderNumber == order.OrderNumber {
			return domain.Order{}, domain.ErrOrderNumberConflict
		}
	}

	// Проверяем доступный остаток по каждой позиции до применения резерва.
	for _, item := range order.Items {
		p, ok := r.s.products[item.ProductID]
		if !ok || !p.IsAvailable {
			return domain.Order{}, domain.ErrProductUnavailable
		}
		if item.Quantity > p.AvailableQuantity() {
			return domain.Order{}, &domain.InsufficientStockError{
				ProductID:   p.ID,
				ProductName: p.Name,
				Requested:   item.Quantity,
				Available:   p.AvailableQuantity(),
			}
		}
	}

	for _, item := range order.Items {
		p := r.s.products[item.ProductID]
		p.ReservedQuantity += item.Quantity
		p.UpdatedAt = time.Now().UTC()
		r.s.products[item.ProductID] = p
	}

	r.s.orders[order.ID] = cloneOrder(order)
	r.s.enqueueOutboxLocked(order, "order.placed")
	r.s.clearCartLocked(cartID)

	return order, nil
}

func (r *orderRepositoryInMemory) Get(id string) (domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	order, ok := r.s.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return cloneOrder(order), nil
}

func (r *orderRepositoryInMemory) ListByUser(userID string, status domain.OrderStatus, limit, offset int) ([]domain.Order, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]domain.Order, 0)
	for _, order := range r.s.orders {
		if order.UserID != userID {
			continue
		}
		if status != "" && order.Status != status {
			continue
		}
		result = append(result, cloneOrder(order))
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})

	total := len(result)
	if offset > 0 {
		if offset >= len(result) {
			return []domain.Order{}, total, nil
		}
		result = result[offset:]
	}
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, total, nil
}

// Transition применяет смену статуса и корректирует складские счётчики
// одной атомарной операцией.
func (r *orderRepositoryInMemory) Transition(id string, apply domain.TransitionFunc) (domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}

	updated, err := apply(cloneOrder(current))
	if err != nil {
		return domain.Order{}, err
	}

	switch domain.TransitionStockEffect(current.Status, updated.Status) {
	case domain.StockEffectRelease:
		for _, item := range updated.Items {
			p := r.s.products[item.ProductID]
			p.ReservedQuantity -= item.Quantity
			r.s.products[item.ProductID] = p
		}
	case domain.StockEffectConsume:
		for _, item := range updated.Items {
			p := r.s.products[item.ProductID]
			p.StockQuantity -= item.Quantity
			p.ReservedQuantity -= item.Quantity
			r.s.products[item.ProductID] = p
		}
	}

	if updated.Status != current.Status {
		r.s.enqueueOutboxLocked(updated, "order.status_changed")
	}

	r.s.orders[id] = cloneOrder(updated)
	return updated, nil
}

// enqueueOutboxLocked ставит событие заказа в outbox. Вызывается под мьютексом,
// то есть в той же «транзакции», что и породившая событие запись.
func (s *Store) enqueueOutboxLocked(order domain.Order, eventType string) {
	payload, err := json.Marshal(map[string]any{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"status":       string(order.Status),
		"total_minor":  order.TotalMinor,
	})
	if err != nil {
		return
	}

	now := time.Now().UTC()
	msg := domain.OutboxMessage{
		ID:            uuid.NewString(),
		AggregateType: "order",
		AggregateID:   order.ID,
		EventType:     eventType,
		Payload:       payload,
	}
	s.outbox[msg.ID] = &outboxRecord{msg: msg, status: "pending", createdAt: now, updatedAt: now}
}

var (
	_ domain.OrderRepository    = (*orderRepositoryInMemory)(nil)
	_ domain.CheckoutRepository = (*orderRepositoryInMemory)(nil)
)
