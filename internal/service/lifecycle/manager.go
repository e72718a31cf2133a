package lifecycle

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/mustore/internal/domain"
	"github.com/vladislavdragonenkov/mustore/internal/metrics"
)

// ChangeRequest описывает запрошенную смену состояния заказа.
// Nil-поле означает «не менять».
type ChangeRequest struct {
	Status        *domain.OrderStatus
	PaymentStatus *domain.PaymentStatus
}

// Manager управляет жизненным циклом заказа: проверяет допустимость
// переходов и делегирует атомарную запись репозиторию, который заодно
// возвращает или списывает складской резерв.
type Manager struct {
	orders  domain.OrderRepository
	logger  *log.Entry
	metrics *metrics.StoreMetrics
}

// Option настраивает Manager.
type Option func(*Manager)

// WithLogger задаёт logger менеджера.
func WithLogger(logger *log.Entry) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithMetrics задаёт метрики магазина.
func WithMetrics(metrics *metrics.StoreMetrics) Option {
	return func(m *Manager) {
		m.metrics = metrics
	}
}

// NewManager создаёт менеджер жизненного цикла заказов.
func NewManager(orders domain.OrderRepository, options ...Option) *Manager {
	m := &Manager{
		orders: orders,
		logger: log.WithField("component", "lifecycle-manager"),
	}
	for _, option := range options {
		option(m)
	}
	return m
}

// Get возвращает заказ по идентификатору.
func (m *Manager) Get(orderID string) (domain.Order, error) {
	return m.orders.Get(orderID)
}

// ListByUser возвращает страницу заказов пользователя.
func (m *Manager) ListByUser(userID string, status domain.OrderStatus, limit, offset int) ([]domain.Order, int, error) {
	return m.orders.ListByUser(userID, status, limit, offset)
}

// SetStatus применяет смену статуса заказа и/или статуса оплаты.
// Недопустимый переход возвращает ErrInvalidTransition; переход в текущий
// статус — идемпотентный no-op.
func (m *Manager) SetStatus(orderID string, change ChangeRequest) (domain.Order, error) {
	var from, to domain.OrderStatus

	order, err := m.orders.Transition(orderID, func(order domain.Order) (domain.Order, error) {
		from = order.Status
		to = order.Status

		if change.Status != nil {
			if !order.Status.CanTransitionTo(*change.Status) {
				return domain.Order{}, domain.ErrInvalidTransition
			}
			order.Status = *change.Status
			to = *change.Status
		}
		if change.PaymentStatus != nil {
			order.PaymentStatus = *change.PaymentStatus
		}
		return order, nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	if from != to {
		if m.metrics != nil {
			m.metrics.RecordStatusTransition(string(from), string(to))
		}
		m.logger.WithFields(log.Fields{
			"order_id": orderID,
			"from":     from,
			"to":       to,
		}).Info("order status changed")
	}

	return order, nil
}

// Cancel переводит заказ в cancelled с возвратом резерва.
func (m *Manager) Cancel(orderID string) (domain.Order, error) {
	cancelled := domain.OrderStatusCancelled
	return m.SetStatus(orderID, ChangeRequest{Status: &cancelled})
}
