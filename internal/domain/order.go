package domain

import (
	"fmt"
	"time"
)

// OrderStatus описывает жизненный цикл заказа магазина.
type OrderStatus string

const (
	// OrderStatusPending — заказ создан, товары зарезервированы, обработка не начата.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusProcessing — заказ взят в работу.
	OrderStatusProcessing OrderStatus = "processing"
	// OrderStatusShipped — заказ передан в доставку.
	OrderStatusShipped OrderStatus = "shipped"
	// OrderStatusDelivered — заказ вручён покупателю; резерв списан со склада. Терминальный.
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCancelled — заказ отменён; резерв возвращён в доступный остаток. Терминальный.
	OrderStatusCancelled OrderStatus = "cancelled"
)

// PaymentStatus описывает состояние оплаты заказа.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// DeliveryMethod — способ получения заказа.
type DeliveryMethod string

const (
	DeliveryMethodPickup   DeliveryMethod = "pickup"
	DeliveryMethodDelivery DeliveryMethod = "delivery"
)

// PaymentMethod — способ оплаты.
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodOnline PaymentMethod = "online"
)

// orderStatusFlow перечисляет допустимые переходы между статусами.
// delivered и cancelled терминальны: из них переходов нет.
var orderStatusFlow = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered, OrderStatusCancelled},
}

// IsTerminal сообщает, является ли статус конечным.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo проверяет допустимость перехода в статус next.
// Переход в текущий статус считается допустимым no-op (идемпотентность).
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range orderStatusFlow[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// StockEffect — влияние смены статуса на складские счётчики.
type StockEffect int

const (
	// StockEffectNone — чисто метаданные, счётчики не меняются.
	StockEffectNone StockEffect = iota
	// StockEffectRelease — снять резерв (reserved_quantity -= qty) по каждой позиции.
	StockEffectRelease
	// StockEffectConsume — списать резерв и физический остаток (stock и reserved -= qty).
	StockEffectConsume
)

// TransitionStockEffect возвращает требуемую корректировку счётчиков при
// переходе from → to. Переход в тот же статус эффекта не имеет, поэтому
// повторная отмена не приводит к двойному возврату резерва.
func TransitionStockEffect(from, to OrderStatus) StockEffect {
	if from == to {
		return StockEffectNone
	}
	switch to {
	case OrderStatusCancelled:
		return StockEffectRelease
	case OrderStatusDelivered:
		return StockEffectConsume
	default:
		return StockEffectNone
	}
}

// ParseOrderStatus валидирует строковое представление статуса заказа.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	switch s := OrderStatus(raw); s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return s, nil
	default:
		return "", fmt.Errorf("unknown order status: %q", raw)
	}
}

// ParsePaymentStatus валидирует строковое представление статуса оплаты.
func ParsePaymentStatus(raw string) (PaymentStatus, error) {
	switch s := PaymentStatus(raw); s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed:
		return s, nil
	default:
		return "", fmt.Errorf("unknown payment status: %q", raw)
	}
}

// OrderItem — позиция заказа: замороженный снимок товара на момент покупки.
// Последующие правки каталога не должны менять исторические заказы.
type OrderItem struct {
	ID            string
	ProductID     string
	ProductName   string
	ProductSKU    string
	ProductBrand  string
	Quantity      int32
	PriceMinor    int64
	SubtotalMinor int64
	CreatedAt     time.Time
}

// Order агрегирует заказ, его позиции и снимок контактных данных покупателя.
type Order struct {
	ID          string
	OrderNumber string
	// UserID пуст для гостевых заказов.
	UserID string
	Status OrderStatus
	PaymentStatus PaymentStatus
	// Контактные данные копируются при оформлении и не зависят от профиля.
	CustomerName  string
	CustomerEmail string
	CustomerPhone string

	DeliveryMethod  DeliveryMethod
	DeliveryAddress string
	PaymentMethod   PaymentMethod
	Notes           string

	SubtotalMinor    int64
	DeliveryFeeMinor int64
	TotalMinor       int64

	Items     []OrderItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.CustomerName == "" || o.CustomerEmail == "" || o.CustomerPhone == "" {
		errs = append(errs, ErrContactInfoRequired)
	}
	if o.DeliveryMethod == DeliveryMethodDelivery && o.DeliveryAddress == "" {
		errs = append(errs, ErrDeliveryAddressRequired)
	}
	if len(o.Items) == 0 {
		errs = append(errs, ErrItemsRequired)
	}

	// Сверяем сумму заказа с суммой позиций и фиксированной стоимостью доставки.
	var calc int64
	for _, item := range o.Items {
		if item.Quantity <= 0 {
			errs = append(errs, ErrQuantityInvalid)
		}
		if item.SubtotalMinor != int64(item.Quantity)*item.PriceMinor {
			errs = append(errs, ErrAmountMismatch)
		}
		calc += item.SubtotalMinor
	}
	if calc != o.SubtotalMinor {
		errs = append(errs, ErrAmountMismatch)
	}
	if o.TotalMinor != o.SubtotalMinor+o.DeliveryFeeMinor {
		errs = append(errs, ErrAmountMismatch)
	}

	return errs
}
