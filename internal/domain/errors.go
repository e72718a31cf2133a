package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCart — попытка оформить заказ из пустой корзины.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInsufficientStock — сигнальная ошибка нехватки товара на складе.
	// Конкретный товар и количество переносит InsufficientStockError.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrProductUnavailable — товар снят с продажи или удалён из каталога.
	ErrProductUnavailable = errors.New("product is unavailable")
	// ErrProductNotFound возвращается, если товар не найден в каталоге.
	ErrProductNotFound = errors.New("product not found")
	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
	// ErrCartNotFound возвращается, если корзина не найдена.
	ErrCartNotFound = errors.New("cart not found")
	// ErrCartItemNotFound возвращается, если позиция не принадлежит корзине.
	ErrCartItemNotFound = errors.New("cart item not found")
	// ErrInvalidTransition — недопустимый переход статуса заказа.
	ErrInvalidTransition = errors.New("invalid order status transition")
	// ErrOrderNumberConflict — сгенерированный номер заказа уже занят.
	ErrOrderNumberConflict = errors.New("order number already exists")
	// ErrQuantityInvalid — некорректное количество товара (<= 0).
	ErrQuantityInvalid = errors.New("quantity must be greater than zero")
	// ErrDeliveryAddressRequired — не указан адрес при способе доставки delivery.
	ErrDeliveryAddressRequired = errors.New("delivery address is required")
	// ErrContactInfoRequired — не заполнены контактные данные покупателя.
	ErrContactInfoRequired = errors.New("customer contact info is required")
	// ErrAmountMismatch — сумма заказа не сходится с суммой позиций.
	ErrAmountMismatch = errors.New("order total does not match items sum")
	// ErrItemsRequired — заказ без единой позиции.
	ErrItemsRequired = errors.New("order must contain at least one item")
	// ErrEmailTaken — пользователь с таким email уже зарегистрирован.
	ErrEmailTaken = errors.New("email is already registered")
	// ErrInvalidCredentials — неверная пара email/пароль.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUserNotFound возвращается, если пользователь не найден.
	ErrUserNotFound = errors.New("user not found")
	// ErrFavoriteExists — товар уже добавлен в избранное.
	ErrFavoriteExists = errors.New("product is already in favorites")
	// ErrFavoriteNotFound — товара нет в избранном.
	ErrFavoriteNotFound = errors.New("product is not in favorites")
	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// InsufficientStockError уточняет, какого товара не хватило и сколько доступно.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Requested   int32
	Available   int32
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d",
		e.ProductName, e.Requested, e.Available)
}

// Is позволяет сравнивать ошибку с сигнальной ErrInsufficientStock через errors.Is.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// IsInsufficientStock проверяет, является ли ошибка нехваткой товара.
func IsInsufficientStock(err error) bool {
	return errors.Is(err, ErrInsufficientStock)
}
