package domain

import "time"

// CartOwner идентифицирует владельца корзины: авторизованного пользователя
// либо гостя по сессионному токену. Заполняется ровно одно поле.
type CartOwner struct {
	UserID    string
	SessionID string
}

// IsZero сообщает, что владелец не определён.
func (o CartOwner) IsZero() bool {
	return o.UserID == "" && o.SessionID == ""
}

// Cart — корзина покупателя. Создаётся лениво при первом обращении
// и опустошается (но не удаляется) при успешном оформлении заказа.
type Cart struct {
	ID        string
	UserID    string
	SessionID string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CartItem — позиция корзины. Товар встречается в корзине не более одного
// раза: повторное добавление накапливает количество.
type CartItem struct {
	ID        string
	CartID    string
	ProductID string
	Quantity  int32
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CartLine — позиция корзины, связанная с актуальным состоянием товара.
// Используется при отображении корзины и при оформлении заказа: цена,
// остатки и доступность читаются из каталога в момент запроса.
type CartLine struct {
	ItemID           string
	ProductID        string
	Name             string
	Slug             string
	SKU              string
	Brand            string
	PriceMinor       int64
	OldPriceMinor    int64
	Quantity         int32
	StockQuantity    int32
	ReservedQuantity int32
	Available        bool
}

// AvailableQuantity возвращает количество товара, доступное к покупке.
func (l *CartLine) AvailableQuantity() int32 {
	return l.StockQuantity - l.ReservedQuantity
}

// SubtotalMinor — стоимость позиции по текущей цене каталога.
func (l *CartLine) SubtotalMinor() int64 {
	return l.PriceMinor * int64(l.Quantity)
}
