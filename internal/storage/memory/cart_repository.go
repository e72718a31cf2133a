package memory

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/mustore/internal/domain"
)

// cartRepositoryInMemory — in-memory реализация CartRepository.
type cartRepositoryInMemory struct {
	s *Store
}

// NewCartRepository возвращает in-memory репозиторий корзин.
func NewCartRepository(s *Store) domain.CartRepository {
	return &cartRepositoryInMemory{s: s}
}

func (r *cartRepositoryInMemory) GetOrCreate(owner domain.CartOwner) (domain.Cart, error) {
	if owner.IsZero() {
		return domain.Cart{}, domain.ErrCartNotFound
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	index := r.s.cartBySession
	key := owner.SessionID
	if owner.UserID != "" {
		index = r.s.cartByUser
		key = owner.UserID
	}

	if cartID, ok := index[key]; ok {
		return r.s.carts[cartID], nil
	}

	now := time.Now().UTC()
	cart := domain.Cart{
		ID:        uuid.NewString(),
		UserID:    owner.UserID,
		SessionID: owner.SessionID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.s.carts[cart.ID] = cart
	index[key] = cart.ID
	return cart, nil
}

func (r *cartRepositoryInMemory) Lines(cartID string) ([]domain.CartLine, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if _, ok := r.s.carts[cartID]; !ok {
		return nil, domain.ErrCartNotFound
	}
	return r.s.linesLocked(cartID), nil
}

// linesLocked собирает позиции корзины с актуальным состоянием товаров.
// Вызывается под удерживаемым мьютексом.
func (s *Store) linesLocked(cartID string) []domain.CartLine {
	items := make([]domain.CartItem, 0)
	for _, item := range s.cartItems {
		if item.CartID == cartID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].ID < items[j].ID
	})

	lines := make([]domain.CartLine, 0, len(items))
	for _, item := range items {
		line := domain.CartLine{
			ItemID:    item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
		if p, ok := s.products[item.ProductID]; ok {
			line.Name = p.Name
			line.Slug = p.Slug
			line.SKU = p.SKU
			line.Brand = p.BrandName
			line.PriceMinor = p.PriceMinor
			line.OldPriceMinor = p.OldPriceMinor
			line.StockQuantity = p.StockQuantity
			line.ReservedQuantity = p.ReservedQuantity
			line.Available = p.IsAvailable
		}
		lines = append(lines, line)
	}
	return lines
}

func (r *cartRepositoryInMemory) UpsertItem(cartID, productID string, quantity int32) error {
	if quantity <= 0 {
		return domain.ErrQuantityInvalid
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.carts[cartID]; !ok {
		return domain.ErrCartNotFound
	}
	if _, ok := r.s.products[productID]; !ok {
		return domain.ErrProductNotFound
	}

	now := time.Now().UTC()
	for id, item := range r.s.cartItems {
		if item.CartID == cartID && item.ProductID == productID {
			item.Quantity = quantity
			item.UpdatedAt = now
			r.s.cartItems[id] = item
			return nil
		}
	}

	item := domain.CartItem{
		ID:        uuid.NewString(),
		CartID:    cartID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.s.cartItems[item.ID] = item
	return nil
}

func (r *cartRepositoryInMemory) UpdateItemQuantity(cartID, itemID string, quantity int32) error {
	if quantity <= 0 {
		return domain.ErrQuantityInvalid
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	item, ok := r.s.cartItems[itemID]
	if !ok || item.CartID != cartID {
		return domain.ErrCartItemNotFound
	}
	item.Quantity = quantity
	item.UpdatedAt = time.Now().UTC()
	r.s.cartItems[itemID] = item
	return nil
}

func (r *cartRepositoryInMemory) RemoveItem(cartID, itemID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	item, ok := r.s.cartItems[itemID]
	if !ok || item.CartID != cartID {
		return domain.ErrCartItemNotFound
	}
	delete(r.s.cartItems, itemID)
	return nil
}

func (r *cartRepositoryInMemory) Clear(cartID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.clearCartLocked(cartID)
	return nil
}

// clearCartLocked удаляет все позиции корзины. Вызывается под мьютексом.
func (s *Store) clearCartLocked(cartID string) {
	for id, item := range s.cartItems {
		if item.CartID == cartID {
			delete(s.cartItems, id)
		}
	}
}

var _ domain.CartRepository = (*cartRepositoryInMemory)(nil)
