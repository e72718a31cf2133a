package cart

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/mustore/internal/domain"
)

// Summary — содержимое корзины с рассчитанными суммами.
// Стоимость доставки считается по текущим тарифам и носит справочный
// характер: окончательная сумма фиксируется при оформлении заказа.
type Summary struct {
	Cart          domain.Cart
	Lines         []domain.CartLine
	ItemsCount    int32
	SubtotalMinor int64
	// DeliveryFeeMinor — тариф для способа delivery при текущей сумме.
	DeliveryFeeMinor int64
}

// Service управляет корзинами покупателей.
type Service struct {
	carts    domain.CartRepository
	products domain.ProductRepository
	pricing  domain.Pricing
	logger   *log.Entry
}

// Option настраивает Service.
type Option func(*Service)

// WithLogger задаёт logger сервиса.
func WithLogger(logger *log.Entry) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithPricing задаёт тарифы доставки.
func WithPricing(p domain.Pricing) Option {
	return func(s *Service) {
		s.pricing = p
	}
}

// NewService создаёт сервис корзины.
func NewService(carts domain.CartRepository, products domain.ProductRepository, options ...Option) *Service {
	s := &Service{
		carts:    carts,
		products: products,
		pricing:  domain.DefaultPricing(),
		logger:   log.WithField("component", "cart-service"),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Summary возвращает корзину владельца с позициями и суммами.
func (s *Service) Summary(owner domain.CartOwner) (Summary, error) {
	cart, err := s.carts.GetOrCreate(owner)
	if err != nil {
		return Summary{}, err
	}

	lines, err := s.carts.Lines(cart.ID)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{Cart: cart, Lines: lines}
	for _, line := range lines {
		summary.ItemsCount += line.Quantity
		summary.SubtotalMinor += line.SubtotalMinor()
	}
	summary.DeliveryFeeMinor = s.pricing.DeliveryFee(domain.DeliveryMethodDelivery, summary.SubtotalMinor)

	return summary, nil
}

// Add кладёт товар в корзину. Повторное добавление накапливает количество;
// итог ограничивается доступным остатком товара.
func (s *Service) Add(owner domain.CartOwner, productID string, quantity int32) (Summary, error) {
	if quantity <= 0 {
		return Summary{}, domain.ErrQuantityInvalid
	}

	product, err := s.products.Get(productID)
	if err != nil {
		return Summary{}, err
	}
	if !product.IsAvailable {
		return Summary{}, domain.ErrProductUnavailable
	}

	available := product.AvailableQuantity()
	if available <= 0 {
		return Summary{}, &domain.InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Requested:   quantity,
			Available:   available,
		}
	}

	cart, err := s.carts.GetOrCreate(owner)
	if err != nil {
		return Summary{}, err
	}

	total := quantity
	lines, err := s.carts.Lines(cart.ID)
	if err != nil {
		return Summary{}, err
	}
	for _, line := range lines {
		if line.ProductID == productID {
			total += line.Quantity
			break
		}
	}
	// Суммарное количество в корзине ограничено доступным остатком.
	if total > available {
		total = available
	}

	if err := s.carts.UpsertItem(cart.ID, productID, total); err != nil {
		return Summary{}, err
	}

	s.logger.WithFields(log.Fields{
		"cart_id":    cart.ID,
		"product_id": productID,
		"quantity":   total,
	}).Debug("cart item upserted")

	return s.Summary(owner)
}

// UpdateQuantity выставляет количество позиции корзины.
func (s *Service) UpdateQuantity(owner domain.CartOwner, itemID string, quantity int32) (Summary, error) {
	if quantity <= 0 {
		return Summary{}, domain.ErrQuantityInvalid
	}

	cart, err := s.carts.GetOrCreate(owner)
	if err != nil {
		return Summary{}, err
	}

	lines, err := s.carts.Lines(cart.ID)
	if err != nil {
		return Summary{}, err
	}
	for _, line := range lines {
		if line.ItemID != itemID {
			continue
		}
		if available := line.AvailableQuantity(); quantity > available {
			return Summary{}, &domain.InsufficientStockError{
				ProductID:   line.ProductID,
				ProductName: line.Name,
				Requested:   quantity,
				Available:   available,
			}
		}
	}

	if err := s.carts.UpdateItemQuantity(cart.ID, itemID, quantity); err != nil {
		return Summary{}, err
	}
	return s.Summary(owner)
}

// Remove удаляет позицию из корзины.
func (s *Service) Remove(owner domain.CartOwner, itemID string) (Summary, error) {
	cart, err := s.carts.GetOrCreate(owner)
	if err != nil {
		return Summary{}, err
	}
	if err := s.carts.RemoveItem(cart.ID, itemID); err != nil {
		return Summary{}, err
	}
	return s.Summary(owner)
}

// Clear опустошает корзину владельца.
func (s *Service) Clear(owner domain.CartOwner) error {
	cart, err := s.carts.GetOrCreate(owner)
	if err != nil {
		return err
	}
	return s.carts.Clear(cart.ID)
}
