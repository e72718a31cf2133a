package checkout

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/mustore/internal/domain"
	"github.com/vladislavdragonenkov/mustore/internal/metrics"
)

// maxNumberRetries ограничивает число повторов оформления при коллизии
// сгенерированного номера заказа.
const maxNumberRetries = 3

// Request — данные оформления заказа, прошедшие транспортную валидацию.
type Request struct {
	CartID string
	// UserID пуст для гостевых заказов.
	UserID string

	CustomerName  string
	CustomerEmail string
	CustomerPhone string

	DeliveryMethod  domain.DeliveryMethod
	DeliveryAddress string
	PaymentMethod   domain.PaymentMethod
	Notes           string
}

// Service оформляет заказы: валидация, расчёт сумм, снимки позиций и
// атомарное резервирование через CheckoutRepository.
type Service struct {
	checkout domain.CheckoutRepository
	carts    domain.CartRepository
	pricing  domain.Pricing
	logger   *log.Entry
	metrics  *metrics.StoreMetrics

	now         func() time.Time
	orderNumber func(time.Time) string
}

// Option настраивает Service.
type Option func(*Service)

// WithLogger задаёт logger сервиса.
func WithLogger(logger *log.Entry) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics задаёт метрики магазина.
func WithMetrics(m *metrics.StoreMetrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithPricing задаёт тарифы доставки.
func WithPricing(p domain.Pricing) Option {
	return func(s *Service) {
		s.pricing = p
	}
}

// WithClock задаёт источник времени (для тестов).
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithOrderNumberFunc задаёт генератор номеров заказов.
func WithOrderNumberFunc(fn func(time.Time) string) Option {
	return func(s *Service) {
		s.orderNumber = fn
	}
}

// NewService создаёт сервис оформления заказов.
func NewService(checkout domain.CheckoutRepository, carts domain.CartRepository, options ...Option) *Service {
	s := &Service{
		checkout:    checkout,
		carts:       carts,
		pricing:     domain.DefaultPricing(),
		logger:      log.WithField("component", "checkout-service"),
		now:         time.Now,
		orderNumber: defaultOrderNumber,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// defaultOrderNumber генерирует номер вида MS-20260830-4F2A9C1B.
func defaultOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("MS-%s-%s", now.UTC().Format("20060102"), suffix)
}

// PlaceOrder оформляет заказ из корзины. Пустая корзина отклоняется до
// открытия транзакции; нехватка товара или коллизия номера не оставляют
// следов в хранилище.
func (s *Service) PlaceOrder(req Request) (domain.Order, error) {
	start := s.now()

	if err := s.validate(req); err != nil {
		return domain.Order{}, err
	}

	// Дешёвая проверка до транзакции: пустую корзину нет смысла оформлять.
	lines, err := s.carts.Lines(req.CartID)
	if err != nil {
		return domain.Order{}, err
	}
	if len(lines) == 0 {
		return domain.Order{}, domain.ErrEmptyCart
	}

	var order domain.Order
	for attempt := 1; ; attempt++ {
		order, err = s.checkout.PlaceOrder(req.CartID, func(lines []domain.CartLine) (domain.Order, error) {
			return s.buildOrder(req, lines)
		})
		if errors.Is(err, domain.ErrOrderNumberConflict) && attempt < maxNumberRetries {
			s.logger.WithField("attempt", attempt).Warn("order number collision, retrying")
			continue
		}
		break
	}
	if err != nil {
		s.recordFailure(err)
		return domain.Order{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordOrderPlaced()
		s.metrics.RecordCheckoutDuration(s.now().Sub(start))
	}
	s.logger.WithFields(log.Fields{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"total_minor":  order.TotalMinor,
	}).Info("order placed")

	return order, nil
}

func (s *Service) validate(req Request) error {
	if req.CustomerName == "" || req.CustomerEmail == "" || req.CustomerPhone == "" {
		return domain.ErrContactInfoRequired
	}
	if req.DeliveryMethod == domain.DeliveryMethodDelivery && strings.TrimSpace(req.DeliveryAddress) == "" {
		return domain.ErrDeliveryAddressRequired
	}
	return nil
}

// buildOrder собирает заказ из позиций корзины, прочитанных внутри
// транзакции: снимки позиций, суммы и стоимость доставки считаются по
// актуальным ценам каталога.
func (s *Service) buildOrder(req Request, lines []domain.CartLine) (domain.Order, error) {
	if len(lines) == 0 {
		return domain.Order{}, domain.ErrEmptyCart
	}

	now := s.now().UTC()
	order := domain.Order{
		ID:            uuid.NewString(),
		OrderNumber:   s.orderNumber(now),
		UserID:        req.UserID,
		Status:        domain.OrderStatusPending,
		PaymentStatus: domain.PaymentStatusPending,

		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,

		DeliveryMethod:  req.DeliveryMethod,
		DeliveryAddress: req.DeliveryAddress,
		PaymentMethod:   req.PaymentMethod,
		Notes:           req.Notes,

		CreatedAt: now,
		UpdatedAt: now,
	}

	for _, line := range lines {
		if line.Quantity <= 0 {
			return domain.Order{}, domain.ErrQuantityInvalid
		}
		subtotal := line.SubtotalMinor()
		order.Items = append(order.Items, domain.OrderItem{
			ID:            uuid.NewString(),
			ProductID:     line.ProductID,
			ProductName:   line.Name,
			ProductSKU:    line.SKU,
			ProductBrand:  line.Brand,
			Quantity:      line.Quantity,
			PriceMinor:    line.PriceMinor,
			SubtotalMinor: subtotal,
			CreatedAt:     now,
		})
		order.SubtotalMinor += subtotal
	}

	order.DeliveryFeeMinor = s.pricing.DeliveryFee(order.DeliveryMethod, order.SubtotalMinor)
	order.TotalMinor = order.SubtotalMinor + order.DeliveryFeeMinor

	if errs := order.ValidateInvariants(); len(errs) > 0 {
		return domain.Order{}, errs[0]
	}
	return order, nil
}

func (s *Service) recordFailure(err error) {
	if s.metrics != nil {
		s.metrics.RecordOrderFailed()
		if domain.IsInsufficientStock(err) {
			s.metrics.RecordInsufficientStock()
		}
	}
	s.logger.WithError(err).Warn("checkout failed")
}
