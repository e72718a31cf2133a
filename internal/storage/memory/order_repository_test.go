package memory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/mustore/internal/domain"
	"github.com/vladislavdragonenkov/mustore/internal/storage/memory"
)

func seedProduct(t *testing.T, s *memory.Store, stock, reserved int32) domain.Product {
	t.Helper()

	p := domain.Product{
		ID:               uuid.NewString(),
		SKU:              "SKU-" + uuid.NewString()[:8],
		Slug:             "slug-" + uuid.NewString()[:8],
		Name:             "Test Product",
		PriceMinor:       100000,
		StockQuantity:    stock,
		ReservedQuantity: reserved,
		IsAvailable:      true,
	}
	if err := memory.NewProductRepository(s).Create(p); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

func seedCartWith(t *testing.T, s *memory.Store, product domain.Product, qty int32) domain.Cart {
	t.Helper()

	carts := memory.NewCartRepository(s)
	cart, err := carts.GetOrCreate(domain.CartOwner{SessionID: uuid.NewString()})
	if err != nil {
		t.Fatalf("create cart: %v", err)
	}
	if err := carts.UpsertItem(cart.ID, product.ID, qty); err != nil {
		t.Fatalf("add cart item: %v", err)
	}
	return cart
}

func buildOrderFromLines(lines []domain.CartLine) (domain.Order, error) {
	if len(lines) == 0 {
		return domain.Order{}, domain.ErrEmptyCart
	}

	now := time.Now().UTC()
	order := domain.Order{
		ID:            uuid.NewString(),
		OrderNumber:   uuid.NewString(),
		Status:        domain.OrderStatusPending,
		PaymentStatus: domain.PaymentStatusPending,
		CustomerName:  "Иван Иванов",
		CustomerEmail: "ivan@example.com",
		CustomerPhone: "+79001234567",
		DeliveryMethod: domain.DeliveryMethodPickup,
		PaymentMethod:  domain.PaymentMethodCash,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	for _, line := range lines {
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
	order.TotalMinor = order.SubtotalMinor
	return order, nil
}

func TestPlaceOrder_ReservesAndClearsCart(t *testing.T) {
	s := memory.NewStore()
	product := seedProduct(t, s, 10, 0)
	cart := seedCartWith(t, s, product, 2)

	checkout := memory.NewCheckoutRepository(s)
	order, err := checkout.PlaceOrder(cart.ID, buildOrderFromLines)
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}

	stored, err := memory.NewProductRepository(s).Get(product.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if stored.ReservedQuantity != 2 {
		t.Fatalf("expected reserved 2, got %d", stored.ReservedQuantity)
	}

	lines, err := memory.NewCartRepository(s).Lines(cart.ID)
	if err != nil {
		t.Fatalf("cart lines: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("expected empty cart after checkout, got %d lines", len(lines))
	}

	if order.Items[0].ProductName != product.Name {
		t.Fatalf("expected snapshot name %q, got %q", product.Name, order.Items[0].ProductName)
	}
}

func TestPlaceOrder_InsufficientStockRollsBack(t *testing.T) {
	s := memory.NewStore()
	available := seedProduct(t, s, 10, 0)
	scarce := seedProduct(t, s, 1, 1)

	carts := memory.NewCartRepository(s)
	cart, err := carts.GetOrCreate(domain.CartOwner{SessionID: "guest-1"})
	if err != nil {
		t.Fatalf("create cart: %v", err)
	}
	if err := carts.UpsertItem(cart.ID, available.ID, 1); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if err := carts.UpsertItem(cart.ID, scarce.ID, 1); err != nil {
		t.Fatalf("add item: %v", err)
	}

	checkout := memory.NewCheckoutRepository(s)
	_, err = checkout.PlaceOrder(cart.ID, buildOrderFromLines)
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	// Частичный резерв не должен пережить откат.
	stored, err := memory.NewProductRepository(s).Get(available.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if stored.ReservedQuantity != 0 {
		t.Fatalf("expected reserved 0 after rollback, got %d", stored.ReservedQuantity)
	}

	lines, err := carts.Lines(cart.ID)
	if err != nil {
		t.Fatalf("cart lines: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("cart must stay intact, got %d lines", len(lines))
	}
}

func TestTransition_CancelReleasesReservation(t *testing.T) {
	s := memory.NewStore()
	product := seedProduct(t, s, 10, 0)
	cart := seedCartWith(t, s, product, 2)

	checkout := memory.NewCheckoutRepository(s)
	order, err := checkout.PlaceOrder(cart.ID, buildOrderFromLines)
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}

	orders := memory.NewOrderRepository(s)
	cancel := func(o domain.Order) (domain.Order, error) {
		o.Status = domain.OrderStatusCancelled
		return o, nil
	}

	if _, err := orders.Transition(order.ID, cancel); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	stored, _ := memory.NewProductRepository(s).Get(product.ID)
	if stored.ReservedQuantity != 0 {
		t.Fatalf("expected reserved 0 after cancel, got %d", stored.ReservedQuantity)
	}

	// Повторная отмена не должна уводить резерв в минус.
	if _, err := orders.Transition(order.ID, cancel); err != nil {
		t.Fatalf("repeated cancel failed: %v", err)
	}
	stored, _ = memory.NewProductRepository(s).Get(product.ID)
	if stored.ReservedQuantity != 0 {
		t.Fatalf("repeated cancel corrupted counters: reserved %d", stored.ReservedQuantity)
	}
}

func TestTransition_DeliverConsumesStock(t *testing.T) {
	s := memory.NewStore()
	product := seedProduct(t, s, 10, 0)
	cart := seedCartWith(t, s, product, 3)

	checkout := memory.NewCheckoutRepository(s)
	order, err := checkout.PlaceOrder(cart.ID, buildOrderFromLines)
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}

	orders := memory.NewOrderRepository(s)
	step := func(next domain.OrderStatus) domain.TransitionFunc {
		return func(o domain.Order) (domain.Order, error) {
			o.Status = next
			return o, nil
		}
	}

	for _, next := range []domain.OrderStatus{
		domain.OrderStatusProcessing,
		domain.OrderStatusShipped,
		domain.OrderStatusDelivered,
	} {
		if _, err := orders.Transition(order.ID, step(next)); err != nil {
			t.Fatalf("transition to %s failed: %v", next, err)
		}
	}

	stored, _ := memory.NewProductRepository(s).Get(product.ID)
	if stored.StockQuantity != 7 || stored.ReservedQuantity != 0 {
		t.Fatalf("expected stock=7 reserved=0, got stock=%d reserved=%d",
			stored.StockQuantity, stored.ReservedQuantity)
	}
}

func TestPlaceOrder_EnqueuesOutboxEvent(t *testing.T) {
	s := memory.NewStore()
	product := seedProduct(t, s, 5, 0)
	cart := seedCartWith(t, s, product, 1)

	if _, err := memory.NewCheckoutRepository(s).PlaceOrder(cart.ID, buildOrderFromLines); err != nil {
		t.Fatalf("place order failed: %v", err)
	}

	pending, err := memory.NewOutboxRepository(s).PullPending(10)
	if err != nil {
		t.Fatalf("pull pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 outbox message, got %d", len(pending))
	}
	if pending[0].EventType != "order.placed" {
		t.Fatalf("unexpected event type %q", pending[0].EventType)
	}
}
