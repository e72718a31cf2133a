package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/mustore/internal/domain"
)

func validOrder() domain.Order {
	now := time.Now().UTC()
	return domain.Order{
		ID:              "order-1",
		OrderNumber:     "20240101-120000-0001",
		Status:          domain.OrderStatusPending,
		PaymentStatus:   domain.PaymentStatusPending,
		CustomerName:    "Иван Иванов",
		CustomerEmail:   "ivan@example.com",
		CustomerPhone:   "+79001234567",
		DeliveryMethod:  domain.DeliveryMethodPickup,
		PaymentMethod:   domain.PaymentMethodCash,
		SubtotalMinor:   300000,
		DeliveryFeeMinor: 0,
		TotalMinor:      300000,
		Items: []domain.OrderItem{
			{ID: "item-1", ProductID: "p-1", ProductName: "Fender Stratocaster", ProductSKU: "FEN-STRAT", Quantity: 1, PriceMinor: 100000, SubtotalMinor: 100000, CreatedAt: now},
			{ID: "item-2", ProductID: "p-2", ProductName: "Yamaha F310", ProductSKU: "YAM-F310", Quantity: 2, PriceMinor: 100000, SubtotalMinor: 200000, CreatedAt: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestOrderValidateInvariants_Valid(t *testing.T) {
	order := validOrder()
	if errs := order.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("expected no violations, got %v", errs)
	}
}

func TestOrderValidateInvariants_TotalMismatch(t *testing.T) {
	order := validOrder()
	order.TotalMinor = 999999

	errs := order.ValidateInvariants()
	if len(errs) == 0 {
		t.Fatal("expected amount mismatch violation")
	}
	found := false
	for _, err := range errs {
		if errors.Is(err, domain.ErrAmountMismatch) {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected ErrAmountMismatch, got %v", errs)
	}
}

func TestOrderValidateInvariants_MissingContact(t *testing.T) {
	order := validOrder()
	order.CustomerEmail = ""

	errs := order.ValidateInvariants()
	found := false
	for _, err := range errs {
		if errors.Is(err, domain.ErrContactInfoRequired) {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected ErrContactInfoRequired, got %v", errs)
	}
}

func TestOrderValidateInvariants_DeliveryAddress(t *testing.T) {
	order := validOrder()
	order.DeliveryMethod = domain.DeliveryMethodDelivery
	order.DeliveryAddress = ""
	order.DeliveryFeeMinor = 30000
	order.TotalMinor = order.SubtotalMinor + order.DeliveryFeeMinor

	errs := order.ValidateInvariants()
	found := false
	for _, err := range errs {
		if errors.Is(err, domain.ErrDeliveryAddressRequired) {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected ErrDeliveryAddressRequired, got %v", errs)
	}
}

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from    domain.OrderStatus
		to      domain.OrderStatus
		allowed bool
	}{
		{domain.OrderStatusPending, domain.OrderStatusProcessing, true},
		{domain.OrderStatusProcessing, domain.OrderStatusShipped, true},
		{domain.OrderStatusShipped, domain.OrderStatusDelivered, true},
		{domain.OrderStatusPending, domain.OrderStatusCancelled, true},
		{domain.OrderStatusProcessing, domain.OrderStatusCancelled, true},
		{domain.OrderStatusShipped, domain.OrderStatusCancelled, true},
		{domain.OrderStatusPending, domain.OrderStatusShipped, false},
		{domain.OrderStatusPending, domain.OrderStatusDelivered, false},
		{domain.OrderStatusDelivered, domain.OrderStatusCancelled, false},
		{domain.OrderStatusCancelled, domain.OrderStatusPending, false},
		{domain.OrderStatusCancelled, domain.OrderStatusCancelled, true},
		{domain.OrderStatusDelivered, domain.OrderStatusDelivered, true},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Errorf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.allowed, got)
		}
	}
}

func TestTransitionStockEffect(t *testing.T) {
	if effect := domain.TransitionStockEffect(domain.OrderStatusPending, domain.OrderStatusCancelled); effect != domain.StockEffectRelease {
		t.Fatalf("cancel should release reservation, got %v", effect)
	}
	if effect := domain.TransitionStockEffect(domain.OrderStatusShipped, domain.OrderStatusDelivered); effect != domain.StockEffectConsume {
		t.Fatalf("deliver should consume stock, got %v", effect)
	}
	if effect := domain.TransitionStockEffect(domain.OrderStatusPending, domain.OrderStatusProcessing); effect != domain.StockEffectNone {
		t.Fatalf("metadata transition must not touch counters, got %v", effect)
	}
	// Повторная отмена не должна повторно возвращать резерв.
	if effect := domain.TransitionStockEffect(domain.OrderStatusCancelled, domain.OrderStatusCancelled); effect != domain.StockEffectNone {
		t.Fatalf("repeated cancel must be a no-op, got %v", effect)
	}
}

func TestParseOrderStatus(t *testing.T) {
	if _, err := domain.ParseOrderStatus("processing"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := domain.ParseOrderStatus("refunded"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestInsufficientStockError(t *testing.T) {
	err := &domain.InsufficientStockError{
		ProductID:   "p-1",
		ProductName: "Fender Stratocaster",
		Requested:   3,
		Available:   1,
	}

	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatal("typed error must match the sentinel")
	}
	if !domain.IsInsufficientStock(err) {
		t.Fatal("IsInsufficientStock must report true")
	}

	var typed *domain.InsufficientStockError
	if !errors.As(err, &typed) || typed.Available != 1 {
		t.Fatal("expected typed error with available quantity")
	}
}
