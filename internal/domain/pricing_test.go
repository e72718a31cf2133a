package domain_test

import (
	"testing"

	"github.com/vladislavdragonenkov/mustore/internal/domain"
)

func TestPricingDeliveryFee(t *testing.T) {
	pricing := domain.DefaultPricing()

	cases := []struct {
		name     string
		method   domain.DeliveryMethod
		subtotal int64
		want     int64
	}{
		{"pickup is always free", domain.DeliveryMethodPickup, 100, 0},
		{"delivery below threshold", domain.DeliveryMethodDelivery, 300000, 30000},
		{"delivery at threshold", domain.DeliveryMethodDelivery, 500000, 0},
		{"delivery above threshold", domain.DeliveryMethodDelivery, 600000, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := pricing.DeliveryFee(tc.method, tc.subtotal); got != tc.want {
				t.Fatalf("expected fee %d, got %d", tc.want, got)
			}
		})
	}
}

func TestProductAvailableQuantity(t *testing.T) {
	p := domain.Product{StockQuantity: 10, ReservedQuantity: 3}
	if got := p.AvailableQuantity(); got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
	if err := p.ValidateCounters(); err != nil {
		t.Fatalf("unexpected violation: %v", err)
	}

	p.ReservedQuantity = 11
	if err := p.ValidateCounters(); err == nil {
		t.Fatal("expected counter violation when reserved exceeds stock")
	}
}
