package domain

// Pricing задаёт правила расчёта стоимости доставки.
// Пороговое правило: доставка бесплатна при самовывозе и при сумме корзины
// от FreeDeliveryThresholdMinor, иначе применяется фиксированный тариф.
type Pricing struct {
	FreeDeliveryThresholdMinor int64
	DeliveryFeeMinor           int64
}

const (
	defaultFreeDeliveryThresholdMinor = 500000 // 5000.00
	defaultDeliveryFeeMinor           = 30000  // 300.00
)

// DefaultPricing возвращает тарифы магазина по умолчанию.
func DefaultPricing() Pricing {
	return Pricing{
		FreeDeliveryThresholdMinor: defaultFreeDeliveryThresholdMinor,
		DeliveryFeeMinor:           defaultDeliveryFeeMinor,
	}
}

// DeliveryFee вычисляет стоимость доставки для заданного способа получения
// и суммы корзины.
func (p Pricing) DeliveryFee(method DeliveryMethod, subtotalMinor int64) int64 {
	if method == DeliveryMethodPickup {
		return 0
	}
	if subtotalMinor >= p.FreeDeliveryThresholdMinor {
		return 0
	}
	return p.DeliveryFeeMinor
}
