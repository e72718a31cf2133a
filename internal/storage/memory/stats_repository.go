package memory

import (
	"sort"
	"time"

	"github.com/vladislavdragonenkov/mustore/internal/domain"
)

// statsRepositoryInMemory — in-memory реализация StatsRepository.
type statsRepositoryInMemory struct {
	s *Store
}

// NewStatsRepository возвращает in-memory сборщик статистики магазина.
func NewStatsRepository(s *Store) domain.StatsRepository {
	return &statsRepositoryInMemory{s: s}
}

func (r *statsRepositoryInMemory) Snapshot() (domain.StoreStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var stats domain.StoreStats

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	soldUnits := make(map[string]*domain.TopSeller)
	for _, order := range r.s.orders {
		stats.OrdersTotal++
		if order.Status == domain.OrderStatusPending {
			stats.OrdersPending++
		}
		if order.Status == domain.OrderStatusCancelled {
			continue
		}
		if !order.CreatedAt.Before(monthStart) {
			stats.MonthlyRevenueMinor += order.TotalMinor
		}
		for _, item := range order.Items {
			top, ok := soldUnits[item.ProductID]
			if !ok {
				top = &domain.TopSeller{ProductID: item.ProductID, Name: item.ProductName}
				soldUnits[item.ProductID] = top
			}
			top.Units += int64(item.Quantity)
		}
	}
	for _, user := range r.s.users {
		if user.Role == domain.RoleCustomer {
			stats.CustomersTotal++
		}
	}
	for _, p := range r.s.products {
		if p.IsAvailable && p.AvailableQuantity() > 0 {
			stats.ProductsAvailable++
		}
	}

	stats.TopSellers = rankTopSellers(soldUnits, topSellersLimit)
	return stats, nil
}

const topSellersLimit = 5

// rankTopSellers сортирует продажи по убыванию с детерминированным порядком имён.
func rankTopSellers(soldUnits map[string]*domain.TopSeller, limit int) []domain.TopSeller {
	ranked := make([]domain.TopSeller, 0, len(soldUnits))
	for _, top := range soldUnits {
		ranked = append(ranked, *top)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Units != ranked[j].Units {
			return ranked[i].Units > ranked[j].Units
		}
		return ranked[i].Name < ranked[j].Name
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

var _ domain.StatsRepository = (*statsRepositoryInMemory)(nil)
