package postgres

import (
	"fmt"

	"github.com/vladislavdragonenkov/mustore/internal/domain"
)

const topSellersLimit = 5

// statsRepositoryPostgres собирает сводку для административной панели.
type statsRepositoryPostgres struct {
	s *Store
}

// NewStatsRepository возвращает репозиторий статистики магазина.
func NewStatsRepository(s *Store) domain.StatsRepository {
	return &statsRepositoryPostgres{s: s}
}

func (r *statsRepositoryPostgres) Snapshot() (domain.StoreStats, error) {
	ctx, cancel := opCtx()
	defer cancel()

	var stats domain.StoreStats
	err := r.s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM orders),
			(SELECT COUNT(*) FROM orders WHERE status = 'pending'),
			(SELECT COUNT(*) FROM users WHERE role = 'customer'),
			(SELECT COUNT(*) FROM products
				WHERE is_available AND stock_quantity - reserved_quantity > 0),
			(SELECT COALESCE(SUM(total_minor), 0) FROM orders
				WHERE status <> 'cancelled'
					AND created_at >= date_trunc('month', now()))`,
	).Scan(
		&stats.OrdersTotal,
		&stats.OrdersPending,
		&stats.CustomersTotal,
		&stats.ProductsAvailable,
		&stats.MonthlyRevenueMinor,
	)
	if err != nil {
		return domain.StoreStats{}, fmt.Errorf("query store stats: %w", err)
	}

	rows, err := r.s.db.QueryContext(ctx, `
		SELECT oi.product_id::text, oi.product_name, SUM(oi.quantity)::bigint AS units
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.status <> 'cancelled'
		GROUP BY oi.product_id, oi.product_name
		ORDER BY units DESC, oi.product_name
		LIMIT $1`, topSellersLimit)
	if err != nil {
		return domain.StoreStats{}, fmt.Errorf("query top sellers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var top domain.TopSeller
		if err := rows.Scan(&top.ProductID, &top.Name, &top.Units); err != nil {
			return domain.StoreStats{}, fmt.Errorf("scan top seller: %w", err)
		}
		stats.TopSellers = append(stats.TopSellers, top)
	}
	if err := rows.Err(); err != nil {
		return domain.StoreStats{}, fmt.Errorf("iterate top sellers: %w", err)
	}

	return stats, nil
}

var _ domain.StatsRepository = (*statsRepositoryPostgres)(nil)
