package postgres

import (
	"fmt"

	"github.com/vladislavdragonenkov/mustore/internal/domain"
)

// favoriteRepositoryPostgres хранит избранные товары пользователей.
type favoriteRepositoryPostgres struct {
	s *Store
}

// NewFavoriteRepository возвращает репозиторий избранного.
func NewFavoriteRepository(s *Store) domain.FavoriteRepository {
	return &favoriteRepositoryPostgres{s: s}
}

func (r *favoriteRepositoryPostgres) List(userID string) ([]domain.Product, error) {
	ctx, cancel := opCtx()
	defer cancel()

	rows, err := r.s.db.QueryContext(ctx, "SELECT "+productColumns+`
		FROM favorites f
		JOIN products p ON p.id = f.product_id
		LEFT JOIN brands b ON b.id = p.brand_id
		WHERE f.user_id::text = $1
		ORDER BY f.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query favorites: %w", err)
	}
	defer func() { _ = rows.Close() }()

	products := make([]domain.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan favorite product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate favorites: %w", err)
	}
	return products, nil
}

func (r *favoriteRepositoryPostgres) Add(userID, productID string) error {
	ctx, cancel := opCtx()
	defer cancel()

	var exists bool
	if err := r.s.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM products WHERE id::text = $1)", productID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("check product %s: %w", productID, err)
	}
	if !exists {
		return domain.ErrProductNotFound
	}

	_, err := r.s.db.ExecContext(ctx,
		"INSERT INTO favorites (user_id, product_id) VALUES ($1::uuid, $2::uuid)",
		userID, productID,
	)
	if isUniqueViolation(err, "") {
		return domain.ErrFavoriteExists
	}
	if err != nil {
		return fmt.Errorf("insert favorite: %w", err)
	}
	return nil
}

func (r *favoriteRepositoryPostgres) Remove(userID, productID string) error {
	ctx, cancel := opCtx()
	defer cancel()

	res, err := r.s.db.ExecContext(ctx,
		"DELETE FROM favorites WHERE user_id::text = $1 AND product_id::text = $2",
		userID, productID,
	)
	if err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete favorite: rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrFavoriteNotFound
	}
	return nil
}

var _ domain.FavoriteRepository = (*favoriteRepositoryPostgres)(nil)
