package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/mustore/internal/domain"
)

// cartRepositoryPostgres — реализация CartRepository поверх PostgreSQL.
type cartRepositoryPostgres struct {
	s *Store
}

// NewCartRepository возвращает репозиторий корзин.
func NewCartRepository(s *Store) domain.CartRepository {
	return &cartRepositoryPostgres{s: s}
}

// GetOrCreate возвращает корзину владельца, создавая её при первом обращении.
// Гонка одновременного создания разрешается повторным чтением после
// нарушения уникальности user_id/session_id.
func (r *cartRepositoryPostgres) GetOrCreate(owner domain.CartOwner) (domain.Cart, error) {
	if owner.IsZero() {
		return domain.Cart{}, domain.ErrCartNotFound
	}

	ctx, cancel := opCtx()
	defer cancel()

	cart, err := r.findByOwner(ctx, owner)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return domain.Cart{}, fmt.Errorf("find cart: %w", err)
	}

	id := uuid.NewString()
	_, err = r.s.db.ExecContext(ctx, `
		INSERT INTO carts (id, user_id, session_id)
		VALUES ($1, NULLIF($2, '')::uuid, NULLIF($3, ''))`,
		id, owner.UserID, owner.SessionID,
	)
	if isUniqueViolation(err, "") {
		cart, err := r.findByOwner(ctx, owner)
		if err != nil {
			return domain.Cart{}, fmt.Errorf("reread cart after conflict: %w", err)
		}
		return cart, nil
	}
	if err != nil {
		return domain.Cart{}, fmt.Errorf("insert cart: %w", err)
	}

	cart, err = r.findByOwner(ctx, owner)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("reread created cart: %w", err)
	}
	return cart, nil
}

func (r *cartRepositoryPostgres) findByOwner(ctx context.Context, owner domain.CartOwner) (domain.Cart, error) {
	var row *sql.Row
	if owner.UserID != "" {
		row = r.s.db.QueryRowContext(ctx, `
			SELECT id, COALESCE(user_id::text, ''), COALESCE(session_id, ''), created_at, updated_at
			FROM carts WHERE user_id::text = $1`, owner.UserID)
	} else {
		row = r.s.db.QueryRowContext(ctx, `
			SELECT id, COALESCE(user_id::text, ''), COALESCE(session_id, ''), created_at, updated_at
			FROM carts WHERE session_id = $1`, owner.SessionID)
	}

	var cart domain.Cart
	err := row.Scan(&cart.ID, &cart.UserID, &cart.SessionID, &cart.CreatedAt, &cart.UpdatedAt)
	return cart, err
}

const cartLineQuery = `
	SELECT ci.id, p.id, p.name, p.slug, p.sku, COALESCE(b.name, ''),
		p.price_minor, p.old_price_minor, ci.quantity,
		p.stock_quantity, p.reserved_quantity, p.is_available
	FROM cart_items ci
	JOIN products p ON p.id = ci.product_id
	LEFT JOIN brands b ON b.id = p.brand_id
	WHERE ci.cart_id::text = $1
	ORDER BY ci.created_at, ci.id`

// Lines возвращает позиции корзины с актуальным состоянием товаров.
func (r *cartRepositoryPostgres) Lines(cartID string) ([]domain.CartLine, error) {
	ctx, cancel := opCtx()
	defer cancel()

	rows, err := r.s.db.QueryContext(ctx, cartLineQuery, cartID)
	if err != nil {
		return nil, fmt.Errorf("query cart lines: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanCartLines(rows)
}

func scanCartLines(rows *sql.Rows) ([]domain.CartLine, error) {
	lines := make([]domain.CartLine, 0)
	for rows.Next() {
		var l domain.CartLine
		if err := rows.Scan(
			&l.ItemID, &l.ProductID, &l.Name, &l.Slug, &l.SKU, &l.Brand,
			&l.PriceMinor, &l.OldPriceMinor, &l.Quantity,
			&l.StockQuantity, &l.ReservedQuantity, &l.Available,
		); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart lines: %w", err)
	}
	return lines, nil
}

// UpsertItem добавляет товар либо выставляет новое количество существующей позиции.
func (r *cartRepositoryPostgres) UpsertItem(cartID, productID string, quantity int32) error {
	if quantity <= 0 {
		return domain.ErrQuantityInvalid
	}

	ctx, cancel := opCtx()
	defer cancel()

	var exists bool
	err := r.s.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM products WHERE id::text = $1)", productID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check product %s: %w", productID, err)
	}
	if !exists {
		return domain.ErrProductNotFound
	}

	_, err = r.s.db.ExecContext(ctx, `
		INSERT INTO cart_items (id, cart_id, product_id, quantity)
		VALUES ($1, $2::uuid, $3::uuid, $4)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()`,
		uuid.NewString(), cartID, productID, quantity,
	)
	if err != nil {
		return fmt.Errorf("upsert cart item: %w", err)
	}
	return r.touchCart(ctx, cartID)
}

func (r *cartRepositoryPostgres) UpdateItemQuantity(cartID, itemID string, quantity int32) error {
	if quantity <= 0 {
		return domain.ErrQuantityInvalid
	}

	ctx, cancel := opCtx()
	defer cancel()

	res, err := r.s.db.ExecContext(ctx, `
		UPDATE cart_items SET quantity = $3, updated_at = now()
		WHERE cart_id::text = $1 AND id::text = $2`,
		cartID, itemID, quantity,
	)
	if err != nil {
		return fmt.Errorf("update cart item quantity: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update cart item quantity: rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrCartItemNotFound
	}
	return r.touchCart(ctx, cartID)
}

func (r *cartRepositoryPostgres) RemoveItem(cartID, itemID string) error {
	ctx, cancel := opCtx()
	defer cancel()

	res, err := r.s.db.ExecContext(ctx,
		"DELETE FROM cart_items WHERE cart_id::text = $1 AND id::text = $2",
		cartID, itemID,
	)
	if err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove cart item: rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrCartItemNotFound
	}
	return r.touchCart(ctx, cartID)
}

// Clear опустошает корзину, не удаляя её саму.
func (r *cartRepositoryPostgres) Clear(cartID string) error {
	ctx, cancel := opCtx()
	defer cancel()

	if _, err := r.s.db.ExecContext(ctx,
		"DELETE FROM cart_items WHERE cart_id::text = $1", cartID,
	); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return r.touchCart(ctx, cartID)
}

func (r *cartRepositoryPostgres) touchCart(ctx context.Context, cartID string) error {
	res, err := r.s.db.ExecContext(ctx,
		"UPDATE carts SET updated_at = now() WHERE id::text = $1", cartID,
	)
	if err != nil {
		return fmt.Errorf("touch cart %s: %w", cartID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("touch cart %s: rows affected: %w", cartID, err)
	}
	if affected == 0 {
		return domain.ErrCartNotFound
	}
	return nil
}

var _ domain.CartRepository = (*cartRepositoryPostgres)(nil)
