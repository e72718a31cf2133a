package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/mustore/internal/domain"
)

// orderRepositoryPostgres реализует OrderRepository и CheckoutRepository
// поверх PostgreSQL. Оформление заказа и смена статуса выполняются в одной
// транзакции вместе с корректировкой складских счётчиков и записью события
// в transactional outbox.
type orderRepositoryPostgres struct {
	s *Store
}

// NewOrderRepository возвращает репозиторий заказов.
func NewOrderRepository(s *Store) domain.OrderRepository {
	return &orderRepositoryPostgres{s: s}
}

// NewCheckoutRepository возвращает реализацию оформления заказа.
func NewCheckoutRepository(s *Store) domain.CheckoutRepository {
	return &orderRepositoryPostgres{s: s}
}

// PlaceOrder оформляет заказ одной транзакцией: читает корзину, собирает заказ
// через build, резервирует каждый товар условным UPDATE, пишет заказ с
// позициями, ставит событие в outbox и опустошает корзину. Любая ошибка
// откатывает транзакцию целиком.
func (r *orderRepositoryPostgres) PlaceOrder(cartID string, build domain.CheckoutBuildFunc) (domain.Order, error) {
	ctx, cancel := opCtx()
	defer cancel()

	var placed domain.Order
	err := r.s.inTx(ctx, func(tx *sql.Tx) error {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			"SELECT EXISTS (SELECT 1 FROM carts WHERE id::text = $1)", cartID,
		).Scan(&exists); err != nil {
			return fmt.Errorf("check cart %s: %w", cartID, err)
		}
		if !exists {
			return domain.ErrCartNotFound
		}

		rows, err := tx.QueryContext(ctx, cartLineQuery, cartID)
		if err != nil {
			return fmt.Errorf("read cart lines: %w", err)
		}
		lines, err := scanCartLines(rows)
		_ = rows.Close()
		if err != nil {
			return err
		}

		order, err := build(lines)
		if err != nil {
			return err
		}

		// Резервируем позиции условным обновлением: ноль затронутых строк
		// означает нехватку доступного остатка либо недоступный товар.
		for _, item := range order.Items {
			if err := r.reserve(ctx, tx, item); err != nil {
				return err
			}
		}

		if err := r.insertOrder(ctx, tx, order); err != nil {
			return err
		}
		if err := enqueueOutboxTx(ctx, tx, order, "order.placed"); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM cart_items WHERE cart_id::text = $1", cartID,
		); err != nil {
			return fmt.Errorf("clear cart %s: %w", cartID, err)
		}

		placed = order
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return placed, nil
}

// reserve увеличивает резерв товара, только если доступного остатка хватает.
func (r *orderRepositoryPostgres) reserve(ctx context.Context, tx *sql.Tx, item domain.OrderItem) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE products
		SET reserved_quantity = reserved_quantity + $1, updated_at = now()
		WHERE id::text = $2
			AND is_available
			AND stock_quantity - reserved_quantity >= $1`,
		item.Quantity, item.ProductID,
	)
	if err != nil {
		return fmt.Errorf("reserve product %s: %w", item.ProductID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reserve product %s: rows affected: %w", item.ProductID, err)
	}
	if affected > 0 {
		return nil
	}

	// Перечитываем товар, чтобы отличить нехватку остатка от недоступности.
	var name string
	var stock, reserved int32
	var available bool
	err = tx.QueryRowContext(ctx, `
		SELECT name, stock_quantity, reserved_quantity, is_available
		FROM products WHERE id::text = $1`, item.ProductID,
	).Scan(&name, &stock, &reserved, &available)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrProductUnavailable
	}
	if err != nil {
		return fmt.Errorf("reread product %s: %w", item.ProductID, err)
	}
	if !available {
		return domain.ErrProductUnavailable
	}
	return &domain.InsufficientStockError{
		ProductID:   item.ProductID,
		ProductName: name,
		Requested:   item.Quantity,
		Available:   stock - reserved,
	}
}

func (r *orderRepositoryPostgres) insertOrder(ctx context.Context, tx *sql.Tx, order domain.Order) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, order_number, user_id, status, payment_status,
			payment_method, delivery_method, delivery_address,
			customer_name, customer_email, customer_phone, notes,
			subtotal_minor, delivery_fee_minor, total_minor
		) VALUES ($1, $2, NULLIF($3, '')::uuid, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		order.ID, order.OrderNumber, order.UserID, order.Status, order.PaymentStatus,
		order.PaymentMethod, order.DeliveryMethod, order.DeliveryAddress,
		order.CustomerName, order.CustomerEmail, order.CustomerPhone, order.Notes,
		order.SubtotalMinor, order.DeliveryFeeMinor, order.TotalMinor,
	)
	if isUniqueViolation(err, "orders_order_number_key") {
		return domain.ErrOrderNumberConflict
	}
	if err != nil {
		return fmt.Errorf("insert order %s: %w", order.OrderNumber, err)
	}

	for _, item := range order.Items {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (
				id, order_id, product_id, product_name, product_sku,
				product_brand, price_minor, quantity, subtotal_minor
			) VALUES ($1, $2::uuid, $3::uuid, $4, $5, $6, $7, $8, $9)`,
			item.ID, order.ID, item.ProductID, item.ProductName, item.ProductSKU,
			item.ProductBrand, item.PriceMinor, item.Quantity, item.SubtotalMinor,
		); err != nil {
			return fmt.Errorf("insert order item %s: %w", item.ProductID, err)
		}
	}
	return nil
}

const orderColumns = `
	o.id, o.order_number, COALESCE(o.user_id::text, ''),
	o.status, o.payment_status,
	o.customer_name, o.customer_email, o.customer_phone,
	o.delivery_method, o.delivery_address, o.payment_method, o.notes,
	o.subtotal_minor, o.delivery_fee_minor, o.total_minor,
	o.created_at, o.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var o domain.Order
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.UserID,
		&o.Status, &o.PaymentStatus,
		&o.CustomerName, &o.CustomerEmail, &o.CustomerPhone,
		&o.DeliveryMethod, &o.DeliveryAddress, &o.PaymentMethod, &o.Notes,
		&o.SubtotalMinor, &o.DeliveryFeeMinor, &o.TotalMinor,
		&o.CreatedAt, &o.UpdatedAt,
	)
	return o, err
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func loadOrderItems(ctx context.Context, q querier, orderID string) ([]domain.OrderItem, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, product_id, product_name, product_sku, product_brand,
			quantity, price_minor, subtotal_minor, created_at
		FROM order_items
		WHERE order_id::text = $1
		ORDER BY created_at, id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]domain.OrderItem, 0)
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID, &item.ProductID, &item.ProductName, &item.ProductSKU,
			&item.ProductBrand, &item.Quantity, &item.PriceMinor,
			&item.SubtotalMinor, &item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}
	return items, nil
}

func (r *orderRepositoryPostgres) Get(id string) (domain.Order, error) {
	ctx, cancel := opCtx()
	defer cancel()

	row := r.s.db.QueryRowContext(ctx,
		"SELECT "+orderColumns+" FROM orders o WHERE o.id::text = $1", id)
	order, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("get order %s: %w", id, err)
	}

	order.Items, err = loadOrderItems(ctx, r.s.db, id)
	if err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

func (r *orderRepositoryPostgres) ListByUser(userID string, status domain.OrderStatus, limit, offset int) ([]domain.Order, int, error) {
	ctx, cancel := opCtx()
	defer cancel()

	where := " WHERE o.user_id::text = $1"
	args := []any{userID}
	if status != "" {
		where += " AND o.status = $2"
		args = append(args, status)
	}

	var total int
	if err := r.s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM orders o"+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	query := "SELECT " + orderColumns + " FROM orders o" + where +
		" ORDER BY o.created_at DESC, o.id DESC"
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if offset > 0 {
		args = append(args, offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query orders: %w", err)
	}
	defer func() { _ = rows.Close() }()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate orders: %w", err)
	}

	for i := range orders {
		orders[i].Items, err = loadOrderItems(ctx, r.s.db, orders[i].ID)
		if err != nil {
			return nil, 0, err
		}
	}
	return orders, total, nil
}

// Transition читает заказ с блокировкой FOR UPDATE, применяет apply и
// атомарно записывает новый статус вместе с возвратом или списанием резерва.
func (r *orderRepositoryPostgres) Transition(id string, apply domain.TransitionFunc) (domain.Order, error) {
	ctx, cancel := opCtx()
	defer cancel()

	var updated domain.Order
	err := r.s.inTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			"SELECT "+orderColumns+" FROM orders o WHERE o.id::text = $1 FOR UPDATE", id)
		current, err := scanOrder(row)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrOrderNotFound
		}
		if err != nil {
			return fmt.Errorf("lock order %s: %w", id, err)
		}
		current.Items, err = loadOrderItems(ctx, tx, id)
		if err != nil {
			return err
		}

		next, err := apply(current)
		if err != nil {
			return err
		}

		switch domain.TransitionStockEffect(current.Status, next.Status) {
		case domain.StockEffectRelease:
			for _, item := range next.Items {
				if _, err := tx.ExecContext(ctx, `
					UPDATE products
					SET reserved_quantity = reserved_quantity - $1, updated_at = now()
					WHERE id::text = $2`,
					item.Quantity, item.ProductID,
				); err != nil {
					return fmt.Errorf("release reservation for %s: %w", item.ProductID, err)
				}
			}
		case domain.StockEffectConsume:
			for _, item := range next.Items {
				if _, err := tx.ExecContext(ctx, `
					UPDATE products
					SET stock_quantity = stock_quantity - $1,
						reserved_quantity = reserved_quantity - $1,
						updated_at = now()
					WHERE id::text = $2`,
					item.Quantity, item.ProductID,
				); err != nil {
					return fmt.Errorf("consume reservation for %s: %w", item.ProductID, err)
				}
			}
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE orders
			SET status = $2, payment_status = $3, updated_at = now()
			WHERE id::text = $1`,
			id, next.Status, next.PaymentStatus,
		); err != nil {
			return fmt.Errorf("update order %s: %w", id, err)
		}

		if next.Status != current.Status {
			if err := enqueueOutboxTx(ctx, tx, next, "order.status_changed"); err != nil {
				return err
			}
		}

		updated = next
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return updated, nil
}

// enqueueOutboxTx ставит событие заказа в outbox в рамках переданной транзакции.
func enqueueOutboxTx(ctx context.Context, tx *sql.Tx, order domain.Order, eventType string) error {
	payload, err := json.Marshal(map[string]any{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"status":       string(order.Status),
		"total_minor":  order.TotalMinor,
	})
	if err != nil {
		return fmt.Errorf("marshal outbox payload: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO outbox_messages (id, aggregate_type, aggregate_id, event_type, payload)
		VALUES ($1, 'order', $2, $3, $4)`,
		uuid.NewString(), order.ID, eventType, payload,
	); err != nil {
		return fmt.Errorf("enqueue outbox event %s: %w", eventType, err)
	}
	return nil
}

var (
	_ domain.OrderRepository    = (*orderRepositoryPostgres)(nil)
	_ domain.CheckoutRepository = (*orderRepositoryPostgres)(nil)
)
