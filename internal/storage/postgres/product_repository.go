package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/vladislavdragonenkov/mustore/internal/domain"
)

// productRepositoryPostgres — реализация ProductRepository поверх PostgreSQL.
type productRepositoryPostgres struct {
	s *Store
}

// NewProductRepository возвращает репозиторий каталога товаров.
func NewProductRepository(s *Store) domain.ProductRepository {
	return &productRepositoryPostgres{s: s}
}

const productColumns = `
	p.id, p.sku, p.slug, p.name,
	COALESCE(p.brand_id::text, ''), COALESCE(b.name, ''),
	COALESCE(p.category_id::text, ''), p.description,
	p.price_minor, p.old_price_minor,
	p.stock_quantity, p.reserved_quantity,
	p.is_available, p.is_featured, p.is_new,
	p.created_at, p.updated_at`

func scanProduct(row interface{ Scan(dest ...any) error }) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID, &p.SKU, &p.Slug, &p.Name,
		&p.BrandID, &p.BrandName,
		&p.CategoryID, &p.Description,
		&p.PriceMinor, &p.OldPriceMinor,
		&p.StockQuantity, &p.ReservedQuantity,
		&p.IsAvailable, &p.IsFeatured, &p.IsNew,
		&p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

// List возвращает страницу товаров и общее число подходящих под фильтр записей.
func (r *productRepositoryPostgres) List(filter domain.ProductFilter) ([]domain.Product, int, error) {
	ctx, cancel := opCtx()
	defer cancel()

	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	// Витрина не показывает снятые с продажи товары.
	conds := []string{"p.is_available"}

	if filter.CategorySlug != "" {
		conds = append(conds, "c.slug = "+arg(filter.CategorySlug))
	}
	if filter.CategoryID != "" {
		conds = append(conds, "p.category_id::text = "+arg(filter.CategoryID))
	}
	if len(filter.BrandIDs) > 0 {
		placeholders := make([]string, 0, len(filter.BrandIDs))
		for _, id := range filter.BrandIDs {
			placeholders = append(placeholders, arg(id))
		}
		conds = append(conds, "p.brand_id::text IN ("+strings.Join(placeholders, ", ")+")")
	}
	if filter.PriceMinMinor > 0 {
		conds = append(conds, "p.price_minor >= "+arg(filter.PriceMinMinor))
	}
	if filter.PriceMaxMinor > 0 {
		conds = append(conds, "p.price_minor <= "+arg(filter.PriceMaxMinor))
	}
	if filter.InStockOnly {
		conds = append(conds, "p.stock_quantity - p.reserved_quantity > 0")
	}
	if filter.FeaturedOnly {
		conds = append(conds, "p.is_featured")
	}
	if filter.NewOnly {
		conds = append(conds, "p.is_new")
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		conds = append(conds, "(LOWER(p.name) LIKE "+arg(pattern)+" OR LOWER(p.description) LIKE "+arg(pattern)+")")
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	from := ` FROM products p
		LEFT JOIN brands b ON b.id = p.brand_id
		LEFT JOIN categories c ON c.id = p.category_id`

	var total int
	if err := r.s.db.QueryRowContext(ctx, "SELECT COUNT(*)"+from+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	orderBy := "p.created_at"
	switch filter.SortBy {
	case domain.ProductSortPrice:
		orderBy = "p.price_minor"
	case domain.ProductSortName:
		orderBy = "p.name"
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}

	query := "SELECT " + productColumns + from + where +
		fmt.Sprintf(" ORDER BY %s %s, p.id", orderBy, direction)
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + arg(filter.Offset)
	}

	rows, err := r.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query products: %w", err)
	}
	defer func() { _ = rows.Close() }()

	products := make([]domain.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate products: %w", err)
	}

	return products, total, nil
}

func (r *productRepositoryPostgres) Get(id string) (domain.Product, error) {
	ctx, cancel := opCtx()
	defer cancel()

	row := r.s.db.QueryRowContext(ctx, "SELECT "+productColumns+`
		FROM products p
		LEFT JOIN brands b ON b.id = p.brand_id
		WHERE p.id::text = $1`, id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, domain.ErrProductNotFound
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("get product %s: %w", id, err)
	}
	return p, nil
}

// Find ищет товар по идентификатору либо slug.
func (r *productRepositoryPostgres) Find(idOrSlug string) (domain.Product, error) {
	ctx, cancel := opCtx()
	defer cancel()

	row := r.s.db.QueryRowContext(ctx, "SELECT "+productColumns+`
		FROM products p
		LEFT JOIN brands b ON b.id = p.brand_id
		WHERE p.id::text = $1 OR p.slug = $1`, idOrSlug)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, domain.ErrProductNotFound
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("find product %s: %w", idOrSlug, err)
	}
	return p, nil
}

func (r *productRepositoryPostgres) Create(p domain.Product) error {
	ctx, cancel := opCtx()
	defer cancel()

	_, err := r.s.db.ExecContext(ctx, `
		INSERT INTO products (
			id, sku, slug, name, brand_id, category_id, description,
			price_minor, old_price_minor, stock_quantity, reserved_quantity,
			is_available, is_featured, is_new
		) VALUES ($1, $2, $3, $4, NULLIF($5, '')::uuid, NULLIF($6, '')::uuid, $7,
			$8, $9, $10, $11, $12, $13, $14)`,
		p.ID, p.SKU, p.Slug, p.Name, p.BrandID, p.CategoryID, p.Description,
		p.PriceMinor, p.OldPriceMinor, p.StockQuantity, p.ReservedQuantity,
		p.IsAvailable, p.IsFeatured, p.IsNew,
	)
	if err != nil {
		return fmt.Errorf("insert product %s: %w", p.SKU, err)
	}
	return nil
}

func (r *productRepositoryPostgres) Update(p domain.Product) error {
	ctx, cancel := opCtx()
	defer cancel()

	res, err := r.s.db.ExecContext(ctx, `
		UPDATE products SET
			sku = $2, slug = $3, name = $4,
			brand_id = NULLIF($5, '')::uuid, category_id = NULLIF($6, '')::uuid,
			description = $7, price_minor = $8, old_price_minor = $9,
			stock_quantity = $10, reserved_quantity = $11,
			is_available = $12, is_featured = $13, is_new = $14,
			updated_at = now()
		WHERE id::text = $1`,
		p.ID, p.SKU, p.Slug, p.Name, p.BrandID, p.CategoryID,
		p.Description, p.PriceMinor, p.OldPriceMinor,
		p.StockQuantity, p.ReservedQuantity,
		p.IsAvailable, p.IsFeatured, p.IsNew,
	)
	if err != nil {
		return fmt.Errorf("update product %s: %w", p.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update product %s: rows affected: %w", p.ID, err)
	}
	if affected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// catalogRepositoryPostgres отдаёт справочники каталога.
type catalogRepositoryPostgres struct {
	s *Store
}

// NewCatalogRepository возвращает репозиторий справочников.
func NewCatalogRepository(s *Store) domain.CatalogRepository {
	return &catalogRepositoryPostgres{s: s}
}

func (r *catalogRepositoryPostgres) Categories() ([]domain.Category, error) {
	ctx, cancel := opCtx()
	defer cancel()

	rows, err := r.s.db.QueryContext(ctx, `
		SELECT id, name, slug, sort_order, is_active
		FROM categories
		WHERE is_active
		ORDER BY sort_order, name`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	categories := make([]domain.Category, 0)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.SortOrder, &c.IsActive); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}

func (r *catalogRepositoryPostgres) Brands(categorySlug string) ([]domain.Brand, error) {
	ctx, cancel := opCtx()
	defer cancel()

	query := `
		SELECT id, name, slug, is_active
		FROM brands
		WHERE is_active
		ORDER BY name`
	args := []any{}
	if categorySlug != "" {
		query = `
			SELECT DISTINCT b.id, b.name, b.slug, b.is_active
			FROM brands b
			JOIN products p ON p.brand_id = b.id
			JOIN categories c ON c.id = p.category_id
			WHERE b.is_active AND c.slug = $1
			ORDER BY b.name`
		args = append(args, categorySlug)
	}

	rows, err := r.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query brands: %w", err)
	}
	defer func() { _ = rows.Close() }()

	brands := make([]domain.Brand, 0)
	for rows.Next() {
		var b domain.Brand
		if err := rows.Scan(&b.ID, &b.Name, &b.Slug, &b.IsActive); err != nil {
			return nil, fmt.Errorf("scan brand: %w", err)
		}
		brands = append(brands, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate brands: %w", err)
	}
	return brands, nil
}

var (
	_ domain.ProductRepository = (*productRepositoryPostgres)(nil)
	_ domain.CatalogRepository = (*catalogRepositoryPostgres)(nil)
)
