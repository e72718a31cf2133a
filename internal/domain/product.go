package domain

import "time"

// Product описывает товар каталога.
// Денежные поля хранятся в минимальных единицах (копейках).
type Product struct {
	ID            string
	SKU           string
	Slug          string
	Name          string
	BrandID       string
	BrandName     string
	CategoryID    string
	Description   string
	PriceMinor    int64
	OldPriceMinor int64
	// StockQuantity — физическое количество на складе.
	StockQuantity int32
	// ReservedQuantity — количество, удерживаемое неисполненными заказами.
	// Инвариант: 0 <= ReservedQuantity <= StockQuantity.
	ReservedQuantity int32
	IsAvailable      bool
	IsFeatured       bool
	IsNew            bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// AvailableQuantity возвращает количество, доступное к покупке прямо сейчас.
func (p *Product) AvailableQuantity() int32 {
	return p.StockQuantity - p.ReservedQuantity
}

// ValidateCounters проверяет инвариант складских счётчиков.
func (p *Product) ValidateCounters() error {
	if p.ReservedQuantity < 0 || p.ReservedQuantity > p.StockQuantity {
		return ErrAmountMismatch
	}
	return nil
}

// Brand — производитель товара.
type Brand struct {
	ID       string
	Name     string
	Slug     string
	IsActive bool
}

// Category — раздел каталога.
type Category struct {
	ID        string
	Name      string
	Slug      string
	SortOrder int32
	IsActive  bool
}

// ProductSort задаёт допустимые поля сортировки каталога.
type ProductSort string

const (
	ProductSortCreatedAt ProductSort = "created_at"
	ProductSortPrice     ProductSort = "price"
	ProductSortName      ProductSort = "name"
)

// ProductFilter описывает параметры выборки товаров.
type ProductFilter struct {
	CategorySlug  string
	CategoryID    string
	BrandIDs      []string
	PriceMinMinor int64
	PriceMaxMinor int64
	InStockOnly   bool
	FeaturedOnly  bool
	NewOnly       bool
	Search        string
	SortBy        ProductSort
	SortDesc      bool
	Limit         int
	Offset        int
}
