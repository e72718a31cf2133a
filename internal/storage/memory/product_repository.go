package memory

import (
	"sort"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/mustore/internal/domain"
)

// productRepositoryInMemory — in-memory реализация ProductRepository.
type productRepositoryInMemory struct {
	s *Store
}

// NewProductRepository возвращает in-memory репозиторий каталога.
func NewProductRepository(s *Store) domain.ProductRepository {
	return &productRepositoryInMemory{s: s}
}

func (r *productRepositoryInMemory) List(filter domain.ProductFilter) ([]domain.Product, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var categoryID string
	if filter.CategorySlug != "" {
		for _, c := range r.s.categories {
			if c.Slug == filter.CategorySlug {
				categoryID = c.ID
				break
			}
		}
		if categoryID == "" {
			return []domain.Product{}, 0, nil
		}
	}

	result := make([]domain.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		if !matchFilter(p, filter, categoryID) {
			continue
		}
		result = append(result, p)
	}

	sortProducts(result, filter)
	total := len(result)

	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return []domain.Product{}, total, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}

	return result, total, nil
}

func matchFilter(p domain.Product, filter domain.ProductFilter, categoryID string) bool {
	if !p.IsAvailable {
		return false
	}
	if categoryID != "" && p.CategoryID != categoryID {
		return false
	}
	if filter.CategoryID != "" && p.CategoryID != filter.CategoryID {
		return false
	}
	if len(filter.BrandIDs) > 0 {
		found := false
		for _, id := range filter.BrandIDs {
			if p.BrandID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.PriceMinMinor > 0 && p.PriceMinor < filter.PriceMinMinor {
		return false
	}
	if filter.PriceMaxMinor > 0 && p.PriceMinor > filter.PriceMaxMinor {
		return false
	}
	if filter.InStockOnly && p.AvailableQuantity() <= 0 {
		return false
	}
	if filter.FeaturedOnly && !p.IsFeatured {
		return false
	}
	if filter.NewOnly && !p.IsNew {
		return false
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Description), needle) {
			return false
		}
	}
	return true
}

func sortProducts(products []domain.Product, filter domain.ProductFilter) {
	less := func(a, b domain.Product) bool { return a.CreatedAt.Before(b.CreatedAt) }
	switch filter.SortBy {
	case domain.ProductSortPrice:
		less = func(a, b domain.Product) bool { return a.PriceMinor < b.PriceMinor }
	case domain.ProductSortName:
		less = func(a, b domain.Product) bool { return a.Name < b.Name }
	}

	sort.Slice(products, func(i, j int) bool {
		if filter.SortDesc {
			return less(products[j], products[i])
		}
		return less(products[i], products[j])
	})
}

func (r *productRepositoryInMemory) Get(id string) (domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return p, nil
}

func (r *productRepositoryInMemory) Find(idOrSlug string) (domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if p, ok := r.s.products[idOrSlug]; ok {
		return p, nil
	}
	for _, p := range r.s.products {
		if p.Slug == idOrSlug {
			return p, nil
		}
	}
	return domain.Product{}, domain.ErrProductNotFound
}

func (r *productRepositoryInMemory) Create(p domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	if brand, ok := r.s.brands[p.BrandID]; ok {
		p.BrandName = brand.Name
	}
	r.s.products[p.ID] = p
	return nil
}

func (r *productRepositoryInMemory) Update(p domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[p.ID]; !ok {
		return domain.ErrProductNotFound
	}
	p.UpdatedAt = time.Now().UTC()
	if brand, ok := r.s.brands[p.BrandID]; ok {
		p.BrandName = brand.Name
	}
	r.s.products[p.ID] = p
	return nil
}

var _ domain.ProductRepository = (*productRepositoryInMemory)(nil)

// catalogRepositoryInMemory отдаёт справочники из общего состояния.
type catalogRepositoryInMemory struct {
	s *Store
}

// NewCatalogRepository возвращает in-memory реализацию CatalogRepository.
func NewCatalogRepository(s *Store) domain.CatalogRepository {
	return &catalogRepositoryInMemory{s: s}
}

func (r *catalogRepositoryInMemory) Categories() ([]domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]domain.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		if c.IsActive {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].SortOrder != result[j].SortOrder {
			return result[i].SortOrder < result[j].SortOrder
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (r *catalogRepositoryInMemory) Brands(categorySlug string) ([]domain.Brand, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var categoryID string
	if categorySlug != "" {
		for _, c := range r.s.categories {
			if c.Slug == categorySlug {
				categoryID = c.ID
				break
			}
		}
	}

	result := make([]domain.Brand, 0, len(r.s.brands))
	for _, b := range r.s.brands {
		if !b.IsActive {
			continue
		}
		if categoryID != "" && !r.brandHasProductsIn(b.ID, categoryID) {
			continue
		}
		result = append(result, b)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (r *catalogRepositoryInMemory) brandHasProductsIn(brandID, categoryID string) bool {
	for _, p := range r.s.products {
		if p.BrandID == brandID && p.CategoryID == categoryID {
			return true
		}
	}
	return false
}

var _ domain.CatalogRepository = (*catalogRepositoryInMemory)(nil)
