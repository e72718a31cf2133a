package memory

import (
	"sort"
	"time"

	"github.com/vladislavdragonenkov/mustore/internal/domain"
)

// favoriteRepositoryInMemory — in-memory реализация FavoriteRepository.
type favoriteRepositoryInMemory struct {
	s *Store
}

// NewFavoriteRepository возвращает in-memory репозиторий избранного.
func NewFavoriteRepository(s *Store) domain.FavoriteRepository {
	return &favoriteRepositoryInMemory{s: s}
}

func (r *favoriteRepositoryInMemory) List(userID string) ([]domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	byProduct := r.s.favorites[userID]
	type entry struct {
		product domain.Product
		added   time.Time
	}
	entries := make([]entry, 0, len(byProduct))
	for productID, added := range byProduct {
		if p, ok := r.s.products[productID]; ok {
			entries = append(entries, entry{product: p, added: added})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].added.After(entries[j].added) })

	result := make([]domain.Product, 0, len(entries))
	for _, e := range entries {
		result = append(result, e.product)
	}
	return result, nil
}

func (r *favoriteRepositoryInMemory) Add(userID, productID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[productID]; !ok {
		return domain.ErrProductNotFound
	}
	byProduct, ok := r.s.favorites[userID]
	if !ok {
		byProduct = make(map[string]time.Time)
		r.s.favorites[userID] = byProduct
	}
	if _, exists := byProduct[productID]; exists {
		return domain.ErrFavoriteExists
	}
	byProduct[productID] = time.Now().UTC()
	return nil
}

func (r *favoriteRepositoryInMemory) Remove(userID, productID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	byProduct, ok := r.s.favorites[userID]
	if !ok {
		return domain.ErrFavoriteNotFound
	}
	if _, exists := byProduct[productID]; !exists {
		return domain.ErrFavoriteNotFound
	}
	delete(byProduct, productID)
	return nil
}

var _ domain.FavoriteRepository = (*favoriteRepositoryInMemory)(nil)
