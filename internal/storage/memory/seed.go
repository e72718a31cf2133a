package memory

import (
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/mustore/internal/domain"
)

// SeedDemoCatalog наполняет хранилище небольшим демо-каталогом.
// Используется при запуске без PostgreSQL, чтобы API было с чем работать.
func SeedDemoCatalog(s *Store) {
	now := time.Now().UTC()

	guitars := domain.Category{ID: uuid.NewString(), Name: "Гитары", Slug: "guitars", SortOrder: 1, IsActive: true}
	keys := domain.Category{ID: uuid.NewString(), Name: "Клавишные", Slug: "keyboards", SortOrder: 2, IsActive: true}
	s.PutCategory(guitars)
	s.PutCategory(keys)

	fender := domain.Brand{ID: uuid.NewString(), Name: "Fender", Slug: "fender", IsActive: true}
	yamaha := domain.Brand{ID: uuid.NewString(), Name: "Yamaha", Slug: "yamaha", IsActive: true}
	s.PutBrand(fender)
	s.PutBrand(yamaha)

	products := []domain.Product{
		{
			ID: uuid.NewString(), SKU: "FEN-STRAT-PLR", Slug: "fender-player-stratocaster",
			Name: "Fender Player Stratocaster", BrandID: fender.ID, BrandName: fender.Name,
			CategoryID: guitars.ID, Description: "Классическая электрогитара серии Player.",
			PriceMinor: 8999000, StockQuantity: 5, IsAvailable: true, IsFeatured: true,
			CreatedAt: now, UpdatedAt: now,
		},
		{
			ID: uuid.NewString(), SKU: "YAM-F310", Slug: "yamaha-f310",
			Name: "Yamaha F310", BrandID: yamaha.ID, BrandName: yamaha.Name,
			CategoryID: guitars.ID, Description: "Акустическая гитара для начинающих.",
			PriceMinor: 1599000, StockQuantity: 12, IsAvailable: true, IsNew: true,
			CreatedAt: now, UpdatedAt: now,
		},
		{
			ID: uuid.NewString(), SKU: "YAM-P45", Slug: "yamaha-p-45",
			Name: "Yamaha P-45", BrandID: yamaha.ID, BrandName: yamaha.Name,
			CategoryID: keys.ID, Description: "Компактное цифровое пианино с молоточковой механикой.",
			PriceMinor: 4799000, StockQuantity: 3, IsAvailable: true,
			CreatedAt: now, UpdatedAt: now,
		},
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range products {
		s.products[p.ID] = p
	}
}
