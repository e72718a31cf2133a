package memory

import (
	"sync"
	"time"

	"github.com/vladislavdragonenkov/mustore/internal/domain"
)

// outboxRecord хранит сообщение и служебные поля для in-memory реализации.
type outboxRecord struct {
	msg       domain.OutboxMessage
	status    string
	createdAt time.Time
	updatedAt time.Time
}

// Store — общее in-memory состояние магазина для локальной разработки и
// тестов. Один мьютекс на всё состояние даёт сериализуемые «транзакции»:
// оформление заказа читает корзину, резервирует остатки и записывает заказ
// под одной блокировкой, как и его PostgreSQL-аналог под одной транзакцией.
type Store struct {
	mu sync.RWMutex

	products   map[string]domain.Product
	brands     map[string]domain.Brand
	categories map[string]domain.Category

	carts         map[string]domain.Cart
	cartByUser    map[string]string
	cartBySession map[string]string
	cartItems     map[string]domain.CartItem

	orders map[string]domain.Order

	users       map[string]domain.User
	userByEmail map[string]string

	// favorites: userID -> productID -> момент добавления.
	favorites map[string]map[string]time.Time

	outbox map[string]*outboxRecord
}

// NewStore создаёт пустое in-memory хранилище.
func NewStore() *Store {
	return &Store{
		products:      make(map[string]domain.Product),
		brands:        make(map[string]domain.Brand),
		categories:    make(map[string]domain.Category),
		carts:         make(map[string]domain.Cart),
		cartByUser:    make(map[string]string),
		cartBySession: make(map[string]string),
		cartItems:     make(map[string]domain.CartItem),
		orders:        make(map[string]domain.Order),
		users:         make(map[string]domain.User),
		userByEmail:   make(map[string]string),
		favorites:     make(map[string]map[string]time.Time),
		outbox:        make(map[string]*outboxRecord),
	}
}

// PutBrand сохраняет бренд (используется при наполнении демо-каталога и в тестах).
func (s *Store) PutBrand(b domain.Brand) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.brands[b.ID] = b
}

// PutCategory сохраняет категорию.
func (s *Store) PutCategory(c domain.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[c.ID] = c
}

// cloneOrder возвращает копию заказа с собственным слайсом позиций,
// чтобы избежать непредсказуемых мутаций извне.
func cloneOrder(order domain.Order) domain.Order {
	copied := order
	copied.Items = make([]domain.OrderItem, len(order.Items))
	copy(copied.Items, order.Items)
	return copied
}
