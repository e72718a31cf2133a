package domain

import "time"

// ProductRepository описывает требования к хранилищу каталога.
type ProductRepository interface {
	// List возвращает страницу товаров по фильтру и общее число подходящих
	// записей. Снятые с продажи товары (IsAvailable=false) в выдачу не
	// попадают независимо от фильтра: это витрина, а не админский список.
	List(filter ProductFilter) ([]Product, int, error)
	// Get возвращает товар по идентификатору или ErrProductNotFound.
	Get(id string) (Product, error)
	// Find ищет товар по идентификатору либо slug.
	Find(idOrSlug string) (Product, error)
	// Create сохраняет новый товар.
	Create(p Product) error
	// Update перезаписывает атрибуты товара. Складские счётчики этим методом
	// не корректируются сверх явно переданных значений.
	Update(p Product) error
}

// CatalogRepository отдаёт справочники каталога.
type CatalogRepository interface {
	Categories() ([]Category, error)
	// Brands возвращает бренды; при непустом categorySlug — только бренды,
	// представленные в указанной категории.
	Brands(categorySlug string) ([]Brand, error)
}

// CartRepository описывает хранилище корзин.
type CartRepository interface {
	// GetOrCreate возвращает корзину владельца, создавая её при первом обращении.
	GetOrCreate(owner CartOwner) (Cart, error)
	// Lines возвращает позиции корзины вместе с актуальным состоянием товаров.
	Lines(cartID string) ([]CartLine, error)
	// UpsertItem добавляет товар в корзину либо выставляет новое количество
	// существующей позиции.
	UpsertItem(cartID, productID string, quantity int32) error
	// UpdateItemQuantity меняет количество позиции по её идентификатору.
	UpdateItemQuantity(cartID, itemID string, quantity int32) error
	// RemoveItem удаляет позицию из корзины.
	RemoveItem(cartID, itemID string) error
	// Clear опустошает корзину, не удаляя её саму.
	Clear(cartID string) error
}

// CheckoutBuildFunc получает позиции корзины, прочитанные внутри атомарной
// единицы работы, и собирает из них заказ: валидация, цены, снимки позиций.
// Возвращённая ошибка откатывает всю единицу работы.
type CheckoutBuildFunc func(lines []CartLine) (Order, error)

// CheckoutRepository выполняет оформление заказа одной атомарной единицей
// работы: чтение корзины, резервирование остатков, запись заказа с позициями,
// постановка события в outbox и очистка корзины фиксируются вместе или никак.
type CheckoutRepository interface {
	// PlaceOrder резервирует товары условным обновлением
	// (reserved_quantity + qty только при достаточном доступном остатке);
	// нулевое число затронутых строк трактуется как нехватка товара и
	// откатывает транзакцию целиком.
	PlaceOrder(cartID string, build CheckoutBuildFunc) (Order, error)
}

// TransitionFunc применяет смену статуса к прочитанному заказу.
// Возвращённая ошибка откатывает транзакцию перехода.
type TransitionFunc func(order Order) (Order, error)

// OrderRepository описывает хранилище заказов.
type OrderRepository interface {
	// Get возвращает заказ с позициями или ErrOrderNotFound.
	Get(id string) (Order, error)
	// ListByUser возвращает страницу заказов пользователя и общее их число.
	// Пустой status означает «без фильтра по статусу».
	ListByUser(userID string, status OrderStatus, limit, offset int) ([]Order, int, error)
	// Transition читает заказ с блокировкой, применяет apply и атомарно
	// записывает новый статус вместе с корректировкой складских счётчиков,
	// вытекающей из перехода (возврат или списание резерва).
	Transition(id string, apply TransitionFunc) (Order, error)
}

// FavoriteRepository хранит избранные товары пользователей.
type FavoriteRepository interface {
	List(userID string) ([]Product, error)
	Add(userID, productID string) error
	Remove(userID, productID string) error
}

// UserRepository описывает хранилище пользователей.
type UserRepository interface {
	Create(user User) error
	Get(id string) (User, error)
	GetByEmail(email string) (User, error)
}

// TopSeller — позиция в топе продаж по числу проданных единиц.
// Имя берётся из снимка в позициях заказа, а не из живого каталога.
type TopSeller struct {
	ProductID string
	Name      string
	Units     int64
}

// StoreStats — сводка для административной панели.
type StoreStats struct {
	OrdersTotal         int
	OrdersPending       int
	CustomersTotal      int
	ProductsAvailable   int
	MonthlyRevenueMinor int64
	TopSellers          []TopSeller
}

// StatsRepository собирает агрегированную статистику магазина.
type StatsRepository interface {
	Snapshot() (StoreStats, error)
}

// OutboxMessage хранит данные для публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}

// OutboxRepository позволяет сохранять события для последующей публикации.
// Постановка событий заказа выполняется в той же транзакции, что и запись
// самого заказа; Enqueue нужен для служебных сценариев и тестов.
type OutboxRepository interface {
	Enqueue(msg OutboxMessage) (OutboxMessage, error)
	PullPending(limit int) ([]OutboxMessage, error)
	Stats() (OutboxStats, error)
	MarkSent(id string) error
	MarkFailed(id string) error
}

// OutboxPublisher публикует события из transactional outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(event OutboxMessage) error
}
