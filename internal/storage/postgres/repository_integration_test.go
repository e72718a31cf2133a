package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/mustore/internal/domain"
)

// testDSNEnv задаёт адрес тестовой базы; без него интеграционные тесты
// пропускаются.
const testDSNEnv = "MUSTORE_POSTGRES_TEST_DSN"

func openTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv(testDSNEnv)
	if dsn == "" {
		t.Skipf("set %s to run postgres integration tests", testDSNEnv)
	}

	store, err := Open(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.MigrateUp(context.Background(), 0))
	return store
}

func insertTestProduct(t *testing.T, store *Store, stock, reserved int32) domain.Product {
	t.Helper()

	p := domain.Product{
		ID:               uuid.NewString(),
		SKU:              "SKU-" + uuid.NewString()[:8],
		Slug:             "slug-" + uuid.NewString()[:8],
		Name:             "Тестовая гитара",
		PriceMinor:       125000,
		StockQuantity:    stock,
		ReservedQuantity: reserved,
		IsAvailable:      true,
	}
	require.NoError(t, NewProductRepository(store).Create(p))
	return p
}

func buildTestOrder(lines []domain.CartLine) (domain.Order, error) {
	if len(lines) == 0 {
		return domain.Order{}, domain.ErrEmptyCart
	}

	order := domain.Order{
		ID:             uuid.NewString(),
		OrderNumber:    fmt.Sprintf("MS-%d", time.Now().UnixNano()),
		Status:         domain.OrderStatusPending,
		PaymentStatus:  domain.PaymentStatusPending,
		PaymentMethod:  domain.PaymentMethodCash,
		DeliveryMethod: domain.DeliveryMethodPickup,
		CustomerName:   "Иван Петров",
		CustomerEmail:  "ivan@example.com",
		CustomerPhone:  "+79990001122",
	}
	for _, line := range lines {
		subtotal := line.SubtotalMinor()
		order.Items = append(order.Items, domain.OrderItem{
			ID:            uuid.NewString(),
			ProductID:     line.ProductID,
			ProductName:   line.Name,
			ProductSKU:    line.SKU,
			ProductBrand:  line.Brand,
			Quantity:      line.Quantity,
			PriceMinor:    line.PriceMinor,
			SubtotalMinor: subtotal,
		})
		order.SubtotalMinor += subtotal
	}
	order.TotalMinor = order.SubtotalMinor + order.DeliveryFeeMinor
	return order, nil
}

func TestPlaceOrderReservesStockAndClearsCart(t *testing.T) {
	store := openTestStore(t)
	carts := NewCartRepository(store)
	checkout := NewCheckoutRepository(store)
	products := NewProductRepository(store)

	p := insertTestProduct(t, store, 10, 0)
	cart, err := carts.GetOrCreate(domain.CartOwner{SessionID: uuid.NewString()})
	require.NoError(t, err)
	require.NoError(t, carts.UpsertItem(cart.ID, p.ID, 3))

	order, err := checkout.PlaceOrder(cart.ID, buildTestOrder)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	require.Len(t, order.Items, 1)

	got, err := products.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(10), got.StockQuantity)
	assert.Equal(t, int32(3), got.ReservedQuantity)

	lines, err := carts.Lines(cart.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestPlaceOrderInsufficientStockRollsBack(t *testing.T) {
	store := openTestStore(t)
	carts := NewCartRepository(store)
	checkout := NewCheckoutRepository(store)
	products := NewProductRepository(store)

	plenty := insertTestProduct(t, store, 10, 0)
	scarce := insertTestProduct(t, store, 5, 4)

	cart, err := carts.GetOrCreate(domain.CartOwner{SessionID: uuid.NewString()})
	require.NoError(t, err)
	require.NoError(t, carts.UpsertItem(cart.ID, plenty.ID, 2))
	require.NoError(t, carts.UpsertItem(cart.ID, scarce.ID, 3))

	_, err = checkout.PlaceOrder(cart.ID, buildTestOrder)
	require.Error(t, err)
	assert.True(t, domain.IsInsufficientStock(err))

	// Резерв первого товара откатился вместе с транзакцией.
	got, err := products.Get(plenty.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(0), got.ReservedQuantity)

	lines, err := carts.Lines(cart.ID)
	require.NoError(t, err)
	assert.Len(t, lines, 2)
}

func TestTransitionCancelReleasesReservation(t *testing.T) {
	store := openTestStore(t)
	carts := NewCartRepository(store)
	checkout := NewCheckoutRepository(store)
	orders := NewOrderRepository(store)
	products := NewProductRepository(store)

	p := insertTestProduct(t, store, 10, 0)
	cart, err := carts.GetOrCreate(domain.CartOwner{SessionID: uuid.NewString()})
	require.NoError(t, err)
	require.NoError(t, carts.UpsertItem(cart.ID, p.ID, 4))

	order, err := checkout.PlaceOrder(cart.ID, buildTestOrder)
	require.NoError(t, err)

	cancelled, err := orders.Transition(order.ID, func(o domain.Order) (domain.Order, error) {
		o.Status = domain.OrderStatusCancelled
		return o, nil
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, cancelled.Status)

	got, err := products.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(10), got.StockQuantity)
	assert.Equal(t, int32(0), got.ReservedQuantity)
}

func TestTransitionDeliveredConsumesStock(t *testing.T) {
	store := openTestStore(t)
	carts := NewCartRepository(store)
	checkout := NewCheckoutRepository(store)
	orders := NewOrderRepository(store)
	products := NewProductRepository(store)

	p := insertTestProduct(t, store, 10, 0)
	cart, err := carts.GetOrCreate(domain.CartOwner{SessionID: uuid.NewString()})
	require.NoError(t, err)
	require.NoError(t, carts.UpsertItem(cart.ID, p.ID, 3))

	order, err := checkout.PlaceOrder(cart.ID, buildTestOrder)
	require.NoError(t, err)

	for _, status := range []domain.OrderStatus{
		domain.OrderStatusProcessing,
		domain.OrderStatusShipped,
		domain.OrderStatusDelivered,
	} {
		status := status
		_, err = orders.Transition(order.ID, func(o domain.Order) (domain.Order, error) {
			o.Status = status
			return o, nil
		})
		require.NoError(t, err)
	}

	got, err := products.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(7), got.StockQuantity)
	assert.Equal(t, int32(0), got.ReservedQuantity)
}

func TestConcurrentCheckoutLastUnit(t *testing.T) {
	store := openTestStore(t)
	carts := NewCartRepository(store)
	checkout := NewCheckoutRepository(store)
	products := NewProductRepository(store)

	p := insertTestProduct(t, store, 1, 0)

	const attempts = 4
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			cart, err := carts.GetOrCreate(domain.CartOwner{SessionID: uuid.NewString()})
			if err != nil {
				results <- err
				return
			}
			if err := carts.UpsertItem(cart.ID, p.ID, 1); err != nil {
				results <- err
				return
			}
			_, err = checkout.PlaceOrder(cart.ID, buildTestOrder)
			results <- err
		}()
	}

	var won, lost int
	for i := 0; i < attempts; i++ {
		err := <-results
		switch {
		case err == nil:
			won++
		case domain.IsInsufficientStock(err):
			lost++
		default:
			t.Fatalf("unexpected checkout error: %v", err)
		}
	}
	assert.Equal(t, 1, won, "exactly one checkout must win the last unit")
	assert.Equal(t, attempts-1, lost)

	got, err := products.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(1), got.ReservedQuantity)
}

func TestOutboxEventEnqueuedWithOrder(t *testing.T) {
	store := openTestStore(t)
	carts := NewCartRepository(store)
	checkout := NewCheckoutRepository(store)
	outbox := NewOutboxRepository(store)

	p := insertTestProduct(t, store, 10, 0)
	cart, err := carts.GetOrCreate(domain.CartOwner{SessionID: uuid.NewString()})
	require.NoError(t, err)
	require.NoError(t, carts.UpsertItem(cart.ID, p.ID, 1))

	order, err := checkout.PlaceOrder(cart.ID, buildTestOrder)
	require.NoError(t, err)

	pending, err := outbox.PullPending(100)
	require.NoError(t, err)

	var found bool
	for _, msg := range pending {
		if msg.AggregateID == order.ID && msg.EventType == "order.placed" {
			found = true
		}
	}
	assert.True(t, found, "order.placed event for %s not found in outbox", order.ID)
}

func TestListHidesUnavailableProducts(t *testing.T) {
	store := openTestStore(t)
	products := NewProductRepository(store)

	token := "каталог-" + uuid.NewString()[:8]
	listed := insertTestProduct(t, store, 5, 0)
	listed.Name = "Видимая гитара " + token
	require.NoError(t, products.Update(listed))

	delisted := insertTestProduct(t, store, 5, 0)
	delisted.Name = "Снятая гитара " + token
	delisted.IsAvailable = false
	require.NoError(t, products.Update(delisted))

	got, total, err := products.List(domain.ProductFilter{Search: token})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, got, 1)
	assert.Equal(t, listed.ID, got[0].ID)

	// По прямой ссылке снятый товар всё ещё открывается.
	found, err := products.Find(delisted.ID)
	require.NoError(t, err)
	assert.False(t, found.IsAvailable)
}

func TestPullPendingKeepsMessagesUntilMarked(t *testing.T) {
	store := openTestStore(t)
	outbox := NewOutboxRepository(store)

	msg, err := outbox.Enqueue(domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   uuid.NewString(),
		EventType:     "order.placed",
		Payload:       []byte(`{"status":"pending"}`),
	})
	require.NoError(t, err)

	contains := func(messages []domain.OutboxMessage) bool {
		for _, m := range messages {
			if m.ID == msg.ID {
				return true
			}
		}
		return false
	}

	// Пока сообщение не помечено, оно возвращается повторно: воркеров
	// спасает идемпотентность паблишера, а не блокировки строк.
	first, err := outbox.PullPending(1000)
	require.NoError(t, err)
	assert.True(t, contains(first))

	second, err := outbox.PullPending(1000)
	require.NoError(t, err)
	assert.True(t, contains(second))

	require.NoError(t, outbox.MarkSent(msg.ID))

	third, err := outbox.PullPending(1000)
	require.NoError(t, err)
	assert.False(t, contains(third))
}
