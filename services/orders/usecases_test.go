package main

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abcretail/storefront/pkg/money"
	"github.com/abcretail/storefront/pkg/store"
)

// fakePublisher registra as mensagens publicadas e pode ser configurado
// para falhar
type fakePublisher struct {
	mu        sync.Mutex
	published []publishedMessage
	err       error
}

type publishedMessage struct {
	key     string
	payload []byte
}

func (p *fakePublisher) Publish(_ context.Context, key string, payload []byte) error {
	if p.err != nil {
		return p.err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, publishedMessage{key: key, payload: payload})
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) messages() []publishedMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedMessage(nil), p.published...)
}

type submitFixture struct {
	customers *store.Memory[Customer]
	products  *store.Memory[Product]
	orders    *store.Memory[Order]

	fulfillment   *fakePublisher
	notifications *fakePublisher
	stock         *fakePublisher

	useCase *OrderUseCase
}

func newSubmitFixture(t *testing.T) *submitFixture {
	t.Helper()
	f := &submitFixture{
		customers:     store.NewMemory[Customer](),
		products:      store.NewMemory[Product](),
		orders:        store.NewMemory[Order](),
		fulfillment:   &fakePublisher{},
		notifications: &fakePublisher{},
		stock:         &fakePublisher{},
	}
	f.useCase = NewOrderUseCase(f.customers, f.products, f.orders, f.fulfillment, f.notifications, f.stock)

	ctx := context.Background()
	require.NoError(t, f.customers.Insert(ctx, "c1", Customer{
		ID: "c1", Name: "Ana", Surname: "Silva", Username: "anasilva", Email: "ana@example.com",
	}))
	require.NoError(t, f.products.Insert(ctx, "p1", Product{
		ID: "p1", ProductName: "Widget", Price: money.MustFromString("10.00"), StockAvailable: 5,
	}))
	return f
}

func (f *submitFixture) productStock(t *testing.T) int {
	t.Helper()
	product, _, err := f.products.Get(context.Background(), "p1")
	require.NoError(t, err)
	return product.StockAvailable
}

func TestSubmitOrder_Success(t *testing.T) {
	// Arrange
	f := newSubmitFixture(t)

	// Act
	orderID, err := f.useCase.SubmitOrder(context.Background(), CreateOrderRequest{
		CustomerID: "c1", ProductID: "p1", Quantity: 3,
	})

	// Assert
	require.NoError(t, err)
	assert.NotEmpty(t, orderID)
	assert.Equal(t, 2, f.productStock(t))

	msgs := f.fulfillment.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, orderID, msgs[0].key)

	var msg OrderMessage
	require.NoError(t, json.Unmarshal(msgs[0].payload, &msg))
	assert.Equal(t, orderID, msg.OrderID)
	assert.Equal(t, "c1", msg.CustomerID)
	assert.Equal(t, "Ana Silva", msg.CustomerName)
	assert.Equal(t, "p1", msg.ProductID)
	assert.Equal(t, "Widget", msg.ProductName)
	assert.Equal(t, 3, msg.Quantity)
	assert.True(t, msg.UnitPrice.Equal(money.MustFromString("10.00")))
	assert.True(t, msg.TotalPrice.Equal(money.MustFromString("30.00")))
	assert.False(t, msg.SubmittedAt.IsZero())
	assert.Equal(t, time.UTC, msg.SubmittedAt.Location())

	// O contrato de fio serializa preços como números JSON
	assert.Contains(t, string(msgs[0].payload), `"unitPrice":10`)
	assert.Contains(t, string(msgs[0].payload), `"totalPrice":30`)
}

func TestSubmitOrder_PublishesStockUpdate(t *testing.T) {
	// Arrange
	f := newSubmitFixture(t)

	// Act
	_, err := f.useCase.SubmitOrder(context.Background(), CreateOrderRequest{
		CustomerID: "c1", ProductID: "p1", Quantity: 3,
	})

	// Assert
	require.NoError(t, err)
	msgs := f.stock.messages()
	require.Len(t, msgs, 1)

	var stockMsg StockUpdateMessage
	require.NoError(t, json.Unmarshal(msgs[0].payload, &stockMsg))
	assert.Equal(t, "p1", stockMsg.ProductID)
	assert.Equal(t, 5, stockMsg.PreviousStock)
	assert.Equal(t, 2, stockMsg.NewStock)
}

func TestSubmitOrder_CustomerNotFound(t *testing.T) {
	f := newSubmitFixture(t)

	_, err := f.useCase.SubmitOrder(context.Background(), CreateOrderRequest{
		CustomerID: "missing", ProductID: "p1", Quantity: 1,
	})

	assert.ErrorIs(t, err, ErrCustomerNotFound)
	assert.Equal(t, 5, f.productStock(t))
	assert.Empty(t, f.fulfillment.messages())
}

func TestSubmitOrder_ProductNotFound(t *testing.T) {
	f := newSubmitFixture(t)

	_, err := f.useCase.SubmitOrder(context.Background(), CreateOrderRequest{
		CustomerID: "c1", ProductID: "missing", Quantity: 1,
	})

	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Empty(t, f.fulfillment.messages())
}

func TestSubmitOrder_InvalidQuantity(t *testing.T) {
	f := newSubmitFixture(t)

	for _, quantity := range []int{0, -2} {
		_, err := f.useCase.SubmitOrder(context.Background(), CreateOrderRequest{
			CustomerID: "c1", ProductID: "p1", Quantity: quantity,
		})
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	}
	assert.Equal(t, 5, f.productStock(t))
	assert.Empty(t, f.fulfillment.messages())
}

func TestSubmitOrder_InsufficientStock(t *testing.T) {
	// Arrange
	f := newSubmitFixture(t)

	// Act
	_, err := f.useCase.SubmitOrder(context.Background(), CreateOrderRequest{
		CustomerID: "c1", ProductID: "p1", Quantity: 10,
	})

	// Assert: erro carrega a quantidade disponível, nada muda
	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 5, insufficient.Available)
	assert.Equal(t, 5, f.productStock(t))
	assert.Empty(t, f.fulfillment.messages())
	assert.Empty(t, f.stock.messages())
}

func TestSubmitOrder_EnqueueFailureCompensatesStock(t *testing.T) {
	// Arrange
	f := newSubmitFixture(t)
	f.fulfillment.err = errors.New("broker unavailable")

	// Act
	_, err := f.useCase.SubmitOrder(context.Background(), CreateOrderRequest{
		CustomerID: "c1", ProductID: "p1", Quantity: 3,
	})

	// Assert: a falha de enfileiramento é fatal para a submissão e o
	// decremento já confirmado é devolvido
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCustomerNotFound)
	assert.Equal(t, 5, f.productStock(t))
	assert.Empty(t, f.stock.messages())
}

func TestSubmitOrder_ConcurrentSubmissionsNeverOversell(t *testing.T) {
	// Dois pedidos concorrentes de 5 unidades sobre estoque 5: exatamente
	// um vence, o outro é rejeitado, o estoque nunca fica negativo
	f := newSubmitFixture(t)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.useCase.SubmitOrder(context.Background(), CreateOrderRequest{
				CustomerID: "c1", ProductID: "p1", Quantity: 5,
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, rejections int
	for err := range results {
		switch {
		case err == nil:
			successes++
		default:
			var insufficient *InsufficientStockError
			if errors.As(err, &insufficient) || errors.Is(err, ErrConcurrencyConflict) {
				rejections++
			} else {
				t.Fatalf("unexpected error: %v", err)
			}
		}
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, rejections)
	assert.Equal(t, 0, f.productStock(t))
	assert.Len(t, f.fulfillment.messages(), 1)
}

func TestUpdateOrderStatus_Success(t *testing.T) {
	// Arrange
	f := newSubmitFixture(t)
	ctx := context.Background()
	require.NoError(t, f.orders.Upsert(ctx, "o1", Order{
		ID: "o1", CustomerID: "c1", CustomerName: "Ana Silva", ProductID: "p1",
		ProductName: "Widget", Quantity: 3, Status: OrderStatusProcessing,
		OrderDate: time.Now().UTC(),
	}))

	// Act
	order, err := f.useCase.UpdateOrderStatus(ctx, "o1", OrderStatusCompleted)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, OrderStatusCompleted, order.Status)

	persisted, _, err := f.orders.Get(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusCompleted, persisted.Status)

	msgs := f.notifications.messages()
	require.Len(t, msgs, 1)
	var notification StatusNotification
	require.NoError(t, json.Unmarshal(msgs[0].payload, &notification))
	assert.Equal(t, "o1", notification.OrderID)
	assert.Equal(t, OrderStatusProcessing, notification.PreviousStatus)
	assert.Equal(t, OrderStatusCompleted, notification.NewStatus)
	assert.Equal(t, "Ana Silva", notification.CustomerName)
	assert.False(t, notification.UpdatedDate.IsZero())
}

func TestUpdateOrderStatus_UnknownStatus(t *testing.T) {
	f := newSubmitFixture(t)

	_, err := f.useCase.UpdateOrderStatus(context.Background(), "o1", "Shipped")

	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.Empty(t, f.notifications.messages())
}

func TestUpdateOrderStatus_NotFound(t *testing.T) {
	f := newSubmitFixture(t)

	_, err := f.useCase.UpdateOrderStatus(context.Background(), "missing", OrderStatusCompleted)

	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestUpdateOrderStatus_TerminalStateRejected(t *testing.T) {
	// Arrange
	f := newSubmitFixture(t)
	ctx := context.Background()
	for _, terminal := range []string{OrderStatusCompleted, OrderStatusCancelled} {
		require.NoError(t, f.orders.Upsert(ctx, "o-"+terminal, Order{
			ID: "o-" + terminal, Status: terminal,
		}))

		// Act
		_, err := f.useCase.UpdateOrderStatus(ctx, "o-"+terminal, OrderStatusProcessing)

		// Assert
		assert.ErrorIs(t, err, ErrTerminalStatus)
	}
	assert.Empty(t, f.notifications.messages())
}

func TestUpdateOrderStatus_NotificationFailureDoesNotRollBack(t *testing.T) {
	// Arrange
	f := newSubmitFixture(t)
	f.notifications.err = errors.New("broker unavailable")
	ctx := context.Background()
	require.NoError(t, f.orders.Upsert(ctx, "o1", Order{ID: "o1", Status: OrderStatusProcessing}))

	// Act
	order, err := f.useCase.UpdateOrderStatus(ctx, "o1", OrderStatusCancelled)

	// Assert: a transição persiste mesmo sem notificação
	require.NoError(t, err)
	assert.Equal(t, OrderStatusCancelled, order.Status)
}

func TestCreateProduct_NegativePriceRejected(t *testing.T) {
	f := newSubmitFixture(t)
	useCase := NewProductUseCase(f.products)

	_, err := useCase.CreateProduct(context.Background(), CreateProductRequest{
		ProductName: "Broken", Price: money.MustFromString("-1.00"), StockAvailable: 1,
	})

	assert.ErrorIs(t, err, ErrInvalidPrice)
}

func TestCreateCustomerAndList(t *testing.T) {
	// Arrange
	f := newSubmitFixture(t)
	useCase := NewCustomerUseCase(f.customers)

	// Act
	customer, err := useCase.CreateCustomer(context.Background(), CreateCustomerRequest{
		Name: "Bruno", Surname: "Costa", Username: "bcosta", Email: "bruno@example.com",
	})

	// Assert
	require.NoError(t, err)
	assert.NotEmpty(t, customer.ID)

	customers, err := useCase.ListCustomers(context.Background())
	require.NoError(t, err)
	assert.Len(t, customers, 2) // c1 da fixture + Bruno
}
