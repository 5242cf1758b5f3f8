package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel"

	"github.com/abcretail/storefront/pkg/money"
	"github.com/abcretail/storefront/pkg/queue"
	"github.com/abcretail/storefront/pkg/store"
)

func newTestUseCase() (*FulfillmentUseCase, *store.Memory[Order]) {
	orders := store.NewMemory[Order]()
	return NewFulfillmentUseCase(orders, otel.Tracer("test")), orders
}

func validMessage() OrderMessage {
	return OrderMessage{
		OrderID:      "o1",
		CustomerID:   "c1",
		CustomerName: "Ana Silva",
		ProductID:    "p1",
		ProductName:  "Widget",
		Quantity:     3,
		UnitPrice:    money.MustFromString("10.00"),
		TotalPrice:   money.MustFromString("30.00"),
		SubmittedAt:  time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}
}

func TestProcessOrderMessage_PersistsOrderAsProcessing(t *testing.T) {
	// Arrange
	useCase, orders := newTestUseCase()
	payload, _ := json.Marshal(validMessage())

	// Act
	err := useCase.ProcessOrderMessage(context.Background(), payload)

	// Assert
	assert.NoError(t, err)
	order, _, getErr := orders.Get(context.Background(), "o1")
	assert.NoError(t, getErr)
	assert.Equal(t, OrderStatusProcessing, order.Status)
	assert.Equal(t, "Ana Silva", order.CustomerName)
	assert.Equal(t, "Widget", order.ProductName)
	assert.Equal(t, 3, order.Quantity)
	assert.True(t, order.UnitPrice.Equal(money.MustFromString("10.00")))
	assert.True(t, order.TotalPrice.Equal(money.MustFromString("30.00")))
}

func TestProcessOrderMessage_OrderDateComesFromSubmission(t *testing.T) {
	// Arrange
	useCase, orders := newTestUseCase()
	msg := validMessage()
	payload, _ := json.Marshal(msg)

	// Act
	err := useCase.ProcessOrderMessage(context.Background(), payload)

	// Assert
	assert.NoError(t, err)
	order, _, _ := orders.Get(context.Background(), "o1")
	assert.True(t, order.OrderDate.Equal(msg.SubmittedAt))
}

func TestProcessOrderMessage_MissingSubmittedAtFallsBackToNow(t *testing.T) {
	// Arrange
	useCase, orders := newTestUseCase()
	msg := validMessage()
	msg.SubmittedAt = time.Time{}
	payload, _ := json.Marshal(msg)
	before := time.Now().UTC()

	// Act
	err := useCase.ProcessOrderMessage(context.Background(), payload)

	// Assert
	assert.NoError(t, err)
	order, _, _ := orders.Get(context.Background(), "o1")
	assert.False(t, order.OrderDate.IsZero())
	assert.False(t, order.OrderDate.Before(before))
	assert.Equal(t, time.UTC, order.OrderDate.Location())
}

func TestProcessOrderMessage_RedeliveryIsIdempotent(t *testing.T) {
	// Arrange
	useCase, orders := newTestUseCase()
	payload, _ := json.Marshal(validMessage())

	// Act: entrega duplicada da mesma mensagem
	err1 := useCase.ProcessOrderMessage(context.Background(), payload)
	err2 := useCase.ProcessOrderMessage(context.Background(), payload)

	// Assert
	assert.NoError(t, err1)
	assert.NoError(t, err2)
	records, listErr := orders.List(context.Background())
	assert.NoError(t, listErr)
	assert.Len(t, records, 1)
	assert.Equal(t, OrderStatusProcessing, records[0].Status)
}

func TestProcessOrderMessage_MalformedPayloadIsFatal(t *testing.T) {
	// Arrange
	useCase, _ := newTestUseCase()

	// Act
	err := useCase.ProcessOrderMessage(context.Background(), []byte("{not json"))

	// Assert
	assert.Error(t, err)
	assert.True(t, queue.IsFatal(err))
	assert.True(t, errors.Is(err, ErrMalformedMessage))
}

func TestProcessOrderMessage_MissingOrderIDIsFatal(t *testing.T) {
	// Arrange
	useCase, orders := newTestUseCase()
	msg := validMessage()
	msg.OrderID = ""
	payload, _ := json.Marshal(msg)

	// Act
	err := useCase.ProcessOrderMessage(context.Background(), payload)

	// Assert
	assert.Error(t, err)
	assert.True(t, queue.IsFatal(err))
	records, _ := orders.List(context.Background())
	assert.Empty(t, records)
}

type failingStore struct {
	store.Store[Order]
	err error
}

func (f *failingStore) Upsert(ctx context.Context, key string, record Order) error {
	return f.err
}

func TestProcessOrderMessage_PersistFailureIsRetryable(t *testing.T) {
	// Arrange
	storeErr := errors.New("connection refused")
	useCase := NewFulfillmentUseCase(&failingStore{err: storeErr}, otel.Tracer("test"))
	payload, _ := json.Marshal(validMessage())

	// Act
	err := useCase.ProcessOrderMessage(context.Background(), payload)

	// Assert
	assert.Error(t, err)
	assert.False(t, queue.IsFatal(err))
	assert.True(t, errors.Is(err, storeErr))
}
