package main

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/abcretail/storefront/pkg/queue"
)

func TestHandleStatusNotification_ValidPayload(t *testing.T) {
	// Arrange
	useCase := NewNotificationUseCase()
	payload, _ := json.Marshal(StatusNotification{
		OrderID:        "o1",
		CustomerName:   "Ana Silva",
		PreviousStatus: "Processing",
		NewStatus:      "Completed",
		UpdatedDate:    time.Now().UTC(),
		UpdatedBy:      "Admin",
	})

	// Act
	err := useCase.HandleStatusNotification(context.Background(), payload)

	// Assert
	assert.NoError(t, err)
}

func TestHandleStatusNotification_MalformedPayloadIsFatal(t *testing.T) {
	// Arrange
	useCase := NewNotificationUseCase()

	// Act
	err := useCase.HandleStatusNotification(context.Background(), []byte("not json"))

	// Assert
	assert.Error(t, err)
	assert.True(t, queue.IsFatal(err))
}

func TestHandleStockUpdate_ValidPayload(t *testing.T) {
	// Arrange
	useCase := NewNotificationUseCase()
	payload, _ := json.Marshal(StockUpdateMessage{
		ProductID:     "p1",
		ProductName:   "Widget",
		PreviousStock: 5,
		NewStock:      2,
		UpdatedBy:     "Order System",
		UpdateDate:    time.Now().UTC(),
	})

	// Act
	err := useCase.HandleStockUpdate(context.Background(), payload)

	// Assert
	assert.NoError(t, err)
}

func TestHandleStockUpdate_MalformedPayloadIsFatal(t *testing.T) {
	// Arrange
	useCase := NewNotificationUseCase()

	// Act
	err := useCase.HandleStockUpdate(context.Background(), []byte("{"))

	// Assert
	assert.Error(t, err)
	assert.True(t, queue.IsFatal(err))
}
