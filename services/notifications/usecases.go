package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/abcretail/storefront/pkg/queue"
)

// NotificationUseCase entrega notificações de status de pedido e de
// estoque. O canal de entrega é o log estruturado do serviço; trocar
// por e-mail ou push é questão de substituir a ponta de saída.
type NotificationUseCase struct {
	statusDelivered metric.Int64Counter
	stockDelivered  metric.Int64Counter
}

// NewNotificationUseCase cria uma nova instância de NotificationUseCase
func NewNotificationUseCase() *NotificationUseCase {
	meter := otel.Meter("notification-service")
	statusDelivered, _ := meter.Int64Counter("status_notifications_delivered_total")
	stockDelivered, _ := meter.Int64Counter("stock_notifications_delivered_total")

	return &NotificationUseCase{
		statusDelivered: statusDelivered,
		stockDelivered:  stockDelivered,
	}
}

// HandleStatusNotification decodifica e entrega uma notificação de
// mudança de status. Payload malformado é fatal: vai para a dead-letter.
func (uc *NotificationUseCase) HandleStatusNotification(ctx context.Context, payload []byte) error {
	var n StatusNotification
	if err := json.Unmarshal(payload, &n); err != nil {
		log.Printf("❌ [NOTIFICATION] Malformed status notification: %v", err)
		return queue.Fatal(fmt.Errorf("malformed status notification: %w", err))
	}

	log.Printf("ℹ️  [NOTIFICATION] Order %s for %s: %s → %s (by %s at %s)",
		n.OrderID, n.CustomerName, n.PreviousStatus, n.NewStatus,
		n.UpdatedBy, n.UpdatedDate.Format("2006-01-02 15:04:05"))
	uc.statusDelivered.Add(ctx, 1)
	return nil
}

// HandleStockUpdate decodifica e entrega uma notificação de estoque
func (uc *NotificationUseCase) HandleStockUpdate(ctx context.Context, payload []byte) error {
	var m StockUpdateMessage
	if err := json.Unmarshal(payload, &m); err != nil {
		log.Printf("❌ [NOTIFICATION] Malformed stock update: %v", err)
		return queue.Fatal(fmt.Errorf("malformed stock update: %w", err))
	}

	log.Printf("ℹ️  [NOTIFICATION] Stock of %s changed: %d → %d (by %s)",
		m.ProductName, m.PreviousStock, m.NewStock, m.UpdatedBy)
	uc.stockDelivered.Add(ctx, 1)
	return nil
}
