package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/abcretail/storefront/pkg/queue"
	"github.com/abcretail/storefront/pkg/store"
)

// ErrMalformedMessage indica payload estruturalmente inválido: retentar
// não pode ter sucesso, então a mensagem vai direto para a dead-letter
var ErrMalformedMessage = errors.New("malformed order message")

// FulfillmentUseCase materializa mensagens de pedido em registros
// autoritativos no Record Store
type FulfillmentUseCase struct {
	orders store.Store[Order]
	tracer trace.Tracer

	ordersProcessed metric.Int64Counter
	ordersFailed    metric.Int64Counter
}

// NewFulfillmentUseCase cria uma nova instância de FulfillmentUseCase
func NewFulfillmentUseCase(orders store.Store[Order], tracer trace.Tracer) *FulfillmentUseCase {
	meter := otel.Meter("fulfillment-worker")
	ordersProcessed, _ := meter.Int64Counter("orders_processed_total")
	ordersFailed, _ := meter.Int64Counter("orders_failed_total")

	return &FulfillmentUseCase{
		orders:          orders,
		tracer:          tracer,
		ordersProcessed: ordersProcessed,
		ordersFailed:    ordersFailed,
	}
}

// ProcessOrderMessage é o handler de mensagem única do worker. A entrega
// é at-least-once: o upsert chaveado pelo order id torna a reentrega
// inofensiva — a segunda escrita sobrepõe dados idênticos, sem duplicar
// pedidos nem levantar conflito.
func (uc *FulfillmentUseCase) ProcessOrderMessage(ctx context.Context, payload []byte) error {
	ctx, span := uc.tracer.Start(ctx, "process_order_message")
	defer span.End()

	var msg OrderMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		log.Printf("❌ [FULFILLMENT] Malformed payload, sending to dead-letter: %v", err)
		span.RecordError(err)
		uc.ordersFailed.Add(ctx, 1)
		return queue.Fatal(fmt.Errorf("%w: %v", ErrMalformedMessage, err))
	}
	if msg.OrderID == "" {
		log.Printf("❌ [FULFILLMENT] Message without order id, sending to dead-letter")
		uc.ordersFailed.Add(ctx, 1)
		return queue.Fatal(fmt.Errorf("%w: missing order id", ErrMalformedMessage))
	}

	span.SetAttributes(
		attribute.String("order_id", msg.OrderID),
		attribute.String("product_id", msg.ProductID),
		attribute.Int("quantity", msg.Quantity),
	)

	log.Printf("➡️ [FULFILLMENT] Processing order | OrderID=%s | Product=%s | Quantity=%d",
		msg.OrderID, msg.ProductName, msg.Quantity)

	// A data do pedido é a da submissão, propagada na mensagem;
	// mensagens de produtores antigos sem o campo recebem o relógio
	// do processamento.
	orderDate := msg.SubmittedAt
	if orderDate.IsZero() {
		orderDate = time.Now().UTC()
	}

	order := Order{
		ID:           msg.OrderID,
		CustomerID:   msg.CustomerID,
		CustomerName: msg.CustomerName,
		ProductID:    msg.ProductID,
		ProductName:  msg.ProductName,
		Quantity:     msg.Quantity,
		UnitPrice:    msg.UnitPrice,
		TotalPrice:   msg.TotalPrice,
		Status:       OrderStatusProcessing,
		OrderDate:    orderDate.UTC(),
	}

	if err := uc.orders.Upsert(ctx, order.ID, order); err != nil {
		log.Printf("❌ [FULFILLMENT] Failed to persist order | OrderID=%s: %v", order.ID, err)
		span.RecordError(err)
		uc.ordersFailed.Add(ctx, 1)
		// Erro retentável: o transporte aplica retry/backoff e dead-letter
		return fmt.Errorf("failed to persist order %s: %w", order.ID, err)
	}

	uc.ordersProcessed.Add(ctx, 1)
	log.Printf("✅ [FULFILLMENT] Order persisted as %s | OrderID=%s", order.Status, order.ID)
	return nil
}
