package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/abcretail/storefront/pkg/queue"
	"github.com/abcretail/storefront/pkg/store"
)

// Limite de tentativas locais quando a escrita condicional do estoque
// perde a corrida para outra submissão
const maxStockRetries = 3

// Erros de domínio expostos aos handlers
var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrInvalidQuantity  = errors.New("quantity must be at least 1")
	ErrInvalidPrice     = errors.New("price must not be negative")
	ErrInvalidStock     = errors.New("stock must not be negative")
	ErrInvalidStatus    = errors.New("unknown order status")
	ErrTerminalStatus   = errors.New("order is already in a terminal status")
	// ErrConcurrencyConflict sinaliza esgotamento das tentativas de escrita
	// condicional; transitório para quem chama
	ErrConcurrencyConflict = errors.New("concurrent update conflict")
)

// InsufficientStockError carrega a quantidade disponível para que o
// chamador possa ajustar o pedido
type InsufficientStockError struct {
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: available %d", e.Available)
}

// OrderUseCase contém a lógica de negócio da submissão e das transições
// de status de pedidos
type OrderUseCase struct {
	customers store.Store[Customer]
	products  store.Store[Product]
	orders    store.Store[Order]

	fulfillmentQueue  queue.Publisher
	notificationQueue queue.Publisher
	stockQueue        queue.Publisher

	ordersSubmitted      metric.Int64Counter
	ordersRejected       metric.Int64Counter
	stockConflictRetries metric.Int64Counter
}

// NewOrderUseCase cria uma nova instância de OrderUseCase
func NewOrderUseCase(
	customers store.Store[Customer],
	products store.Store[Product],
	orders store.Store[Order],
	fulfillmentQueue queue.Publisher,
	notificationQueue queue.Publisher,
	stockQueue queue.Publisher,
) *OrderUseCase {
	meter := otel.Meter("orders-service")
	ordersSubmitted, _ := meter.Int64Counter("orders_submitted_total")
	ordersRejected, _ := meter.Int64Counter("orders_rejected_total")
	stockConflictRetries, _ := meter.Int64Counter("stock_conflict_retries_total")

	return &OrderUseCase{
		customers:            customers,
		products:             products,
		orders:               orders,
		fulfillmentQueue:     fulfillmentQueue,
		notificationQueue:    notificationQueue,
		stockQueue:           stockQueue,
		ordersSubmitted:      ordersSubmitted,
		ordersRejected:       ordersRejected,
		stockConflictRetries: stockConflictRetries,
	}
}

// SubmitOrder valida o pedido, reserva o estoque de forma síncrona e
// entrega a mensagem ao canal de fulfillment. O pedido em si só passa a
// existir no Record Store quando o worker processar a mensagem: quem
// chama recebe "submitted for processing", não "completed".
func (uc *OrderUseCase) SubmitOrder(ctx context.Context, req CreateOrderRequest) (string, error) {
	log.Printf("➡️ [SUBMIT ORDER] CustomerID: %s | ProductID: %s | Quantity: %d",
		req.CustomerID, req.ProductID, req.Quantity)

	// 1. Cliente precisa existir
	customer, _, err := uc.customers.Get(ctx, req.CustomerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			uc.ordersRejected.Add(ctx, 1)
			return "", ErrCustomerNotFound
		}
		return "", fmt.Errorf("failed to load customer %s: %w", req.CustomerID, err)
	}

	// 2. Produto precisa existir
	product, tag, err := uc.products.Get(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			uc.ordersRejected.Add(ctx, 1)
			return "", ErrProductNotFound
		}
		return "", fmt.Errorf("failed to load product %s: %w", req.ProductID, err)
	}

	// 3. Quantidade positiva
	if req.Quantity < 1 {
		uc.ordersRejected.Add(ctx, 1)
		return "", ErrInvalidQuantity
	}

	// 4. Decremento do estoque com concorrência otimista: a escrita
	// condicional falha se o produto mudou desde a leitura; nesse caso
	// relemos, reverificamos a suficiência e tentamos de novo.
	previousStock := 0
	for attempt := 0; ; attempt++ {
		if product.StockAvailable < req.Quantity {
			log.Printf("❌ [SUBMIT ORDER] Insufficient stock | ProductID=%s | Available=%d | Requested=%d",
				req.ProductID, product.StockAvailable, req.Quantity)
			uc.ordersRejected.Add(ctx, 1)
			return "", &InsufficientStockError{Available: product.StockAvailable}
		}

		updated := product
		updated.StockAvailable -= req.Quantity
		err = uc.products.Update(ctx, req.ProductID, updated, tag)
		if err == nil {
			previousStock = product.StockAvailable
			product = updated
			break
		}
		if !errors.Is(err, store.ErrConflict) {
			return "", fmt.Errorf("failed to reserve stock for product %s: %w", req.ProductID, err)
		}

		uc.stockConflictRetries.Add(ctx, 1)
		if attempt+1 >= maxStockRetries {
			log.Printf("❌ [SUBMIT ORDER] Stock update contention exhausted | ProductID=%s", req.ProductID)
			return "", ErrConcurrencyConflict
		}

		log.Printf("ℹ️  [SUBMIT ORDER] Stock version conflict, retrying | ProductID=%s | Attempt=%d", req.ProductID, attempt+1)
		product, tag, err = uc.products.Get(ctx, req.ProductID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return "", ErrProductNotFound
			}
			return "", fmt.Errorf("failed to reload product %s: %w", req.ProductID, err)
		}
	}

	// 5. Mensagem de pedido: snapshot de preço calculado uma única vez
	orderID := uuid.New().String()
	msg := OrderMessage{
		OrderID:      orderID,
		CustomerID:   customer.ID,
		CustomerName: customer.FullName(),
		ProductID:    product.ID,
		ProductName:  product.ProductName,
		Quantity:     req.Quantity,
		UnitPrice:    product.Price,
		TotalPrice:   product.Price.MulInt(req.Quantity),
		SubmittedAt:  time.Now().UTC(),
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		uc.compensateStock(ctx, req.ProductID, req.Quantity)
		return "", fmt.Errorf("failed to encode order message %s: %w", orderID, err)
	}

	// 6. Enfileira DEPOIS do decremento: consumidores do canal assumem
	// que o estoque já reflete o pedido. Falha aqui devolve o estoque.
	if err := uc.fulfillmentQueue.Publish(ctx, orderID, payload); err != nil {
		log.Printf("❌ [SUBMIT ORDER] Enqueue failed, compensating stock | OrderID=%s: %v", orderID, err)
		uc.compensateStock(ctx, req.ProductID, req.Quantity)
		return "", fmt.Errorf("failed to enqueue order %s: %w", orderID, err)
	}

	// 7. Notificação de estoque, melhor esforço
	uc.publishStockUpdate(ctx, product, previousStock)

	uc.ordersSubmitted.Add(ctx, 1)
	log.Printf("✅ [SUBMIT ORDER] Order submitted for processing | OrderID=%s | Total=%s", orderID, msg.TotalPrice.String())
	return orderID, nil
}

// compensateStock devolve a quantidade reservada quando a submissão
// falha após o decremento já ter sido confirmado
func (uc *OrderUseCase) compensateStock(ctx context.Context, productID string, quantity int) {
	for attempt := 0; attempt < maxStockRetries; attempt++ {
		product, tag, err := uc.products.Get(ctx, productID)
		if err != nil {
			break
		}
		product.StockAvailable += quantity
		err = uc.products.Update(ctx, productID, product, tag)
		if err == nil {
			log.Printf("↩️ [SUBMIT ORDER] Stock compensated | ProductID=%s | Quantity=%d", productID, quantity)
			return
		}
		if !errors.Is(err, store.ErrConflict) {
			break
		}
	}
	// Estoque reservado sem pedido em trânsito: precisa de reconciliação manual
	log.Printf("❌ [SUBMIT ORDER] FAILED TO COMPENSATE STOCK, manual reconciliation required | ProductID=%s | Quantity=%d",
		productID, quantity)
}

// publishStockUpdate emite a mudança de estoque no canal stock-updates
func (uc *OrderUseCase) publishStockUpdate(ctx context.Context, product Product, previousStock int) {
	stockMsg := StockUpdateMessage{
		ProductID:     product.ID,
		ProductName:   product.ProductName,
		PreviousStock: previousStock,
		NewStock:      product.StockAvailable,
		UpdatedBy:     "Order System",
		UpdateDate:    time.Now().UTC(),
	}
	payload, err := json.Marshal(stockMsg)
	if err != nil {
		log.Printf("ℹ️  [STOCK UPDATE] Failed to encode stock update | ProductID=%s: %v", product.ID, err)
		return
	}
	if err := uc.stockQueue.Publish(ctx, product.ID, payload); err != nil {
		log.Printf("ℹ️  [STOCK UPDATE] Failed to publish stock update | ProductID=%s: %v", product.ID, err)
	}
}

// UpdateOrderStatus aplica uma transição de status disparada por um
// operador ou regra externa. A persistência é a fonte de verdade; a
// notificação é melhor esforço e nunca desfaz a transição.
func (uc *OrderUseCase) UpdateOrderStatus(ctx context.Context, orderID, newStatus string) (*Order, error) {
	log.Printf("➡️ [UPDATE STATUS] OrderID: %s | NewStatus: %s", orderID, newStatus)

	if !ValidOrderStatus(newStatus) {
		return nil, ErrInvalidStatus
	}

	var order Order
	var previous string
	for attempt := 0; ; attempt++ {
		var tag store.ETag
		var err error
		order, tag, err = uc.orders.Get(ctx, orderID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, ErrOrderNotFound
			}
			return nil, fmt.Errorf("failed to load order %s: %w", orderID, err)
		}

		if TerminalOrderStatus(order.Status) {
			log.Printf("❌ [UPDATE STATUS] Rejected, order already %s | OrderID=%s", order.Status, orderID)
			return nil, ErrTerminalStatus
		}

		previous = order.Status
		order.Status = newStatus
		err = uc.orders.Update(ctx, orderID, order, tag)
		if err == nil {
			break
		}
		if !errors.Is(err, store.ErrConflict) {
			return nil, fmt.Errorf("failed to update order %s: %w", orderID, err)
		}
		if attempt+1 >= maxStockRetries {
			return nil, ErrConcurrencyConflict
		}
		log.Printf("ℹ️  [UPDATE STATUS] Version conflict, retrying | OrderID=%s | Attempt=%d", orderID, attempt+1)
	}

	uc.publishStatusNotification(ctx, order, previous, newStatus)

	log.Printf("✅ [UPDATE STATUS] %s → %s | OrderID=%s", previous, newStatus, orderID)
	return &order, nil
}

// publishStatusNotification emite a transição no canal order-notifications
func (uc *OrderUseCase) publishStatusNotification(ctx context.Context, order Order, previous, next string) {
	notification := StatusNotification{
		OrderID:        order.ID,
		CustomerID:     order.CustomerID,
		CustomerName:   order.CustomerName,
		ProductName:    order.ProductName,
		PreviousStatus: previous,
		NewStatus:      next,
		UpdatedDate:    time.Now().UTC(),
		UpdatedBy:      "System",
	}
	payload, err := json.Marshal(notification)
	if err != nil {
		log.Printf("ℹ️  [UPDATE STATUS] Failed to encode notification | OrderID=%s: %v", order.ID, err)
		return
	}
	if err := uc.notificationQueue.Publish(ctx, order.ID, payload); err != nil {
		log.Printf("ℹ️  [UPDATE STATUS] Failed to publish notification | OrderID=%s: %v", order.ID, err)
	}
}

// GetOrder busca um pedido pelo id
func (uc *OrderUseCase) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	order, _, err := uc.orders.Get(ctx, orderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to load order %s: %w", orderID, err)
	}
	return &order, nil
}

// ListOrders devolve todos os pedidos
func (uc *OrderUseCase) ListOrders(ctx context.Context) ([]Order, error) {
	orders, err := uc.orders.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// CustomerUseCase contém as operações de cadastro de clientes
type CustomerUseCase struct {
	customers store.Store[Customer]
}

// NewCustomerUseCase cria uma nova instância de CustomerUseCase
func NewCustomerUseCase(customers store.Store[Customer]) *CustomerUseCase {
	return &CustomerUseCase{customers: customers}
}

// CreateCustomer cadastra um cliente novo
func (uc *CustomerUseCase) CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*Customer, error) {
	customer := Customer{
		ID:              uuid.New().String(),
		Name:            req.Name,
		Surname:         req.Surname,
		Username:        req.Username,
		Email:           req.Email,
		ShippingAddress: req.ShippingAddress,
	}
	if err := uc.customers.Insert(ctx, customer.ID, customer); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	log.Printf("✅ [CREATE CUSTOMER] CustomerID=%s", customer.ID)
	return &customer, nil
}

// ListCustomers devolve todos os clientes
func (uc *CustomerUseCase) ListCustomers(ctx context.Context) ([]Customer, error) {
	customers, err := uc.customers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, nil
}

// ProductUseCase contém as operações de catálogo de produtos
type ProductUseCase struct {
	products store.Store[Product]
}

// NewProductUseCase cria uma nova instância de ProductUseCase
func NewProductUseCase(products store.Store[Product]) *ProductUseCase {
	return &ProductUseCase{products: products}
}

// CreateProduct cadastra um produto novo
func (uc *ProductUseCase) CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error) {
	if req.Price.IsNegative() {
		return nil, ErrInvalidPrice
	}
	if req.StockAvailable < 0 {
		return nil, ErrInvalidStock
	}

	product := Product{
		ID:             uuid.New().String(),
		ProductName:    req.ProductName,
		Description:    req.Description,
		Price:          req.Price,
		StockAvailable: req.StockAvailable,
		ImageURL:       req.ImageURL,
	}
	if err := uc.products.Insert(ctx, product.ID, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	log.Printf("✅ [CREATE PRODUCT] ProductID=%s | Price=%s | Stock=%d", product.ID, product.Price.String(), product.StockAvailable)
	return &product, nil
}

// GetProduct busca um produto pelo id
func (uc *ProductUseCase) GetProduct(ctx context.Context, productID string) (*Product, error) {
	product, _, err := uc.products.Get(ctx, productID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to load product %s: %w", productID, err)
	}
	return &product, nil
}

// ListProducts devolve todos os produtos
func (uc *ProductUseCase) ListProducts(ctx context.Context) ([]Product, error) {
	products, err := uc.products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}
