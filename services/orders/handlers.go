package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/abcretail/storefront/pkg/money"
)

// CreateOrderRequest representa a requisição para submeter um pedido.
// A quantidade não leva binding tag: a ordem de validação (cliente,
// produto, quantidade, estoque) é responsabilidade do use case.
type CreateOrderRequest struct {
	CustomerID string `json:"customerId" binding:"required"`
	ProductID  string `json:"productId" binding:"required"`
	Quantity   int    `json:"quantity"`
}

// UpdateOrderStatusRequest representa a requisição de transição de status
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CreateCustomerRequest representa a requisição de cadastro de cliente
type CreateCustomerRequest struct {
	Name            string `json:"name" binding:"required"`
	Surname         string `json:"surname" binding:"required"`
	Username        string `json:"username" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	ShippingAddress string `json:"shippingAddress"`
}

// CreateProductRequest representa a requisição de cadastro de produto
type CreateProductRequest struct {
	ProductName    string      `json:"productName" binding:"required"`
	Description    string      `json:"description"`
	Price          money.Money `json:"price"`
	StockAvailable int         `json:"stockAvailable"`
	ImageURL       string      `json:"imageUrl"`
}

// OrderHandler contém os handlers HTTP do serviço
type OrderHandler struct {
	orders    *OrderUseCase
	customers *CustomerUseCase
	products  *ProductUseCase
	tracer    trace.Tracer
}

// NewOrderHandler cria uma nova instância de OrderHandler
func NewOrderHandler(orders *OrderUseCase, customers *CustomerUseCase, products *ProductUseCase, tracer trace.Tracer) *OrderHandler {
	return &OrderHandler{
		orders:    orders,
		customers: customers,
		products:  products,
		tracer:    tracer,
	}
}

// SubmitOrder recebe o pedido, reserva o estoque e responde 202: o
// pedido foi aceito para processamento, não concluído
func (h *OrderHandler) SubmitOrder(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "submit_order")
	defer span.End()

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	span.SetAttributes(
		attribute.String("customer_id", req.CustomerID),
		attribute.String("product_id", req.ProductID),
		attribute.Int("quantity", req.Quantity),
	)

	orderID, err := h.orders.SubmitOrder(ctx, req)
	if err != nil {
		span.RecordError(err)
		respondDomainError(c, err)
		return
	}

	span.SetAttributes(attribute.String("order_id", orderID))
	c.JSON(http.StatusAccepted, gin.H{
		"orderId": orderID,
		"message": "Order submitted for processing",
	})
}

// UpdateOrderStatus aplica uma transição de status a um pedido existente
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "update_order_status")
	defer span.End()

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	orderID := c.Param("id")
	span.SetAttributes(
		attribute.String("order_id", orderID),
		attribute.String("new_status", req.Status),
	)

	order, err := h.orders.UpdateOrderStatus(ctx, orderID, req.Status)
	if err != nil {
		span.RecordError(err)
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// GetOrders lista todos os pedidos
func (h *OrderHandler) GetOrders(c *gin.Context) {
	orders, err := h.orders.ListOrders(c.Request.Context())
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GetOrder busca um pedido pelo id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// CreateCustomer cadastra um cliente
func (h *OrderHandler) CreateCustomer(c *gin.Context) {
	var req CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	customer, err := h.customers.CreateCustomer(c.Request.Context(), req)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

// GetCustomers lista todos os clientes
func (h *OrderHandler) GetCustomers(c *gin.Context) {
	customers, err := h.customers.ListCustomers(c.Request.Context())
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, customers)
}

// CreateProduct cadastra um produto
func (h *OrderHandler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	product, err := h.products.CreateProduct(c.Request.Context(), req)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// GetProducts lista todos os produtos
func (h *OrderHandler) GetProducts(c *gin.Context) {
	products, err := h.products.ListProducts(c.Request.Context())
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// GetProduct busca um produto pelo id (preço e estoque para o formulário
// de pedido)
func (h *OrderHandler) GetProduct(c *gin.Context) {
	product, err := h.products.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// HealthCheck verifica a saúde do serviço
func (h *OrderHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "orders-service",
	})
}

// respondDomainError traduz erros de domínio em respostas HTTP. Somente
// NotFound, argumento inválido e estoque insuficiente viram mensagens
// específicas; o resto é genérico para não vazar detalhe de transporte.
func respondDomainError(c *gin.Context, err error) {
	var insufficient *InsufficientStockError

	switch {
	case errors.Is(err, ErrCustomerNotFound),
		errors.Is(err, ErrProductNotFound),
		errors.Is(err, ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrInvalidPrice),
		errors.Is(err, ErrInvalidStock),
		errors.Is(err, ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.As(err, &insufficient):
		c.JSON(http.StatusConflict, gin.H{
			"error":     insufficient.Error(),
			"available": insufficient.Available,
		})

	case errors.Is(err, ErrTerminalStatus):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, ErrConcurrencyConflict):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "The order could not be processed right now. Please try again."})

	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to process the request. Please try again."})
	}
}
