package client

import (
	"time"

	"github.com/abcretail/storefront/pkg/money"
)

// CreateOrderRequest representa a requisição para submeter um pedido
type CreateOrderRequest struct {
	CustomerID string `json:"customerId"`
	ProductID  string `json:"productId"`
	Quantity   int    `json:"quantity"`
}

// SubmitOrderResponse representa o aceite de um pedido submetido
type SubmitOrderResponse struct {
	OrderID string `json:"orderId"`
	Message string `json:"message"`
}

// UpdateOrderStatusRequest representa a requisição de transição de status
type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

// CreateCustomerRequest representa a requisição de cadastro de cliente
type CreateCustomerRequest struct {
	Name            string `json:"name"`
	Surname         string `json:"surname"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	ShippingAddress string `json:"shippingAddress"`
}

// CreateProductRequest representa a requisição de cadastro de produto
type CreateProductRequest struct {
	ProductName    string      `json:"productName"`
	Description    string      `json:"description"`
	Price          money.Money `json:"price"`
	StockAvailable int         `json:"stockAvailable"`
	ImageURL       string      `json:"imageUrl"`
}

// Order representa um pedido retornado pelo serviço
type Order struct {
	ID           string      `json:"id"`
	CustomerID   string      `json:"customerId"`
	CustomerName string      `json:"customerName"`
	ProductID    string      `json:"productId"`
	ProductName  string      `json:"productName"`
	Quantity     int         `json:"quantity"`
	UnitPrice    money.Money `json:"unitPrice"`
	TotalPrice   money.Money `json:"totalPrice"`
	Status       string      `json:"status"`
	OrderDate    time.Time   `json:"orderDate"`
}

// Customer representa um cliente retornado pelo serviço
type Customer struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Surname         string `json:"surname"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	ShippingAddress string `json:"shippingAddress"`
}

// Product representa um produto retornado pelo serviço
type Product struct {
	ID             string      `json:"id"`
	ProductName    string      `json:"productName"`
	Description    string      `json:"description"`
	Price          money.Money `json:"price"`
	StockAvailable int         `json:"stockAvailable"`
	ImageURL       string      `json:"imageUrl"`
}
