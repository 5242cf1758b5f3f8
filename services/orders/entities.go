package main

import (
	"time"

	"github.com/abcretail/storefront/pkg/money"
)

// Customer representa um cliente da loja
type Customer struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Surname         string `json:"surname"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	ShippingAddress string `json:"shippingAddress"`
}

// FullName retorna o nome de exibição usado nos pedidos
func (c Customer) FullName() string {
	return c.Name + " " + c.Surname
}

// Product representa um produto do catálogo
type Product struct {
	ID             string      `json:"id"`
	ProductName    string      `json:"productName"`
	Description    string      `json:"description"`
	Price          money.Money `json:"price"`
	StockAvailable int         `json:"stockAvailable"`
	ImageURL       string      `json:"imageUrl"`
}

// Order representa um pedido persistido no Record Store
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

// OrderStatus representa os possíveis status de um pedido
const (
	OrderStatusSubmitted  = "Submitted"
	OrderStatusProcessing = "Processing"
	OrderStatusCompleted  = "Completed"
	OrderStatusCancelled  = "Cancelled"
)

// ValidOrderStatus informa se s é um status conhecido
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusSubmitted, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// TerminalOrderStatus informa se s é um status final, do qual nenhuma
// transição é permitida
func TerminalOrderStatus(s string) bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// OrderMessage é o contrato de fio enviado ao canal de fulfillment.
// Carrega tudo que o worker precisa para materializar o pedido sem
// reconsultar Customer/Product. O preço total é calculado uma única vez
// na submissão e nunca recalculado adiante.
type OrderMessage struct {
	OrderID      string      `json:"orderId"`
	CustomerID   string      `json:"customerId"`
	CustomerName string      `json:"customerName"`
	ProductID    string      `json:"productId"`
	ProductName  string      `json:"productName"`
	Quantity     int         `json:"quantity"`
	UnitPrice    money.Money `json:"unitPrice"`
	TotalPrice   money.Money `json:"totalPrice"`
	SubmittedAt  time.Time   `json:"submittedAt"`
}

// StatusNotification é publicada no canal de notificações a cada
// transição de status. Melhor esforço: nunca desfaz a transição.
type StatusNotification struct {
	OrderID        string    `json:"orderId"`
	CustomerID     string    `json:"customerId"`
	CustomerName   string    `json:"customerName"`
	ProductName    string    `json:"productName"`
	PreviousStatus string    `json:"previousStatus"`
	NewStatus      string    `json:"newStatus"`
	UpdatedDate    time.Time `json:"updatedDate"`
	UpdatedBy      string    `json:"updatedBy"`
}

// StockUpdateMessage é publicada no canal de estoque após cada
// decremento confirmado
type StockUpdateMessage struct {
	ProductID     string    `json:"productId"`
	ProductName   string    `json:"productName"`
	PreviousStock int       `json:"previousStock"`
	NewStock      int       `json:"newStock"`
	UpdatedBy     string    `json:"updatedBy"`
	UpdateDate    time.Time `json:"updateDate"`
}
