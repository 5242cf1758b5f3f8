package main

import (
	"time"

	"github.com/abcretail/storefront/pkg/money"
)

// Order representa o registro autoritativo de um pedido, materializado
// por este worker a partir da mensagem de fila
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

// OrderStatusProcessing é o status com que todo pedido recém-visto é
// persistido; transições posteriores são responsabilidade do serviço de
// pedidos
const OrderStatusProcessing = "Processing"

// OrderMessage é o lado consumidor do contrato de fio do canal de
// fulfillment. Espelha a declaração do produtor; os campos carregam tudo
// que é preciso para materializar o pedido sem reconsultar o Record Store.
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
