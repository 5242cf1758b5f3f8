package main

import "time"

// StatusNotification é o lado consumidor do contrato de fio do canal de
// notificações de status de pedido
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

// StockUpdateMessage é o lado consumidor do contrato de fio do canal de
// atualizações de estoque
type StockUpdateMessage struct {
	ProductID     string    `json:"productId"`
	ProductName   string    `json:"productName"`
	PreviousStock int       `json:"previousStock"`
	NewStock      int       `json:"newStock"`
	UpdatedBy     string    `json:"updatedBy"`
	UpdateDate    time.Time `json:"updateDate"`
}
