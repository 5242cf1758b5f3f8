package main

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abcretail/storefront/pkg/store"
)

// Partições do Record Store, uma por tipo de entidade
const (
	KindCustomer = "Customer"
	KindProduct  = "Product"
	KindOrder    = "Order"
)

// NewCustomerStore cria o Record Store de clientes
func NewCustomerStore(pool *pgxpool.Pool) store.Store[Customer] {
	return store.NewPostgres[Customer](pool, KindCustomer)
}

// NewProductStore cria o Record Store de produtos
func NewProductStore(pool *pgxpool.Pool) store.Store[Product] {
	return store.NewPostgres[Product](pool, KindProduct)
}

// NewOrderStore cria o Record Store de pedidos
func NewOrderStore(pool *pgxpool.Pool) store.Store[Order] {
	return store.NewPostgres[Order](pool, KindOrder)
}
