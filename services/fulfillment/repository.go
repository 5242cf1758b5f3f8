package main

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abcretail/storefront/pkg/store"
)

// KindOrder é a partição dos pedidos no Record Store; a mesma usada
// pelo serviço de pedidos
const KindOrder = "Order"

// NewOrderStore cria o Record Store de pedidos
func NewOrderStore(pool *pgxpool.Pool) store.Store[Order] {
	return store.NewPostgres[Order](pool, KindOrder)
}
