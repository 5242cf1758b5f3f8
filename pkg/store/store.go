package store

import (
	"context"
	"errors"
)

// ETag é o token opaco de concorrência otimista devolvido por uma leitura
// e exigido pela escrita condicional correspondente. Quem chama nunca
// inspeciona o valor.
type ETag string

// Erros do Record Store
var (
	// ErrNotFound indica que não existe registro para a chave
	ErrNotFound = errors.New("record not found")
	// ErrConflict indica que o token de versão não corresponde mais ao registro
	ErrConflict = errors.New("record version conflict")
	// ErrExists indica que um Insert colidiu com uma chave já existente
	ErrExists = errors.New("record already exists")
)

// Store define o contrato genérico de persistência por chave usado por
// Customer, Product e Order. Cada instância é ligada a um "kind" (a
// partição da coleção) na construção.
type Store[T any] interface {
	// Get busca um registro pela chave, devolvendo o ETag da versão lida
	Get(ctx context.Context, key string) (T, ETag, error)

	// List devolve todos os registros da coleção
	List(ctx context.Context) ([]T, error)

	// Insert cria um registro novo; ErrExists se a chave já estiver em uso
	Insert(ctx context.Context, key string, record T) error

	// Update sobrescreve o registro somente se o ETag ainda for o corrente;
	// ErrConflict caso o registro tenha sido modificado por outra escrita
	Update(ctx context.Context, key string, record T, tag ETag) error

	// Upsert cria ou sobrescreve o registro incondicionalmente
	Upsert(ctx context.Context, key string, record T) error

	// Delete remove o registro; ErrNotFound se ausente
	Delete(ctx context.Context, key string) error
}
