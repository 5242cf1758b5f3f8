package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres implementa Store[T] sobre uma única tabela `records`:
//
//	CREATE TABLE records (
//	    kind       TEXT        NOT NULL,
//	    key        TEXT        NOT NULL,
//	    version    BIGINT      NOT NULL DEFAULT 1,
//	    payload    JSONB       NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
//	    PRIMARY KEY (kind, key)
//	);
//
// Cada coleção (Customer, Product, Order) é uma partição por `kind`,
// e o ETag é a coluna `version` serializada.
type Postgres[T any] struct {
	pool *pgxpool.Pool
	kind string
}

// NewPostgres cria um Store[T] ligado ao kind informado
func NewPostgres[T any](pool *pgxpool.Pool, kind string) *Postgres[T] {
	return &Postgres[T]{pool: pool, kind: kind}
}

// Get busca um registro pela chave
func (s *Postgres[T]) Get(ctx context.Context, key string) (T, ETag, error) {
	var zero T

	var payload []byte
	var version int64
	err := s.pool.QueryRow(ctx, `
		SELECT payload, version
		FROM records
		WHERE kind = $1 AND key = $2
	`, s.kind, key).Scan(&payload, &version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return zero, "", ErrNotFound
		}
		return zero, "", fmt.Errorf("failed to get %s %s: %w", s.kind, key, err)
	}

	var record T
	if err := json.Unmarshal(payload, &record); err != nil {
		return zero, "", fmt.Errorf("failed to decode %s %s: %w", s.kind, key, err)
	}
	return record, ETag(strconv.FormatInt(version, 10)), nil
}

// List devolve todos os registros do kind
func (s *Postgres[T]) List(ctx context.Context) ([]T, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT payload
		FROM records
		WHERE kind = $1
		ORDER BY key
	`, s.kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s records: %w", s.kind, err)
	}
	defer rows.Close()

	records := make([]T, 0)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan %s record: %w", s.kind, err)
		}
		var record T
		if err := json.Unmarshal(payload, &record); err != nil {
			return nil, fmt.Errorf("failed to decode %s record: %w", s.kind, err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Insert cria um registro novo
func (s *Postgres[T]) Insert(ctx context.Context, key string, record T) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode %s %s: %w", s.kind, key, err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO records (kind, key, version, payload)
		VALUES ($1, $2, 1, $3)
	`, s.kind, key, payload)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrExists
		}
		return fmt.Errorf("failed to insert %s %s: %w", s.kind, key, err)
	}
	return nil
}

// Update sobrescreve o registro de forma condicional à versão lida.
// Zero linhas afetadas distingue conflito de ausência.
func (s *Postgres[T]) Update(ctx context.Context, key string, record T, tag ETag) error {
	version, err := strconv.ParseInt(string(tag), 10, 64)
	if err != nil {
		return fmt.Errorf("malformed etag for %s %s: %w", s.kind, key, err)
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode %s %s: %w", s.kind, key, err)
	}

	cmd, err := s.pool.Exec(ctx, `
		UPDATE records
		SET payload = $4, version = version + 1, updated_at = NOW()
		WHERE kind = $1 AND key = $2 AND version = $3
	`, s.kind, key, version, payload)
	if err != nil {
		return fmt.Errorf("failed to update %s %s: %w", s.kind, key, err)
	}
	if cmd.RowsAffected() == 0 {
		var exists bool
		if err := s.pool.QueryRow(ctx, `
			SELECT EXISTS(SELECT 1 FROM records WHERE kind = $1 AND key = $2)
		`, s.kind, key).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check %s %s after conflict: %w", s.kind, key, err)
		}
		if !exists {
			return ErrNotFound
		}
		return ErrConflict
	}
	return nil
}

// Upsert cria ou sobrescreve o registro incondicionalmente
func (s *Postgres[T]) Upsert(ctx context.Context, key string, record T) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode %s %s: %w", s.kind, key, err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO records (kind, key, version, payload)
		VALUES ($1, $2, 1, $3)
		ON CONFLICT (kind, key)
		DO UPDATE SET payload = EXCLUDED.payload,
		              version = records.version + 1,
		              updated_at = NOW()
	`, s.kind, key, payload)
	if err != nil {
		return fmt.Errorf("failed to upsert %s %s: %w", s.kind, key, err)
	}
	return nil
}

// Delete remove o registro
func (s *Postgres[T]) Delete(ctx context.Context, key string) error {
	cmd, err := s.pool.Exec(ctx, `
		DELETE FROM records WHERE kind = $1 AND key = $2
	`, s.kind, key)
	if err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", s.kind, key, err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
