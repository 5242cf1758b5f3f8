package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"sync"
)

// Memory implementa Store[T] em memória com a mesma semântica de versão
// da implementação Postgres. Os registros são guardados serializados para
// que leituras devolvam cópias independentes.
type Memory[T any] struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
}

type memoryEntry struct {
	version int64
	payload []byte
}

// NewMemory cria um Store[T] em memória vazio
func NewMemory[T any]() *Memory[T] {
	return &Memory[T]{entries: make(map[string]*memoryEntry)}
}

// Get busca um registro pela chave
func (s *Memory[T]) Get(_ context.Context, key string) (T, ETag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	entry, ok := s.entries[key]
	if !ok {
		return zero, "", ErrNotFound
	}

	var record T
	if err := json.Unmarshal(entry.payload, &record); err != nil {
		return zero, "", fmt.Errorf("failed to decode record %s: %w", key, err)
	}
	return record, ETag(strconv.FormatInt(entry.version, 10)), nil
}

// List devolve todos os registros ordenados por chave
func (s *Memory[T]) List(_ context.Context) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.entries))
	for key := range s.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	records := make([]T, 0, len(keys))
	for _, key := range keys {
		var record T
		if err := json.Unmarshal(s.entries[key].payload, &record); err != nil {
			return nil, fmt.Errorf("failed to decode record %s: %w", key, err)
		}
		records = append(records, record)
	}
	return records, nil
}

// Insert cria um registro novo
func (s *Memory[T]) Insert(_ context.Context, key string, record T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; ok {
		return ErrExists
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode record %s: %w", key, err)
	}
	s.entries[key] = &memoryEntry{version: 1, payload: payload}
	return nil
}

// Update sobrescreve o registro de forma condicional à versão lida
func (s *Memory[T]) Update(_ context.Context, key string, record T, tag ETag) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return ErrNotFound
	}
	version, err := strconv.ParseInt(string(tag), 10, 64)
	if err != nil {
		return fmt.Errorf("malformed etag for record %s: %w", key, err)
	}
	if entry.version != version {
		return ErrConflict
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode record %s: %w", key, err)
	}
	entry.version++
	entry.payload = payload
	return nil
}

// Upsert cria ou sobrescreve o registro incondicionalmente
func (s *Memory[T]) Upsert(_ context.Context, key string, record T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode record %s: %w", key, err)
	}
	if entry, ok := s.entries[key]; ok {
		entry.version++
		entry.payload = payload
		return nil
	}
	s.entries[key] = &memoryEntry{version: 1, payload: payload}
	return nil
}

// Delete remove o registro
func (s *Memory[T]) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; !ok {
		return ErrNotFound
	}
	delete(s.entries, key)
	return nil
}
