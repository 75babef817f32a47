package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore is an in-memory Store used by tests and fixtures. It applies the
// same serialize-on-write semantics as the SQLite implementation so tests
// exercise the JSON round trip.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{records: make(map[string][]byte)}
}

// Read decodes the record stored under key into out. Missing or unparsable
// records leave out untouched.
func (s *MemoryStore) Read(ctx context.Context, key string, out any) error {
	s.mu.RLock()
	raw, ok := s.records[key]
	s.mu.RUnlock()

	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return nil
	}
	return nil
}

// Write serializes value and stores it under key.
func (s *MemoryStore) Write(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("store: encode %q: %w", key, err)
	}

	s.mu.Lock()
	s.records[key] = raw
	s.mu.Unlock()
	return nil
}

// Delete removes the record stored under key.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	delete(s.records, key)
	s.mu.Unlock()
	return nil
}

// Close is a no-op for the in-memory implementation.
func (s *MemoryStore) Close() error {
	return nil
}

// Corrupt overwrites the record under key with bytes that do not decode as
// JSON. Tests use it to verify the empty-collection fallback.
func (s *MemoryStore) Corrupt(key string) {
	s.mu.Lock()
	s.records[key] = []byte("{not json")
	s.mu.Unlock()
}
