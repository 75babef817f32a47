// Package store provides the key-value record store backing all persisted
// collections. Each named record holds one JSON document; callers always read
// and rewrite a collection whole, there is no row-level access.
package store

import "context"

// Store is the contract for named JSON record storage.
//
// Read decodes the record stored under key into out. A missing record leaves
// out untouched and returns nil; an unparsable record is treated the same way,
// so callers that pass a zero-valued destination recover from corruption by
// falling back to the empty collection. Read never fails on record content.
type Store interface {
	Read(ctx context.Context, key string, out any) error
	Write(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
	Close() error
}
