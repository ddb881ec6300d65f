// Package store defines the record store consumed by the identity layer and
// its backing implementations.
//
// A record store is a durable key-value facility organized in logical tables.
// Values are opaque byte blobs; interpreting them is the caller's concern.
// Writes are durable once Put returns without error.
package store

import "context"

// Logical table names used by the identity layer.
const (
	// TableUsers holds one serialized user record per handle.
	TableUsers = "users"

	// TableCore holds singleton records such as the group registry.
	TableCore = "core"
)

// Record is a single scanned row.
type Record struct {
	Key  string
	Data []byte
}

// Store is the persistence contract of the identity layer.
//
// Get returns common.ErrorNotFound when the key is absent. Put is an atomic
// upsert in every implementation. Scan returns all records of a table in
// unspecified order.
type Store interface {
	Get(ctx context.Context, table, key string) ([]byte, error)
	Put(ctx context.Context, table, key string, data []byte) error
	Exists(ctx context.Context, table, key string) (bool, error)
	Scan(ctx context.Context, table string) ([]Record, error)
}

// tables every implementation must provision.
var tables = []string{TableUsers, TableCore}
