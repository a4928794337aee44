// Package persistence defines the key-value contract the engine persists
// through, plus the SQLite and in-memory implementations.
package persistence

import "context"

// Keys for the two independent entries the engine owns.
const (
	KeyEmployees = "employees"
	KeySession   = "session"
)

// KV provides opaque load/store of serialized engine state. The engine
// loads on start and saves on every mutation; everything else is the
// implementation's business.
type KV interface {
	// Load returns the value for key and whether it exists.
	Load(ctx context.Context, key string) ([]byte, bool, error)

	// Store writes the value for key, replacing any previous value.
	Store(ctx context.Context, key string, value []byte) error
}
