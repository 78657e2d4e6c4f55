// Package docstore is the persistence port for the storefront. Records
// are flat maps addressed by collection name and id, so the application
// core never depends on a concrete database.
package docstore

import (
	"context"

	"github.com/pkg/errors"
)

// Record is a schemaless document as stored in a collection.
type Record = map[string]interface{}

var (
	ErrNotFound          = errors.New("docstore: record not found")
	ErrUnknownCollection = errors.New("docstore: unknown collection")
)

// Query narrows and orders a List call. A zero Query returns the whole
// collection in backend-native order.
type Query struct {
	OrderBy    string
	Desc       bool
	Offset     int
	Limit      int
	Eq         map[string]interface{} // exact-match filters, field -> value
	MatchField string                 // case-insensitive substring filter
	Match      string
}

// Store is the document store contract. List/Get are reads and may be
// degraded by callers on upstream failure; Create/Update/Delete are
// single logical writes with no internal retries.
type Store interface {
	List(ctx context.Context, collection string, q Query) ([]Record, int64, error)
	Get(ctx context.Context, collection string, id int64) (Record, error)
	Create(ctx context.Context, collection string, rec Record) (int64, error)
	Update(ctx context.Context, collection string, id int64, partial Record) error
	Delete(ctx context.Context, collection string, id int64) error
	Close() error
}
