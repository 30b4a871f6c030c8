// Package tx provides transaction management abstractions.
// Domain services depend on Manager; the implementations live in
// infrastructure/storage/postgres and infrastructure/storage/memory.
package tx

import (
	"context"
)

// Manager runs a unit of work atomically.
//
// The document write, the journal rewrite, the stock rewrite and the
// numbering counter update of one operation share a single Manager call.
type Manager interface {
	// RunInTransaction executes fn within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// Nested calls reuse the existing transaction from context.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
