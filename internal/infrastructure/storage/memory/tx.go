// Package memory provides in-process implementations of every repository.
// It backs the test suites and the STORAGE_DRIVER=memory development mode.
package memory

import (
	"context"
	"sync"

	"salesledger/internal/core/tx"
)

var _ tx.Manager = (*TxManager)(nil)

// TxManager serializes transactions and rolls back their writes on error by
// replaying an undo log in reverse order.
type TxManager struct {
	mu sync.Mutex
}

// NewTxManager creates a transaction manager.
func NewTxManager() *TxManager {
	return &TxManager{}
}

type txKey struct{}

type txState struct {
	undo []func()
}

// RunInTransaction executes fn; nested calls join the outer transaction.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*txState); ok {
		return fn(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	state := &txState{}
	if err := fn(context.WithValue(ctx, txKey{}, state)); err != nil {
		for i := len(state.undo) - 1; i >= 0; i-- {
			state.undo[i]()
		}
		return err
	}
	return nil
}

// onRollback registers undo for the transaction in ctx, if any.
func onRollback(ctx context.Context, undo func()) {
	if state, ok := ctx.Value(txKey{}).(*txState); ok {
		state.undo = append(state.undo, undo)
	}
}
