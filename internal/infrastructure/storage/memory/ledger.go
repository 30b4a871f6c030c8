package memory

import (
	"context"
	"sync"

	"salesledger/internal/core/entity"
	"salesledger/internal/core/id"
	"salesledger/internal/domain/registers/journal"
	"salesledger/internal/domain/registers/stock"
)

var (
	_ stock.Repository   = (*StockRepo)(nil)
	_ journal.Repository = (*JournalRepo)(nil)
)

// rows is an append-only table of ledger rows keyed by operation.
type rows[T any] struct {
	mu   sync.RWMutex
	data []T
	base func(*T) *entity.MovementBase
}

func (r *rows[T]) insert(ctx context.Context, batch []T) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lineIDs := make(map[id.ID]bool, len(batch))
	for i := range batch {
		lineIDs[r.base(&batch[i]).LineID] = true
	}
	r.data = append(r.data, batch...)

	onRollback(ctx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.data = r.filter(func(row *T) bool { return !lineIDs[r.base(row).LineID] })
	})
}

func (r *rows[T]) deleteOperation(ctx context.Context, organizationID, operationID id.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []T
	kept := r.filter(func(row *T) bool {
		b := r.base(row)
		if b.OrganizationID == organizationID && b.OperationID == operationID {
			removed = append(removed, *row)
			return false
		}
		return true
	})
	r.data = kept
	if len(removed) == 0 {
		return
	}

	onRollback(ctx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.data = append(r.data, removed...)
	})
}

func (r *rows[T]) filter(keep func(*T) bool) []T {
	out := make([]T, 0, len(r.data))
	for i := range r.data {
		if keep(&r.data[i]) {
			out = append(out, r.data[i])
		}
	}
	return out
}

func (r *rows[T]) byOperation(organizationID, operationID id.ID) []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.filter(func(row *T) bool {
		b := r.base(row)
		return b.OrganizationID == organizationID && b.OperationID == operationID
	})
}

func (r *rows[T]) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data)
}

// StockRepo is an in-memory stock ledger.
type StockRepo struct {
	rows rows[entity.StockMovement]
}

// NewStockRepo creates an empty stock ledger.
func NewStockRepo() *StockRepo {
	return &StockRepo{rows: rows[entity.StockMovement]{
		base: func(m *entity.StockMovement) *entity.MovementBase { return &m.MovementBase },
	}}
}

func (r *StockRepo) CreateMovements(ctx context.Context, movements []entity.StockMovement) error {
	r.rows.insert(ctx, append([]entity.StockMovement(nil), movements...))
	return nil
}

func (r *StockRepo) DeleteByOperation(ctx context.Context, organizationID, operationID id.ID) error {
	r.rows.deleteOperation(ctx, organizationID, operationID)
	return nil
}

func (r *StockRepo) ListByOperation(_ context.Context, organizationID, operationID id.ID) ([]entity.StockMovement, error) {
	return r.rows.byOperation(organizationID, operationID), nil
}

func (r *StockRepo) SumByItems(_ context.Context, organizationID id.ID, itemIDs []id.ID) (map[id.ID]stock.Totals, error) {
	wanted := make(map[id.ID]bool, len(itemIDs))
	for _, itemID := range itemIDs {
		wanted[itemID] = true
	}

	r.rows.mu.RLock()
	defer r.rows.mu.RUnlock()

	out := make(map[id.ID]stock.Totals)
	for _, m := range r.rows.data {
		if m.OrganizationID != organizationID || !wanted[m.ItemID] {
			continue
		}
		t := out[m.ItemID]
		t.ItemID = m.ItemID
		t.Debit += m.DebitQuantity
		t.Credit += m.CreditQuantity
		out[m.ItemID] = t
	}
	return out, nil
}

// Len returns the number of stored movements.
func (r *StockRepo) Len() int {
	return r.rows.count()
}

// JournalRepo is an in-memory journal.
type JournalRepo struct {
	rows rows[entity.JournalEntry]
}

// NewJournalRepo creates an empty journal.
func NewJournalRepo() *JournalRepo {
	return &JournalRepo{rows: rows[entity.JournalEntry]{
		base: func(e *entity.JournalEntry) *entity.MovementBase { return &e.MovementBase },
	}}
}

func (r *JournalRepo) CreateEntries(ctx context.Context, entries []entity.JournalEntry) error {
	r.rows.insert(ctx, append([]entity.JournalEntry(nil), entries...))
	return nil
}

func (r *JournalRepo) DeleteByOperation(ctx context.Context, organizationID, operationID id.ID) error {
	r.rows.deleteOperation(ctx, organizationID, operationID)
	return nil
}

func (r *JournalRepo) ListByOperation(_ context.Context, organizationID, operationID id.ID) ([]entity.JournalEntry, error) {
	return r.rows.byOperation(organizationID, operationID), nil
}

// Len returns the number of stored rows.
func (r *JournalRepo) Len() int {
	return r.rows.count()
}
