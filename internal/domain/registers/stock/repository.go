// Package stock provides the inventory stock ledger.
package stock

import (
	"context"

	"salesledger/internal/core/entity"
	"salesledger/internal/core/id"
	"salesledger/internal/core/types"
)

// Repository defines storage operations for the stock ledger.
type Repository interface {
	// CreateMovements batch inserts movements.
	CreateMovements(ctx context.Context, movements []entity.StockMovement) error

	// DeleteByOperation removes every movement of an operation.
	DeleteByOperation(ctx context.Context, organizationID, operationID id.ID) error

	// ListByOperation returns the movements of an operation.
	ListByOperation(ctx context.Context, organizationID, operationID id.ID) ([]entity.StockMovement, error)

	// SumByItems aggregates debit and credit quantities per item.
	// Items without movements are absent from the result.
	SumByItems(ctx context.Context, organizationID id.ID, itemIDs []id.ID) (map[id.ID]Totals, error)
}

// Totals are the aggregated quantities of one item.
type Totals struct {
	ItemID id.ID          `db:"item_id" json:"itemId"`
	Debit  types.Quantity `db:"debit" json:"debit"`
	Credit types.Quantity `db:"credit" json:"credit"`
}

// Balance returns Debit - Credit.
func (t Totals) Balance() types.Quantity {
	return t.Debit - t.Credit
}
