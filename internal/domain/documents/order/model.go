// Package order provides the sales order. An order moves no stock; its only
// ledger effect is an advance payment received with it.
package order

import (
	"context"

	"salesledger/internal/core/entity"
	"salesledger/internal/core/id"
	"salesledger/internal/domain/documents"
	"salesledger/internal/domain/posting"
)

// Order is a sales order.
type Order struct {
	documents.Sales
}

// NewOrder creates an empty order.
func NewOrder(organizationID id.ID, userID string) *Order {
	o := &Order{Sales: documents.NewSales(organizationID, userID)}
	o.Status = StatusOpen
	return o
}

// Clone returns a deep copy.
func (o *Order) Clone() *Order {
	return &Order{Sales: documents.CloneSales(o.Sales)}
}

// GetDocumentType implements posting.Postable.
func (o *Order) GetDocumentType() entity.DocumentType {
	return entity.DocumentTypeOrder
}

// GenerateMovements implements posting.Postable.
func (o *Order) GenerateMovements(context.Context) (*posting.MovementSet, error) {
	return documents.Movements(&o.Sales, entity.DocumentTypeOrder)
}

var _ posting.Postable = (*Order)(nil)
