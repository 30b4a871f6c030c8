// Package tailoring_order provides the tailoring order: a priced sale that
// moves through a fixed workflow and releases stock only on delivery.
package tailoring_order

import (
	"context"

	"salesledger/internal/core/entity"
	"salesledger/internal/core/id"
	"salesledger/internal/domain/documents"
	"salesledger/internal/domain/posting"
)

// TailoringOrder is a tailoring order.
type TailoringOrder struct {
	documents.Sales

	// Statuses is the workflow history, oldest first. Status mirrors the
	// latest entry.
	Statuses []StatusEntry `db:"statuses" json:"statuses"`
}

// NewTailoringOrder creates an order in the Received status.
func NewTailoringOrder(organizationID id.ID, userID string) *TailoringOrder {
	o := &TailoringOrder{Sales: documents.NewSales(organizationID, userID)}
	o.Statuses = []StatusEntry{{Status: StatusReceived, At: o.CreatedAt, By: userID}}
	o.Status = StatusReceived
	return o
}

// Clone returns a deep copy.
func (o *TailoringOrder) Clone() *TailoringOrder {
	return &TailoringOrder{
		Sales:    documents.CloneSales(o.Sales),
		Statuses: append([]StatusEntry(nil), o.Statuses...),
	}
}

// Delivered reports whether the latest status is Delivery.
func (o *TailoringOrder) Delivered() bool {
	n := len(o.Statuses)
	return n > 0 && o.Statuses[n-1].Status == StatusDelivery
}

func (o *TailoringOrder) setStatuses(history []StatusEntry) {
	o.Statuses = history
	if n := len(history); n > 0 {
		o.Status = history[n-1].Status
	}
}

// GetDocumentType implements posting.Postable.
func (o *TailoringOrder) GetDocumentType() entity.DocumentType {
	return entity.DocumentTypeTailoringOrder
}

// GenerateMovements implements posting.Postable.
func (o *TailoringOrder) GenerateMovements(context.Context) (*posting.MovementSet, error) {
	return documents.Movements(&o.Sales, entity.DocumentTypeTailoringOrder)
}

var _ posting.Postable = (*TailoringOrder)(nil)
