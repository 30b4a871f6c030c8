// Package invoice provides the sales invoice: a sale journal with an optional
// payment, stock out for tracked items, and the running balances that credit
// notes and receipts adjust.
package invoice

import (
	"context"

	"github.com/shopspring/decimal"

	"salesledger/internal/core/entity"
	"salesledger/internal/core/id"
	"salesledger/internal/core/types"
	"salesledger/internal/domain/documents"
	"salesledger/internal/domain/posting"
)

// Invoice is a sales invoice.
type Invoice struct {
	documents.Sales

	// ReceivedAmount is the sum allocated by receipts.
	ReceivedAmount types.Money `db:"received_amount" json:"receivedAmount"`

	// CreditedAmount is the sum of credit note grand totals.
	CreditedAmount types.Money `db:"credited_amount" json:"creditedAmount"`

	// Returned is the quantity credited back per invoice line.
	Returned map[id.ID]types.Quantity `db:"returned_quantities" json:"returnedQuantities"`
}

// NewInvoice creates an empty invoice.
func NewInvoice(organizationID id.ID, userID string) *Invoice {
	return &Invoice{
		Sales:          documents.NewSales(organizationID, userID),
		ReceivedAmount: decimal.Zero,
		CreditedAmount: decimal.Zero,
		Returned:       map[id.ID]types.Quantity{},
	}
}

// Clone returns a deep copy.
func (inv *Invoice) Clone() *Invoice {
	c := *inv
	c.Sales = documents.CloneSales(inv.Sales)
	c.Returned = make(map[id.ID]types.Quantity, len(inv.Returned))
	for k, v := range inv.Returned {
		c.Returned[k] = v
	}
	return &c
}

// IsConsumed reports whether a receipt or credit note references the invoice.
func (inv *Invoice) IsConsumed() bool {
	if !inv.ReceivedAmount.IsZero() || !inv.CreditedAmount.IsZero() {
		return true
	}
	for _, q := range inv.Returned {
		if q != 0 {
			return true
		}
	}
	return false
}

// OpenBalance is grand total minus everything paid, received or credited.
// It may be negative only transiently, before validation rejects a change.
func (inv *Invoice) OpenBalance() types.Money {
	return inv.GrandTotal.Sub(inv.PaidAmount).Sub(inv.ReceivedAmount).Sub(inv.CreditedAmount)
}

// Returnable is the quantity of line that may still be credited.
func (inv *Invoice) Returnable(lineID id.ID) types.Quantity {
	line, ok := inv.Line(lineID)
	if !ok {
		return 0
	}
	return line.Quantity - inv.Returned[lineID]
}

// Refresh recomputes Balance and Status.
func (inv *Invoice) Refresh() {
	inv.Balance = types.MaxZero(inv.OpenBalance())
	switch {
	case inv.Balance.IsZero():
		inv.Status = StatusPaid
	case inv.Balance.LessThan(inv.GrandTotal):
		inv.Status = StatusPartiallyPaid
	default:
		inv.Status = StatusUnpaid
	}
}

// GetDocumentType implements posting.Postable.
func (inv *Invoice) GetDocumentType() entity.DocumentType {
	return entity.DocumentTypeInvoice
}

// GenerateMovements implements posting.Postable.
func (inv *Invoice) GenerateMovements(context.Context) (*posting.MovementSet, error) {
	return documents.Movements(&inv.Sales, entity.DocumentTypeInvoice)
}

var _ posting.Postable = (*Invoice)(nil)
