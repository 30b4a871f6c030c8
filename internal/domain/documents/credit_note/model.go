// Package credit_note provides the credit note: a return against an invoice
// that mirrors its journal, brings returned goods back into stock and reduces
// the invoice balance.
package credit_note

import (
	"context"
	"time"

	"salesledger/internal/core/entity"
	"salesledger/internal/core/id"
	"salesledger/internal/core/types"
	"salesledger/internal/domain/documents"
	"salesledger/internal/domain/documents/invoice"
	"salesledger/internal/domain/posting"
	"salesledger/internal/domain/pricing"
)

// CreditNote is a sales return against one invoice.
type CreditNote struct {
	documents.Sales

	InvoiceID     id.ID  `db:"invoice_id" json:"invoiceId"`
	InvoiceNumber string `db:"invoice_number" json:"invoiceNumber"`
}

// LineInput returns a quantity of one invoice line.
type LineInput struct {
	InvoiceLineID id.ID
	Quantity      types.Quantity
	Discount      pricing.Discount
	Claimed       pricing.LineClaim
}

// Input is a parsed credit note payload.
type Input struct {
	// Number must repeat the stored number on update and is ignored on create.
	Number string

	InvoiceID    id.ID
	Date         time.Time
	Lines        []LineInput
	Discount     pricing.Discount
	OtherExpense types.Money
	Freight      types.Money
	RoundOff     types.Money
	Claimed      pricing.DocumentClaim
	Comment      string
}

// NewCreditNote creates an empty credit note.
func NewCreditNote(organizationID id.ID, userID string) *CreditNote {
	cn := &CreditNote{Sales: documents.NewSales(organizationID, userID)}
	cn.Status = StatusIssued
	return cn
}

// Clone returns a deep copy.
func (cn *CreditNote) Clone() *CreditNote {
	c := *cn
	c.Sales = documents.CloneSales(cn.Sales)
	return &c
}

// Adjustment is the effect of the credit note on its invoice.
func (cn *CreditNote) Adjustment() invoice.BalanceAdjusted {
	ev := invoice.BalanceAdjusted{
		OrganizationID: cn.OrganizationID,
		InvoiceID:      cn.InvoiceID,
		CreditedDelta:  cn.GrandTotal,
		Returned:       make(map[id.ID]types.Quantity, len(cn.Lines)),
	}
	for _, l := range cn.Lines {
		if l.SourceLineID != nil {
			ev.Returned[*l.SourceLineID] += l.Quantity
		}
	}
	return ev
}

// ReturnedBy returns the quantity this credit note returns of an invoice line.
func (cn *CreditNote) ReturnedBy(invoiceLineID id.ID) types.Quantity {
	var q types.Quantity
	for _, l := range cn.Lines {
		if l.SourceLineID != nil && *l.SourceLineID == invoiceLineID {
			q += l.Quantity
		}
	}
	return q
}

// GetDocumentType implements posting.Postable.
func (cn *CreditNote) GetDocumentType() entity.DocumentType {
	return entity.DocumentTypeCreditNote
}

// GenerateMovements implements posting.Postable.
func (cn *CreditNote) GenerateMovements(context.Context) (*posting.MovementSet, error) {
	return documents.Movements(&cn.Sales, entity.DocumentTypeCreditNote)
}

var _ posting.Postable = (*CreditNote)(nil)
