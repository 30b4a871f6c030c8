package dto

import (
	"time"

	"salesledger/internal/core/id"
	"salesledger/internal/core/types"
	"salesledger/internal/domain/documents/credit_note"
	"salesledger/internal/domain/pricing"
)

// CreditNoteLineRequest returns a quantity of one invoice line.
type CreditNoteLineRequest struct {
	InvoiceLineID id.ID            `json:"invoiceLineId"`
	Quantity      types.Quantity   `json:"quantity"`
	Discount      pricing.Discount `json:"discount"`
	pricing.TaxAmounts
	LineTotal types.Money `json:"lineTotal"`
}

// CreditNoteRequest is a sales return against one invoice.
type CreditNoteRequest struct {
	Number       string                  `json:"number"`
	InvoiceID    id.ID                   `json:"invoiceId"`
	Date         time.Time               `json:"date"`
	Lines        []CreditNoteLineRequest `json:"lines"`
	Discount     pricing.Discount        `json:"discount"`
	OtherExpense types.Money             `json:"otherExpense"`
	Freight      types.Money             `json:"freight"`
	RoundOff     types.Money             `json:"roundOff"`
	TotalsClaim
	Comment string `json:"comment"`
}

// ToInput maps the request to the credit note input.
func (r CreditNoteRequest) ToInput() credit_note.Input {
	in := credit_note.Input{
		Number:       r.Number,
		InvoiceID:    r.InvoiceID,
		Date:         r.Date,
		Lines:        make([]credit_note.LineInput, 0, len(r.Lines)),
		Discount:     r.Discount,
		OtherExpense: r.OtherExpense,
		Freight:      r.Freight,
		RoundOff:     r.RoundOff,
		Claimed:      r.TotalsClaim.claim(),
		Comment:      r.Comment,
	}
	for _, l := range r.Lines {
		in.Lines = append(in.Lines, credit_note.LineInput{
			InvoiceLineID: l.InvoiceLineID,
			Quantity:      l.Quantity,
			Discount:      l.Discount,
			Claimed:       pricing.LineClaim{Tax: l.TaxAmounts, LineTotal: l.LineTotal},
		})
	}
	return in
}
