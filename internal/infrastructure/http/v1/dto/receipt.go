package dto

import (
	"time"

	"salesledger/internal/core/id"
	"salesledger/internal/core/types"
	"salesledger/internal/domain/documents/receipt"
)

// AllocationRequest settles part of one invoice.
type AllocationRequest struct {
	InvoiceID id.ID       `json:"invoiceId"`
	Amount    types.Money `json:"amount"`
}

// ReceiptRequest is money received from a customer.
type ReceiptRequest struct {
	Number           string              `json:"number"`
	Date             time.Time           `json:"date"`
	CustomerID       id.ID               `json:"customerId"`
	DepositAccountID id.ID               `json:"depositAccountId"`
	Amount           types.Money         `json:"amount"`
	Allocations      []AllocationRequest `json:"allocations"`
	Comment          string              `json:"comment"`
}

// ToInput maps the request to the receipt input.
func (r ReceiptRequest) ToInput() receipt.Input {
	in := receipt.Input{
		Number:           r.Number,
		Date:             r.Date,
		CustomerID:       r.CustomerID,
		DepositAccountID: r.DepositAccountID,
		Amount:           r.Amount,
		Allocations:      make([]receipt.AllocationInput, 0, len(r.Allocations)),
		Comment:          r.Comment,
	}
	for _, a := range r.Allocations {
		in.Allocations = append(in.Allocations, receipt.AllocationInput{InvoiceID: a.InvoiceID, Amount: a.Amount})
	}
	return in
}
