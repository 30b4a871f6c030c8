package dto

import (
	"time"

	"salesledger/internal/core/id"
	"salesledger/internal/core/types"
	"salesledger/internal/domain/documents"
	"salesledger/internal/domain/documents/quote"
	"salesledger/internal/domain/pricing"
)

// TotalsClaim carries the document totals the client computed.
type TotalsClaim struct {
	Subtotal      types.Money `json:"subtotal"`
	TotalDiscount types.Money `json:"totalDiscount"`
	TotalTax      types.Money `json:"totalTax"`
	GrandTotal    types.Money `json:"grandTotal"`
}

func (t TotalsClaim) claim() pricing.DocumentClaim {
	return pricing.DocumentClaim{
		Subtotal:      t.Subtotal,
		TotalDiscount: t.TotalDiscount,
		TotalTax:      t.TotalTax,
		GrandTotal:    t.GrandTotal,
	}
}

// LineRequest is one submitted sales line. Tax amounts are flattened into
// the line as cgstAmount, sgstAmount, igstAmount and vatAmount.
type LineRequest struct {
	ItemID        id.ID                 `json:"itemId"`
	Quantity      types.Quantity        `json:"quantity"`
	UnitPrice     types.Money           `json:"unitPrice"`
	TaxPreference pricing.TaxPreference `json:"taxPreference"`
	Rates         pricing.Rates         `json:"rates"`
	Discount      pricing.Discount      `json:"discount"`
	pricing.TaxAmounts
	LineTotal types.Money `json:"lineTotal"`
}

// SalesRequest is the payload of orders, invoices and tailoring orders.
type SalesRequest struct {
	Number           string           `json:"number"`
	Date             time.Time        `json:"date"`
	CustomerID       id.ID            `json:"customerId"`
	PlaceOfSupply    string           `json:"placeOfSupply"`
	Lines            []LineRequest    `json:"lines"`
	Discount         pricing.Discount `json:"discount"`
	OtherExpense     types.Money      `json:"otherExpense"`
	Freight          types.Money      `json:"freight"`
	RoundOff         types.Money      `json:"roundOff"`
	PaidAmount       types.Money      `json:"paidAmount"`
	DepositAccountID *id.ID           `json:"depositAccountId"`
	TotalsClaim
	Comment string `json:"comment"`
}

// ToInput maps the request to the orchestrator input.
func (r SalesRequest) ToInput() documents.SalesInput {
	in := documents.SalesInput{
		Number:           r.Number,
		Date:             r.Date,
		CustomerID:       r.CustomerID,
		PlaceOfSupply:    r.PlaceOfSupply,
		Lines:            make([]documents.LineInput, 0, len(r.Lines)),
		Discount:         r.Discount,
		OtherExpense:     r.OtherExpense,
		Freight:          r.Freight,
		RoundOff:         r.RoundOff,
		Paid:             r.PaidAmount,
		DepositAccountID: r.DepositAccountID,
		Claimed:          r.TotalsClaim.claim(),
		Comment:          r.Comment,
	}
	for _, l := range r.Lines {
		in.Lines = append(in.Lines, documents.LineInput{
			ItemID:        l.ItemID,
			Quantity:      l.Quantity,
			UnitPrice:     l.UnitPrice,
			TaxPreference: l.TaxPreference,
			Rates:         l.Rates,
			Discount:      l.Discount,
			Claimed:       pricing.LineClaim{Tax: l.TaxAmounts, LineTotal: l.LineTotal},
		})
	}
	return in
}

// QuoteRequest is a sales payload with an optional expiry date.
type QuoteRequest struct {
	SalesRequest
	ExpiryDate *time.Time `json:"expiryDate"`
}

// ToInput maps the request to the quote input.
func (r QuoteRequest) ToInput() quote.Input {
	return quote.Input{SalesInput: r.SalesRequest.ToInput(), ExpiryDate: r.ExpiryDate}
}

// StatusRequest moves a tailoring order to the next workflow status.
type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}
