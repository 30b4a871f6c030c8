package documents

import (
	"time"

	"salesledger/internal/core/id"
	"salesledger/internal/core/types"
	"salesledger/internal/domain/pricing"
)

// LineInput is one submitted line with the amounts the caller computed.
type LineInput struct {
	ItemID        id.ID
	Quantity      types.Quantity
	UnitPrice     types.Money
	TaxPreference pricing.TaxPreference
	Rates         pricing.Rates
	Discount      pricing.Discount
	Claimed       pricing.LineClaim
}

// SalesInput is a parsed sales document payload.
type SalesInput struct {
	// Number must repeat the stored number on update and is ignored on create.
	Number string

	Date          time.Time
	CustomerID    id.ID
	PlaceOfSupply string
	Lines         []LineInput
	Discount      pricing.Discount
	OtherExpense  types.Money
	Freight       types.Money
	RoundOff      types.Money

	// Paid is the amount received with the document into DepositAccountID.
	Paid             types.Money
	DepositAccountID *id.ID

	Claimed pricing.DocumentClaim
	Comment string
}

// ItemIDs returns the items of every line.
func (in SalesInput) ItemIDs() []id.ID {
	out := make([]id.ID, 0, len(in.Lines))
	for _, l := range in.Lines {
		out = append(out, l.ItemID)
	}
	return out
}

// InputFromSales rebuilds the input that produces s, claiming the stored
// amounts. Used to reprice a stored document.
func InputFromSales(s *Sales) SalesInput {
	in := SalesInput{
		Number:           s.Number,
		Date:             s.Date,
		CustomerID:       s.CustomerID,
		PlaceOfSupply:    s.PlaceOfSupply,
		Lines:            make([]LineInput, 0, len(s.Lines)),
		Discount:         s.Discount,
		OtherExpense:     s.OtherExpense,
		Freight:          s.Freight,
		RoundOff:         s.RoundOff,
		Paid:             s.PaidAmount,
		DepositAccountID: s.DepositAccountID,
		Claimed: pricing.DocumentClaim{
			Subtotal:      s.Subtotal,
			TotalDiscount: s.TotalDiscount,
			TotalTax:      s.TotalTax,
			GrandTotal:    s.GrandTotal,
		},
		Comment: s.Comment,
	}
	for _, l := range s.Lines {
		in.Lines = append(in.Lines, LineInput{
			ItemID:        l.ItemID,
			Quantity:      l.Quantity,
			UnitPrice:     l.UnitPrice,
			TaxPreference: l.TaxPreference,
			Rates:         l.Rates,
			Discount:      l.Discount,
			Claimed:       pricing.LineClaim{Tax: l.Tax, LineTotal: l.LineTotal},
		})
	}
	return in
}

func (in SalesInput) pricingDocument(taxType pricing.TaxType, ordering pricing.Ordering) pricing.Document {
	doc := pricing.Document{
		TaxType:      taxType,
		Ordering:     ordering,
		Lines:        make([]pricing.Line, 0, len(in.Lines)),
		Discount:     in.Discount,
		OtherExpense: in.OtherExpense,
		Freight:      in.Freight,
		RoundOff:     in.RoundOff,
		Paid:         in.Paid,
		Claimed:      in.Claimed,
	}
	for _, l := range in.Lines {
		doc.Lines = append(doc.Lines, pricing.Line{
			ItemID:        l.ItemID,
			Quantity:      l.Quantity,
			UnitPrice:     l.UnitPrice,
			TaxPreference: l.TaxPreference,
			Rates:         l.Rates,
			Discount:      l.Discount,
			Claimed:       l.Claimed,
		})
	}
	return doc
}
