// Package pricing recomputes the monetary fields of a sales document from its
// lines and verifies them against the amounts submitted by the caller.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"salesledger/internal/core/apperror"
	"salesledger/internal/core/id"
	"salesledger/internal/core/types"
)

// Ordering decides what the document discount percentage is computed against.
type Ordering int

const (
	// DiscountAfterAdditions computes the document discount on
	// subtotal + other expense + freight (orders, invoices, credit notes).
	DiscountAfterAdditions Ordering = iota
	// DiscountBeforeAdditions computes the document discount on the subtotal
	// and adds other expense and freight afterwards (quotes).
	DiscountBeforeAdditions
)

// LineClaim holds the amounts the caller computed for a line.
type LineClaim struct {
	Tax       TaxAmounts
	LineTotal types.Money
}

// Line is one priced line of a submission.
type Line struct {
	ItemID        id.ID
	Quantity      types.Quantity
	UnitPrice     types.Money
	TaxPreference TaxPreference
	Rates         Rates
	Discount      Discount
	Claimed       LineClaim
}

// DocumentClaim holds the document-level amounts the caller computed.
type DocumentClaim struct {
	Subtotal      types.Money
	TotalDiscount types.Money
	TotalTax      types.Money
	GrandTotal    types.Money
}

// Document is the pricing input of a sales document.
type Document struct {
	TaxType      TaxType
	Ordering     Ordering
	Lines        []Line
	Discount     Discount
	OtherExpense types.Money
	Freight      types.Money
	RoundOff     types.Money
	Paid         types.Money
	Claimed      DocumentClaim
}

// LineResult is the recomputed line.
type LineResult struct {
	Gross    types.Money `json:"gross"`
	Discount types.Money `json:"discountAmount"`
	PreTax   types.Money `json:"preTaxAmount"`
	Tax      TaxAmounts  `json:"tax"`
	TaxTotal types.Money `json:"taxAmount"`
	Total    types.Money `json:"lineTotal"`
}

// Totals is the recomputed document.
type Totals struct {
	Lines            []LineResult
	Gross            types.Money
	Subtotal         types.Money
	LineDiscount     types.Money
	DocumentDiscount types.Money
	TotalDiscount    types.Money
	Tax              TaxAmounts
	TotalTax         types.Money
	OtherExpense     types.Money
	Freight          types.Money
	RoundOff         types.Money
	GrandTotal       types.Money
	Paid             types.Money
	Balance          types.Money
}

// ComputeLine prices one line under taxType.
func ComputeLine(taxType TaxType, l Line) LineResult {
	gross := types.Round2(l.UnitPrice.Mul(l.Quantity.Decimal()))
	disc := l.Discount.Of(gross)
	preTax := gross.Sub(disc)

	var tax TaxAmounts
	if l.TaxPreference != NonTaxable {
		tax = applyTax(taxType, l.Rates, preTax)
	}
	taxTotal := tax.Total()

	return LineResult{
		Gross:    gross,
		Discount: disc,
		PreTax:   preTax,
		Tax:      tax,
		TaxTotal: taxTotal,
		Total:    preTax.Add(taxTotal),
	}
}

// Compute recomputes every derived amount of doc.
func Compute(doc Document) Totals {
	t := Totals{
		Lines:        make([]LineResult, 0, len(doc.Lines)),
		Gross:        decimal.Zero,
		Subtotal:     decimal.Zero,
		LineDiscount: decimal.Zero,
		OtherExpense: types.Round2(doc.OtherExpense),
		Freight:      types.Round2(doc.Freight),
		RoundOff:     types.Round2(doc.RoundOff),
		Paid:         types.Round2(doc.Paid),
	}

	for _, l := range doc.Lines {
		r := ComputeLine(doc.TaxType, l)
		t.Lines = append(t.Lines, r)
		t.Gross = t.Gross.Add(r.Gross)
		t.Subtotal = t.Subtotal.Add(r.Total)
		t.LineDiscount = t.LineDiscount.Add(r.Discount)
		t.Tax = t.Tax.Add(r.Tax)
	}
	t.TotalTax = t.Tax.Total()

	additions := t.OtherExpense.Add(t.Freight)
	switch doc.Ordering {
	case DiscountBeforeAdditions:
		t.DocumentDiscount = doc.Discount.Of(t.Subtotal)
		t.GrandTotal = t.Subtotal.Sub(t.DocumentDiscount).Add(additions)
	default:
		running := t.Subtotal.Add(additions)
		t.DocumentDiscount = doc.Discount.Of(running)
		t.GrandTotal = running.Sub(t.DocumentDiscount)
	}
	t.GrandTotal = t.GrandTotal.Sub(t.RoundOff)

	t.TotalDiscount = t.LineDiscount.Add(t.DocumentDiscount)
	t.Balance = types.MaxZero(t.GrandTotal.Sub(t.Paid))
	return t
}

// Validate collects input rule violations of doc into c.
func Validate(doc Document, c *apperror.Collector) {
	if len(doc.Lines) == 0 {
		c.Add("at least one line item is required")
	}
	for i, l := range doc.Lines {
		n := i + 1
		if id.IsNil(l.ItemID) {
			c.Addf("line %d: item is required", n)
		}
		if l.Quantity <= 0 {
			c.Addf("line %d: quantity must be positive", n)
		}
		if l.UnitPrice.IsNegative() {
			c.Addf("line %d: unit price must not be negative", n)
		}
		switch l.TaxPreference {
		case Taxable, NonTaxable:
		default:
			c.Addf("line %d: tax preference must be Taxable or NonTaxable", n)
		}
		if l.Rates.CGST.IsNegative() || l.Rates.SGST.IsNegative() || l.Rates.IGST.IsNegative() || l.Rates.VAT.IsNegative() {
			c.Addf("line %d: tax rates must not be negative", n)
		}
		for _, p := range l.Discount.problems() {
			c.Addf("line %d: %s", n, p)
		}
		gross := l.UnitPrice.Mul(l.Quantity.Decimal())
		if l.Discount.Of(gross).GreaterThan(types.Round2(gross)) {
			c.Addf("line %d: discount exceeds line amount", n)
		}
	}
	for _, p := range doc.Discount.problems() {
		c.Add("document " + p)
	}
	if doc.OtherExpense.IsNegative() {
		c.Add("other expense must not be negative")
	}
	if doc.Freight.IsNegative() {
		c.Add("freight must not be negative")
	}
	if doc.Paid.IsNegative() {
		c.Add("paid amount must not be negative")
	}
	switch doc.TaxType {
	case TaxTypeIntra, TaxTypeInter, TaxTypeVAT, TaxTypeNone:
	default:
		c.Addf("unknown tax type %q", doc.TaxType)
	}
}

// ComputeAndVerify recomputes doc and compares every derived amount against
// the claimed one. A non-empty Discrepancies rejects the document.
func ComputeAndVerify(doc Document) (Totals, Discrepancies) {
	t := Compute(doc)
	return t, Verify(doc, t)
}

// Verify compares the recomputed totals t with the amounts claimed in doc.
// Every mismatch is reported; none stops the comparison.
func Verify(doc Document, t Totals) Discrepancies {
	var out Discrepancies
	check := func(line int, field string, expected, submitted types.Money) {
		if !types.WithinTolerance(expected, submitted) {
			out = append(out, Discrepancy{Line: line, Field: field, Expected: expected, Submitted: submitted})
		}
	}

	for i, r := range t.Lines {
		claimed := doc.Lines[i].Claimed
		check(i+1, "cgstAmount", r.Tax.CGST, claimed.Tax.CGST)
		check(i+1, "sgstAmount", r.Tax.SGST, claimed.Tax.SGST)
		check(i+1, "igstAmount", r.Tax.IGST, claimed.Tax.IGST)
		check(i+1, "vatAmount", r.Tax.VAT, claimed.Tax.VAT)
		check(i+1, "lineTotal", r.Total, claimed.LineTotal)
	}

	check(0, "subtotal", t.Subtotal, doc.Claimed.Subtotal)
	check(0, "totalDiscount", t.TotalDiscount, doc.Claimed.TotalDiscount)
	check(0, "totalTax", t.TotalTax, doc.Claimed.TotalTax)
	check(0, "grandTotal", t.GrandTotal, doc.Claimed.GrandTotal)

	if t.Paid.GreaterThan(t.GrandTotal) {
		out = append(out, Discrepancy{
			Field:     "paidAmount",
			Expected:  t.GrandTotal,
			Submitted: t.Paid,
			Message: fmt.Sprintf("paid amount %s exceeds grand total %s",
				t.Paid.StringFixed(2), t.GrandTotal.StringFixed(2)),
		})
	}
	return out
}
