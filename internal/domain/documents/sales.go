// Package documents holds what every sales document shares: the priced line
// and header model, input preparation against reference data, and the
// posting plan the ledgers are written from.
package documents

import (
	"github.com/shopspring/decimal"

	"salesledger/internal/core/entity"
	"salesledger/internal/core/id"
	"salesledger/internal/core/types"
	"salesledger/internal/domain/pricing"
)

// Line is a stored, priced line.
type Line struct {
	LineID        id.ID                 `db:"line_id" json:"lineId"`
	LineNo        int                   `db:"line_no" json:"lineNo"`
	ItemID        id.ID                 `db:"item_id" json:"itemId"`
	Quantity      types.Quantity        `db:"quantity" json:"quantity"`
	UnitPrice     types.Money           `db:"unit_price" json:"unitPrice"`
	TaxPreference pricing.TaxPreference `db:"tax_preference" json:"taxPreference"`
	Rates         pricing.Rates         `db:"rates" json:"rates"`
	Discount      pricing.Discount      `db:"discount" json:"discount"`

	// SourceLineID is the line of another document this line reverses.
	SourceLineID *id.ID `db:"source_line_id" json:"sourceLineId,omitempty"`

	// Computed amounts
	Gross          types.Money        `db:"gross" json:"gross"`
	DiscountAmount types.Money        `db:"discount_amount" json:"discountAmount"`
	PreTaxAmount   types.Money        `db:"pre_tax_amount" json:"preTaxAmount"`
	Tax            pricing.TaxAmounts `db:"tax" json:"tax"`
	TaxAmount      types.Money        `db:"tax_amount" json:"taxAmount"`
	LineTotal      types.Money        `db:"line_total" json:"lineTotal"`
}

// Sales is the header and lines shared by quotes, orders, invoices, credit
// notes and tailoring orders.
type Sales struct {
	entity.Document

	CustomerID    id.ID           `db:"customer_id" json:"customerId"`
	PlaceOfSupply string          `db:"place_of_supply" json:"placeOfSupply,omitempty"`
	TaxType       pricing.TaxType `db:"tax_type" json:"taxType"`

	Lines []Line `db:"-" json:"lines"`

	Discount     pricing.Discount `db:"discount" json:"discount"`
	OtherExpense types.Money      `db:"other_expense" json:"otherExpense"`
	Freight      types.Money      `db:"freight" json:"freight"`
	RoundOff     types.Money      `db:"round_off" json:"roundOff"`

	// DepositAccountID receives PaidAmount, when set.
	DepositAccountID *id.ID `db:"deposit_account_id" json:"depositAccountId,omitempty"`

	// Aggregates
	Subtotal      types.Money        `db:"subtotal" json:"subtotal"`
	TotalDiscount types.Money        `db:"total_discount" json:"totalDiscount"`
	Tax           pricing.TaxAmounts `db:"tax" json:"tax"`
	TotalTax      types.Money        `db:"total_tax" json:"totalTax"`
	GrandTotal    types.Money        `db:"grand_total" json:"grandTotal"`
	PaidAmount    types.Money        `db:"paid_amount" json:"paidAmount"`
	Balance       types.Money        `db:"balance" json:"balance"`

	plan *PostingPlan
}

// NewSales creates an empty priced document with every amount at zero.
func NewSales(organizationID id.ID, userID string) Sales {
	return Sales{
		Document:      entity.NewDocument(organizationID, userID),
		Lines:         []Line{},
		OtherExpense:  decimal.Zero,
		Freight:       decimal.Zero,
		RoundOff:      decimal.Zero,
		Subtotal:      decimal.Zero,
		TotalDiscount: decimal.Zero,
		TotalTax:      decimal.Zero,
		GrandTotal:    decimal.Zero,
		PaidAmount:    decimal.Zero,
		Balance:       decimal.Zero,
	}
}

// CloneSales copies s, including its lines.
func CloneSales(s Sales) Sales {
	s.Lines = append([]Line(nil), s.Lines...)
	for i := range s.Lines {
		if src := s.Lines[i].SourceLineID; src != nil {
			v := *src
			s.Lines[i].SourceLineID = &v
		}
	}
	if s.DepositAccountID != nil {
		v := *s.DepositAccountID
		s.DepositAccountID = &v
	}
	s.plan = nil
	return s
}

// GetCounterpartyID returns the customer.
func (s *Sales) GetCounterpartyID() id.ID {
	return s.CustomerID
}

// GetStatus returns the lifecycle status.
func (s *Sales) GetStatus() string {
	return s.Status
}

// ItemIDs returns the items of every line.
func (s *Sales) ItemIDs() []id.ID {
	out := make([]id.ID, 0, len(s.Lines))
	for _, l := range s.Lines {
		out = append(out, l.ItemID)
	}
	return out
}

// GetLines returns the priced lines.
func (s *Sales) GetLines() []Line {
	return s.Lines
}

// Line returns the line with lineID.
func (s *Sales) Line(lineID id.ID) (*Line, bool) {
	for i := range s.Lines {
		if s.Lines[i].LineID == lineID {
			return &s.Lines[i], true
		}
	}
	return nil, false
}

// SetPlan attaches the posting plan used by the next GenerateMovements call.
func (s *Sales) SetPlan(p *PostingPlan) {
	s.plan = p
}

// Plan returns the attached posting plan.
func (s *Sales) Plan() *PostingPlan {
	return s.plan
}
