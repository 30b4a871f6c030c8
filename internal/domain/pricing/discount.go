package pricing

import (
	"github.com/shopspring/decimal"

	"salesledger/internal/core/types"
)

// DiscountType selects how Discount.Amount is read.
type DiscountType string

const (
	// DiscountAmount is a flat currency amount.
	DiscountAmount DiscountType = "Amount"
	// DiscountPercentage is a percentage of the base it applies to.
	DiscountPercentage DiscountType = "Percentage"
)

// Discount is a line or document discount. The zero value means no discount.
type Discount struct {
	Type   DiscountType `json:"type"`
	Amount types.Money  `json:"amount"`
}

var hundred = decimal.NewFromInt(100)

// Of returns the discount taken from base, rounded to 2 places.
func (d Discount) Of(base types.Money) types.Money {
	if d.Type == DiscountPercentage {
		return types.Percent(base, d.Amount)
	}
	return types.Round2(d.Amount)
}

// problems lists what is wrong with the discount, if anything.
func (d Discount) problems() []string {
	var out []string
	switch d.Type {
	case "", DiscountAmount, DiscountPercentage:
	default:
		out = append(out, "discount type must be Amount or Percentage")
	}
	if d.Amount.IsNegative() {
		out = append(out, "discount must not be negative")
	}
	if d.Type == DiscountPercentage && d.Amount.GreaterThan(hundred) {
		out = append(out, "discount percentage must not exceed 100")
	}
	return out
}
