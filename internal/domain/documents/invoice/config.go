package invoice

import "salesledger/internal/domain/pricing"

// DiscountOrdering applies the document discount after other expense and freight.
const DiscountOrdering = pricing.DiscountAfterAdditions

// Statuses follow the open balance.
const (
	StatusUnpaid        = "Unpaid"
	StatusPartiallyPaid = "Partially Paid"
	StatusPaid          = "Paid"
)
