package order

import "salesledger/internal/domain/pricing"

// DiscountOrdering applies the document discount after other expense and freight.
const DiscountOrdering = pricing.DiscountAfterAdditions

// StatusOpen is the status of every stored order.
const StatusOpen = "Open"
