package quote

import "salesledger/internal/domain/pricing"

// DiscountOrdering applies the document discount to the subtotal, before
// other expense and freight are added.
const DiscountOrdering = pricing.DiscountBeforeAdditions

// StatusDraft is the status of every stored quote.
const StatusDraft = "Draft"
