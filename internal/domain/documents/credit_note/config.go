package credit_note

import "salesledger/internal/domain/pricing"

// DiscountOrdering matches the invoices credit notes reverse.
const DiscountOrdering = pricing.DiscountAfterAdditions

// StatusIssued is the status of every stored credit note.
const StatusIssued = "Issued"
