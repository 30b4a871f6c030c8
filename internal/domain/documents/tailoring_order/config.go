package tailoring_order

import "salesledger/internal/domain/pricing"

// DiscountOrdering applies the document discount after other expense and freight.
const DiscountOrdering = pricing.DiscountAfterAdditions

// Workflow statuses in their only allowed order.
const (
	StatusReceived  = "Received"
	StatusCutting   = "Cutting"
	StatusStitching = "Stitching"
	StatusReady     = "Ready"
	StatusDelivery  = "Delivery"
)

// Sequence is the allowed order of statuses.
var Sequence = []string{
	StatusReceived,
	StatusCutting,
	StatusStitching,
	StatusReady,
	StatusDelivery,
}
