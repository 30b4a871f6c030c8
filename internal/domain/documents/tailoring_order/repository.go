package tailoring_order

import (
	"salesledger/internal/domain/documents"
)

// Repository defines storage operations for tailoring orders.
type Repository interface {
	documents.Repository[*TailoringOrder]
}
