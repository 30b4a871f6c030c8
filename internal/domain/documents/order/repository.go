package order

import (
	"salesledger/internal/domain/documents"
)

// Repository defines storage operations for orders.
type Repository interface {
	documents.Repository[*Order]
}
