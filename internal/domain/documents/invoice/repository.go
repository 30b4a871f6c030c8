package invoice

import (
	"salesledger/internal/domain/documents"
)

// Repository defines storage operations for invoices.
type Repository interface {
	documents.Repository[*Invoice]
}
