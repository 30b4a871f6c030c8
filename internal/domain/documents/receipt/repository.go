package receipt

import (
	"salesledger/internal/domain/documents"
)

// Repository defines storage operations for receipts.
type Repository interface {
	documents.Repository[*Receipt]
}
