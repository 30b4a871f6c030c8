package credit_note

import (
	"salesledger/internal/domain/documents"
)

// Repository defines storage operations for credit notes.
type Repository interface {
	documents.Repository[*CreditNote]
}
