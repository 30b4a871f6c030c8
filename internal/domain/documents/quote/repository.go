package quote

import (
	"salesledger/internal/domain/documents"
)

// Repository defines storage operations for quotes.
type Repository interface {
	documents.Repository[*Quote]
}
