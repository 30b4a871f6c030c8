// Package journal provides the double-entry journal: account resolution,
// construction of balanced rows for a document and their persistence.
package journal

import (
	"context"

	"salesledger/internal/core/entity"
	"salesledger/internal/core/id"
)

// Repository defines storage operations for journal rows.
type Repository interface {
	CreateEntries(ctx context.Context, entries []entity.JournalEntry) error
	DeleteByOperation(ctx context.Context, organizationID, operationID id.ID) error
	ListByOperation(ctx context.Context, organizationID, operationID id.ID) ([]entity.JournalEntry, error)
}
