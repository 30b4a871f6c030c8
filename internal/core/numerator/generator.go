package numerator

import (
	"context"

	"salesledger/internal/core/entity"
	"salesledger/internal/core/id"
)

// Generator allocates document numbers.
// This is the domain contract - implementations live in infrastructure layer.
type Generator interface {
	// Next allocates the next number of docType for the organization.
	// Must be called inside the transaction that persists the document.
	Next(ctx context.Context, organizationID id.ID, docType entity.DocumentType) (string, error)
}

// Store loads and saves an organization's numbering configuration.
type Store interface {
	// LoadForUpdate returns the numbering configuration and locks it until
	// the surrounding transaction ends.
	LoadForUpdate(ctx context.Context, organizationID id.ID) (*Numbering, error)

	// SaveCounter persists the counter of one prefix of one series.
	SaveCounter(ctx context.Context, organizationID, seriesID id.ID, docType entity.DocumentType, nextNumber int64) error
}
