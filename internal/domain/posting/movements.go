// Package posting writes a document and its ledger rows as one unit.
package posting

import (
	"context"

	"salesledger/internal/core/entity"
	"salesledger/internal/core/id"
)

// MovementSet holds every ledger row a document produces.
type MovementSet struct {
	Journal []entity.JournalEntry
	Stock   []entity.StockMovement
}

// NewMovementSet creates an empty set.
func NewMovementSet() *MovementSet {
	return &MovementSet{}
}

// AddJournal appends journal rows.
func (s *MovementSet) AddJournal(rows ...entity.JournalEntry) {
	s.Journal = append(s.Journal, rows...)
}

// AddStock appends stock movements.
func (s *MovementSet) AddStock(rows ...entity.StockMovement) {
	s.Stock = append(s.Stock, rows...)
}

// IsEmpty reports whether the set has no rows.
func (s *MovementSet) IsEmpty() bool {
	return len(s.Journal) == 0 && len(s.Stock) == 0
}

// Postable is a document that produces ledger rows.
type Postable interface {
	GetID() id.ID
	GetOrganizationID() id.ID
	GetNumber() string
	GetDocumentType() entity.DocumentType

	// GenerateMovements builds the rows for the document's current state.
	// Called after the document was saved, so the number is final.
	GenerateMovements(ctx context.Context) (*MovementSet, error)
}

// Source returns the movement source of doc.
func Source(doc Postable) entity.MovementSource {
	return entity.MovementSource{
		OrganizationID: doc.GetOrganizationID(),
		OperationID:    doc.GetID(),
		DocumentType:   doc.GetDocumentType(),
		DocumentNumber: doc.GetNumber(),
	}
}
