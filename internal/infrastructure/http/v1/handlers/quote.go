package handlers

import (
	"context"

	"salesledger/internal/core/id"
	"salesledger/internal/domain/documents/quote"
	"salesledger/internal/domain/posting"
)

// QuoteService adapts the quote orchestrator, which never posts, to
// DocumentService.
type QuoteService struct {
	*quote.Service
}

// Create creates a quote.
func (s QuoteService) Create(ctx context.Context, in quote.Input) (*quote.Quote, *posting.MovementSet, error) {
	q, err := s.Service.Create(ctx, in)
	return q, nil, err
}

// Update edits a quote.
func (s QuoteService) Update(ctx context.Context, docID id.ID, in quote.Input) (*quote.Quote, *posting.MovementSet, error) {
	q, err := s.Service.Update(ctx, docID, in)
	return q, nil, err
}
