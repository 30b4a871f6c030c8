package quote

import (
	"context"
	"fmt"

	"salesledger/internal/core/apperror"
	appctx "salesledger/internal/core/context"
	"salesledger/internal/core/entity"
	"salesledger/internal/core/id"
	"salesledger/internal/domain"
	"salesledger/internal/domain/audit"
	"salesledger/internal/domain/documents"
)

const docType = entity.DocumentTypeQuote

var prepareOptions = documents.Options{Ordering: DiscountOrdering}

// Service provides business operations for quotes.
type Service struct {
	repo Repository
	deps documents.Deps
}

// NewService creates a new quote service.
func NewService(repo Repository, deps documents.Deps) *Service {
	return &Service{
		repo: repo,
		deps: deps,
	}
}

// Create prices, numbers and stores a quote.
func (s *Service) Create(ctx context.Context, in Input) (*Quote, error) {
	orgID, err := documents.Organization(ctx)
	if err != nil {
		return nil, err
	}

	q := NewQuote(orgID, appctx.GetUserID(ctx))
	if err := s.prepare(ctx, orgID, q, in); err != nil {
		return nil, s.deps.Done(ctx, docType, audit.ActionCreate, id.Nil(), "", err)
	}

	err = s.deps.Engine.TxManager().RunInTransaction(ctx, func(ctx context.Context) error {
		number, err := s.deps.Number(ctx, orgID, docType)
		if err != nil {
			return err
		}
		q.Number = number
		if err := s.repo.Create(ctx, q); err != nil {
			return fmt.Errorf("create quote: %w", err)
		}
		return s.deps.Audit(ctx, docType, q.ID, audit.ActionCreate, q)
	})
	if err != nil {
		return nil, s.deps.Done(ctx, docType, audit.ActionCreate, q.ID, "", err)
	}
	return q, s.deps.Done(ctx, docType, audit.ActionCreate, q.ID, q.Number, nil)
}

// GetByID retrieves a quote with lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Quote, error) {
	orgID, err := documents.Organization(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, orgID, docID)
}

// List retrieves quotes with filtering.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Quote], error) {
	orgID, err := documents.Organization(ctx)
	if err != nil {
		return domain.ListResult[*Quote]{}, err
	}
	filter.Normalize()
	return s.repo.List(ctx, orgID, filter)
}

// Update replaces the fields of a quote.
func (s *Service) Update(ctx context.Context, docID id.ID, in Input) (*Quote, error) {
	orgID, err := documents.Organization(ctx)
	if err != nil {
		return nil, err
	}

	q, err := s.repo.Get(ctx, orgID, docID)
	if err != nil {
		return nil, err
	}
	if err := q.CheckNumber(in.Number); err != nil {
		return nil, s.deps.Done(ctx, docType, audit.ActionUpdate, docID, q.Number, err)
	}
	if err := s.prepare(ctx, orgID, q, in); err != nil {
		return nil, s.deps.Done(ctx, docType, audit.ActionUpdate, docID, q.Number, err)
	}
	audit.StampUpdated(ctx, &q.BaseDocument)

	err = s.deps.Engine.TxManager().RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, q); err != nil {
			return fmt.Errorf("update quote: %w", err)
		}
		return s.deps.Audit(ctx, docType, q.ID, audit.ActionUpdate, q)
	})
	if err != nil {
		return nil, s.deps.Done(ctx, docType, audit.ActionUpdate, docID, q.Number, err)
	}
	return q, s.deps.Done(ctx, docType, audit.ActionUpdate, docID, q.Number, nil)
}

// Delete removes a quote.
func (s *Service) Delete(ctx context.Context, docID id.ID) error {
	orgID, err := documents.Organization(ctx)
	if err != nil {
		return err
	}

	q, err := s.repo.Get(ctx, orgID, docID)
	if err != nil {
		return err
	}

	err = s.deps.Engine.TxManager().RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Delete(ctx, orgID, docID); err != nil {
			return fmt.Errorf("delete quote: %w", err)
		}
		return s.deps.Audit(ctx, docType, docID, audit.ActionDelete, q)
	})
	return s.deps.Done(ctx, docType, audit.ActionDelete, docID, q.Number, err)
}

func (s *Service) prepare(ctx context.Context, orgID id.ID, q *Quote, in Input) error {
	var c apperror.Collector
	date := in.Date
	if date.IsZero() {
		date = q.Date
	}
	if in.ExpiryDate != nil && in.ExpiryDate.Before(date) {
		c.Add("expiry date must not be before the quote date")
	}

	prep, err := documents.PrepareWith(ctx, s.deps.RefData, orgID, in.SalesInput, prepareOptions, &c)
	if err != nil {
		return err
	}
	prep.Fill(&q.Sales, in.SalesInput)
	q.ExpiryDate = in.ExpiryDate
	return nil
}
