package invoice

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
	"salesledger/internal/domain/posting"
	"salesledger/internal/domain/registers/stock"
)

const docType = entity.DocumentTypeInvoice

var prepareOptions = documents.Options{
	Ordering:     DiscountOrdering,
	SaleAccounts: true,
	AllowPayment: true,
}

// Service provides business operations for invoices.
type Service struct {
	repo Repository
	deps documents.Deps
}

// NewService creates a new invoice service.
func NewService(repo Repository, deps documents.Deps) *Service {
	return &Service{
		repo: repo,
		deps: deps,
	}
}

// Create prices, numbers and posts a new invoice.
func (s *Service) Create(ctx context.Context, in documents.SalesInput) (*Invoice, *posting.MovementSet, error) {
	orgID, err := documents.Organization(ctx)
	if err != nil {
		return nil, nil, err
	}

	prep, err := documents.Prepare(ctx, s.deps.RefData, orgID, in, prepareOptions)
	if err != nil {
		return nil, nil, s.deps.Done(ctx, docType, audit.ActionCreate, id.Nil(), "", err)
	}

	inv := NewInvoice(orgID, appctx.GetUserID(ctx))
	prep.Fill(&inv.Sales, in)
	inv.Refresh()
	inv.SetPlan(planFor(prep, inv))

	set, err := s.deps.Engine.Post(ctx, inv, posting.Options{AllowNegativeStock: prep.AllowNegativeStock()},
		func(ctx context.Context) error {
			number, err := s.deps.Number(ctx, orgID, docType)
			if err != nil {
				return err
			}
			inv.Number = number
			if err := s.repo.Create(ctx, inv); err != nil {
				return fmt.Errorf("create invoice: %w", err)
			}
			return s.deps.Audit(ctx, docType, inv.ID, audit.ActionCreate, inv)
		})
	if err != nil {
		return nil, nil, s.deps.Done(ctx, docType, audit.ActionCreate, inv.ID, "", err)
	}
	return inv, set, s.deps.Done(ctx, docType, audit.ActionCreate, inv.ID, inv.Number, nil)
}

// GetByID retrieves an invoice with lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Invoice, error) {
	orgID, err := documents.Organization(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, orgID, docID)
}

// List retrieves invoices with filtering.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Invoice], error) {
	orgID, err := documents.Organization(ctx)
	if err != nil {
		return domain.ListResult[*Invoice]{}, err
	}
	filter.Normalize()
	return s.repo.List(ctx, orgID, filter)
}

// Update replaces the fields of an unconsumed invoice and reposts it.
func (s *Service) Update(ctx context.Context, docID id.ID, in documents.SalesInput) (*Invoice, *posting.MovementSet, error) {
	orgID, err := documents.Organization(ctx)
	if err != nil {
		return nil, nil, err
	}

	inv, err := s.repo.Get(ctx, orgID, docID)
	if err != nil {
		return nil, nil, err
	}
	if err := inv.CheckNumber(in.Number); err != nil {
		return nil, nil, s.deps.Done(ctx, docType, audit.ActionUpdate, docID, inv.Number, err)
	}
	if inv.IsConsumed() {
		return nil, nil, s.deps.Done(ctx, docType, audit.ActionUpdate, docID, inv.Number, consumedError(inv))
	}

	prep, err := documents.Prepare(ctx, s.deps.RefData, orgID, in, prepareOptions)
	if err != nil {
		return nil, nil, s.deps.Done(ctx, docType, audit.ActionUpdate, docID, inv.Number, err)
	}

	prep.Fill(&inv.Sales, in)
	audit.StampUpdated(ctx, &inv.BaseDocument)
	inv.Refresh()
	inv.SetPlan(planFor(prep, inv))

	set, err := s.deps.Engine.Post(ctx, inv, posting.Options{AllowNegativeStock: prep.AllowNegativeStock()},
		func(ctx context.Context) error {
			if err := s.repo.Update(ctx, inv); err != nil {
				return fmt.Errorf("update invoice: %w", err)
			}
			return s.deps.Audit(ctx, docType, inv.ID, audit.ActionUpdate, inv)
		})
	if err != nil {
		return nil, nil, s.deps.Done(ctx, docType, audit.ActionUpdate, docID, inv.Number, err)
	}
	return inv, set, s.deps.Done(ctx, docType, audit.ActionUpdate, docID, inv.Number, nil)
}

// Delete removes an unconsumed invoice and its ledger rows.
func (s *Service) Delete(ctx context.Context, docID id.ID) error {
	orgID, err := documents.Organization(ctx)
	if err != nil {
		return err
	}

	inv, err := s.repo.Get(ctx, orgID, docID)
	if err != nil {
		return err
	}
	if inv.IsConsumed() {
		return s.deps.Done(ctx, docType, audit.ActionDelete, docID, inv.Number, consumedError(inv))
	}

	err = s.deps.Engine.Unpost(ctx, inv, func(ctx context.Context) error {
		if err := s.repo.Delete(ctx, orgID, docID); err != nil {
			return fmt.Errorf("delete invoice: %w", err)
		}
		return s.deps.Audit(ctx, docType, docID, audit.ActionDelete, inv)
	})
	return s.deps.Done(ctx, docType, audit.ActionDelete, docID, inv.Number, err)
}

func planFor(prep *documents.Prepared, inv *Invoice) *documents.PostingPlan {
	return &documents.PostingPlan{
		Sale:        prep.SalePosting(inv.Comment, inv.DepositAccountID),
		Stock:       prep.StockLines(&inv.Sales),
		StockAction: stock.ActionSale,
		StockOut:    true,
	}
}

func consumedError(inv *Invoice) error {
	return apperror.NewConflict(
		fmt.Sprintf("invoice %s is referenced by receipts or credit notes", inv.Number),
	).WithDetail("invoiceId", inv.ID.String())
}
