package order

import (
	"context"
	"fmt"

	appctx "salesledger/internal/core/context"
	"salesledger/internal/core/entity"
	"salesledger/internal/core/id"
	"salesledger/internal/domain"
	"salesledger/internal/domain/audit"
	"salesledger/internal/domain/documents"
	"salesledger/internal/domain/posting"
	"salesledger/internal/domain/registers/journal"
)

const docType = entity.DocumentTypeOrder

var prepareOptions = documents.Options{
	Ordering:        DiscountOrdering,
	PaymentAccounts: true,
	AllowPayment:    true,
}

// Service provides business operations for orders.
type Service struct {
	repo Repository
	deps documents.Deps
}

// NewService creates a new order service.
func NewService(repo Repository, deps documents.Deps) *Service {
	return &Service{
		repo: repo,
		deps: deps,
	}
}

// Create prices, numbers and stores an order, posting its advance payment.
func (s *Service) Create(ctx context.Context, in documents.SalesInput) (*Order, *posting.MovementSet, error) {
	orgID, err := documents.Organization(ctx)
	if err != nil {
		return nil, nil, err
	}

	prep, err := documents.Prepare(ctx, s.deps.RefData, orgID, in, prepareOptions)
	if err != nil {
		return nil, nil, s.deps.Done(ctx, docType, audit.ActionCreate, id.Nil(), "", err)
	}

	o := NewOrder(orgID, appctx.GetUserID(ctx))
	prep.Fill(&o.Sales, in)
	o.SetPlan(planFor(prep, o))

	set, err := s.deps.Engine.Post(ctx, o, posting.Options{}, func(ctx context.Context) error {
		number, err := s.deps.Number(ctx, orgID, docType)
		if err != nil {
			return err
		}
		o.Number = number
		if err := s.repo.Create(ctx, o); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		return s.deps.Audit(ctx, docType, o.ID, audit.ActionCreate, o)
	})
	if err != nil {
		return nil, nil, s.deps.Done(ctx, docType, audit.ActionCreate, o.ID, "", err)
	}
	return o, set, s.deps.Done(ctx, docType, audit.ActionCreate, o.ID, o.Number, nil)
}

// GetByID retrieves an order with lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Order, error) {
	orgID, err := documents.Organization(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, orgID, docID)
}

// List retrieves orders with filtering.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Order], error) {
	orgID, err := documents.Organization(ctx)
	if err != nil {
		return domain.ListResult[*Order]{}, err
	}
	filter.Normalize()
	return s.repo.List(ctx, orgID, filter)
}

// Update replaces the fields of an order and reposts its advance payment.
func (s *Service) Update(ctx context.Context, docID id.ID, in documents.SalesInput) (*Order, *posting.MovementSet, error) {
	orgID, err := documents.Organization(ctx)
	if err != nil {
		return nil, nil, err
	}

	o, err := s.repo.Get(ctx, orgID, docID)
	if err != nil {
		return nil, nil, err
	}
	if err := o.CheckNumber(in.Number); err != nil {
		return nil, nil, s.deps.Done(ctx, docType, audit.ActionUpdate, docID, o.Number, err)
	}

	prep, err := documents.Prepare(ctx, s.deps.RefData, orgID, in, prepareOptions)
	if err != nil {
		return nil, nil, s.deps.Done(ctx, docType, audit.ActionUpdate, docID, o.Number, err)
	}

	prep.Fill(&o.Sales, in)
	audit.StampUpdated(ctx, &o.BaseDocument)
	o.SetPlan(planFor(prep, o))

	set, err := s.deps.Engine.Post(ctx, o, posting.Options{}, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, o); err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		return s.deps.Audit(ctx, docType, o.ID, audit.ActionUpdate, o)
	})
	if err != nil {
		return nil, nil, s.deps.Done(ctx, docType, audit.ActionUpdate, docID, o.Number, err)
	}
	return o, set, s.deps.Done(ctx, docType, audit.ActionUpdate, docID, o.Number, nil)
}

// Delete removes an order and its payment rows.
func (s *Service) Delete(ctx context.Context, docID id.ID) error {
	orgID, err := documents.Organization(ctx)
	if err != nil {
		return err
	}

	o, err := s.repo.Get(ctx, orgID, docID)
	if err != nil {
		return err
	}

	err = s.deps.Engine.Unpost(ctx, o, func(ctx context.Context) error {
		if err := s.repo.Delete(ctx, orgID, docID); err != nil {
			return fmt.Errorf("delete order: %w", err)
		}
		return s.deps.Audit(ctx, docType, docID, audit.ActionDelete, o)
	})
	return s.deps.Done(ctx, docType, audit.ActionDelete, docID, o.Number, err)
}

func planFor(prep *documents.Prepared, o *Order) *documents.PostingPlan {
	plan := &documents.PostingPlan{CounterpartyAccountID: prep.CounterpartyAccountID}
	if o.PaidAmount.IsPositive() && o.DepositAccountID != nil {
		plan.Payment = &journal.Payment{DepositAccountID: *o.DepositAccountID, Amount: o.PaidAmount}
	}
	return plan
}
