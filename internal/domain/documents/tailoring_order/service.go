package tailoring_order

import (
	"context"
	"fmt"
	"time"

	appctx "salesledger/internal/core/context"
	"salesledger/internal/core/entity"
	"salesledger/internal/core/id"
	"salesledger/internal/domain"
	"salesledger/internal/domain/audit"
	"salesledger/internal/domain/documents"
	"salesledger/internal/domain/posting"
	"salesledger/internal/domain/registers/stock"
)

const docType = entity.DocumentTypeTailoringOrder

var prepareOptions = documents.Options{
	Ordering:     DiscountOrdering,
	SaleAccounts: true,
	AllowPayment: true,
}

// Service provides business operations for tailoring orders.
type Service struct {
	repo Repository
	deps documents.Deps
}

// NewService creates a new tailoring order service.
func NewService(repo Repository, deps documents.Deps) *Service {
	return &Service{
		repo: repo,
		deps: deps,
	}
}

// Create prices, numbers and stores a tailoring order and posts its sale.
func (s *Service) Create(ctx context.Context, in documents.SalesInput) (*TailoringOrder, *posting.MovementSet, error) {
	orgID, err := documents.Organization(ctx)
	if err != nil {
		return nil, nil, err
	}

	prep, err := documents.Prepare(ctx, s.deps.RefData, orgID, in, prepareOptions)
	if err != nil {
		return nil, nil, s.deps.Done(ctx, docType, audit.ActionCreate, id.Nil(), "", err)
	}

	o := NewTailoringOrder(orgID, appctx.GetUserID(ctx))
	prep.Fill(&o.Sales, in)
	o.SetPlan(planFor(prep, o))

	set, err := s.deps.Engine.Post(ctx, o, postingOptions(prep), func(ctx context.Context) error {
		number, err := s.deps.Number(ctx, orgID, docType)
		if err != nil {
			return err
		}
		o.Number = number
		if err := s.repo.Create(ctx, o); err != nil {
			return fmt.Errorf("create tailoring order: %w", err)
		}
		return s.deps.Audit(ctx, docType, o.ID, audit.ActionCreate, o)
	})
	if err != nil {
		return nil, nil, s.deps.Done(ctx, docType, audit.ActionCreate, o.ID, "", err)
	}
	return o, set, s.deps.Done(ctx, docType, audit.ActionCreate, o.ID, o.Number, nil)
}

// GetByID retrieves a tailoring order with lines and status history.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*TailoringOrder, error) {
	orgID, err := documents.Organization(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, orgID, docID)
}

// List retrieves tailoring orders with filtering.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*TailoringOrder], error) {
	orgID, err := documents.Organization(ctx)
	if err != nil {
		return domain.ListResult[*TailoringOrder]{}, err
	}
	filter.Normalize()
	return s.repo.List(ctx, orgID, filter)
}

// Update replaces the fields of a tailoring order and reposts it. The status
// history is kept.
func (s *Service) Update(ctx context.Context, docID id.ID, in documents.SalesInput) (*TailoringOrder, *posting.MovementSet, error) {
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
	return s.repost(ctx, o, prep)
}

// SetStatus moves the workflow to status and reposts. Reaching Delivery
// releases stock; leaving it returns the stock.
func (s *Service) SetStatus(ctx context.Context, docID id.ID, status string) (*TailoringOrder, *posting.MovementSet, error) {
	orgID, err := documents.Organization(ctx)
	if err != nil {
		return nil, nil, err
	}

	o, err := s.repo.Get(ctx, orgID, docID)
	if err != nil {
		return nil, nil, err
	}

	history, err := Transition(o.Statuses, status, time.Now().UTC(), appctx.GetUserID(ctx))
	if err != nil {
		return nil, nil, s.deps.Done(ctx, docType, audit.ActionUpdate, docID, o.Number, err)
	}

	// Reference data may have changed since the order was priced, so the
	// stored lines are prepared again before the repost.
	in := documents.InputFromSales(&o.Sales)
	prep, err := documents.Prepare(ctx, s.deps.RefData, orgID, in, prepareOptions)
	if err != nil {
		return nil, nil, s.deps.Done(ctx, docType, audit.ActionUpdate, docID, o.Number, err)
	}

	lineIDs := make([]id.ID, len(o.Lines))
	for i, l := range o.Lines {
		lineIDs[i] = l.LineID
	}
	prep.Fill(&o.Sales, in)
	for i := range o.Lines {
		o.Lines[i].LineID = lineIDs[i]
	}

	o.setStatuses(history)
	audit.StampUpdated(ctx, &o.BaseDocument)
	return s.repost(ctx, o, prep)
}

// Delete removes a tailoring order and its ledger rows.
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
			return fmt.Errorf("delete tailoring order: %w", err)
		}
		return s.deps.Audit(ctx, docType, docID, audit.ActionDelete, o)
	})
	return s.deps.Done(ctx, docType, audit.ActionDelete, docID, o.Number, err)
}

func (s *Service) repost(ctx context.Context, o *TailoringOrder, prep *documents.Prepared) (*TailoringOrder, *posting.MovementSet, error) {
	o.SetPlan(planFor(prep, o))

	set, err := s.deps.Engine.Post(ctx, o, postingOptions(prep), func(ctx context.Context) error {
		if err := s.repo.Update(ctx, o); err != nil {
			return fmt.Errorf("update tailoring order: %w", err)
		}
		return s.deps.Audit(ctx, docType, o.ID, audit.ActionUpdate, o)
	})
	if err != nil {
		return nil, nil, s.deps.Done(ctx, docType, audit.ActionUpdate, o.ID, o.Number, err)
	}
	return o, set, s.deps.Done(ctx, docType, audit.ActionUpdate, o.ID, o.Number, nil)
}

func planFor(prep *documents.Prepared, o *TailoringOrder) *documents.PostingPlan {
	plan := &documents.PostingPlan{
		Sale:        prep.SalePosting(o.Comment, o.DepositAccountID),
		StockAction: stock.ActionDelivery,
		StockOut:    true,
	}
	if o.Delivered() {
		plan.Stock = prep.StockLines(&o.Sales)
	}
	return plan
}

func postingOptions(prep *documents.Prepared) posting.Options {
	return posting.Options{AllowNegativeStock: prep.AllowNegativeStock()}
}
