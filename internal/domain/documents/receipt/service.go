package receipt

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"salesledger/internal/core/apperror"
	appctx "salesledger/internal/core/context"
	"salesledger/internal/core/entity"
	"salesledger/internal/core/id"
	"salesledger/internal/core/types"
	"salesledger/internal/domain"
	"salesledger/internal/domain/audit"
	"salesledger/internal/domain/documents"
	"salesledger/internal/domain/documents/invoice"
	"salesledger/internal/domain/posting"
	"salesledger/internal/domain/refdata"
	"salesledger/internal/domain/registers/journal"
)

const docType = entity.DocumentTypeReceipt

// Service provides business operations for receipts.
type Service struct {
	repo       Repository
	invoices   invoice.Repository
	reconciler *invoice.Reconciler
	deps       documents.Deps
}

// NewService creates a new receipt service.
func NewService(repo Repository, invoices invoice.Repository, reconciler *invoice.Reconciler, deps documents.Deps) *Service {
	return &Service{
		repo:       repo,
		invoices:   invoices,
		reconciler: reconciler,
		deps:       deps,
	}
}

type prepared struct {
	allocations           []Allocation
	counterpartyAccountID id.ID
}

// prepare validates in. prev is the stored receipt on update: its own
// allocations are available again.
func (s *Service) prepare(ctx context.Context, orgID id.ID, in Input, prev *Receipt) (*prepared, error) {
	var c apperror.Collector
	if id.IsNil(in.CustomerID) {
		c.Add("customer is required")
	}
	if id.IsNil(in.DepositAccountID) {
		c.Add("deposit account is required")
	}
	if !in.Amount.IsPositive() {
		c.Add("amount must be positive")
	}

	req := refdata.Request{OrganizationID: orgID, CounterpartyID: in.CustomerID}
	if !id.IsNil(in.DepositAccountID) {
		req.AccountIDs = []id.ID{in.DepositAccountID}
	}
	snap, err := refdata.Load(ctx, s.deps.RefData, req)
	if err != nil {
		return nil, err
	}
	if !id.IsNil(in.DepositAccountID) && !snap.HasAccount(in.DepositAccountID) {
		c.Addf("deposit account %s not found", in.DepositAccountID)
	}

	invoiceIDs := make([]id.ID, 0, len(in.Allocations))
	for _, a := range in.Allocations {
		invoiceIDs = append(invoiceIDs, a.InvoiceID)
	}
	for _, dup := range id.Duplicates(invoiceIDs) {
		c.Addf("invoice %s is allocated more than once", dup)
	}

	out := &prepared{allocations: make([]Allocation, 0, len(in.Allocations))}
	total := decimal.Zero
	for i, a := range in.Allocations {
		n := i + 1
		amount := types.Round2(a.Amount)
		total = total.Add(amount)
		if !amount.IsPositive() {
			c.Addf("allocation %d: amount must be positive", n)
		}

		inv, err := s.invoices.Get(ctx, orgID, a.InvoiceID)
		if err != nil {
			return nil, err
		}
		if inv.CustomerID != in.CustomerID {
			c.Addf("allocation %d: invoice %s belongs to another customer", n, inv.Number)
		}
		open := inv.OpenBalance()
		if prev != nil {
			open = open.Add(prev.AllocatedTo(inv.ID))
		}
		if amount.Sub(open).GreaterThan(types.Tolerance) {
			c.Addf("allocation %d: amount %s exceeds open balance %s of invoice %s",
				n, amount.StringFixed(2), types.MaxZero(open).StringFixed(2), inv.Number)
		}
		out.allocations = append(out.allocations, Allocation{InvoiceID: inv.ID, InvoiceNumber: inv.Number, Amount: amount})
	}
	if !total.Equal(types.Round2(in.Amount)) {
		c.Addf("allocations total %s does not equal amount %s", total.StringFixed(2), types.Round2(in.Amount).StringFixed(2))
	}
	if err := c.Err(); err != nil {
		return nil, err
	}

	if snap.Counterparty.AccountID != nil {
		out.counterpartyAccountID = *snap.Counterparty.AccountID
		return out, nil
	}
	res := journal.ResolveAccounts(snap.Organization, []refdata.AccountKind{refdata.AccountReceivable})
	if err := res.Err(); err != nil {
		return nil, err
	}
	out.counterpartyAccountID = res.Get(refdata.AccountReceivable)
	return out, nil
}

func (p *prepared) fill(r *Receipt, in Input) {
	if !in.Date.IsZero() {
		r.Date = in.Date
	}
	r.CustomerID = in.CustomerID
	r.DepositAccountID = in.DepositAccountID
	r.Amount = types.Round2(in.Amount)
	r.Allocations = p.allocations
	r.Comment = in.Comment
	r.counterpartyAccountID = p.counterpartyAccountID
}

// Create records a receipt, posts the payment pair and raises the received
// amount of every allocated invoice.
func (s *Service) Create(ctx context.Context, in Input) (*Receipt, *posting.MovementSet, error) {
	orgID, err := documents.Organization(ctx)
	if err != nil {
		return nil, nil, err
	}

	p, err := s.prepare(ctx, orgID, in, nil)
	if err != nil {
		return nil, nil, s.deps.Done(ctx, docType, audit.ActionCreate, id.Nil(), "", err)
	}

	r := NewReceipt(orgID, appctx.GetUserID(ctx))
	p.fill(r, in)

	set, err := s.deps.Engine.Post(ctx, r, posting.Options{}, func(ctx context.Context) error {
		number, err := s.deps.Number(ctx, orgID, docType)
		if err != nil {
			return err
		}
		r.Number = number
		if err := s.repo.Create(ctx, r); err != nil {
			return fmt.Errorf("create receipt: %w", err)
		}
		if err := s.reconciler.Apply(ctx, r.Adjustments()...); err != nil {
			return err
		}
		return s.deps.Audit(ctx, docType, r.ID, audit.ActionCreate, r)
	})
	if err != nil {
		return nil, nil, s.deps.Done(ctx, docType, audit.ActionCreate, r.ID, "", err)
	}
	return r, set, s.deps.Done(ctx, docType, audit.ActionCreate, r.ID, r.Number, nil)
}

// GetByID retrieves a receipt with allocations.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Receipt, error) {
	orgID, err := documents.Organization(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, orgID, docID)
}

// List retrieves receipts with filtering.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Receipt], error) {
	orgID, err := documents.Organization(ctx)
	if err != nil {
		return domain.ListResult[*Receipt]{}, err
	}
	filter.Normalize()
	return s.repo.List(ctx, orgID, filter)
}

// Update replaces the receipt, reposts it and moves invoice balances by the
// difference to the stored allocations.
func (s *Service) Update(ctx context.Context, docID id.ID, in Input) (*Receipt, *posting.MovementSet, error) {
	orgID, err := documents.Organization(ctx)
	if err != nil {
		return nil, nil, err
	}

	prev, err := s.repo.Get(ctx, orgID, docID)
	if err != nil {
		return nil, nil, err
	}
	if err := prev.CheckNumber(in.Number); err != nil {
		return nil, nil, s.deps.Done(ctx, docType, audit.ActionUpdate, docID, prev.Number, err)
	}

	p, err := s.prepare(ctx, orgID, in, prev)
	if err != nil {
		return nil, nil, s.deps.Done(ctx, docType, audit.ActionUpdate, docID, prev.Number, err)
	}

	r := prev.Clone()
	p.fill(r, in)
	audit.StampUpdated(ctx, &r.BaseDocument)

	set, err := s.deps.Engine.Post(ctx, r, posting.Options{}, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, r); err != nil {
			return fmt.Errorf("update receipt: %w", err)
		}
		if err := s.reconciler.Apply(ctx, r.AdjustmentsSince(prev)...); err != nil {
			return err
		}
		return s.deps.Audit(ctx, docType, r.ID, audit.ActionUpdate, r)
	})
	if err != nil {
		return nil, nil, s.deps.Done(ctx, docType, audit.ActionUpdate, docID, prev.Number, err)
	}
	return r, set, s.deps.Done(ctx, docType, audit.ActionUpdate, docID, r.Number, nil)
}

// Delete removes the receipt, reverses its journal rows and releases its
// allocations.
func (s *Service) Delete(ctx context.Context, docID id.ID) error {
	orgID, err := documents.Organization(ctx)
	if err != nil {
		return err
	}

	r, err := s.repo.Get(ctx, orgID, docID)
	if err != nil {
		return err
	}

	releases := r.Adjustments()
	for i := range releases {
		releases[i] = releases[i].Negate()
	}

	err = s.deps.Engine.Unpost(ctx, r, func(ctx context.Context) error {
		if err := s.repo.Delete(ctx, orgID, docID); err != nil {
			return fmt.Errorf("delete receipt: %w", err)
		}
		if err := s.reconciler.Apply(ctx, releases...); err != nil {
			return err
		}
		return s.deps.Audit(ctx, docType, docID, audit.ActionDelete, r)
	})
	return s.deps.Done(ctx, docType, audit.ActionDelete, docID, r.Number, err)
}
