package credit_note

import (
	"context"
	"fmt"

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
	"salesledger/internal/domain/registers/stock"
)

const docType = entity.DocumentTypeCreditNote

var prepareOptions = documents.Options{
	Ordering:     DiscountOrdering,
	SaleAccounts: true,
}

// Service provides business operations for credit notes.
type Service struct {
	repo       Repository
	invoices   invoice.Repository
	reconciler *invoice.Reconciler
	deps       documents.Deps
}

// NewService creates a new credit note service.
func NewService(repo Repository, invoices invoice.Repository, reconciler *invoice.Reconciler, deps documents.Deps) *Service {
	return &Service{
		repo:       repo,
		invoices:   invoices,
		reconciler: reconciler,
		deps:       deps,
	}
}

// prepared is a validated credit note submission.
type prepared struct {
	invoice *invoice.Invoice
	prep    *documents.Prepared
	input   documents.SalesInput
	sources []id.ID
}

// prepare validates in against its invoice. prev is the stored credit note on
// update: its own returns and credit are available again.
func (s *Service) prepare(ctx context.Context, orgID id.ID, in Input, prev *CreditNote) (*prepared, error) {
	inv, err := s.invoices.Get(ctx, orgID, in.InvoiceID)
	if err != nil {
		return nil, err
	}

	var c apperror.Collector
	if prev != nil && prev.InvoiceID != in.InvoiceID {
		c.Add("the invoice of a credit note cannot be changed")
	}

	lineIDs := make([]id.ID, 0, len(in.Lines))
	for _, l := range in.Lines {
		lineIDs = append(lineIDs, l.InvoiceLineID)
	}
	for _, dup := range id.Duplicates(lineIDs) {
		c.Addf("invoice line %s is listed more than once", dup)
	}

	out := &prepared{
		invoice: inv,
		input: documents.SalesInput{
			Number:        in.Number,
			Date:          in.Date,
			CustomerID:    inv.CustomerID,
			PlaceOfSupply: inv.PlaceOfSupply,
			Discount:      in.Discount,
			OtherExpense:  in.OtherExpense,
			Freight:       in.Freight,
			RoundOff:      in.RoundOff,
			Claimed:       in.Claimed,
			Comment:       in.Comment,
		},
	}
	unknown := false
	for i, l := range in.Lines {
		invLine, ok := inv.Line(l.InvoiceLineID)
		if !ok {
			c.Addf("line %d: invoice line %s not found", i+1, l.InvoiceLineID)
			unknown = true
			continue
		}

		returnable := inv.Returnable(l.InvoiceLineID)
		if prev != nil {
			returnable += prev.ReturnedBy(l.InvoiceLineID)
		}
		if l.Quantity > returnable {
			c.Addf("line %d: return quantity %s exceeds returnable quantity %s", i+1, l.Quantity, returnable)
		}

		out.input.Lines = append(out.input.Lines, documents.LineInput{
			ItemID:        invLine.ItemID,
			Quantity:      l.Quantity,
			UnitPrice:     invLine.UnitPrice,
			TaxPreference: invLine.TaxPreference,
			Rates:         invLine.Rates,
			Discount:      l.Discount,
			Claimed:       l.Claimed,
		})
		out.sources = append(out.sources, l.InvoiceLineID)
	}
	if unknown {
		return nil, c.Err()
	}

	prep, err := documents.PrepareWith(ctx, s.deps.RefData, orgID, out.input, prepareOptions, &c)
	if err != nil {
		return nil, err
	}

	open := inv.OpenBalance()
	if prev != nil {
		open = open.Add(prev.GrandTotal)
	}
	if prep.Totals.GrandTotal.Sub(open).GreaterThan(types.Tolerance) {
		return nil, apperror.NewValidationList([]string{fmt.Sprintf(
			"credit amount %s exceeds open balance %s of invoice %s",
			prep.Totals.GrandTotal.StringFixed(2), types.MaxZero(open).StringFixed(2), inv.Number)})
	}

	out.prep = prep
	return out, nil
}

func (p *prepared) fill(cn *CreditNote) {
	p.prep.Fill(&cn.Sales, p.input)
	for i := range cn.Lines {
		src := p.sources[i]
		cn.Lines[i].SourceLineID = &src
	}
	cn.InvoiceID = p.invoice.ID
	cn.InvoiceNumber = p.invoice.Number
	cn.Status = StatusIssued
	cn.SetPlan(&documents.PostingPlan{
		Sale:        p.prep.SalePosting(cn.Comment, nil),
		Return:      true,
		Stock:       p.prep.StockLines(&cn.Sales),
		StockAction: stock.ActionReturn,
	})
}

// Create validates the returns against the invoice, posts the return and
// reduces the invoice balance.
func (s *Service) Create(ctx context.Context, in Input) (*CreditNote, *posting.MovementSet, error) {
	orgID, err := documents.Organization(ctx)
	if err != nil {
		return nil, nil, err
	}

	p, err := s.prepare(ctx, orgID, in, nil)
	if err != nil {
		return nil, nil, s.deps.Done(ctx, docType, audit.ActionCreate, id.Nil(), "", err)
	}

	cn := NewCreditNote(orgID, appctx.GetUserID(ctx))
	p.fill(cn)

	set, err := s.deps.Engine.Post(ctx, cn, posting.Options{AllowNegativeStock: p.prep.AllowNegativeStock()},
		func(ctx context.Context) error {
			number, err := s.deps.Number(ctx, orgID, docType)
			if err != nil {
				return err
			}
			cn.Number = number
			if err := s.repo.Create(ctx, cn); err != nil {
				return fmt.Errorf("create credit note: %w", err)
			}
			if err := s.reconciler.Apply(ctx, cn.Adjustment()); err != nil {
				return err
			}
			return s.deps.Audit(ctx, docType, cn.ID, audit.ActionCreate, cn)
		})
	if err != nil {
		return nil, nil, s.deps.Done(ctx, docType, audit.ActionCreate, cn.ID, "", err)
	}
	return cn, set, s.deps.Done(ctx, docType, audit.ActionCreate, cn.ID, cn.Number, nil)
}

// GetByID retrieves a credit note with lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*CreditNote, error) {
	orgID, err := documents.Organization(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, orgID, docID)
}

// List retrieves credit notes with filtering.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*CreditNote], error) {
	orgID, err := documents.Organization(ctx)
	if err != nil {
		return domain.ListResult[*CreditNote]{}, err
	}
	filter.Normalize()
	return s.repo.List(ctx, orgID, filter)
}

// Update replaces the returns, reposts and moves the invoice balance by the
// difference to the stored credit note.
func (s *Service) Update(ctx context.Context, docID id.ID, in Input) (*CreditNote, *posting.MovementSet, error) {
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

	cn := prev.Clone()
	p.fill(cn)
	audit.StampUpdated(ctx, &cn.BaseDocument)

	set, err := s.deps.Engine.Post(ctx, cn, posting.Options{AllowNegativeStock: p.prep.AllowNegativeStock()},
		func(ctx context.Context) error {
			if err := s.repo.Update(ctx, cn); err != nil {
				return fmt.Errorf("update credit note: %w", err)
			}
			if err := s.reconciler.Apply(ctx, cn.Adjustment().Diff(prev.Adjustment())); err != nil {
				return err
			}
			return s.deps.Audit(ctx, docType, cn.ID, audit.ActionUpdate, cn)
		})
	if err != nil {
		return nil, nil, s.deps.Done(ctx, docType, audit.ActionUpdate, docID, prev.Number, err)
	}
	return cn, set, s.deps.Done(ctx, docType, audit.ActionUpdate, docID, cn.Number, nil)
}

// Delete removes the credit note, reverses its ledger rows and restores the
// invoice balance.
func (s *Service) Delete(ctx context.Context, docID id.ID) error {
	orgID, err := documents.Organization(ctx)
	if err != nil {
		return err
	}

	cn, err := s.repo.Get(ctx, orgID, docID)
	if err != nil {
		return err
	}

	err = s.deps.Engine.Unpost(ctx, cn, func(ctx context.Context) error {
		if err := s.repo.Delete(ctx, orgID, docID); err != nil {
			return fmt.Errorf("delete credit note: %w", err)
		}
		if err := s.reconciler.Apply(ctx, cn.Adjustment().Negate()); err != nil {
			return err
		}
		return s.deps.Audit(ctx, docType, docID, audit.ActionDelete, cn)
	})
	return s.deps.Done(ctx, docType, audit.ActionDelete, docID, cn.Number, err)
}
