package documents

import (
	"context"

	"salesledger/internal/core/apperror"
	"salesledger/internal/core/id"
	"salesledger/internal/domain/pricing"
	"salesledger/internal/domain/refdata"
	"salesledger/internal/domain/registers/journal"
)

// Options select what Prepare resolves beyond pricing.
type Options struct {
	Ordering pricing.Ordering

	// SaleAccounts resolves every account a sale or return posting needs.
	SaleAccounts bool

	// PaymentAccounts resolves the counterparty account for a payment pair.
	PaymentAccounts bool

	// AllowPayment accepts a non-zero Paid.
	AllowPayment bool
}

// Prepared is a validated, priced submission with its reference data and,
// when requested, its resolved accounts.
type Prepared struct {
	Snapshot              *refdata.Snapshot
	TaxType               pricing.TaxType
	Totals                pricing.Totals
	Accounts              journal.Resolution
	CounterpartyAccountID id.ID
	Revenue               []journal.Revenue
}

// Prepare validates, prices and verifies in. See PrepareWith.
func Prepare(ctx context.Context, gw refdata.Gateway, organizationID id.ID, in SalesInput, opts Options) (*Prepared, error) {
	return PrepareWith(ctx, gw, organizationID, in, opts, &apperror.Collector{})
}

// PrepareWith runs the read and validation stages of a write. Messages
// already in c are reported together with everything found here. A missing
// organization or customer fails with NotFound; every other problem is
// collected into one validation or discrepancy error. Accounts are resolved
// last and fail fast, naming every missing kind.
func PrepareWith(ctx context.Context, gw refdata.Gateway, organizationID id.ID, in SalesInput, opts Options, c *apperror.Collector) (*Prepared, error) {
	if id.IsNil(in.CustomerID) {
		c.Add("customer is required")
	}

	var accountIDs []id.ID
	if in.DepositAccountID != nil {
		accountIDs = append(accountIDs, *in.DepositAccountID)
	}
	snap, err := refdata.Load(ctx, gw, refdata.Request{
		OrganizationID: organizationID,
		CounterpartyID: in.CustomerID,
		ItemIDs:        in.ItemIDs(),
		AccountIDs:     accountIDs,
	})
	if err != nil {
		return nil, err
	}

	for i, l := range in.Lines {
		if id.IsNil(l.ItemID) {
			continue
		}
		if _, ok := snap.Items[l.ItemID]; !ok {
			c.Addf("line %d: item %s not found", i+1, l.ItemID)
		}
	}

	if in.Paid.IsPositive() {
		switch {
		case !opts.AllowPayment:
			c.Add("payment is not accepted on this document")
		case in.DepositAccountID == nil:
			c.Add("deposit account is required when a payment is recorded")
		}
	}
	if in.DepositAccountID != nil && !snap.HasAccount(*in.DepositAccountID) {
		c.Addf("deposit account %s not found", *in.DepositAccountID)
	}

	taxType := pricing.TaxTypeNone
	if snap.Counterparty != nil {
		resolved, err := pricing.ResolveTaxType(snap.Counterparty.TaxClassification, in.PlaceOfSupply, snap.Organization.HomeRegion)
		if err != nil {
			c.Merge(err)
		} else {
			taxType = resolved
		}
	}

	doc := in.pricingDocument(taxType, opts.Ordering)
	var rules apperror.Collector
	pricing.Validate(doc, &rules)

	var totals pricing.Totals
	if rules.Empty() {
		var ds pricing.Discrepancies
		totals, ds = pricing.ComputeAndVerify(doc)
		ds.AddTo(c)
	} else {
		c.Merge(rules.Err())
	}
	if err := c.Err(); err != nil {
		return nil, err
	}

	p := &Prepared{
		Snapshot: snap,
		TaxType:  taxType,
		Totals:   totals,
	}
	if err := p.resolveAccounts(in, opts); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Prepared) resolveAccounts(in SalesInput, opts Options) error {
	snap := p.Snapshot
	needSales := false
	for _, l := range in.Lines {
		if snap.Items[l.ItemID].SalesAccountID == nil {
			needSales = true
		}
	}
	needReceivable := snap.Counterparty.AccountID == nil

	var kinds []refdata.AccountKind
	switch {
	case opts.SaleAccounts:
		kinds = journal.RequiredKinds(p.Totals, needSales, needReceivable)
	case opts.PaymentAccounts && p.Totals.Paid.IsPositive() && needReceivable:
		kinds = []refdata.AccountKind{refdata.AccountReceivable}
	}

	p.Accounts = journal.ResolveAccounts(snap.Organization, kinds)
	if err := p.Accounts.Err(); err != nil {
		return err
	}

	if snap.Counterparty.AccountID != nil {
		p.CounterpartyAccountID = *snap.Counterparty.AccountID
	} else {
		p.CounterpartyAccountID = p.Accounts.Get(refdata.AccountReceivable)
	}

	if !opts.SaleAccounts {
		return nil
	}
	for i, l := range in.Lines {
		accountID := p.Accounts.Get(refdata.AccountSales)
		if own := snap.Items[l.ItemID].SalesAccountID; own != nil {
			accountID = *own
		}
		p.Revenue = append(p.Revenue, journal.Revenue{AccountID: accountID, Amount: p.Totals.Lines[i].Gross})
	}
	return nil
}

// Fill copies the submission and its computed amounts into s. Lines are
// replaced with fresh line ids.
func (p *Prepared) Fill(s *Sales, in SalesInput) {
	if !in.Date.IsZero() {
		s.Date = in.Date
	}
	s.CustomerID = in.CustomerID
	s.PlaceOfSupply = in.PlaceOfSupply
	s.TaxType = p.TaxType
	s.Discount = in.Discount
	s.DepositAccountID = in.DepositAccountID
	s.Comment = in.Comment

	t := p.Totals
	s.Lines = make([]Line, 0, len(in.Lines))
	for i, l := range in.Lines {
		r := t.Lines[i]
		s.Lines = append(s.Lines, Line{
			LineID:         id.New(),
			LineNo:         i + 1,
			ItemID:         l.ItemID,
			Quantity:       l.Quantity,
			UnitPrice:      l.UnitPrice,
			TaxPreference:  l.TaxPreference,
			Rates:          l.Rates,
			Discount:       l.Discount,
			Gross:          r.Gross,
			DiscountAmount: r.Discount,
			PreTaxAmount:   r.PreTax,
			Tax:            r.Tax,
			TaxAmount:      r.TaxTotal,
			LineTotal:      r.Total,
		})
	}

	s.OtherExpense = t.OtherExpense
	s.Freight = t.Freight
	s.RoundOff = t.RoundOff
	s.Subtotal = t.Subtotal
	s.TotalDiscount = t.TotalDiscount
	s.Tax = t.Tax
	s.TotalTax = t.TotalTax
	s.GrandTotal = t.GrandTotal
	s.PaidAmount = t.Paid
	s.Balance = t.Balance
}

// SalePosting describes the sale of the prepared document for the journal.
// The source is set when movements are generated.
func (p *Prepared) SalePosting(remark string, deposit *id.ID) *journal.SalePosting {
	t := p.Totals
	sp := &journal.SalePosting{
		Remark:                remark,
		Revenue:               p.Revenue,
		Tax:                   t.Tax,
		TotalDiscount:         t.TotalDiscount,
		OtherExpense:          t.OtherExpense,
		Freight:               t.Freight,
		RoundOff:              t.RoundOff,
		GrandTotal:            t.GrandTotal,
		CounterpartyAccountID: p.CounterpartyAccountID,
		Accounts:              p.Accounts,
	}
	if t.Paid.IsPositive() && deposit != nil {
		sp.Payment = &journal.Payment{DepositAccountID: *deposit, Amount: t.Paid}
	}
	return sp
}

// StockLines returns the lines of s whose items are stock-tracked.
func (p *Prepared) StockLines(s *Sales) []StockLine {
	var out []StockLine
	for _, l := range s.Lines {
		item := p.Snapshot.Items[l.ItemID]
		if item == nil || !item.TrackStock {
			continue
		}
		out = append(out, StockLine{
			ItemID:        l.ItemID,
			SalePrice:     l.UnitPrice,
			PurchasePrice: item.PurchasePrice,
			Quantity:      l.Quantity,
		})
	}
	return out
}

// AllowNegativeStock reports the organization's stock setting.
func (p *Prepared) AllowNegativeStock() bool {
	return p.Snapshot.Organization.AllowNegativeStock
}
