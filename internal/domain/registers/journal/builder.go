package journal

import (
	"github.com/shopspring/decimal"

	"salesledger/internal/core/entity"
	"salesledger/internal/core/id"
	"salesledger/internal/core/types"
	"salesledger/internal/domain/pricing"
	"salesledger/internal/domain/refdata"
)

// Journal actions.
const (
	ActionSale            = "Sale"
	ActionSalesReturn     = "Sales Return"
	ActionPaymentReceived = "Payment Received"
	ActionPaymentRefund   = "Payment Refund"
)

// Revenue is the gross amount of the lines posting to one account.
type Revenue struct {
	AccountID id.ID
	Amount    types.Money
}

// Payment is the money received (or refunded) with a document.
type Payment struct {
	DepositAccountID id.ID
	Amount           types.Money
}

// SalePosting describes a priced sale for journal construction.
type SalePosting struct {
	Source                entity.MovementSource
	Remark                string
	Revenue               []Revenue
	Tax                   pricing.TaxAmounts
	TotalDiscount         types.Money
	OtherExpense          types.Money
	Freight               types.Money
	RoundOff              types.Money
	GrandTotal            types.Money
	CounterpartyAccountID id.ID
	Payment               *Payment
	Accounts              Resolution
}

// RequiredKinds returns the default account kinds a posting of totals needs.
// needSales and needReceivable are set when some line or the counterparty has
// no account of its own.
func RequiredKinds(t pricing.Totals, needSales, needReceivable bool) []refdata.AccountKind {
	var kinds []refdata.AccountKind
	add := func(kind refdata.AccountKind, amount types.Money) {
		if !amount.IsZero() {
			kinds = append(kinds, kind)
		}
	}
	if needSales {
		kinds = append(kinds, refdata.AccountSales)
	}
	if needReceivable {
		kinds = append(kinds, refdata.AccountReceivable)
	}
	add(refdata.AccountCGSTPayable, t.Tax.CGST)
	add(refdata.AccountSGSTPayable, t.Tax.SGST)
	add(refdata.AccountIGSTPayable, t.Tax.IGST)
	add(refdata.AccountVATPayable, t.Tax.VAT)
	add(refdata.AccountDiscount, t.TotalDiscount)
	add(refdata.AccountOtherExpense, t.OtherExpense)
	add(refdata.AccountFreight, t.Freight)
	add(refdata.AccountRoundOff, t.RoundOff)
	return kinds
}

// GroupRevenue sums amounts per account, keeping first-seen order.
func GroupRevenue(lines []Revenue) []Revenue {
	idx := make(map[id.ID]int, len(lines))
	var out []Revenue
	for _, l := range lines {
		if i, ok := idx[l.AccountID]; ok {
			out[i].Amount = out[i].Amount.Add(l.Amount)
			continue
		}
		idx[l.AccountID] = len(out)
		out = append(out, Revenue{AccountID: l.AccountID, Amount: l.Amount})
	}
	return out
}

// builder appends rows, skipping zero amounts and flipping the side of
// negative ones.
type builder struct {
	src    entity.MovementSource
	remark string
	rows   []entity.JournalEntry
	mirror bool
}

func (b *builder) add(accountID id.ID, action string, amount types.Money, debit bool) {
	if amount.IsZero() {
		return
	}
	if amount.IsNegative() {
		amount = amount.Neg()
		debit = !debit
	}
	if b.mirror {
		debit = !debit
	}
	row := entity.JournalEntry{
		MovementBase: entity.NewMovementBase(b.src, action),
		AccountID:    accountID,
		Debit:        decimal.Zero,
		Credit:       decimal.Zero,
		Remark:       b.remark,
	}
	if debit {
		row.Debit = amount
	} else {
		row.Credit = amount
	}
	b.rows = append(b.rows, row)
}

func (b *builder) sale(p SalePosting, action string) {
	acc := p.Accounts
	for _, r := range GroupRevenue(p.Revenue) {
		b.add(r.AccountID, action, r.Amount, false)
	}
	b.add(acc.Get(refdata.AccountCGSTPayable), action, p.Tax.CGST, false)
	b.add(acc.Get(refdata.AccountSGSTPayable), action, p.Tax.SGST, false)
	b.add(acc.Get(refdata.AccountIGSTPayable), action, p.Tax.IGST, false)
	b.add(acc.Get(refdata.AccountVATPayable), action, p.Tax.VAT, false)
	b.add(acc.Get(refdata.AccountOtherExpense), action, p.OtherExpense, false)
	b.add(acc.Get(refdata.AccountFreight), action, p.Freight, false)
	b.add(acc.Get(refdata.AccountDiscount), action, p.TotalDiscount, true)
	b.add(acc.Get(refdata.AccountRoundOff), action, p.RoundOff, true)
	b.add(p.CounterpartyAccountID, action, p.GrandTotal, true)
}

func (b *builder) payment(deposit, counterparty id.ID, action string, amount types.Money) {
	b.add(deposit, action, amount, true)
	b.add(counterparty, action, amount, false)
}

// BuildSale returns the rows of a sale: revenue, tax, other expense and freight
// credited; discount, round-off and the counterparty debited; plus the payment
// pair when a payment is present.
func BuildSale(p SalePosting) []entity.JournalEntry {
	b := &builder{src: p.Source, remark: p.Remark}
	b.sale(p, ActionSale)
	if p.Payment != nil {
		b.payment(p.Payment.DepositAccountID, p.CounterpartyAccountID, ActionPaymentReceived, p.Payment.Amount)
	}
	return b.rows
}

// BuildReturn mirrors BuildSale for a sales return: tax is debited and the
// counterparty credited. A payment becomes a refund.
func BuildReturn(p SalePosting) []entity.JournalEntry {
	b := &builder{src: p.Source, remark: p.Remark, mirror: true}
	b.sale(p, ActionSalesReturn)
	if p.Payment != nil {
		b.payment(p.Payment.DepositAccountID, p.CounterpartyAccountID, ActionPaymentRefund, p.Payment.Amount)
	}
	return b.rows
}

// BuildPayment returns the pair debiting the deposit account and crediting
// the counterparty.
func BuildPayment(src entity.MovementSource, remark string, depositAccountID, counterpartyAccountID id.ID, amount types.Money) []entity.JournalEntry {
	b := &builder{src: src, remark: remark}
	b.payment(depositAccountID, counterpartyAccountID, ActionPaymentReceived, amount)
	return b.rows
}

// Totals returns the debit and credit sums of rows.
func Totals(rows []entity.JournalEntry) (debit, credit types.Money) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, r := range rows {
		debit = debit.Add(r.Debit)
		credit = credit.Add(r.Credit)
	}
	return debit, credit
}

// IsBalanced reports whether debits equal credits within types.Tolerance.
func IsBalanced(rows []entity.JournalEntry) bool {
	debit, credit := Totals(rows)
	return types.WithinTolerance(debit, credit)
}
