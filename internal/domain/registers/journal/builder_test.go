package journal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesledger/internal/core/apperror"
	"salesledger/internal/core/entity"
	"salesledger/internal/core/id"
	"salesledger/internal/core/types"
	"salesledger/internal/domain/pricing"
	"salesledger/internal/domain/refdata"
)

func m(s string) types.Money { return types.MustMoney(s) }

type fixture struct {
	org      *refdata.Organization
	customer id.ID
	deposit  id.ID
	revenueA id.ID
	revenueB id.ID
}

func newFixture() fixture {
	accounts := map[refdata.AccountKind]id.ID{}
	for _, kind := range []refdata.AccountKind{
		refdata.AccountSales, refdata.AccountReceivable,
		refdata.AccountCGSTPayable, refdata.AccountSGSTPayable,
		refdata.AccountIGSTPayable, refdata.AccountVATPayable,
		refdata.AccountDiscount, refdata.AccountOtherExpense,
		refdata.AccountFreight, refdata.AccountRoundOff,
	} {
		accounts[kind] = id.New()
	}
	return fixture{
		org:      &refdata.Organization{ID: id.New(), DefaultAccounts: accounts},
		customer: id.New(),
		deposit:  id.New(),
		revenueA: id.New(),
		revenueB: id.New(),
	}
}

func (f fixture) sale() SalePosting {
	kinds := []refdata.AccountKind{
		refdata.AccountCGSTPayable, refdata.AccountSGSTPayable,
		refdata.AccountDiscount, refdata.AccountOtherExpense,
		refdata.AccountFreight, refdata.AccountRoundOff,
	}
	// two lines of 200 gross, 10% line discount on the second, 9%+9% tax,
	// other expense 10, freight 5, round-off 0.20
	// preTax 200 + 180 = 380, tax 34.20 + 34.20, subtotal 448.40,
	// grand 448.40 + 15 - 0.20 = 463.20
	return SalePosting{
		Source: entity.MovementSource{
			OrganizationID: f.org.ID,
			OperationID:    id.New(),
			DocumentType:   entity.DocumentTypeInvoice,
			DocumentNumber: "INV-1",
		},
		Revenue: []Revenue{
			{AccountID: f.revenueA, Amount: m("200")},
			{AccountID: f.revenueB, Amount: m("100")},
			{AccountID: f.revenueB, Amount: m("100")},
		},
		Tax:                   pricing.TaxAmounts{CGST: m("34.20"), SGST: m("34.20")},
		TotalDiscount:         m("20"),
		OtherExpense:          m("10"),
		Freight:               m("5"),
		RoundOff:              m("0.20"),
		GrandTotal:            m("463.20"),
		CounterpartyAccountID: f.customer,
		Accounts:              ResolveAccounts(f.org, kinds),
	}
}

func sumFor(rows []entity.JournalEntry, account id.ID) (debit, credit types.Money) {
	var filtered []entity.JournalEntry
	for _, r := range rows {
		if r.AccountID == account {
			filtered = append(filtered, r)
		}
	}
	return Totals(filtered)
}

func TestResolveAccounts_ReportsEveryMissingKind(t *testing.T) {
	f := newFixture()
	delete(f.org.DefaultAccounts, refdata.AccountCGSTPayable)
	delete(f.org.DefaultAccounts, refdata.AccountFreight)

	res := ResolveAccounts(f.org, []refdata.AccountKind{
		refdata.AccountCGSTPayable, refdata.AccountSales, refdata.AccountFreight, refdata.AccountCGSTPayable,
	})

	assert.Equal(t, []refdata.AccountKind{refdata.AccountCGSTPayable, refdata.AccountFreight}, res.Missing)
	assert.Equal(t, f.org.DefaultAccounts[refdata.AccountSales], res.Get(refdata.AccountSales))

	err := res.Err()
	require.Error(t, err)
	appErr, _ := apperror.AsAppError(err)
	assert.Len(t, appErr.Messages(), 2)
	assert.Contains(t, appErr.Messages()[0], "cgst_payable")
}

func TestResolveAccounts_AllPresent(t *testing.T) {
	f := newFixture()
	res := ResolveAccounts(f.org, []refdata.AccountKind{refdata.AccountSales})
	assert.NoError(t, res.Err())
}

func TestRequiredKinds_OnlyNonZeroBuckets(t *testing.T) {
	totals := pricing.Totals{
		Tax:      pricing.TaxAmounts{IGST: m("36")},
		Freight:  m("5"),
		RoundOff: types.Zero(),
	}
	kinds := RequiredKinds(totals, true, false)
	assert.Equal(t, []refdata.AccountKind{refdata.AccountSales, refdata.AccountIGSTPayable, refdata.AccountFreight}, kinds)
}

func TestBuildSale_Balanced(t *testing.T) {
	f := newFixture()
	rows := BuildSale(f.sale())

	require.True(t, IsBalanced(rows))
	debit, credit := Totals(rows)
	assert.Equal(t, "483.40", debit.StringFixed(2))
	assert.Equal(t, "483.40", credit.StringFixed(2))

	// revenue grouped per account
	_, revB := sumFor(rows, f.revenueB)
	assert.Equal(t, "200.00", revB.StringFixed(2))
	count := 0
	for _, r := range rows {
		if r.AccountID == f.revenueB {
			count++
		}
	}
	assert.Equal(t, 1, count)

	custDebit, _ := sumFor(rows, f.customer)
	assert.Equal(t, "463.20", custDebit.StringFixed(2))

	_, cgst := sumFor(rows, f.org.DefaultAccounts[refdata.AccountCGSTPayable])
	assert.Equal(t, "34.20", cgst.StringFixed(2))

	for _, r := range rows {
		assert.Equal(t, ActionSale, r.Action)
		assert.True(t, r.Debit.IsZero() != r.Credit.IsZero(), "one side per row")
	}
}

func TestBuildSale_SkipsZeroBuckets(t *testing.T) {
	f := newFixture()
	p := f.sale()
	p.Tax = pricing.TaxAmounts{}
	p.OtherExpense = types.Zero()
	p.Freight = types.Zero()
	p.RoundOff = types.Zero()
	p.TotalDiscount = types.Zero()
	p.GrandTotal = m("400")

	rows := BuildSale(p)
	assert.Len(t, rows, 3) // two revenue accounts and the customer
	assert.True(t, IsBalanced(rows))
}

func TestBuildSale_WithPayment(t *testing.T) {
	f := newFixture()
	p := f.sale()
	p.Payment = &Payment{DepositAccountID: f.deposit, Amount: m("100")}

	rows := BuildSale(p)
	require.True(t, IsBalanced(rows))

	depDebit, _ := sumFor(rows, f.deposit)
	assert.Equal(t, "100.00", depDebit.StringFixed(2))
	custDebit, custCredit := sumFor(rows, f.customer)
	assert.Equal(t, "463.20", custDebit.StringFixed(2))
	assert.Equal(t, "100.00", custCredit.StringFixed(2))
}

func TestBuildSale_NegativeRoundOffFlipsSide(t *testing.T) {
	f := newFixture()
	p := f.sale()
	p.RoundOff = m("-0.80")
	p.GrandTotal = m("464.20")

	rows := BuildSale(p)
	require.True(t, IsBalanced(rows))
	_, roCredit := sumFor(rows, f.org.DefaultAccounts[refdata.AccountRoundOff])
	assert.Equal(t, "0.80", roCredit.StringFixed(2))
}

func TestBuildReturn_MirrorsSale(t *testing.T) {
	f := newFixture()
	p := f.sale()
	p.Payment = &Payment{DepositAccountID: f.deposit, Amount: m("50")}

	sale := BuildSale(p)
	ret := BuildReturn(p)
	require.Len(t, ret, len(sale))
	require.True(t, IsBalanced(ret))

	for i := range sale {
		assert.Equal(t, sale[i].AccountID, ret[i].AccountID)
		assert.True(t, sale[i].Debit.Equal(ret[i].Credit))
		assert.True(t, sale[i].Credit.Equal(ret[i].Debit))
	}

	cgstDebit, _ := sumFor(ret, f.org.DefaultAccounts[refdata.AccountCGSTPayable])
	assert.Equal(t, "34.20", cgstDebit.StringFixed(2))
	_, custCredit := sumFor(ret, f.customer)
	assert.Equal(t, "463.20", custCredit.StringFixed(2))
	assert.Equal(t, ActionSalesReturn, ret[0].Action)
}

func TestBuildPayment(t *testing.T) {
	f := newFixture()
	src := entity.MovementSource{OrganizationID: f.org.ID, OperationID: id.New(), DocumentType: entity.DocumentTypeReceipt}

	rows := BuildPayment(src, "receipt", f.deposit, f.customer, m("150"))
	require.Len(t, rows, 2)
	assert.Equal(t, f.deposit, rows[0].AccountID)
	assert.Equal(t, "150.00", rows[0].Debit.StringFixed(2))
	assert.Equal(t, f.customer, rows[1].AccountID)
	assert.Equal(t, "150.00", rows[1].Credit.StringFixed(2))

	assert.Empty(t, BuildPayment(src, "", f.deposit, f.customer, types.Zero()))
}
