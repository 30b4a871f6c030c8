package receipt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesledger/internal/core/apperror"
	"salesledger/internal/core/id"
	"salesledger/internal/core/types"
	"salesledger/internal/domain/documents/documentstest"
	"salesledger/internal/domain/documents/invoice"
	"salesledger/internal/domain/documents/receipt"
	"salesledger/internal/domain/refdata"
	"salesledger/internal/domain/registers/journal"
	"salesledger/internal/infrastructure/storage/memory"
)

type fixture struct {
	env      *documentstest.Env
	invoices *invoice.Service
	svc      *receipt.Service
}

func newFixture(t *testing.T) fixture {
	env := documentstest.New(t)
	invRepo := memory.NewDocumentStore[*invoice.Invoice]("invoice")
	return fixture{
		env:      env,
		invoices: invoice.NewService(invRepo, env.Deps),
		svc: receipt.NewService(memory.NewDocumentStore[*receipt.Receipt]("receipt"),
			invRepo, invoice.NewReconciler(invRepo), env.Deps),
	}
}

// invoice creates a stitching-only invoice of grand total 295 for customer.
func (f fixture) invoice(t *testing.T, customer *refdata.Counterparty) *invoice.Invoice {
	in := f.env.Sale(invoice.DiscountOrdering, documentstest.Line(f.env.Stitching, 5, "50"))
	in.CustomerID = customer.ID
	inv, _, err := f.invoices.Create(f.env.Ctx, in)
	require.NoError(t, err)
	require.Equal(t, "295.00", inv.GrandTotal.StringFixed(2))
	return inv
}

func (f fixture) input(amount string, allocations ...receipt.AllocationInput) receipt.Input {
	return receipt.Input{
		CustomerID:       f.env.Customer.ID,
		DepositAccountID: f.env.Deposit.ID,
		Amount:           types.MustMoney(amount),
		Allocations:      allocations,
	}
}

func alloc(inv *invoice.Invoice, amount string) receipt.AllocationInput {
	return receipt.AllocationInput{InvoiceID: inv.ID, Amount: types.MustMoney(amount)}
}

func (f fixture) balance(t *testing.T, inv *invoice.Invoice) (string, string) {
	t.Helper()
	stored, err := f.invoices.GetByID(f.env.Ctx, inv.ID)
	require.NoError(t, err)
	return stored.Balance.StringFixed(2), stored.Status
}

func messages(t *testing.T, err error) []string {
	t.Helper()
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok, "app error expected, got %v", err)
	return appErr.Messages()
}

func TestCreate_AllocatesAndPosts(t *testing.T) {
	f := newFixture(t)
	first, second := f.invoice(t, f.env.Customer), f.invoice(t, f.env.Customer)

	r, set, err := f.svc.Create(f.env.Ctx, f.input("150", alloc(first, "100"), alloc(second, "50")))
	require.NoError(t, err)
	assert.Equal(t, "RCT-1", r.Number)
	assert.Equal(t, "INV-1", r.Allocations[0].InvoiceNumber)

	require.Len(t, set.Journal, 2)
	assert.True(t, journal.IsBalanced(set.Journal))
	assert.Equal(t, f.env.Deposit.ID, set.Journal[0].AccountID)
	assert.Equal(t, "150.00", set.Journal[0].Debit.StringFixed(2))
	assert.Equal(t, f.env.Org.DefaultAccounts[refdata.AccountReceivable], set.Journal[1].AccountID)

	bal, status := f.balance(t, first)
	assert.Equal(t, "195.00", bal)
	assert.Equal(t, invoice.StatusPartiallyPaid, status)
	bal, _ = f.balance(t, second)
	assert.Equal(t, "245.00", bal)
}

func TestCreate_ValidationCollectsEverything(t *testing.T) {
	f := newFixture(t)
	inv := f.invoice(t, f.env.Customer)
	foreign := f.invoice(t, f.env.Other)
	rows := f.env.JournalRepo.Len()

	_, _, err := f.svc.Create(f.env.Ctx, f.input("150", alloc(inv, "300"), alloc(foreign, "10"), alloc(inv, "1")))
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	assert.ElementsMatch(t, []string{
		"invoice " + inv.ID.String() + " is allocated more than once",
		"allocation 1: amount 300.00 exceeds open balance 295.00 of invoice INV-1",
		"allocation 2: invoice INV-2 belongs to another customer",
		"allocations total 311.00 does not equal amount 150.00",
	}, messages(t, err))

	assert.Equal(t, rows, f.env.JournalRepo.Len())
}

func TestCreate_UnknownInvoice(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.svc.Create(f.env.Ctx, f.input("10", receipt.AllocationInput{InvoiceID: id.New(), Amount: types.MustMoney("10")}))
	assert.True(t, apperror.IsNotFound(err))
}

func TestCreate_UnallocatedAmountRejected(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.svc.Create(f.env.Ctx, f.input("10"))
	require.Error(t, err)
	assert.Equal(t, []string{"allocations total 0.00 does not equal amount 10.00"}, messages(t, err))
}

func TestUpdate_MovesAllocation(t *testing.T) {
	f := newFixture(t)
	first, second := f.invoice(t, f.env.Customer), f.invoice(t, f.env.Customer)

	r, _, err := f.svc.Create(f.env.Ctx, f.input("295", alloc(first, "295")))
	require.NoError(t, err)
	_, status := f.balance(t, first)
	assert.Equal(t, invoice.StatusPaid, status)

	// the receipt's own allocation counts as open again on edit
	in := f.input("295", alloc(first, "295"))
	in.Number = r.Number
	r, _, err = f.svc.Update(f.env.Ctx, r.ID, in)
	require.NoError(t, err)

	in = f.input("295", alloc(second, "295"))
	in.Number = r.Number
	_, _, err = f.svc.Update(f.env.Ctx, r.ID, in)
	require.NoError(t, err)

	bal, status := f.balance(t, first)
	assert.Equal(t, "295.00", bal)
	assert.Equal(t, invoice.StatusUnpaid, status)
	_, status = f.balance(t, second)
	assert.Equal(t, invoice.StatusPaid, status)
}

func TestDelete_ReleasesAllocations(t *testing.T) {
	f := newFixture(t)
	inv := f.invoice(t, f.env.Customer)

	r, _, err := f.svc.Create(f.env.Ctx, f.input("95", alloc(inv, "95")))
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(f.env.Ctx, r.ID))

	bal, status := f.balance(t, inv)
	assert.Equal(t, "295.00", bal)
	assert.Equal(t, invoice.StatusUnpaid, status)
	assert.Empty(t, f.env.Entries(t, r.ID))

	_, err = f.svc.GetByID(f.env.Ctx, r.ID)
	assert.True(t, apperror.IsNotFound(err))
	require.NoError(t, f.invoices.Delete(f.env.Ctx, inv.ID))
}
