package invoice_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesledger/internal/core/apperror"
	"salesledger/internal/core/entity"
	"salesledger/internal/core/id"
	"salesledger/internal/core/numerator"
	"salesledger/internal/core/types"
	"salesledger/internal/domain"
	"salesledger/internal/domain/documents"
	"salesledger/internal/domain/documents/documentstest"
	"salesledger/internal/domain/documents/invoice"
	"salesledger/internal/domain/registers/journal"
	"salesledger/internal/infrastructure/storage/memory"
)

type fixture struct {
	env   *documentstest.Env
	repo  *memory.DocumentStore[*invoice.Invoice]
	svc   *invoice.Service
	recon *invoice.Reconciler
}

func newFixture(t *testing.T) fixture {
	env := documentstest.New(t)
	repo := memory.NewDocumentStore[*invoice.Invoice]("invoice")
	return fixture{
		env:   env,
		repo:  repo,
		svc:   invoice.NewService(repo, env.Deps),
		recon: invoice.NewReconciler(repo),
	}
}

// fabric 2 x 100 and stitching 1 x 50, both at 9% + 9%: grand total 295
func (f fixture) sale() documents.SalesInput {
	return f.env.Sale(invoice.DiscountOrdering,
		documentstest.Line(f.env.Fabric, 2, "100"),
		documentstest.Line(f.env.Stitching, 1, "50"),
	)
}

func TestCreate_PostsSaleAndStock(t *testing.T) {
	f := newFixture(t)
	f.env.SeedStock(t, f.env.Fabric.ID, 10)

	inv, set, err := f.svc.Create(f.env.Ctx, f.sale())
	require.NoError(t, err)

	assert.Equal(t, "INV-1", inv.Number)
	assert.Equal(t, invoice.StatusUnpaid, inv.Status)
	assert.Equal(t, "295.00", inv.GrandTotal.StringFixed(2))
	assert.Equal(t, "295.00", inv.Balance.StringFixed(2))
	assert.Equal(t, "user-1", inv.CreatedBy)
	require.Len(t, inv.Lines, 2)
	assert.Equal(t, "236.00", inv.Lines[0].LineTotal.StringFixed(2))

	rows := f.env.Entries(t, inv.ID)
	assert.True(t, journal.IsBalanced(rows))
	assert.Len(t, set.Journal, len(rows))
	for _, r := range rows {
		assert.Equal(t, "INV-1", r.DocumentNumber)
	}

	require.Len(t, set.Stock, 1)
	assert.Equal(t, types.NewQuantity(8), f.env.OnHand(t, f.env.Fabric.ID))

	history, err := f.env.Deps.Trail.History(context.Background(), f.env.Org.ID, "invoice", inv.ID, 10)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestCreate_PaymentWithDeposit(t *testing.T) {
	f := newFixture(t)
	f.env.SeedStock(t, f.env.Fabric.ID, 10)

	in := f.sale()
	in.Paid = types.MustMoney("100")
	in.DepositAccountID = &f.env.Deposit.ID

	inv, _, err := f.svc.Create(f.env.Ctx, in)
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusPartiallyPaid, inv.Status)
	assert.Equal(t, "195.00", inv.Balance.StringFixed(2))

	var deposit types.Money
	for _, r := range f.env.Entries(t, inv.ID) {
		if r.AccountID == f.env.Deposit.ID {
			deposit = deposit.Add(r.Debit)
		}
	}
	assert.Equal(t, "100.00", deposit.StringFixed(2))
}

func TestCreate_PaymentWithoutDeposit(t *testing.T) {
	f := newFixture(t)
	in := f.sale()
	in.Paid = types.MustMoney("100")

	_, _, err := f.svc.Create(f.env.Ctx, in)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestCreate_DiscrepancyLeavesNoTrace(t *testing.T) {
	f := newFixture(t)
	f.env.SeedStock(t, f.env.Fabric.ID, 10)

	in := f.sale()
	in.Claimed.GrandTotal = types.MustMoney("290")

	_, _, err := f.svc.Create(f.env.Ctx, in)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeDiscrepancy))
	assert.Contains(t, err.Error(), "295.00")
	assert.Zero(t, f.env.JournalRepo.Len())

	inv, _, err := f.svc.Create(f.env.Ctx, f.sale())
	require.NoError(t, err)
	assert.Equal(t, "INV-1", inv.Number, "rejected submission consumes no number")
}

func TestCreate_InsufficientStockRollsBack(t *testing.T) {
	f := newFixture(t)
	f.env.SeedStock(t, f.env.Fabric.ID, 1)

	_, _, err := f.svc.Create(f.env.Ctx, f.sale())
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock))

	list, err := f.svc.List(f.env.Ctx, domain.DefaultListFilter())
	require.NoError(t, err)
	assert.Zero(t, list.TotalCount)
	assert.Zero(t, f.env.JournalRepo.Len())
	assert.Equal(t, types.NewQuantity(1), f.env.OnHand(t, f.env.Fabric.ID))

	f.env.SeedStock(t, f.env.Fabric.ID, 5)
	inv, _, err := f.svc.Create(f.env.Ctx, f.sale())
	require.NoError(t, err)
	assert.Equal(t, "INV-1", inv.Number)
}

func TestCreate_NegativeStockAllowed(t *testing.T) {
	f := newFixture(t)
	f.env.Org.AllowNegativeStock = true

	_, _, err := f.svc.Create(f.env.Ctx, f.sale())
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantity(-2), f.env.OnHand(t, f.env.Fabric.ID))
}

func TestCreate_UsesGeneratorNumber(t *testing.T) {
	f := newFixture(t)
	f.env.SeedStock(t, f.env.Fabric.ID, 10)
	deps := f.env.Deps
	deps.Numbers = &numerator.MockGenerator{}
	svc := invoice.NewService(f.repo, deps)

	inv, _, err := svc.Create(f.env.Ctx, f.sale())
	require.NoError(t, err)
	assert.Equal(t, "MOCK-00001", inv.Number)
}

func TestCreate_NumberingFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	f.env.SeedStock(t, f.env.Fabric.ID, 10)
	deps := f.env.Deps
	deps.Numbers = &numerator.MockGenerator{
		NextFunc: func(context.Context, id.ID, entity.DocumentType) (string, error) {
			return "", errors.New("series locked")
		},
	}
	svc := invoice.NewService(f.repo, deps)

	_, _, err := svc.Create(f.env.Ctx, f.sale())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "series locked")
	assert.Zero(t, f.env.JournalRepo.Len())
	assert.Equal(t, types.NewQuantity(10), f.env.OnHand(t, f.env.Fabric.ID))

	list, err := f.svc.List(f.env.Ctx, domain.DefaultListFilter())
	require.NoError(t, err)
	assert.Zero(t, list.TotalCount)
}

func TestCreate_RequiresCaller(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.svc.Create(context.Background(), f.sale())
	assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))
}

func TestCreate_UnknownCustomer(t *testing.T) {
	f := newFixture(t)
	in := f.sale()
	in.CustomerID = f.env.Stitching.ID

	_, _, err := f.svc.Create(f.env.Ctx, in)
	assert.True(t, apperror.IsNotFound(err))
}

func TestUpdate_Reposts(t *testing.T) {
	f := newFixture(t)
	f.env.SeedStock(t, f.env.Fabric.ID, 10)

	inv, _, err := f.svc.Create(f.env.Ctx, f.sale())
	require.NoError(t, err)

	in := f.env.Sale(invoice.DiscountOrdering, documentstest.Line(f.env.Fabric, 3, "100"))
	in.Number = inv.Number
	updated, _, err := f.svc.Update(f.env.Ctx, inv.ID, in)
	require.NoError(t, err)

	assert.Equal(t, "354.00", updated.GrandTotal.StringFixed(2))
	assert.Equal(t, 2, updated.Version)
	assert.Equal(t, types.NewQuantity(7), f.env.OnHand(t, f.env.Fabric.ID))
	assert.True(t, journal.IsBalanced(f.env.Entries(t, inv.ID)))

	stored, err := f.svc.GetByID(f.env.Ctx, inv.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Lines, 1)
}

func TestUpdate_NumberMismatch(t *testing.T) {
	f := newFixture(t)
	f.env.SeedStock(t, f.env.Fabric.ID, 10)
	inv, _, err := f.svc.Create(f.env.Ctx, f.sale())
	require.NoError(t, err)

	in := f.sale()
	in.Number = "INV-99"
	_, _, err = f.svc.Update(f.env.Ctx, inv.ID, in)
	assert.True(t, apperror.IsConflict(err))
}

func TestUpdateAndDelete_RejectConsumed(t *testing.T) {
	f := newFixture(t)
	f.env.SeedStock(t, f.env.Fabric.ID, 10)
	inv, _, err := f.svc.Create(f.env.Ctx, f.sale())
	require.NoError(t, err)

	err = f.env.Tx.RunInTransaction(f.env.Ctx, func(ctx context.Context) error {
		return f.recon.Apply(ctx, invoice.BalanceAdjusted{
			OrganizationID: f.env.Org.ID,
			InvoiceID:      inv.ID,
			ReceivedDelta:  types.MustMoney("50"),
		})
	})
	require.NoError(t, err)

	in := f.sale()
	in.Number = inv.Number
	_, _, err = f.svc.Update(f.env.Ctx, inv.ID, in)
	assert.True(t, apperror.IsConflict(err))

	err = f.svc.Delete(f.env.Ctx, inv.ID)
	assert.True(t, apperror.IsConflict(err))

	stored, err := f.svc.GetByID(f.env.Ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusPartiallyPaid, stored.Status)
	assert.Equal(t, "245.00", stored.Balance.StringFixed(2))
}

func TestDelete_RemovesLedgerRows(t *testing.T) {
	f := newFixture(t)
	f.env.SeedStock(t, f.env.Fabric.ID, 10)
	inv, _, err := f.svc.Create(f.env.Ctx, f.sale())
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(f.env.Ctx, inv.ID))

	assert.Empty(t, f.env.Entries(t, inv.ID))
	assert.Equal(t, types.NewQuantity(10), f.env.OnHand(t, f.env.Fabric.ID))
	_, err = f.svc.GetByID(f.env.Ctx, inv.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestList_FiltersByStatusAndNumber(t *testing.T) {
	f := newFixture(t)
	f.env.SeedStock(t, f.env.Fabric.ID, 10)

	_, _, err := f.svc.Create(f.env.Ctx, f.sale())
	require.NoError(t, err)
	paid := f.sale()
	paid.Paid = paid.Claimed.GrandTotal
	paid.DepositAccountID = &f.env.Deposit.ID
	_, _, err = f.svc.Create(f.env.Ctx, paid)
	require.NoError(t, err)

	filter := domain.DefaultListFilter()
	filter.Status = invoice.StatusPaid
	res, err := f.svc.List(f.env.Ctx, filter)
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "INV-2", res.Items[0].Number)

	filter = domain.DefaultListFilter()
	filter.Search = "inv-1"
	res, err = f.svc.List(f.env.Ctx, filter)
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "INV-1", res.Items[0].Number)
}
