package order_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesledger/internal/core/apperror"
	"salesledger/internal/core/types"
	"salesledger/internal/domain/documents"
	"salesledger/internal/domain/documents/documentstest"
	"salesledger/internal/domain/documents/order"
	"salesledger/internal/domain/registers/journal"
	"salesledger/internal/infrastructure/storage/memory"
)

func setup(t *testing.T) (*documentstest.Env, *order.Service) {
	env := documentstest.New(t)
	env.SeedStock(t, env.Fabric.ID, 10)
	return env, order.NewService(memory.NewDocumentStore[*order.Order]("order"), env.Deps)
}

func sale(env *documentstest.Env) documents.SalesInput {
	return env.Sale(order.DiscountOrdering, documentstest.Line(env.Fabric, 2, "100"))
}

func TestCreate_WithoutAdvanceTouchesNoLedger(t *testing.T) {
	env, svc := setup(t)

	o, set, err := svc.Create(env.Ctx, sale(env))
	require.NoError(t, err)
	assert.Equal(t, "SO-1", o.Number)
	assert.Equal(t, order.StatusOpen, o.Status)
	assert.Equal(t, "236.00", o.GrandTotal.StringFixed(2))

	assert.True(t, set.IsEmpty())
	assert.Zero(t, env.JournalRepo.Len())
	assert.Equal(t, types.NewQuantity(10), env.OnHand(t, env.Fabric.ID))
}

func TestCreate_AdvancePosted(t *testing.T) {
	env, svc := setup(t)

	in := sale(env)
	in.Paid = types.MustMoney("100")
	in.DepositAccountID = &env.Deposit.ID

	o, set, err := svc.Create(env.Ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "136.00", o.Balance.StringFixed(2))

	require.Len(t, set.Journal, 2)
	assert.True(t, journal.IsBalanced(set.Journal))
	assert.Equal(t, env.Deposit.ID, set.Journal[0].AccountID)
	assert.Empty(t, set.Stock)
	assert.Equal(t, types.NewQuantity(10), env.OnHand(t, env.Fabric.ID))
}

func TestCreate_AdvanceNeedsDeposit(t *testing.T) {
	env, svc := setup(t)

	in := sale(env)
	in.Paid = types.MustMoney("100")
	_, _, err := svc.Create(env.Ctx, in)
	require.Error(t, err)
	appErr, _ := apperror.AsAppError(err)
	assert.Contains(t, appErr.Messages(), "deposit account is required when a payment is recorded")
}

func TestUpdate_DropsAdvanceThenDelete(t *testing.T) {
	env, svc := setup(t)

	in := sale(env)
	in.Paid = types.MustMoney("100")
	in.DepositAccountID = &env.Deposit.ID
	o, _, err := svc.Create(env.Ctx, in)
	require.NoError(t, err)

	in = sale(env)
	in.Number = o.Number
	o, set, err := svc.Update(env.Ctx, o.ID, in)
	require.NoError(t, err)
	assert.True(t, set.IsEmpty())
	assert.Empty(t, env.Entries(t, o.ID))
	assert.Equal(t, "236.00", o.Balance.StringFixed(2))

	require.NoError(t, svc.Delete(env.Ctx, o.ID))
	_, err = svc.GetByID(env.Ctx, o.ID)
	assert.True(t, apperror.IsNotFound(err))
}
