package tailoring_order_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesledger/internal/core/apperror"
	"salesledger/internal/core/types"
	"salesledger/internal/domain/documents"
	"salesledger/internal/domain/documents/documentstest"
	tailoring "salesledger/internal/domain/documents/tailoring_order"
	"salesledger/internal/domain/registers/journal"
	"salesledger/internal/infrastructure/storage/memory"
)

func setup(t *testing.T, stockQty int64) (*documentstest.Env, *tailoring.Service) {
	env := documentstest.New(t)
	env.SeedStock(t, env.Fabric.ID, stockQty)
	return env, tailoring.NewService(memory.NewDocumentStore[*tailoring.TailoringOrder]("tailoring_order"), env.Deps)
}

// fabric 2 x 100 and stitching 1 x 50 at 9% + 9%: 295
func sale(env *documentstest.Env) documents.SalesInput {
	return env.Sale(tailoring.DiscountOrdering,
		documentstest.Line(env.Fabric, 2, "100"),
		documentstest.Line(env.Stitching, 1, "50"),
	)
}

func advance(t *testing.T, env *documentstest.Env, svc *tailoring.Service, o *tailoring.TailoringOrder, steps ...string) *tailoring.TailoringOrder {
	t.Helper()
	for _, status := range steps {
		var err error
		o, _, err = svc.SetStatus(env.Ctx, o.ID, status)
		require.NoError(t, err, status)
	}
	return o
}

func TestCreate_PostsSaleWithoutStock(t *testing.T) {
	env, svc := setup(t, 10)

	o, set, err := svc.Create(env.Ctx, sale(env))
	require.NoError(t, err)
	assert.Equal(t, "TO-1", o.Number)
	assert.Equal(t, tailoring.StatusReceived, o.Status)
	require.Len(t, o.Statuses, 1)
	assert.Equal(t, "user-1", o.Statuses[0].By)
	assert.Equal(t, "295.00", o.GrandTotal.StringFixed(2))

	assert.True(t, journal.IsBalanced(set.Journal))
	assert.NotEmpty(t, set.Journal)
	assert.Empty(t, set.Stock)
	assert.Equal(t, types.NewQuantity(10), env.OnHand(t, env.Fabric.ID))
}

func TestSetStatus_DeliveryReleasesStock(t *testing.T) {
	env, svc := setup(t, 10)

	o, _, err := svc.Create(env.Ctx, sale(env))
	require.NoError(t, err)
	lineID := o.Lines[0].LineID

	o = advance(t, env, svc, o, tailoring.StatusCutting, tailoring.StatusStitching, tailoring.StatusReady)
	assert.Equal(t, types.NewQuantity(10), env.OnHand(t, env.Fabric.ID))

	o, set, err := svc.SetStatus(env.Ctx, o.ID, tailoring.StatusDelivery)
	require.NoError(t, err)
	assert.True(t, o.Delivered())
	require.Len(t, set.Stock, 1)
	assert.Equal(t, env.Fabric.ID, set.Stock[0].ItemID)
	assert.Equal(t, types.NewQuantity(8), env.OnHand(t, env.Fabric.ID))
	assert.Equal(t, lineID, o.Lines[0].LineID)
	assert.Len(t, o.Statuses, 5)

	// stepping back returns the stock and keeps the sale
	o, set, err = svc.SetStatus(env.Ctx, o.ID, tailoring.StatusReady)
	require.NoError(t, err)
	assert.Empty(t, set.Stock)
	assert.NotEmpty(t, env.Entries(t, o.ID))
	assert.Equal(t, types.NewQuantity(10), env.OnHand(t, env.Fabric.ID))
	assert.Equal(t, tailoring.StatusReady, o.Status)
	assert.Len(t, o.Statuses, 4)
}

func TestSetStatus_SkippingIsRejected(t *testing.T) {
	env, svc := setup(t, 10)

	o, _, err := svc.Create(env.Ctx, sale(env))
	require.NoError(t, err)

	_, _, err = svc.SetStatus(env.Ctx, o.ID, tailoring.StatusReady)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeBusinessRule))

	stored, err := svc.GetByID(env.Ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, tailoring.StatusReceived, stored.Status)
	assert.Equal(t, 1, stored.Version)
}

func TestSetStatus_DeliveryWithoutStockRollsBack(t *testing.T) {
	env, svc := setup(t, 1)

	o, _, err := svc.Create(env.Ctx, sale(env))
	require.NoError(t, err)
	o = advance(t, env, svc, o, tailoring.StatusCutting, tailoring.StatusStitching, tailoring.StatusReady)
	rows := len(env.Entries(t, o.ID))

	_, _, err = svc.SetStatus(env.Ctx, o.ID, tailoring.StatusDelivery)
	require.Error(t, err)

	stored, err := svc.GetByID(env.Ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, tailoring.StatusReady, stored.Status)
	assert.Len(t, env.Entries(t, o.ID), rows)
	assert.Equal(t, types.NewQuantity(1), env.OnHand(t, env.Fabric.ID))
}

func TestUpdate_KeepsHistoryAndDelete(t *testing.T) {
	env, svc := setup(t, 10)

	o, _, err := svc.Create(env.Ctx, sale(env))
	require.NoError(t, err)
	o = advance(t, env, svc, o, tailoring.StatusCutting)

	in := env.Sale(tailoring.DiscountOrdering, documentstest.Line(env.Fabric, 3, "100"))
	in.Number = o.Number
	o, _, err = svc.Update(env.Ctx, o.ID, in)
	require.NoError(t, err)
	assert.Equal(t, tailoring.StatusCutting, o.Status)
	assert.Len(t, o.Statuses, 2)
	assert.Equal(t, "354.00", o.GrandTotal.StringFixed(2))

	require.NoError(t, svc.Delete(env.Ctx, o.ID))
	assert.Empty(t, env.Entries(t, o.ID))
	_, err = svc.GetByID(env.Ctx, o.ID)
	assert.True(t, apperror.IsNotFound(err))
}
