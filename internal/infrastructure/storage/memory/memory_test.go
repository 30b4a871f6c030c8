package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesledger/internal/core/apperror"
	"salesledger/internal/core/entity"
	"salesledger/internal/core/id"
	"salesledger/internal/core/types"
	"salesledger/internal/domain"
)

type testDoc struct {
	ID      id.ID
	Org     id.ID
	Version int
	Number  string
}

func (d *testDoc) GetID() id.ID             { return d.ID }
func (d *testDoc) GetOrganizationID() id.ID { return d.Org }
func (d *testDoc) GetVersion() int          { return d.Version }
func (d *testDoc) GetNumber() string        { return d.Number }
func (d *testDoc) Touch()                   { d.Version++ }
func (d *testDoc) Clone() *testDoc          { c := *d; return &c }

var errBoom = errors.New("boom")

func TestDocumentStore_RollbackUndoesEveryWrite(t *testing.T) {
	ctx := context.Background()
	txm := NewTxManager()
	store := NewDocumentStore[*testDoc]("doc")
	org := id.New()

	kept := &testDoc{ID: id.New(), Org: org, Version: 1, Number: "A-1"}
	require.NoError(t, store.Create(ctx, kept))

	err := txm.RunInTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, store.Create(ctx, &testDoc{ID: id.New(), Org: org, Version: 1, Number: "A-2"}))

		upd := kept.Clone()
		upd.Number = "changed"
		require.NoError(t, store.Update(ctx, upd))
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	got, err := store.Get(ctx, org, kept.ID)
	require.NoError(t, err)
	assert.Equal(t, "A-1", got.Number)
	assert.Equal(t, 1, got.Version)

	all := store.Find(ctx, org, nil)
	assert.Len(t, all, 1)
}

func TestDocumentStore_DeleteRollback(t *testing.T) {
	ctx := context.Background()
	txm := NewTxManager()
	store := NewDocumentStore[*testDoc]("doc")
	doc := &testDoc{ID: id.New(), Org: id.New(), Version: 1}
	require.NoError(t, store.Create(ctx, doc))

	err := txm.RunInTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, store.Delete(ctx, doc.Org, doc.ID))
		return errBoom
	})
	require.Error(t, err)

	_, err = store.Get(ctx, doc.Org, doc.ID)
	assert.NoError(t, err)
}

func TestDocumentStore_VersionAndTenancy(t *testing.T) {
	ctx := context.Background()
	store := NewDocumentStore[*testDoc]("doc")
	doc := &testDoc{ID: id.New(), Org: id.New(), Version: 1}
	require.NoError(t, store.Create(ctx, doc))

	assert.True(t, apperror.HasCode(store.Create(ctx, doc), apperror.CodeDuplicate))

	stale := doc.Clone()
	require.NoError(t, store.Update(ctx, doc))
	assert.Equal(t, 2, doc.Version)
	assert.True(t, apperror.HasCode(store.Update(ctx, stale), apperror.CodeConcurrentModification))

	_, err := store.Get(ctx, id.New(), doc.ID)
	assert.True(t, apperror.IsNotFound(err))
	assert.True(t, apperror.IsNotFound(store.Delete(ctx, id.New(), doc.ID)))
}

func TestDocumentStore_ListFiltersAndPages(t *testing.T) {
	ctx := context.Background()
	store := NewDocumentStore[*testDoc]("doc")
	org := id.New()
	for _, n := range []string{"INV-1", "INV-2", "INV-3", "SO-1"} {
		require.NoError(t, store.Create(ctx, &testDoc{ID: id.New(), Org: org, Version: 1, Number: n}))
	}
	require.NoError(t, store.Create(ctx, &testDoc{ID: id.New(), Org: id.New(), Version: 1, Number: "INV-9"}))

	res, err := store.List(ctx, org, domain.ListFilter{Search: "inv", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.TotalCount)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "INV-3", res.Items[0].Number)

	res, err = store.List(ctx, org, domain.ListFilter{Search: "inv", Limit: 2, Offset: 5})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
}

func TestLedger_RollbackRestoresDeletedRows(t *testing.T) {
	ctx := context.Background()
	txm := NewTxManager()
	repo := NewStockRepo()
	org, item := id.New(), id.New()

	src := entity.MovementSource{OrganizationID: org, OperationID: id.New(), DocumentType: entity.DocumentTypeInvoice}
	in := entity.StockMovement{MovementBase: entity.NewMovementBase(src, "Opening"), ItemID: item, DebitQuantity: types.NewQuantity(10)}
	require.NoError(t, repo.CreateMovements(ctx, []entity.StockMovement{in}))

	err := txm.RunInTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, repo.DeleteByOperation(ctx, org, src.OperationID))
		out := entity.StockMovement{MovementBase: entity.NewMovementBase(src, "Sale"), ItemID: item, CreditQuantity: types.NewQuantity(4)}
		require.NoError(t, repo.CreateMovements(ctx, []entity.StockMovement{out}))
		return errBoom
	})
	require.Error(t, err)

	assert.Equal(t, 1, repo.Len())
	totals, err := repo.SumByItems(ctx, org, []id.ID{item})
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantity(10), totals[item].Debit)
	assert.Equal(t, types.NewQuantity(0), totals[item].Credit)
}
