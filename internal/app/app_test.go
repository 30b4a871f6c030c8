package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "salesledger/internal/core/context"
	"salesledger/internal/core/id"
	"salesledger/internal/core/types"
	"salesledger/internal/domain/documents"
	"salesledger/internal/domain/documents/documentstest"
	"salesledger/internal/domain/pricing"
	"salesledger/internal/domain/registers/journal"
	"salesledger/internal/infrastructure/lock"
	"salesledger/internal/infrastructure/observability"
)

func TestDemoDataset_StableIDs(t *testing.T) {
	a, b := DemoDataset(), DemoDataset()
	assert.Equal(t, a.Organization.ID, b.Organization.ID)
	assert.Equal(t, a.Items[0].ID, b.Items[0].ID)
	assert.Len(t, a.Organization.DefaultAccounts, 10)
	assert.Len(t, a.Accounts, 11)
	require.Len(t, a.OpeningStock, 1)
	assert.Equal(t, types.NewQuantity(100), a.OpeningStock[0].DebitQuantity)
}

func TestMemoryServices_InvoiceEndToEnd(t *testing.T) {
	ds := DemoDataset()
	st := NewMemoryStorage(ds)
	defer st.Close()

	svc, err := NewServices(st, lock.NewLocal(), observability.NewMetrics())
	require.NoError(t, err)

	ctx := appctx.WithCaller(context.Background(), &appctx.Caller{OrganizationID: ds.Organization.ID, UserID: "user-1"})
	fabric := ds.Items[0]

	in := documents.SalesInput{
		CustomerID:    ds.Counterparties[0].ID,
		PlaceOfSupply: "KA",
		Lines:         []documents.LineInput{documentstest.Line(fabric, 2, "100")},
	}
	documentstest.Price(&in, pricing.TaxTypeIntra, pricing.DiscountAfterAdditions)

	inv, set, err := svc.Invoices.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "INV-1", inv.Number)
	assert.Equal(t, "236.00", inv.GrandTotal.StringFixed(2))
	assert.True(t, journal.IsBalanced(set.Journal))

	levels, err := svc.Stock.CurrentStock(ctx, ds.Organization.ID, []id.ID{fabric.ID})
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantity(98), levels[fabric.ID])

	rows, err := svc.Journal.Entries(ctx, ds.Organization.ID, inv.ID)
	require.NoError(t, err)
	assert.Len(t, rows, len(set.Journal))
}
