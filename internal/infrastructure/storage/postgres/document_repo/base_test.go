package document_repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesledger/internal/core/entity"
	"salesledger/internal/core/id"
	"salesledger/internal/core/types"
	"salesledger/internal/domain"
	"salesledger/internal/domain/documents"
	"salesledger/internal/domain/documents/receipt"
	"salesledger/internal/domain/documents/tailoring_order"
)

func TestRowRoundTrip_KeepsLinesAndHistory(t *testing.T) {
	repo := NewRepo(nil, entity.DocumentTypeTailoringOrder, func() *tailoring_order.TailoringOrder {
		return &tailoring_order.TailoringOrder{}
	})

	o := tailoring_order.NewTailoringOrder(id.New(), "user-1")
	o.Number = "TO-7"
	o.CustomerID = id.New()
	o.GrandTotal = types.MustMoney("295")
	o.Lines = []documents.Line{{LineID: id.New(), LineNo: 1, ItemID: id.New(), Quantity: types.NewQuantity(2)}}

	rw, err := repo.toRow(o)
	require.NoError(t, err)
	assert.Equal(t, "tailoring_order", rw.DocumentType)
	assert.Equal(t, "TO-7", rw.Number)
	assert.Equal(t, tailoring_order.StatusReceived, rw.Status)
	assert.Equal(t, o.CustomerID, rw.CounterpartyID)

	back, err := repo.fromRow(rw)
	require.NoError(t, err)
	assert.Equal(t, o.ID, back.ID)
	assert.True(t, back.GrandTotal.Equal(o.GrandTotal))
	require.Len(t, back.Lines, 1)
	assert.Equal(t, types.NewQuantity(2), back.Lines[0].Quantity)
	require.Len(t, back.Statuses, 1)
	assert.Equal(t, tailoring_order.StatusReceived, back.Statuses[0].Status)
}

func TestRowRoundTrip_ReceiptAllocations(t *testing.T) {
	repo := NewRepo(nil, entity.DocumentTypeReceipt, func() *receipt.Receipt { return &receipt.Receipt{} })

	r := receipt.NewReceipt(id.New(), "user-1")
	r.CustomerID = id.New()
	r.Amount = types.MustMoney("150")
	r.Allocations = []receipt.Allocation{{InvoiceID: id.New(), InvoiceNumber: "INV-1", Amount: types.MustMoney("150")}}

	rw, err := repo.toRow(r)
	require.NoError(t, err)
	back, err := repo.fromRow(rw)
	require.NoError(t, err)

	require.Len(t, back.Allocations, 1)
	assert.Equal(t, "INV-1", back.Allocations[0].InvoiceNumber)
	assert.Equal(t, r.CustomerID, back.GetCounterpartyID())
}

func TestApplyFilter(t *testing.T) {
	cp := id.New()
	q := applyFilter(
		(&Repo[*receipt.Receipt]{docType: entity.DocumentTypeReceipt}).selectRows(),
		domain.ListFilter{Search: "rct", Status: receipt.StatusReceived, CounterpartyID: &cp},
	)

	sql, args, err := q.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "FROM sales_documents")
	assert.Contains(t, sql, "number ILIKE $2")
	assert.Contains(t, sql, "status = $3")
	assert.Contains(t, sql, "counterparty_id = $4")
	// uuid values go through driver.Valuer
	assert.Equal(t, []any{"receipt", "%rct%", receipt.StatusReceived, cp.String()}, args)
}
