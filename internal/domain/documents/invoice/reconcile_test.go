package invoice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesledger/internal/core/apperror"
	"salesledger/internal/core/id"
	"salesledger/internal/core/types"
	"salesledger/internal/domain/documents"
)

func m(s string) types.Money { return types.MustMoney(s) }

func stored(grand, paid string) (*Invoice, id.ID) {
	inv := NewInvoice(id.New(), "user")
	inv.Number = "INV-7"
	lineID := id.New()
	inv.Lines = []documents.Line{{LineID: lineID, LineNo: 1, ItemID: id.New(), Quantity: types.NewQuantity(4)}}
	inv.GrandTotal = m(grand)
	inv.PaidAmount = m(paid)
	inv.Refresh()
	return inv, lineID
}

func TestRefresh_Status(t *testing.T) {
	inv, _ := stored("100", "0")
	assert.Equal(t, StatusUnpaid, inv.Status)
	assert.Equal(t, "100.00", inv.Balance.StringFixed(2))

	inv.PaidAmount = m("40")
	inv.Refresh()
	assert.Equal(t, StatusPartiallyPaid, inv.Status)

	inv.ReceivedAmount = m("60")
	inv.Refresh()
	assert.Equal(t, StatusPaid, inv.Status)
	assert.True(t, inv.Balance.IsZero())
}

func TestApplyAdjustment_ReceiptAndCredit(t *testing.T) {
	inv, lineID := stored("100", "10")

	require.NoError(t, ApplyAdjustment(inv, BalanceAdjusted{ReceivedDelta: m("30")}))
	require.NoError(t, ApplyAdjustment(inv, BalanceAdjusted{
		CreditedDelta: m("20"),
		Returned:      map[id.ID]types.Quantity{lineID: types.NewQuantity(1)},
	}))

	assert.Equal(t, "40.00", inv.Balance.StringFixed(2))
	assert.Equal(t, StatusPartiallyPaid, inv.Status)
	assert.Equal(t, types.NewQuantity(3), inv.Returnable(lineID))
	assert.True(t, inv.IsConsumed())
}

func TestApplyAdjustment_Rejections(t *testing.T) {
	unknown := id.New()
	tests := []struct {
		name string
		ev   func(lineID id.ID) BalanceAdjusted
		code string
	}{
		{
			name: "negative received",
			ev:   func(id.ID) BalanceAdjusted { return BalanceAdjusted{ReceivedDelta: m("-1")} },
			code: apperror.CodeBusinessRule,
		},
		{
			name: "negative credited",
			ev:   func(id.ID) BalanceAdjusted { return BalanceAdjusted{CreditedDelta: m("-1")} },
			code: apperror.CodeBusinessRule,
		},
		{
			name: "over return",
			ev: func(lineID id.ID) BalanceAdjusted {
				return BalanceAdjusted{Returned: map[id.ID]types.Quantity{lineID: types.NewQuantity(5)}}
			},
			code: apperror.CodeBusinessRule,
		},
		{
			name: "negative return",
			ev: func(lineID id.ID) BalanceAdjusted {
				return BalanceAdjusted{Returned: map[id.ID]types.Quantity{lineID: types.NewQuantity(-1)}}
			},
			code: apperror.CodeBusinessRule,
		},
		{
			name: "unknown line",
			ev: func(id.ID) BalanceAdjusted {
				return BalanceAdjusted{Returned: map[id.ID]types.Quantity{unknown: types.NewQuantity(1)}}
			},
			code: apperror.CodeNotFound,
		},
		{
			name: "exceeds open balance",
			ev:   func(id.ID) BalanceAdjusted { return BalanceAdjusted{ReceivedDelta: m("90.02")} },
			code: apperror.CodeBusinessRule,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, lineID := stored("100", "10")
			err := ApplyAdjustment(inv, tt.ev(lineID))
			require.Error(t, err)
			assert.True(t, apperror.HasCode(err, tt.code), err.Error())
			assert.True(t, inv.ReceivedAmount.IsZero(), "invoice untouched")
			assert.False(t, inv.IsConsumed())
		})
	}
}

func TestApplyAdjustment_ToleratesOneCent(t *testing.T) {
	inv, _ := stored("100", "0")
	require.NoError(t, ApplyAdjustment(inv, BalanceAdjusted{ReceivedDelta: m("100.01")}))
	assert.Equal(t, StatusPaid, inv.Status)
}

func TestBalanceAdjusted_DiffAndNegate(t *testing.T) {
	a, b := id.New(), id.New()
	old := BalanceAdjusted{CreditedDelta: m("50"), Returned: map[id.ID]types.Quantity{a: types.NewQuantity(2)}}
	cur := BalanceAdjusted{CreditedDelta: m("30"), Returned: map[id.ID]types.Quantity{b: types.NewQuantity(1)}}

	d := cur.Diff(old)
	assert.Equal(t, "-20.00", d.CreditedDelta.StringFixed(2))
	assert.Equal(t, types.NewQuantity(-2), d.Returned[a])
	assert.Equal(t, types.NewQuantity(1), d.Returned[b])

	n := old.Negate()
	assert.Equal(t, "-50.00", n.CreditedDelta.StringFixed(2))
	assert.Equal(t, types.NewQuantity(-2), n.Returned[a])

	assert.True(t, cur.Diff(cur).IsZero())
	assert.False(t, n.IsZero())
}

func TestApplyAdjustment_ReturnBackToZeroClearsLine(t *testing.T) {
	inv, lineID := stored("100", "0")
	ev := BalanceAdjusted{CreditedDelta: m("25"), Returned: map[id.ID]types.Quantity{lineID: types.NewQuantity(1)}}
	require.NoError(t, ApplyAdjustment(inv, ev))
	require.NoError(t, ApplyAdjustment(inv, ev.Negate()))

	assert.False(t, inv.IsConsumed())
	assert.NotContains(t, inv.Returned, lineID)
	assert.Equal(t, StatusUnpaid, inv.Status)
}
