package types

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithinTolerance(t *testing.T) {
	assert.True(t, WithinTolerance(MustMoney("236.00"), MustMoney("236.01")))
	assert.True(t, WithinTolerance(MustMoney("236.00"), MustMoney("235.99")))
	assert.False(t, WithinTolerance(MustMoney("236.00"), MustMoney("236.02")))
	assert.False(t, WithinTolerance(MustMoney("236.00"), MustMoney("230.00")))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "18", Percent(MustMoney("200"), MustMoney("9")).String())
	assert.Equal(t, "23.6", Percent(MustMoney("236"), MustMoney("10")).String())
	assert.Equal(t, "3.33", Percent(MustMoney("33.33"), MustMoney("10")).String())
}

func TestMaxZero(t *testing.T) {
	assert.True(t, MaxZero(MustMoney("-5")).IsZero())
	assert.Equal(t, "5", MaxZero(MustMoney("5")).String())
}

func TestQuantity_DecimalRoundTrip(t *testing.T) {
	q := NewQuantityFromDecimal(decimal.RequireFromString("2.5"))
	assert.Equal(t, Quantity(25_000), q)
	assert.Equal(t, "2.5", q.Decimal().String())
	assert.Equal(t, NewQuantity(2), NewQuantityFromFloat64(2))
}

func TestQuantity_JSON(t *testing.T) {
	var q Quantity
	require.NoError(t, json.Unmarshal([]byte(`"1.25"`), &q))
	assert.Equal(t, Quantity(12_500), q)

	require.NoError(t, json.Unmarshal([]byte(`3`), &q))
	assert.Equal(t, NewQuantity(3), q)

	out, err := json.Marshal(NewQuantity(2))
	require.NoError(t, err)
	assert.Equal(t, "2.0000", string(out))
}
